package booking

import (
	"time"

	"github.com/slotworks/salon-scheduler/internal/domain/schedule"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/timezone"
)

// fitsSchedule reports whether [start,end) sits fully inside one merged
// recurring window of the staff member for that weekday, in the branch
// timezone.
func fitsSchedule(
	rows []models.WeeklySchedule,
	branchTZ string,
	start time.Time,
	end time.Time,
) bool {

	loc := timezone.Location(branchTZ)
	local := start.In(loc)

	for _, w := range schedule.WindowsFor(rows, int(local.Weekday())) {
		wStart, wEnd := w.Anchor(local, loc)
		if !start.Before(wStart) && !end.After(wEnd) {
			return true
		}
	}
	return false
}
