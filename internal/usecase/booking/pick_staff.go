package booking

import (
	"context"
	"time"

	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/domain/schedule"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/timezone"
)

// pickStaff resolves an "any staff" request to a concrete staff member.
// Policy: among active staff whose recurring schedule covers the interval
// and who have no conflicting commitment, pick the one with the fewest open
// appointments that day; ties break on the lowest staff id. Deliberately a
// best-effort pre-selection: the commit path still re-checks under lock.
func (uc *CommitBooking) pickStaff(
	ctx context.Context,
	branch *models.Branch,
	start time.Time,
	end time.Time,
) (uint, error) {

	staff, err := uc.repo.ListActiveStaff(ctx, branch.ID)
	if err != nil {
		return 0, err
	}

	loc := timezone.Location(branch.Timezone)
	local := start.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	busyFrom, busyTo := domain.Inflate(start, end, branch.BufferBeforeMin, branch.BufferAfterMin)

	var (
		bestID   uint
		bestLoad = -1
	)

	for _, member := range staff {
		rows, err := uc.repo.ListWeeklySchedules(ctx, member.ID)
		if err != nil {
			return 0, err
		}

		if !fitsSchedule(rows, branch.Timezone, start, end) {
			continue
		}

		offs, err := uc.repo.ListTimeOff(ctx, member.ID, busyFrom, busyTo)
		if err != nil {
			return 0, err
		}
		if len(schedule.ExceptionsFor(offs, busyFrom, busyTo)) > 0 {
			continue
		}

		open, err := uc.repo.ListOpenAppointments(ctx, member.ID, dayStart, dayEnd)
		if err != nil {
			return 0, err
		}

		conflicted := false
		for _, ap := range open {
			if domain.Overlaps(busyFrom, busyTo, ap.StartsAt, ap.EndsAt) {
				conflicted = true
				break
			}
		}
		if conflicted {
			continue
		}

		load := len(open)
		if bestLoad == -1 || load < bestLoad || (load == bestLoad && member.ID < bestID) {
			bestID = member.ID
			bestLoad = load
		}
	}

	if bestLoad == -1 {
		return 0, domain.ErrConflict("no_staff_available")
	}
	return bestID, nil
}
