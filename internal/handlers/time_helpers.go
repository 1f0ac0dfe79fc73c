package handlers

import (
	"time"

	"github.com/slotworks/salon-scheduler/internal/dto"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/timezone"
)

func locationFromBranch(branch *models.Branch) *time.Location {
	if branch == nil {
		return timezone.Location("")
	}
	return timezone.Location(branch.Timezone)
}

func parseDateInBranch(branch *models.Branch, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationFromBranch(branch),
	)
}

// slotDTOs renders resolver output as wall-clock pairs in the branch
// timezone, which is what booking widgets display.
func slotDTOs(starts []time.Time, durationMin int) []dto.SlotDTO {
	out := make([]dto.SlotDTO, 0, len(starts))
	d := time.Duration(durationMin) * time.Minute
	for _, s := range starts {
		out = append(out, dto.SlotDTO{
			Start: s.Format("15:04"),
			End:   s.Add(d).Format("15:04"),
		})
	}
	return out
}
