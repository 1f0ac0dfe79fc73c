package schedule

import (
	"sort"
	"time"

	"github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/models"
)

// Window is a recurring [Start, End) availability span expressed in minutes
// from local midnight. No date attached; the caller anchors it to a day in
// the branch timezone.
type Window struct {
	StartMin int
	EndMin   int
}

// ParseHM converts a "15:04" wall-clock string to minutes from midnight.
// Returns -1 for anything unparseable.
func ParseHM(hm string) int {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return -1
	}
	return t.Hour()*60 + t.Minute()
}

// WindowsFor projects the staff member's recurring rows for one weekday into
// an ordered, merged sequence of windows. Overlapping and adjacent rows are
// merged; their union defines availability for that weekday. Inactive rows
// and rows with start >= end are ignored.
func WindowsFor(rows []models.WeeklySchedule, weekday int) []Window {
	var windows []Window
	for _, row := range rows {
		if row.Weekday != weekday || !row.Active {
			continue
		}
		start := ParseHM(row.StartTime)
		end := ParseHM(row.EndTime)
		if start < 0 || end < 0 || start >= end {
			continue
		}
		windows = append(windows, Window{StartMin: start, EndMin: end})
	}

	if len(windows) == 0 {
		return nil
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].StartMin == windows[j].StartMin {
			return windows[i].EndMin < windows[j].EndMin
		}
		return windows[i].StartMin < windows[j].StartMin
	})

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.StartMin <= last.EndMin {
			if w.EndMin > last.EndMin {
				last.EndMin = w.EndMin
			}
			continue
		}
		merged = append(merged, w)
	}

	return merged
}

// Anchor places a window on a concrete day in the given location.
func (w Window) Anchor(day time.Time, loc *time.Location) (time.Time, time.Time) {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(time.Duration(w.StartMin) * time.Minute),
		midnight.Add(time.Duration(w.EndMin) * time.Minute)
}

// ExceptionsFor returns the time-off intervals intersecting [from, to).
// An exception spanning midnight is returned as-is; intersection against a
// specific day happens through the overlap primitive, not by clipping here.
func ExceptionsFor(offs []models.TimeOff, from, to time.Time) []booking.Interval {
	var out []booking.Interval
	for _, off := range offs {
		if !off.StartsAt.Before(off.EndsAt) {
			continue
		}
		if booking.Overlaps(off.StartsAt, off.EndsAt, from, to) {
			out = append(out, booking.Interval{Start: off.StartsAt, End: off.EndsAt})
		}
	}
	return out
}
