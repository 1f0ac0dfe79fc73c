package availability

import (
	"context"
	"time"

	"github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/domain/schedule"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/timezone"
)

// scheduleReader is the read-only slice of storage the resolver needs.
type scheduleReader interface {
	ListWeeklySchedules(ctx context.Context, staffID uint) ([]models.WeeklySchedule, error)
	ListTimeOff(ctx context.Context, staffID uint, from, to time.Time) ([]models.TimeOff, error)
	ListOpenAppointments(ctx context.Context, staffID uint, from, to time.Time) ([]models.Appointment, error)
}

// ======================================================
// INPUT
// ======================================================

type ResolveInput struct {
	Branch             *models.Branch
	StaffID            uint
	ServiceDurationMin int

	// Date is any instant of the target day; only its calendar day in the
	// branch timezone matters.
	Date time.Time
}

// ======================================================
// USE CASE
// ======================================================

// Resolver computes bookable start times for one staff member on one day.
// Pure read projection: no availability is never an error, just an empty
// result.
type Resolver struct {
	repo scheduleReader

	// now is injectable for tests.
	now func(tz string) time.Time
}

func NewResolver(repo scheduleReader) *Resolver {
	return &Resolver{
		repo: repo,
		now:  timezone.NowIn,
	}
}

func (uc *Resolver) Execute(
	ctx context.Context,
	in ResolveInput,
) ([]time.Time, error) {

	if in.Branch == nil || in.ServiceDurationMin <= 0 {
		return nil, nil
	}

	loc := timezone.Location(in.Branch.Timezone)
	now := uc.now(in.Branch.Timezone)

	day := in.Date.In(loc)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	// --------------------------------------------------
	// Booking window policy: notice + look-ahead
	// --------------------------------------------------
	earliest := now.Add(time.Duration(in.Branch.MinBookingNoticeMin) * time.Minute)
	latest := now.AddDate(0, 0, in.Branch.MaxBookingAheadDays)

	// A day wholly outside the window has no availability by definition.
	if !dayEnd.After(earliest) || dayStart.After(latest) {
		return nil, nil
	}

	// --------------------------------------------------
	// Recurring windows for the weekday
	// --------------------------------------------------
	rows, err := uc.repo.ListWeeklySchedules(ctx, in.StaffID)
	if err != nil {
		return nil, err
	}

	windows := schedule.WindowsFor(rows, int(dayStart.Weekday()))
	if len(windows) == 0 {
		return nil, nil
	}

	// --------------------------------------------------
	// Committed state: open appointments + time off. The query range is
	// widened by the buffers so conflicts just outside the day are seen
	// by inflated candidates.
	// --------------------------------------------------
	duration := time.Duration(in.ServiceDurationMin) * time.Minute
	queryFrom := dayStart.Add(-time.Duration(in.Branch.BufferBeforeMin) * time.Minute)
	queryTo := dayEnd.Add(duration + time.Duration(in.Branch.BufferAfterMin)*time.Minute)

	appointments, err := uc.repo.ListOpenAppointments(ctx, in.StaffID, queryFrom, queryTo)
	if err != nil {
		return nil, err
	}

	timeOffs, err := uc.repo.ListTimeOff(ctx, in.StaffID, queryFrom, queryTo)
	if err != nil {
		return nil, err
	}

	busy := make([]booking.Interval, 0, len(appointments))
	for _, ap := range appointments {
		busy = append(busy, booking.Interval{Start: ap.StartsAt, End: ap.EndsAt})
	}
	busy = append(busy, schedule.ExceptionsFor(timeOffs, queryFrom, queryTo)...)

	// --------------------------------------------------
	// Candidate grid at the branch slot granularity
	// --------------------------------------------------
	step := time.Duration(in.Branch.SlotGranularityMin) * time.Minute
	if step <= 0 {
		step = 15 * time.Minute
	}

	var slots []time.Time
	for _, w := range windows {
		wStart, wEnd := w.Anchor(dayStart, loc)

		for s := wStart; !s.Add(duration).After(wEnd); s = s.Add(step) {
			if s.Before(earliest) || s.After(latest) {
				continue
			}

			busyFrom, busyTo := booking.Inflate(
				s,
				s.Add(duration),
				in.Branch.BufferBeforeMin,
				in.Branch.BufferAfterMin,
			)
			if booking.OverlapsAny(busyFrom, busyTo, busy) {
				continue
			}

			slots = append(slots, s)
		}
	}

	return slots, nil
}
