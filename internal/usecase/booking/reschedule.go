package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/slotworks/salon-scheduler/internal/audit"
	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/lifecycle"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/timezone"
)

type RescheduleBooking struct {
	repo  domain.Repository
	sched lifecycle.Scheduler
	audit *audit.Dispatcher
	log   *zap.Logger

	now func(tz string) time.Time
}

func NewRescheduleBooking(
	repo domain.Repository,
	sched lifecycle.Scheduler,
	auditDisp *audit.Dispatcher,
	log *zap.Logger,
) *RescheduleBooking {
	return &RescheduleBooking{
		repo:  repo,
		sched: sched,
		audit: auditDisp,
		log:   log,
		now:   timezone.NowIn,
	}
}

func (uc *RescheduleBooking) Execute(
	ctx context.Context,
	branchID uint,
	appointmentID uint,
	newDate string, // YYYY-MM-DD
	newTime string, // HH:mm
	actor string,
) (*models.Appointment, error) {

	branch, err := uc.repo.GetBranchByID(ctx, branchID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil || ap.BranchID != branchID {
		return nil, domain.ErrNotFound("appointment")
	}

	if err := domain.CanReschedule(domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	now := uc.now(branch.Timezone)

	// Moving a booking is bounded by the same window as cancelling it.
	if actor == "client" {
		cutoff := ap.StartsAt.Add(-time.Duration(branch.CancelationWindowMin) * time.Minute)
		if now.After(cutoff) {
			return nil, domain.ErrPolicy("cancelation_window")
		}
	}

	newStart, err := time.ParseInLocation(
		"2006-01-02 15:04",
		newDate+" "+newTime,
		timezone.Location(branch.Timezone),
	)
	if err != nil {
		return nil, domain.ErrPolicy("invalid_date_or_time")
	}

	duration := ap.EndsAt.Sub(ap.StartsAt)
	newEnd := newStart.Add(duration)

	// The new slot obeys the same policy as a fresh booking.
	if newStart.Before(now.Add(time.Duration(branch.MinBookingNoticeMin) * time.Minute)) {
		return nil, domain.ErrPolicy("notice_window")
	}
	if newStart.After(now.AddDate(0, 0, branch.MaxBookingAheadDays)) {
		return nil, domain.ErrPolicy("look_ahead_window")
	}

	rows, err := uc.repo.ListWeeklySchedules(ctx, ap.StaffID)
	if err != nil {
		return nil, err
	}
	if !fitsSchedule(rows, branch.Timezone, newStart, newEnd) {
		return nil, domain.ErrPolicy("outside_working_hours")
	}

	busyFrom, busyTo := domain.Inflate(newStart, newEnd, branch.BufferBeforeMin, branch.BufferAfterMin)

	if err := uc.repo.RescheduleAppointment(ctx, ap, newStart, newEnd, busyFrom, busyTo, actor); err != nil {
		return nil, err
	}

	// Re-registering the identity set replaces the old timeline wholesale;
	// no event computed from the old timestamps fires afterwards.
	if err := uc.sched.Schedule(ctx, ap.ID, ap.StartsAt, ap.EndsAt); err != nil {
		uc.log.Error("failed to replace lifecycle timeline",
			zap.Uint("booking_id", ap.ID),
			zap.Error(err),
		)
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: branchID,
		StaffID:  &ap.StaffID,
		Action:   "appointment_rescheduled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
