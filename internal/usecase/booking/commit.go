package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotworks/salon-scheduler/internal/audit"
	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/lifecycle"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/timezone"
)

// AnyStaff in a request means "no preference": a concrete staff member is
// resolved before the commit path runs (least-loaded policy, see PickStaff).
const AnyStaff uint = 0

const (
	commitAttempts = 3
	commitBackoff  = 50 * time.Millisecond
)

// ======================================================
// INPUT
// ======================================================

type CommitBookingInput struct {
	BranchID uint
	StaffID  uint // AnyStaff for no preference

	ClientName  string
	ClientPhone string
	ClientEmail string

	ServiceID uint

	Date  string // YYYY-MM-DD, branch-local
	Time  string // HH:mm, branch-local
	Notes string

	Actor string // "client" or "staff"
}

// ======================================================
// USE CASE
// ======================================================

type CommitBooking struct {
	repo  domain.Repository
	sched lifecycle.Scheduler
	audit *audit.Dispatcher
	log   *zap.Logger

	now func(tz string) time.Time
}

func NewCommitBooking(
	repo domain.Repository,
	sched lifecycle.Scheduler,
	auditDisp *audit.Dispatcher,
	log *zap.Logger,
) *CommitBooking {
	return &CommitBooking{
		repo:  repo,
		sched: sched,
		audit: auditDisp,
		log:   log,
		now:   timezone.NowIn,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CommitBooking) Execute(
	ctx context.Context,
	in CommitBookingInput,
) (*models.Appointment, error) {

	branch, err := uc.repo.GetBranchByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Requested interval in the branch timezone
	// --------------------------------------------------
	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(branch.Timezone),
	)
	if err != nil {
		return nil, domain.ErrPolicy("invalid_date_or_time")
	}

	service, err := uc.repo.GetService(ctx, in.BranchID, in.ServiceID)
	if err != nil {
		return nil, domain.ErrNotFound("service")
	}

	end := start.Add(time.Duration(service.DurationMin) * time.Minute)

	// --------------------------------------------------
	// Policy: notice window + look-ahead window
	// --------------------------------------------------
	now := uc.now(branch.Timezone)
	if start.Before(now.Add(time.Duration(branch.MinBookingNoticeMin) * time.Minute)) {
		return nil, domain.ErrPolicy("notice_window")
	}
	if start.After(now.AddDate(0, 0, branch.MaxBookingAheadDays)) {
		return nil, domain.ErrPolicy("look_ahead_window")
	}

	// --------------------------------------------------
	// Concrete staff member
	// --------------------------------------------------
	staffID := in.StaffID
	if staffID == AnyStaff {
		staffID, err = uc.pickStaff(ctx, branch, start, end)
		if err != nil {
			return nil, err
		}
	} else if _, err := uc.repo.GetStaff(ctx, in.BranchID, staffID); err != nil {
		return nil, domain.ErrNotFound("staff")
	}

	// --------------------------------------------------
	// Recurring availability for the weekday
	// --------------------------------------------------
	rows, err := uc.repo.ListWeeklySchedules(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if !fitsSchedule(rows, branch.Timezone, start, end) {
		return nil, domain.ErrPolicy("outside_working_hours")
	}

	// --------------------------------------------------
	// Client (get or create)
	// --------------------------------------------------
	client, err := uc.repo.GetOrCreateClient(
		ctx,
		in.BranchID,
		in.ClientName,
		in.ClientPhone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Commit under the staff-row lock. The resolver's offer may be stale
	// by now; the repository re-checks committed state inside the
	// transaction, so at most one of two racing requests wins.
	// --------------------------------------------------
	ap := &models.Appointment{
		Reference: uuid.New().String(),
		BranchID:  in.BranchID,
		StaffID:   staffID,
		ClientID:  client.ID,
		ServiceID: service.ID,
		StartsAt:  start,
		EndsAt:    end,
		Status:    string(domain.InitialStatus(branch.AutoConfirm)),
		Notes:     in.Notes,
	}

	busyFrom, busyTo := domain.Inflate(start, end, branch.BufferBeforeMin, branch.BufferAfterMin)

	if err := uc.commitWithRetry(ctx, ap, busyFrom, busyTo, in.Actor); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Lifecycle timeline. The booking is already durable; a broken queue
	// degrades reminders, it does not undo the commit.
	// --------------------------------------------------
	if err := uc.sched.Schedule(ctx, ap.ID, ap.StartsAt, ap.EndsAt); err != nil {
		uc.log.Error("failed to register lifecycle timeline",
			zap.Uint("booking_id", ap.ID),
			zap.Error(err),
		)
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: in.BranchID,
		StaffID:  &ap.StaffID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}

// commitWithRetry retries transient storage failures a bounded number of
// times; conflicts and policy errors surface immediately.
func (uc *CommitBooking) commitWithRetry(
	ctx context.Context,
	ap *models.Appointment,
	busyFrom time.Time,
	busyTo time.Time,
	actor string,
) error {

	var err error
	for attempt := 1; attempt <= commitAttempts; attempt++ {
		err = uc.repo.CreateAppointmentIfFree(ctx, ap, busyFrom, busyTo, actor)
		if err == nil || !domain.IsTransient(err) {
			return err
		}

		uc.log.Warn("transient storage error on commit, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * commitBackoff):
		}
	}
	return err
}
