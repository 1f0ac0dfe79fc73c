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

type CancelBooking struct {
	repo  domain.Repository
	sched lifecycle.Scheduler
	audit *audit.Dispatcher
	log   *zap.Logger

	now func(tz string) time.Time
}

func NewCancelBooking(
	repo domain.Repository,
	sched lifecycle.Scheduler,
	auditDisp *audit.Dispatcher,
	log *zap.Logger,
) *CancelBooking {
	return &CancelBooking{
		repo:  repo,
		sched: sched,
		audit: auditDisp,
		log:   log,
		now:   timezone.NowIn,
	}
}

func (uc *CancelBooking) Execute(
	ctx context.Context,
	branchID uint,
	appointmentID uint,
	actor string,
	reason string,
) (*models.Appointment, error) {

	branch, err := uc.repo.GetBranchByID(ctx, branchID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil || ap.BranchID != branchID {
		return nil, domain.ErrNotFound("appointment")
	}

	now := uc.now(branch.Timezone)

	// Clients must respect the cancelation window; staff and the system
	// may cancel at any point.
	if actor == "client" {
		cutoff := ap.StartsAt.Add(-time.Duration(branch.CancelationWindowMin) * time.Minute)
		if now.After(cutoff) {
			return nil, domain.ErrPolicy("cancelation_window")
		}
	}

	from := ap.Status
	if err := domain.Cancel(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointmentStatus(ctx, ap, from, actor, reason); err != nil {
		return nil, err
	}

	// Withdraw pending lifecycle events. Events already fired are gone;
	// cancelling them is a no-op.
	if err := uc.sched.Cancel(ctx, ap.ID); err != nil {
		uc.log.Error("failed to cancel lifecycle timeline",
			zap.Uint("booking_id", ap.ID),
			zap.Error(err),
		)
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: branchID,
		StaffID:  &ap.StaffID,
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
