package booking

import (
	"context"

	"go.uber.org/zap"

	"github.com/slotworks/salon-scheduler/internal/audit"
	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/lifecycle"
	"github.com/slotworks/salon-scheduler/internal/models"
)

type MarkNoShow struct {
	repo  domain.Repository
	sched lifecycle.Scheduler
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewMarkNoShow(
	repo domain.Repository,
	sched lifecycle.Scheduler,
	auditDisp *audit.Dispatcher,
	log *zap.Logger,
) *MarkNoShow {
	return &MarkNoShow{
		repo:  repo,
		sched: sched,
		audit: auditDisp,
		log:   log,
	}
}

func (uc *MarkNoShow) Execute(
	ctx context.Context,
	branchID uint,
	appointmentID uint,
	actor string,
	reason string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil || ap.BranchID != branchID {
		return nil, domain.ErrNotFound("appointment")
	}

	from := ap.Status
	if err := domain.MarkNoShow(ap); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointmentStatus(ctx, ap, from, actor, reason); err != nil {
		return nil, err
	}

	// No follow-up for a client who never showed.
	if err := uc.sched.Cancel(ctx, ap.ID); err != nil {
		uc.log.Error("failed to cancel lifecycle timeline",
			zap.Uint("booking_id", ap.ID),
			zap.Error(err),
		)
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: branchID,
		StaffID:  &ap.StaffID,
		Action:   "appointment_no_show",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
