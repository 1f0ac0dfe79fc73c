package booking

import (
	"context"

	"github.com/slotworks/salon-scheduler/internal/audit"
	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/models"
)

type ConfirmBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewConfirmBooking(
	repo domain.Repository,
	auditDisp *audit.Dispatcher,
) *ConfirmBooking {
	return &ConfirmBooking{
		repo:  repo,
		audit: auditDisp,
	}
}

func (uc *ConfirmBooking) Execute(
	ctx context.Context,
	branchID uint,
	appointmentID uint,
	actor string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil || ap.BranchID != branchID {
		return nil, domain.ErrNotFound("appointment")
	}

	from := ap.Status
	if err := domain.Confirm(ap); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointmentStatus(ctx, ap, from, actor, ""); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: branchID,
		StaffID:  &ap.StaffID,
		Action:   "appointment_confirmed",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
