package booking

import (
	"context"
	"time"

	"github.com/slotworks/salon-scheduler/internal/audit"
	domain "github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/timezone"
)

type CompleteBooking struct {
	repo  domain.Repository
	audit *audit.Dispatcher

	now func(tz string) time.Time
}

func NewCompleteBooking(
	repo domain.Repository,
	auditDisp *audit.Dispatcher,
) *CompleteBooking {
	return &CompleteBooking{
		repo:  repo,
		audit: auditDisp,
		now:   timezone.NowIn,
	}
}

func (uc *CompleteBooking) Execute(
	ctx context.Context,
	branchID uint,
	appointmentID uint,
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

	from := ap.Status
	if err := domain.Complete(ap, uc.now(branch.Timezone)); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointmentStatus(ctx, ap, from, actor, ""); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BranchID: branchID,
		StaffID:  &ap.StaffID,
		Action:   "appointment_completed",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
