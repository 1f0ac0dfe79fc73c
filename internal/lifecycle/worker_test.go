package lifecycle

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/models"
)

type updateCall struct {
	fromStatus string
	toStatus   string
	actor      string
	reason     string
}

// fakeRepo overrides only what the handler touches; calling anything else
// panics through the nil embedded interface.
type fakeRepo struct {
	booking.Repository

	ap      *models.Appointment
	branch  *models.Branch
	updates []updateCall
}

func (f *fakeRepo) GetAppointmentByID(_ context.Context, id uint) (*models.Appointment, error) {
	if f.ap == nil || f.ap.ID != id {
		return nil, booking.ErrNotFound("appointment")
	}
	cp := *f.ap
	return &cp, nil
}

func (f *fakeRepo) GetBranchByID(_ context.Context, _ uint) (*models.Branch, error) {
	return f.branch, nil
}

func (f *fakeRepo) UpdateAppointmentStatus(_ context.Context, ap *models.Appointment, fromStatus, actor, reason string) error {
	f.updates = append(f.updates, updateCall{fromStatus, ap.Status, actor, reason})
	f.ap.Status = ap.Status
	return nil
}

type fakeNotifier struct {
	notified []EventKind
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, _ *models.Appointment, kind EventKind) error {
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, kind)
	return nil
}

func eventTask(t *testing.T, bookingID uint, kind EventKind) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(EventPayload{BookingID: bookingID, Kind: kind, FireAt: time.Now()})
	if err != nil {
		t.Fatal(err)
	}
	return asynq.NewTask(TypeLifecycleEvent, b)
}

func pastAppointment() (*models.Appointment, *models.Branch) {
	end := time.Now().Add(-time.Hour)
	return &models.Appointment{
			ID:       4,
			BranchID: 1,
			Status:   string(booking.StatusConfirmed),
			StartsAt: end.Add(-30 * time.Minute),
			EndsAt:   end,
		}, &models.Branch{
			ID:       1,
			Timezone: "America/Mexico_City",
		}
}

func TestHandleLifecycleEvent_NotifiesOpenBooking(t *testing.T) {
	ap, branch := pastAppointment()
	ap.StartsAt = time.Now().Add(time.Hour)
	ap.EndsAt = ap.StartsAt.Add(30 * time.Minute)

	repo := &fakeRepo{ap: ap, branch: branch}
	notifier := &fakeNotifier{}
	h := NewHandler(repo, notifier, zap.NewNop())

	if err := h.HandleLifecycleEvent(context.Background(), eventTask(t, 4, EventReminder2h)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(notifier.notified) != 1 || notifier.notified[0] != EventReminder2h {
		t.Fatalf("notified = %v", notifier.notified)
	}
}

func TestHandleLifecycleEvent_StaleTriggerIsNoop(t *testing.T) {
	ap, branch := pastAppointment()
	ap.Status = string(booking.StatusCancelled)

	repo := &fakeRepo{ap: ap, branch: branch}
	notifier := &fakeNotifier{}
	h := NewHandler(repo, notifier, zap.NewNop())

	if err := h.HandleLifecycleEvent(context.Background(), eventTask(t, 4, EventReminder30m)); err != nil {
		t.Fatalf("stale trigger must not error: %v", err)
	}
	if len(notifier.notified) != 0 {
		t.Fatalf("closed booking must not notify: %v", notifier.notified)
	}
}

func TestHandleLifecycleEvent_FollowupAfterCompletionNotifies(t *testing.T) {
	ap, branch := pastAppointment()
	// Mark-past runs at end+1m, so by the follow-up the booking is completed.
	ap.Status = string(booking.StatusCompleted)

	repo := &fakeRepo{ap: ap, branch: branch}
	notifier := &fakeNotifier{}
	h := NewHandler(repo, notifier, zap.NewNop())

	if err := h.HandleLifecycleEvent(context.Background(), eventTask(t, 4, EventFollowup)); err != nil {
		t.Fatalf("follow-up: %v", err)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != EventFollowup {
		t.Fatalf("follow-up after completion must notify, got %v", notifier.notified)
	}
}

func TestHandleLifecycleEvent_FollowupSkipsWithdrawnBooking(t *testing.T) {
	for _, status := range []booking.Status{booking.StatusCancelled, booking.StatusNoShow} {
		ap, branch := pastAppointment()
		ap.Status = string(status)

		repo := &fakeRepo{ap: ap, branch: branch}
		notifier := &fakeNotifier{}
		h := NewHandler(repo, notifier, zap.NewNop())

		if err := h.HandleLifecycleEvent(context.Background(), eventTask(t, 4, EventFollowup)); err != nil {
			t.Fatalf("%s: follow-up must not error: %v", status, err)
		}
		if len(notifier.notified) != 0 {
			t.Fatalf("%s booking must not get a follow-up: %v", status, notifier.notified)
		}
	}
}

func TestHandleLifecycleEvent_UnknownBookingIsNoop(t *testing.T) {
	h := NewHandler(&fakeRepo{}, &fakeNotifier{}, zap.NewNop())

	if err := h.HandleLifecycleEvent(context.Background(), eventTask(t, 99, EventConfirmation)); err != nil {
		t.Fatalf("unknown booking must not error (retrying is pointless): %v", err)
	}
}

func TestHandleLifecycleEvent_MalformedPayloadIsDropped(t *testing.T) {
	h := NewHandler(&fakeRepo{}, &fakeNotifier{}, zap.NewNop())

	task := asynq.NewTask(TypeLifecycleEvent, []byte("{not json"))
	if err := h.HandleLifecycleEvent(context.Background(), task); err != nil {
		t.Fatalf("malformed payload must not be retried: %v", err)
	}
}

func TestMarkPast_AutoCompletes(t *testing.T) {
	ap, branch := pastAppointment()
	repo := &fakeRepo{ap: ap, branch: branch}
	h := NewHandler(repo, &fakeNotifier{}, zap.NewNop())

	if err := h.HandleLifecycleEvent(context.Background(), eventTask(t, 4, EventMarkPast)); err != nil {
		t.Fatalf("mark-past: %v", err)
	}

	if len(repo.updates) != 1 {
		t.Fatalf("expected 1 status update, got %d", len(repo.updates))
	}
	up := repo.updates[0]
	if up.fromStatus != string(booking.StatusConfirmed) ||
		up.toStatus != string(booking.StatusCompleted) {
		t.Fatalf("transition = %+v", up)
	}
	if up.actor != "system" || up.reason != "auto-complete past appointment" {
		t.Fatalf("attribution = %+v", up)
	}
}

func TestMarkPast_RescheduledForwardIsNoop(t *testing.T) {
	ap, branch := pastAppointment()
	// Booking moved into the future after the trigger was cut.
	ap.StartsAt = time.Now().Add(2 * time.Hour)
	ap.EndsAt = ap.StartsAt.Add(30 * time.Minute)

	repo := &fakeRepo{ap: ap, branch: branch}
	h := NewHandler(repo, &fakeNotifier{}, zap.NewNop())

	if err := h.HandleLifecycleEvent(context.Background(), eventTask(t, 4, EventMarkPast)); err != nil {
		t.Fatalf("mark-past: %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("future booking must not auto-complete: %+v", repo.updates)
	}
}
