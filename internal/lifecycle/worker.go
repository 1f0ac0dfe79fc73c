package lifecycle

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/slotworks/salon-scheduler/internal/domain/booking"
	"github.com/slotworks/salon-scheduler/internal/models"
	"github.com/slotworks/salon-scheduler/internal/timezone"
)

// Handler consumes fired lifecycle events. Delivery is at-least-once, so
// every branch of it must be safe to re-run: current booking state is
// re-read and a stale trigger (booking cancelled or moved since scheduling)
// is a logged no-op, not an error.
type Handler struct {
	repo     booking.Repository
	notifier Notifier
	log      *zap.Logger
}

func NewHandler(repo booking.Repository, notifier Notifier, log *zap.Logger) *Handler {
	return &Handler{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

func (h *Handler) HandleLifecycleEvent(ctx context.Context, task *asynq.Task) error {
	var p EventPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		h.log.Error("invalid lifecycle payload", zap.Error(err))
		// Malformed payloads never become valid; retrying is pointless.
		return nil
	}

	ap, err := h.repo.GetAppointmentByID(ctx, p.BookingID)
	if err != nil {
		if booking.IsNotFound(err) {
			h.log.Warn("lifecycle event for unknown booking",
				zap.Uint("booking_id", p.BookingID),
				zap.String("kind", string(p.Kind)),
			)
			return nil
		}
		return err
	}

	// The follow-up fires after the visit, past the mark-past trigger that
	// auto-completes still-open bookings, so a completed booking is its
	// expected state. Only an explicit withdrawal silences it.
	if p.Kind == EventFollowup {
		status := booking.Status(ap.Status)
		if status == booking.StatusCancelled || status == booking.StatusNoShow {
			h.log.Debug("follow-up skipped, booking withdrawn",
				zap.Uint("booking_id", ap.ID),
				zap.String("status", ap.Status),
			)
			return nil
		}
		return h.notifier.Notify(ctx, ap, p.Kind)
	}

	if !booking.IsOpen(booking.Status(ap.Status)) {
		// Stale trigger: cancelled/finished between scheduling and firing.
		h.log.Debug("lifecycle event skipped, booking no longer open",
			zap.Uint("booking_id", ap.ID),
			zap.String("status", ap.Status),
			zap.String("kind", string(p.Kind)),
		)
		return nil
	}

	if p.Kind == EventMarkPast {
		return h.markPast(ctx, ap)
	}

	return h.notifier.Notify(ctx, ap, p.Kind)
}

// markPast auto-completes a booking still open after its end time.
func (h *Handler) markPast(ctx context.Context, ap *models.Appointment) error {
	branch, err := h.repo.GetBranchByID(ctx, ap.BranchID)
	if err != nil {
		return err
	}

	now := timezone.NowIn(branch.Timezone)
	if ap.EndsAt.After(now) {
		// The booking was rescheduled forward after this trigger was cut.
		return nil
	}

	from := ap.Status
	if err := booking.Complete(ap, now); err != nil {
		if booking.IsConflict(err) {
			return nil
		}
		return err
	}

	return h.repo.UpdateAppointmentStatus(ctx, ap, from, "system", "auto-complete past appointment")
}

// NewServer builds the asynq consumer for the lifecycle queue.
func NewServer(redisOpt asynq.RedisClientOpt, concurrency int, log *zap.Logger) *asynq.Server {
	return asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueName: 1,
			},
			// Exhausted events land in the archived set; surface them for
			// operational follow-up instead of dropping silently.
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetries, _ := asynq.GetMaxRetry(ctx)
				if retried >= maxRetries {
					log.Error("lifecycle event permanently failed",
						zap.String("task_id", taskIDFromContext(ctx)),
						zap.ByteString("payload", task.Payload()),
						zap.Error(err),
					)
					return
				}
				log.Warn("lifecycle event failed, will retry",
					zap.Int("retried", retried),
					zap.Error(err),
				)
			}),
		},
	)
}

func taskIDFromContext(ctx context.Context) string {
	if id, ok := asynq.GetTaskID(ctx); ok {
		return id
	}
	return ""
}

func NewMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeLifecycleEvent, h.HandleLifecycleEvent)
	return mux
}
