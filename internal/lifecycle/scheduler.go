package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Scheduler registers and withdraws the deferred timeline of a booking.
// Implementations must be safe for concurrent use; for one event identity
// the last writer wins.
type Scheduler interface {
	// Schedule is an idempotent upsert: registering a booking that already
	// has pending events replaces them with a fresh set computed from the
	// new timestamps. Fire times in the past clamp to immediate.
	Schedule(ctx context.Context, bookingID uint, startsAt, endsAt time.Time) error

	// Cancel removes every pending event of the booking. Events that have
	// already fired, or were never scheduled, are a no-op.
	Cancel(ctx context.Context, bookingID uint) error
}

// taskClient is the slice of asynq.Client the scheduler needs.
type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// taskRemover is the slice of asynq.Inspector the scheduler needs.
type taskRemover interface {
	DeleteTask(queue, id string) error
}

// AsynqScheduler is the durable implementation: events live in redis,
// survive restarts and are delivered at least once to the worker.
type AsynqScheduler struct {
	client    taskClient
	inspector taskRemover
	log       *zap.Logger

	// injectable for tests
	now func() time.Time
}

func NewAsynqScheduler(redisOpt asynq.RedisClientOpt, log *zap.Logger) *AsynqScheduler {
	return &AsynqScheduler{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		log:       log,
		now:       time.Now,
	}
}

func (s *AsynqScheduler) Schedule(ctx context.Context, bookingID uint, startsAt, endsAt time.Time) error {
	now := s.now()

	for _, ev := range Timeline(now, startsAt, endsAt) {
		// Upsert by identity: drop any pending trigger first, then enqueue.
		if err := s.deleteEvent(bookingID, ev.Kind); err != nil {
			return err
		}

		fireAt := ev.FireAt
		if fireAt.Before(now) {
			fireAt = now
		}

		task, opts, err := NewLifecycleTask(EventPayload{
			BookingID: bookingID,
			Kind:      ev.Kind,
			FireAt:    fireAt,
		}, fireAt)
		if err != nil {
			return err
		}

		if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
			// A concurrent writer re-registered this identity between our
			// delete and enqueue. Last writer wins; theirs is as good as ours.
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				s.log.Debug("lifecycle event re-registered concurrently",
					zap.Uint("booking_id", bookingID),
					zap.String("kind", string(ev.Kind)),
				)
				continue
			}
			return err
		}
	}

	return nil
}

func (s *AsynqScheduler) Cancel(_ context.Context, bookingID uint) error {
	for _, kind := range Kinds() {
		if err := s.deleteEvent(bookingID, kind); err != nil {
			return err
		}
	}
	return nil
}

func (s *AsynqScheduler) deleteEvent(bookingID uint, kind EventKind) error {
	err := s.inspector.DeleteTask(QueueName, TaskID(bookingID, kind))
	if err == nil ||
		errors.Is(err, asynq.ErrTaskNotFound) ||
		errors.Is(err, asynq.ErrQueueNotFound) {
		return nil
	}
	return err
}

func (s *AsynqScheduler) Close() error {
	return s.client.Close()
}

var _ Scheduler = (*AsynqScheduler)(nil)
