package lifecycle

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeLifecycleEvent = "lifecycle:event"

// QueueName isolates booking lifecycle events from any future task types.
const QueueName = "lifecycle"

const maxRetry = 5

// EventPayload travels with the deferred task. Handlers must treat it as a
// hint: current booking state is re-read at fire time.
type EventPayload struct {
	BookingID uint      `json:"booking_id"`
	Kind      EventKind `json:"kind"`
	FireAt    time.Time `json:"fire_at"`
}

func NewLifecycleTask(payload EventPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}

	task := asynq.NewTask(TypeLifecycleEvent, b)
	opts := []asynq.Option{
		asynq.TaskID(TaskID(payload.BookingID, payload.Kind)),
		asynq.Queue(QueueName),
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(maxRetry),
	}

	return task, opts, nil
}
