package lifecycle

import (
	"fmt"
	"time"
)

// EventKind names one deferred trigger of a booking's timeline. Together
// with the booking id it forms the stable identity used for idempotent
// scheduling and cancellation.
type EventKind string

const (
	EventConfirmation EventKind = "confirmation"
	EventReminder24h  EventKind = "reminder-24h"
	EventReminder2h   EventKind = "reminder-2h"
	EventReminder30m  EventKind = "reminder-30m"
	EventFollowup     EventKind = "followup-5m-after"
	EventMarkPast     EventKind = "mark-past"
)

// Kinds returns every event kind of a booking timeline, in firing order for
// a booking created well before its start.
func Kinds() []EventKind {
	return []EventKind{
		EventConfirmation,
		EventReminder24h,
		EventReminder2h,
		EventReminder30m,
		EventMarkPast,
		EventFollowup,
	}
}

// Event is one time-anchored trigger of the derived timeline.
type Event struct {
	Kind   EventKind
	FireAt time.Time
}

// Timeline derives the full event set from the booking interval. It is a
// deterministic function of (startsAt, endsAt); fire times already in the
// past are the scheduler's problem (clamped to immediate, never skipped).
func Timeline(createdAt, startsAt, endsAt time.Time) []Event {
	return []Event{
		{Kind: EventConfirmation, FireAt: createdAt},
		{Kind: EventReminder24h, FireAt: startsAt.Add(-24 * time.Hour)},
		{Kind: EventReminder2h, FireAt: startsAt.Add(-2 * time.Hour)},
		{Kind: EventReminder30m, FireAt: startsAt.Add(-30 * time.Minute)},
		{Kind: EventMarkPast, FireAt: endsAt.Add(1 * time.Minute)},
		{Kind: EventFollowup, FireAt: endsAt.Add(5 * time.Minute)},
	}
}

// TaskID is the durable identity of one event: re-registering it replaces
// the prior trigger instead of duplicating it.
func TaskID(bookingID uint, kind EventKind) string {
	return fmt.Sprintf("booking:%d:%s", bookingID, kind)
}
