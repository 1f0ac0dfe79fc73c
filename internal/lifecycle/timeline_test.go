package lifecycle

import (
	"testing"
	"time"
)

func TestTimeline_Offsets(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)

	events := Timeline(created, start, end)
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}

	want := map[EventKind]time.Time{
		EventConfirmation: created,
		EventReminder24h:  start.Add(-24 * time.Hour),
		EventReminder2h:   start.Add(-2 * time.Hour),
		EventReminder30m:  start.Add(-30 * time.Minute),
		EventMarkPast:     end.Add(1 * time.Minute),
		EventFollowup:     end.Add(5 * time.Minute),
	}

	seen := map[EventKind]bool{}
	for _, ev := range events {
		fireAt, ok := want[ev.Kind]
		if !ok {
			t.Fatalf("unexpected event kind %q", ev.Kind)
		}
		if !ev.FireAt.Equal(fireAt) {
			t.Fatalf("%s fires at %s, want %s", ev.Kind, ev.FireAt, fireAt)
		}
		if seen[ev.Kind] {
			t.Fatalf("duplicate event kind %q", ev.Kind)
		}
		seen[ev.Kind] = true
	}
}

func TestKinds_CoversTimeline(t *testing.T) {
	now := time.Now()
	events := Timeline(now, now, now)

	kinds := map[EventKind]bool{}
	for _, k := range Kinds() {
		kinds[k] = true
	}

	if len(kinds) != len(events) {
		t.Fatalf("Kinds has %d entries, timeline emits %d", len(kinds), len(events))
	}
	for _, ev := range events {
		if !kinds[ev.Kind] {
			t.Fatalf("timeline kind %q missing from Kinds()", ev.Kind)
		}
	}
}

func TestTaskID(t *testing.T) {
	if got := TaskID(42, EventReminder2h); got != "booking:42:reminder-2h" {
		t.Fatalf("TaskID = %q", got)
	}
	// Identity is stable: same inputs, same id.
	if TaskID(42, EventReminder2h) != TaskID(42, EventReminder2h) {
		t.Fatal("TaskID must be deterministic")
	}
	if TaskID(42, EventReminder2h) == TaskID(43, EventReminder2h) {
		t.Fatal("different bookings must not share an identity")
	}
}
