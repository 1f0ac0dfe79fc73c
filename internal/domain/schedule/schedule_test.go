package schedule

import (
	"testing"
	"time"

	"github.com/slotworks/salon-scheduler/internal/models"
)

func TestParseHM(t *testing.T) {
	if got := ParseHM("09:30"); got != 570 {
		t.Fatalf("ParseHM(09:30) = %d, want 570", got)
	}
	if got := ParseHM("00:00"); got != 0 {
		t.Fatalf("ParseHM(00:00) = %d, want 0", got)
	}
	if got := ParseHM("9h30"); got != -1 {
		t.Fatalf("ParseHM(9h30) = %d, want -1", got)
	}
	if got := ParseHM(""); got != -1 {
		t.Fatalf("ParseHM(empty) = %d, want -1", got)
	}
}

func TestWindowsFor_FiltersAndMerges(t *testing.T) {
	monday := 1
	rows := []models.WeeklySchedule{
		{Weekday: monday, Active: true, StartTime: "13:00", EndTime: "18:00"},
		{Weekday: monday, Active: true, StartTime: "09:00", EndTime: "12:00"},
		// Overlaps the afternoon block, must merge.
		{Weekday: monday, Active: true, StartTime: "17:00", EndTime: "19:00"},
		// Adjacent to the morning block, must merge.
		{Weekday: monday, Active: true, StartTime: "12:00", EndTime: "12:30"},
		// Ignored rows.
		{Weekday: monday, Active: false, StartTime: "20:00", EndTime: "22:00"},
		{Weekday: monday, Active: true, StartTime: "15:00", EndTime: "14:00"},
		{Weekday: 2, Active: true, StartTime: "08:00", EndTime: "10:00"},
	}

	windows := WindowsFor(rows, monday)
	if len(windows) != 2 {
		t.Fatalf("expected 2 merged windows, got %d: %+v", len(windows), windows)
	}

	if windows[0].StartMin != 9*60 || windows[0].EndMin != 12*60+30 {
		t.Fatalf("first window = %+v, want 09:00-12:30", windows[0])
	}
	if windows[1].StartMin != 13*60 || windows[1].EndMin != 19*60 {
		t.Fatalf("second window = %+v, want 13:00-19:00", windows[1])
	}
}

func TestWindowsFor_EmptyWeekday(t *testing.T) {
	rows := []models.WeeklySchedule{
		{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "17:00"},
	}
	if got := WindowsFor(rows, 0); got != nil {
		t.Fatalf("sunday has no rows, got %+v", got)
	}
}

func TestAnchor(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 3, 2, 15, 42, 0, 0, loc) // any instant of the day
	w := Window{StartMin: 9 * 60, EndMin: 17 * 60}

	start, end := w.Anchor(day, loc)

	wantStart := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)
	wantEnd := time.Date(2026, 3, 2, 17, 0, 0, 0, loc)

	if !start.Equal(wantStart) {
		t.Fatalf("start = %s, want %s", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Fatalf("end = %s, want %s", end, wantEnd)
	}
}

func TestExceptionsFor(t *testing.T) {
	loc := time.UTC
	from := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1)

	offs := []models.TimeOff{
		// Inside the day.
		{StartsAt: from.Add(10 * time.Hour), EndsAt: from.Add(12 * time.Hour)},
		// Spans midnight into the day; kept whole.
		{StartsAt: from.Add(-2 * time.Hour), EndsAt: from.Add(1 * time.Hour)},
		// Entirely before the day.
		{StartsAt: from.Add(-6 * time.Hour), EndsAt: from.Add(-4 * time.Hour)},
		// Degenerate.
		{StartsAt: from.Add(5 * time.Hour), EndsAt: from.Add(5 * time.Hour)},
	}

	out := ExceptionsFor(offs, from, to)
	if len(out) != 2 {
		t.Fatalf("expected 2 exceptions, got %d: %+v", len(out), out)
	}
	if !out[1].Start.Equal(from.Add(-2 * time.Hour)) {
		t.Fatal("midnight-spanning exception must be returned unclipped")
	}
}
