package availability

import (
	"context"
	"testing"
	"time"

	"github.com/slotworks/salon-scheduler/internal/models"
)

type fakeReader struct {
	schedules    []models.WeeklySchedule
	timeOffs     []models.TimeOff
	appointments []models.Appointment
}

func (f *fakeReader) ListWeeklySchedules(_ context.Context, _ uint) ([]models.WeeklySchedule, error) {
	return f.schedules, nil
}

func (f *fakeReader) ListTimeOff(_ context.Context, _ uint, _, _ time.Time) ([]models.TimeOff, error) {
	return f.timeOffs, nil
}

func (f *fakeReader) ListOpenAppointments(_ context.Context, _ uint, _, _ time.Time) ([]models.Appointment, error) {
	return f.appointments, nil
}

func testBranch() *models.Branch {
	return &models.Branch{
		ID:                  1,
		Timezone:            "America/Mexico_City",
		MinBookingNoticeMin: 120,
		MaxBookingAheadDays: 60,
		SlotGranularityMin:  30,
	}
}

func mx(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func newTestResolver(repo *fakeReader, now time.Time) *Resolver {
	return &Resolver{
		repo: repo,
		now:  func(_ string) time.Time { return now },
	}
}

// Monday 2026-03-02 with a 09:00-17:00 schedule and 30 minute granularity.
func TestResolve_FullDayGrid(t *testing.T) {
	loc := mx(t)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, loc)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)

	repo := &fakeReader{
		schedules: []models.WeeklySchedule{
			{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "17:00"},
		},
	}

	slots, err := newTestResolver(repo, now).Execute(context.Background(), ResolveInput{
		Branch:             testBranch(),
		StaffID:            5,
		ServiceDurationMin: 60,
		Date:               day,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// 09:00 .. 16:00 inclusive at 30 minute steps: the 16:00 candidate ends
	// exactly at 17:00 and fits; 16:30 would spill over.
	if len(slots) != 15 {
		t.Fatalf("expected 15 slots, got %d", len(slots))
	}
	if !slots[0].Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("first slot = %s", slots[0])
	}
	if !slots[len(slots)-1].Equal(day.Add(16 * time.Hour)) {
		t.Fatalf("last slot = %s", slots[len(slots)-1])
	}
}

func TestResolve_ExcludesBusyAndTimeOff(t *testing.T) {
	loc := mx(t)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, loc)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)

	repo := &fakeReader{
		schedules: []models.WeeklySchedule{
			{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "12:00"},
		},
		appointments: []models.Appointment{
			{StartsAt: day.Add(9 * time.Hour), EndsAt: day.Add(9*time.Hour + 30*time.Minute)},
		},
		timeOffs: []models.TimeOff{
			{StartsAt: day.Add(11 * time.Hour), EndsAt: day.Add(12 * time.Hour)},
		},
	}

	slots, err := newTestResolver(repo, now).Execute(context.Background(), ResolveInput{
		Branch:             testBranch(),
		StaffID:            5,
		ServiceDurationMin: 30,
		Date:               day,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// 09:00 booked, 11:00+ off. Remaining: 09:30, 10:00, 10:30.
	want := []time.Time{
		day.Add(9*time.Hour + 30*time.Minute),
		day.Add(10 * time.Hour),
		day.Add(10*time.Hour + 30*time.Minute),
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(slots), slots)
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Fatalf("slot[%d] = %s, want %s", i, slots[i], want[i])
		}
	}
}

func TestResolve_BuffersShrinkTheGrid(t *testing.T) {
	loc := mx(t)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, loc)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)

	branch := testBranch()
	branch.BufferAfterMin = 15

	repo := &fakeReader{
		schedules: []models.WeeklySchedule{
			{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "11:00"},
		},
		appointments: []models.Appointment{
			{StartsAt: day.Add(10 * time.Hour), EndsAt: day.Add(10*time.Hour + 30*time.Minute)},
		},
	}

	slots, err := newTestResolver(repo, now).Execute(context.Background(), ResolveInput{
		Branch:             branch,
		StaffID:            5,
		ServiceDurationMin: 30,
		Date:               day,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Without the buffer 09:30 would fit back-to-back against the 10:00
	// booking; with 15 minutes of tail buffer it conflicts.
	for _, s := range slots {
		if s.Equal(day.Add(9*time.Hour + 30*time.Minute)) {
			t.Fatal("09:30 must be excluded by the tail buffer")
		}
	}
}

func TestResolve_NoticeWindowCutsSameDay(t *testing.T) {
	loc := mx(t)
	// Resolving for today at 09:00 with 120 minutes notice: slots before
	// 11:00 are gone.
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)
	day := now

	repo := &fakeReader{
		schedules: []models.WeeklySchedule{
			{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "13:00"},
		},
	}

	slots, err := newTestResolver(repo, now).Execute(context.Background(), ResolveInput{
		Branch:             testBranch(),
		StaffID:            5,
		ServiceDurationMin: 30,
		Date:               day,
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(slots) == 0 {
		t.Fatal("expected afternoon slots")
	}
	earliest := now.Add(120 * time.Minute)
	for _, s := range slots {
		if s.Before(earliest) {
			t.Fatalf("slot %s violates the notice window", s)
		}
	}
}

func TestResolve_DayOutsideWindowIsEmpty(t *testing.T) {
	loc := mx(t)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, loc)

	repo := &fakeReader{
		schedules: []models.WeeklySchedule{
			{Weekday: 1, Active: true, StartTime: "09:00", EndTime: "17:00"},
		},
	}
	r := newTestResolver(repo, now)

	// Yesterday.
	slots, err := r.Execute(context.Background(), ResolveInput{
		Branch:             testBranch(),
		StaffID:            5,
		ServiceDurationMin: 30,
		Date:               now.AddDate(0, 0, -1),
	})
	if err != nil || len(slots) != 0 {
		t.Fatalf("past day: slots=%v err=%v", slots, err)
	}

	// Beyond the look-ahead horizon.
	slots, err = r.Execute(context.Background(), ResolveInput{
		Branch:             testBranch(),
		StaffID:            5,
		ServiceDurationMin: 30,
		Date:               now.AddDate(0, 0, 90),
	})
	if err != nil || len(slots) != 0 {
		t.Fatalf("far future day: slots=%v err=%v", slots, err)
	}
}

func TestResolve_NoScheduleNoSlots(t *testing.T) {
	loc := mx(t)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, loc)

	slots, err := newTestResolver(&fakeReader{}, now).Execute(context.Background(), ResolveInput{
		Branch:             testBranch(),
		StaffID:            5,
		ServiceDurationMin: 30,
		Date:               now.AddDate(0, 0, 1),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("no recurring schedule must mean no slots, got %v", slots)
	}
}
