package booking

import (
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func TestOverlaps_HalfOpen(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"partial", at(9, 0), at(10, 0), at(9, 30), at(10, 30), true},
		{"contained", at(9, 0), at(10, 0), at(9, 15), at(9, 45), true},
		{"touching end-to-start", at(9, 0), at(10, 0), at(10, 0), at(11, 0), false},
		{"touching start-to-end", at(10, 0), at(11, 0), at(9, 0), at(10, 0), false},
		{"disjoint", at(9, 0), at(10, 0), at(11, 0), at(12, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd); got != tc.want {
				t.Fatalf("Overlaps (swapped) = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOverlapsAny(t *testing.T) {
	committed := []Interval{
		{Start: at(9, 0), End: at(9, 30)},
		{Start: at(14, 0), End: at(15, 0)},
	}

	if OverlapsAny(at(9, 30), at(10, 0), committed) {
		t.Fatal("adjacent candidate should not overlap")
	}
	if !OverlapsAny(at(14, 30), at(14, 45), committed) {
		t.Fatal("contained candidate should overlap")
	}
	if OverlapsAny(at(10, 0), at(11, 0), nil) {
		t.Fatal("no committed intervals, no overlap")
	}
}

func TestInflate(t *testing.T) {
	from, to := Inflate(at(10, 0), at(10, 30), 10, 5)

	if !from.Equal(at(9, 50)) {
		t.Fatalf("inflated start = %s, want 09:50", from.Format("15:04"))
	}
	if !to.Equal(at(10, 35)) {
		t.Fatalf("inflated end = %s, want 10:35", to.Format("15:04"))
	}

	// Zero buffers are the identity.
	from, to = Inflate(at(10, 0), at(10, 30), 0, 0)
	if !from.Equal(at(10, 0)) || !to.Equal(at(10, 30)) {
		t.Fatal("zero buffers must not move the interval")
	}
}

func TestInflatedAdjacencyConflicts(t *testing.T) {
	// Back-to-back bookings are fine without buffers but conflict once a
	// buffer inflates the candidate.
	committed := []Interval{{Start: at(10, 0), End: at(10, 30)}}

	start, end := at(10, 30), at(11, 0)
	if OverlapsAny(start, end, committed) {
		t.Fatal("back-to-back without buffers must be allowed")
	}

	bFrom, bTo := Inflate(start, end, 10, 0)
	if !OverlapsAny(bFrom, bTo, committed) {
		t.Fatal("10 minute lead buffer must reject the adjacent slot")
	}
}
