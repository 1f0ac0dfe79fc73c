package booking

import "time"

// Interval is a half-open [Start, End) span of absolute time.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps applies the strict half-open rule: [aStart,aEnd) and
// [bStart,bEnd) overlap iff aStart < bEnd && aEnd > bStart. Touching
// intervals do not overlap; adjacency is permitted. This is the single
// comparison used for appointment, time-off and buffer checks. Buffers
// are modeled by inflating the candidate, never by changing the rule.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// OverlapsAny reports whether [start,end) overlaps any committed interval.
func OverlapsAny(start, end time.Time, committed []Interval) bool {
	for _, iv := range committed {
		if Overlaps(start, end, iv.Start, iv.End) {
			return true
		}
	}
	return false
}

// Inflate widens the candidate interval by the branch buffers, in minutes.
func Inflate(start, end time.Time, bufferBeforeMin, bufferAfterMin int) (time.Time, time.Time) {
	return start.Add(-time.Duration(bufferBeforeMin) * time.Minute),
		end.Add(time.Duration(bufferAfterMin) * time.Minute)
}
