package scheduling

import "time"

// Overlaps reports whether the half-open intervals [startA, startA+durA) and
// [startB, startB+durB) intersect. Back-to-back intervals (one ending exactly
// when the other starts) do not overlap.
func Overlaps(startA time.Time, durA time.Duration, startB time.Time, durB time.Duration) bool {
	endA := startA.Add(durA)
	endB := startB.Add(durB)
	return startA.Before(endB) && endA.After(startB)
}

// SameDay reports whether a and b fall on the same calendar day. Comparison
// uses each value's own wall-clock fields; there is no zone conversion.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func sessionDuration(durationMinutes int) time.Duration {
	return time.Duration(durationMinutes) * time.Minute
}
