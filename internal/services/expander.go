package services

import (
	"iter"

	"fintrack/internal/core"
)

// Occurrences yields, in ascending order, every date of the series anchored
// at anchor that falls inside w (both ends included).
//
// FrequencyOnce yields the anchor itself when w contains it. Unknown
// frequencies, zero anchors and invalid windows yield nothing. The sequence
// always terminates: anchors long before w are fast-forwarded, so the cost
// is proportional to the number of periods inside w.
func Occurrences(anchor core.Date, frequency core.Frequency, w core.DateWindow) iter.Seq[core.Date] {
	return func(yield func(core.Date) bool) {
		if anchor.IsZero() || !w.Valid() || anchor.After(w.End) {
			return
		}
		if frequency == core.FrequencyOnce {
			if w.Contains(anchor) {
				yield(anchor)
			}
			return
		}
		stepper, ok := recurrenceSteppers[frequency]
		if !ok {
			return
		}

		cursor := anchor
		if cursor.Before(w.Start) {
			cursor = stepper.Seek(cursor, w.Start)
		}
		for !cursor.After(w.End) {
			if !cursor.Before(w.Start) && !yield(cursor) {
				return
			}
			cursor, _ = AdvanceByPeriod(cursor, frequency)
		}
	}
}

// Expand collects Occurrences into a slice. The result is never nil.
func Expand(anchor core.Date, frequency core.Frequency, w core.DateWindow) []core.Date {
	out := []core.Date{}
	for d := range Occurrences(anchor, frequency, w) {
		out = append(out, d)
	}
	return out
}

// CountOccurrences returns how many dates Occurrences would yield.
func CountOccurrences(anchor core.Date, frequency core.Frequency, w core.DateWindow) int {
	n := 0
	for range Occurrences(anchor, frequency, w) {
		n++
	}
	return n
}
