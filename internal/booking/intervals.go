package booking

import (
	"github.com/google/uuid"

	"github.com/jmadsen/courtline/internal/timeutil"
)

// parseRange validates and converts a clock range into minutes. A range
// with from >= to, or a time that does not parse, is an ErrInvalidRange.
func parseRange(from, to string) (int, int, error) {
	fromMin, err := timeutil.ParseClock(from)
	if err != nil {
		return 0, 0, ErrInvalidRange
	}
	toMin, err := timeutil.ParseClock(to)
	if err != nil {
		return 0, 0, ErrInvalidRange
	}
	if fromMin >= toMin {
		return 0, 0, ErrInvalidRange
	}
	return fromMin, toMin, nil
}

// overlaps tests two half-open minute intervals.
func overlaps(aFrom, aTo, bFrom, bTo int) bool {
	return aFrom < bTo && bFrom < aTo
}

// splitAround partitions existing reservations relative to [from,to) in the
// given scope. Reservations in a different scope, or without overlap, are
// kept untouched. Each overlapping reservation is trimmed: the part before
// the range and the part after it survive as residual fragments carrying
// the original's category, label, occupants and price; the middle is
// discarded. Minute comparison throughout, never string comparison.
func splitAround(existing []Reservation, scope Scope, from, to int) (kept []Reservation, fragments []Reservation) {
	for _, res := range existing {
		if !res.Scope.Matches(scope) {
			kept = append(kept, res)
			continue
		}
		resFrom, err := timeutil.ParseClock(res.From)
		if err != nil {
			kept = append(kept, res)
			continue
		}
		resTo, err := timeutil.ParseClock(res.To)
		if err != nil {
			kept = append(kept, res)
			continue
		}
		if !overlaps(resFrom, resTo, from, to) {
			kept = append(kept, res)
			continue
		}
		if resFrom < from {
			head := res
			head.ID = uuid.New().String()
			head.To = timeutil.FormatClock(from)
			fragments = append(fragments, head)
		}
		if resTo > to {
			tail := res
			tail.ID = uuid.New().String()
			tail.From = timeutil.FormatClock(to)
			fragments = append(fragments, tail)
		}
	}
	return kept, fragments
}
