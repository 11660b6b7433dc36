// Package timeutil handles the clock and date formats used throughout
// the scheduling engine: "HH:MM" clocks at minute granularity and
// "YYYY-MM-DD" dates. A "." separator in clocks is accepted and
// normalized to ":".
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Weekdays lists the weekday names used in recurring rules, Monday first.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// ParseClock parses a "HH:MM" or "HH.MM" clock into minutes since
// midnight. "24:00" is accepted as the exclusive end of a window that
// runs to midnight, so a slot starting late in the evening still has a
// representable end.
func ParseClock(s string) (int, error) {
	normalized := strings.ReplaceAll(s, ".", ":")
	var h, m int
	if _, err := fmt.Sscanf(normalized, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	if h == 24 && m == 0 {
		return 24 * 60, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes shifts a clock forward by delta minutes.
func AddMinutes(clock string, delta int) (string, error) {
	m, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return FormatClock(m + delta), nil
}

// WeekdayName returns the lowercase weekday name for a date.
func WeekdayName(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	idx := (int(t.Weekday()) + 6) % 7
	return Weekdays[idx], nil
}

// AddDays shifts a date forward by n days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, n).Format(dateLayout), nil
}

// DefaultSlots returns the standard set of bookable start times, hourly
// on the half hour from 08:30 through 22:30.
func DefaultSlots() []string {
	slots := make([]string, 0, 15)
	for h := 8; h <= 22; h++ {
		slots = append(slots, fmt.Sprintf("%02d:30", h))
	}
	return slots
}
