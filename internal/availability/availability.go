// Package availability decides, per player, date and time, whether that
// player may be scheduled. Resolution is pure: it reads only the player's
// availability profile passed in, never shared state.
package availability

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/timeutil"
)

// IsAvailable applies the precedence order:
//  1. an empty profile means always available,
//  2. extra entries for the exact date take total precedence and
//     short-circuit evaluation,
//  3. otherwise recurring entries for the date's weekday decide,
//  4. no rule for this specific day defaults to available, even when the
//     player has rules for other days.
//
// All window tests are half-open [from,to) on minute granularity.
func IsAvailable(player club.Player, date, clock string) (bool, error) {
	if player.Availability.Empty() {
		return true, nil
	}

	minutes, err := timeutil.ParseClock(clock)
	if err != nil {
		return false, fmt.Errorf("invalid query time: %w", err)
	}

	var todaysExtra []club.DateSlot
	for _, slot := range player.Availability.Extra {
		if slot.Date == date {
			todaysExtra = append(todaysExtra, slot)
		}
	}
	if len(todaysExtra) > 0 {
		for _, slot := range todaysExtra {
			if inWindow(minutes, slot.From, slot.To) {
				return true, nil
			}
		}
		return false, nil
	}

	weekday, err := timeutil.WeekdayName(date)
	if err != nil {
		return false, err
	}
	var todaysRecurring []club.RecurringSlot
	for _, slot := range player.Availability.Recurring {
		if slot.Weekday == weekday {
			todaysRecurring = append(todaysRecurring, slot)
		}
	}
	if len(todaysRecurring) > 0 {
		for _, slot := range todaysRecurring {
			if inWindow(minutes, slot.From, slot.To) {
				return true, nil
			}
		}
		return false, nil
	}

	return true, nil
}

// inWindow tests minutes against a [from,to) window. Malformed windows in
// a stored profile are skipped rather than failing the resolution.
func inWindow(minutes int, from, to string) bool {
	fromMin, err := timeutil.ParseClock(from)
	if err != nil {
		log.Warn("Skipping malformed availability window", "from", from, "to", to)
		return false
	}
	toMin, err := timeutil.ParseClock(to)
	if err != nil {
		log.Warn("Skipping malformed availability window", "from", from, "to", to)
		return false
	}
	return fromMin <= minutes && minutes < toMin
}

// EligiblePlayers filters the pool down to players who are available at
// the given date and time and open to the requested match type.
func EligiblePlayers(players []club.Player, date, clock string, matchType club.MatchType) ([]club.Player, error) {
	var eligible []club.Player
	for _, player := range players {
		if !player.Plays(matchType) {
			continue
		}
		ok, err := IsAvailable(player, date, clock)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, player)
		}
	}
	return eligible, nil
}
