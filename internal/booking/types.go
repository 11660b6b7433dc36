package booking

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmadsen/courtline/internal/timeutil"
)

// store handles database operations for reservations.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	// ErrInvalidRange is returned when a time range has from >= to or a
	// time that does not parse. Rejected before any mutation.
	ErrInvalidRange = errors.New("invalid time range")
	// ErrCourtNotFound is returned when a reservation addresses a court id
	// that does not exist.
	ErrCourtNotFound = errors.New("court not found")
	// ErrUnknownCategory is returned for a reservation category outside
	// the fixed activity set.
	ErrUnknownCategory = errors.New("unknown reservation category")
	// ErrInvalidScope is returned when a scope has neither a date nor a
	// weekday, or both.
	ErrInvalidScope = errors.New("invalid scope")
	// ErrTooManyOccupants is returned when a reservation carries more than
	// four occupant names.
	ErrTooManyOccupants = errors.New("a reservation holds at most four occupants")
)

// Category classifies a reservation. Anything other than a plain match is
// a manually entered activity.
type Category string

const (
	CategoryMatch       Category = "match"
	CategoryLesson      Category = "lesson"
	CategoryTournament  Category = "tournament"
	CategoryOpenDay     Category = "open_day"
	CategoryPromo       Category = "promo"
	CategoryMaintenance Category = "maintenance"
)

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryMatch, CategoryLesson, CategoryTournament, CategoryOpenDay, CategoryPromo, CategoryMaintenance:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Scope is the key space a reservation's overlap check runs within: either
// one concrete calendar date, or a recurring weekday for standing date-less
// entries. Exactly one of the two fields is set. Date-scoped and
// weekday-scoped entries are never compared against each other.
type Scope struct {
	Date    string `json:"date,omitempty"`
	Weekday string `json:"weekday,omitempty"`
}

// ExactDate builds a scope for one calendar date.
func ExactDate(date string) Scope {
	return Scope{Date: date}
}

// Weekly builds a recurring weekday scope.
func Weekly(weekday string) Scope {
	return Scope{Weekday: weekday}
}

// IsDate reports whether the scope addresses a concrete date.
func (s Scope) IsDate() bool {
	return s.Date != ""
}

// Validate checks that exactly one variant is set and that it parses.
func (s Scope) Validate() error {
	if s.Date != "" && s.Weekday != "" {
		return fmt.Errorf("%w: both date and weekday set", ErrInvalidScope)
	}
	if s.Date != "" {
		if _, err := timeutil.WeekdayName(s.Date); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidScope, err)
		}
		return nil
	}
	for _, day := range timeutil.Weekdays {
		if s.Weekday == day {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidScope, s.Weekday)
}

// Matches reports whether a reservation in scope s belongs to the query
// scope q. Date entries match on date only; weekday entries match on
// weekday only.
func (s Scope) Matches(q Scope) bool {
	if q.IsDate() {
		return s.IsDate() && s.Date == q.Date
	}
	return !s.IsDate() && s.Weekday == q.Weekday
}

func (s Scope) String() string {
	if s.IsDate() {
		return s.Date
	}
	return s.Weekday
}

// Reservation is one booked interval on a court. From/To are minute-
// granular clock strings on the same day; the interval is half-open.
type Reservation struct {
	ID        string   `json:"id"`
	CourtID   string   `json:"court_id"`
	Scope     Scope    `json:"scope"`
	From      string   `json:"from"`
	To        string   `json:"to"`
	Category  Category `json:"category"`
	Label     string   `json:"label,omitempty"`
	Occupants []string `json:"occupants,omitempty"`
	Price     *float64 `json:"price,omitempty"`
}
