package club

import (
	"database/sql"
	"errors"
	"sync"
)

// store handles all database operations for the club.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	// ErrPlayerNotFound is returned when a player id does not exist.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrCourtNotFound is returned when a court id does not exist.
	ErrCourtNotFound = errors.New("court not found")
	// ErrMatchNotFound is returned when a scheduled match id does not exist.
	ErrMatchNotFound = errors.New("match not found")
	// ErrPreferenceConflict is returned when a player lists the same id in
	// both the preferred and avoid sets. The two sets are mutually
	// exclusive and a conflict is rejected at write time.
	ErrPreferenceConflict = errors.New("player id present in both preferred and avoid sets")
)

// UnknownPlayerName is the placeholder used when a scheduled match
// references a player id that no longer exists.
const UnknownPlayerName = "unknown player"

// Level is a player's skill level. Levels are ordered; Rank gives the
// position used for level-difference checks.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelCompetitive  Level = "competitive"
)

// Rank returns the ordinal of the level, beginner first. Unknown levels
// rank as beginner.
func (l Level) Rank() int {
	switch l {
	case LevelIntermediate:
		return 1
	case LevelAdvanced:
		return 2
	case LevelCompetitive:
		return 3
	default:
		return 0
	}
}

// MatchType distinguishes singles from doubles.
type MatchType string

const (
	MatchTypeSingles MatchType = "singles"
	MatchTypeDoubles MatchType = "doubles"
)

// PlayerCount returns the number of players a match of this type needs.
func (t MatchType) PlayerCount() int {
	if t == MatchTypeDoubles {
		return 4
	}
	return 2
}

// Season classifies courts into the two playing seasons.
type Season string

const (
	SeasonSummer Season = "summer"
	SeasonWinter Season = "winter"
)

// RecurringSlot is a weekly availability window.
type RecurringSlot struct {
	Weekday string `json:"weekday"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// DateSlot is an availability window for one specific date. Date-specific
// entries take precedence over recurring ones.
type DateSlot struct {
	Date string `json:"date"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Availability is a player's availability profile. An empty profile means
// the player is always available.
type Availability struct {
	Recurring []RecurringSlot `json:"recurring,omitempty"`
	Extra     []DateSlot      `json:"extra,omitempty"`
}

// Empty reports whether the profile carries no rules at all.
func (a Availability) Empty() bool {
	return len(a.Recurring) == 0 && len(a.Extra) == 0
}

// Player is a club member eligible for match generation.
type Player struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Level          Level          `json:"level"`
	PlaysSingles   bool           `json:"plays_singles"`
	PlaysDoubles   bool           `json:"plays_doubles"`
	MatchesPerWeek int            `json:"matches_per_week"`
	Member         bool           `json:"member"`
	Availability   Availability   `json:"availability"`
	Preferred      []string       `json:"preferred,omitempty"`
	Avoid          []string       `json:"avoid,omitempty"`
	Scores         map[string]int `json:"scores,omitempty"`
}

// Plays reports whether the player is open to the given match type.
func (p Player) Plays(t MatchType) bool {
	if t == MatchTypeDoubles {
		return p.PlaysDoubles
	}
	return p.PlaysSingles
}

// Court is a bookable playing surface.
type Court struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Season          Season `json:"season"`
	Surface         string `json:"surface"`
	CoveredInWinter bool   `json:"covered_in_winter"`
	Available       bool   `json:"available"`
}

// Settings are the tunables the generator reads on every run.
type Settings struct {
	MinCompatibility   int    `json:"min_compatibility"`
	MaxLevelDifference int    `json:"max_level_difference"`
	CurrentSeason      Season `json:"current_season"`
}

// DefaultSettings returns the settings used until an operator changes them.
func DefaultSettings() Settings {
	return Settings{
		MinCompatibility:   30,
		MaxLevelDifference: 1,
		CurrentSeason:      SeasonSummer,
	}
}

// ProcessingStatus tracks a confirmed match through the notification
// pipeline.
type ProcessingStatus string

const (
	StatusNew       ProcessingStatus = "NEW"
	StatusNotified  ProcessingStatus = "NOTIFIED"
	StatusCompleted ProcessingStatus = "COMPLETED"
)

// ScheduledMatch is a confirmed match occupying a court. From the
// reservation store's point of view it is an opaque busy interval.
type ScheduledMatch struct {
	ID               string           `json:"id"`
	Date             string           `json:"date"`
	Time             string           `json:"time"`
	Type             MatchType        `json:"type"`
	CourtID          string           `json:"court_id"`
	PlayerIDs        []string         `json:"player_ids"`
	PlayerNames      []string         `json:"player_names,omitempty"`
	Score            int              `json:"score"`
	Confirmed        bool             `json:"confirmed"`
	ProcessingStatus ProcessingStatus `json:"processing_status,omitempty"`
}
