package generator

import (
	"math/rand"

	"github.com/jmadsen/courtline/internal/booking"
	"github.com/jmadsen/courtline/internal/club"
)

// Proposal is a candidate match produced by generation. It becomes a
// scheduled match only on explicit confirmation.
type Proposal struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	Type      club.MatchType `json:"type"`
	CourtID   string         `json:"court_id"`
	PlayerIDs []string       `json:"player_ids"`
	Score     int            `json:"score"`
	Confirmed bool           `json:"confirmed"`
}

// Generator turns pools of eligible players into match proposals. Each
// generation call re-fetches club state; nothing is cached across calls
// because the backing store can be swapped out between invocations.
type Generator struct {
	club    club.ClubStore
	booking booking.BookingStore
	rand    *rand.Rand
}

// pair is a scored unordered candidate pairing.
type pair struct {
	a, b  int // indices into the eligible pool
	score int
}
