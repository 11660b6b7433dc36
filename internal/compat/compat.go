// Package compat derives a 0-100 pairing score between two players from
// their veto/preference lists and stored history, and adjusts the history
// from match feedback.
package compat

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/jmadsen/courtline/internal/club"
)

// ErrInvalidRating is returned for feedback ratings outside 1-5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

const (
	scoreVeto    = 0
	scoreMutual  = 100
	scoreOneWay  = 80
	scoreNeutral = 50
)

// Score computes the compatibility between two players. Precedence:
// a veto on either side always wins, then mutual preference, then
// one-directional preference, then a stored historical score, then the
// neutral default.
func Score(a, b club.Player) int {
	if contains(a.Avoid, b.ID) || contains(b.Avoid, a.ID) {
		return scoreVeto
	}
	aPrefers := contains(a.Preferred, b.ID)
	bPrefers := contains(b.Preferred, a.ID)
	if aPrefers && bPrefers {
		return scoreMutual
	}
	if aPrefers || bPrefers {
		return scoreOneWay
	}
	if s, ok := a.Scores[b.ID]; ok {
		return s
	}
	if s, ok := b.Scores[a.ID]; ok {
		return s
	}
	return scoreNeutral
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Model resolves player ids through the club store before scoring.
type Model struct {
	store club.ClubStore
}

// New creates a compatibility model backed by the club store.
func New(store club.ClubStore) *Model {
	return &Model{store: store}
}

// GetCompatibility scores a pair addressed by id.
func (m *Model) GetCompatibility(playerA, playerB string) (int, error) {
	a, err := m.store.GetPlayer(playerA)
	if err != nil {
		return 0, err
	}
	b, err := m.store.GetPlayer(playerB)
	if err != nil {
		return 0, err
	}
	return Score(*a, *b), nil
}

// ApplyFeedback nudges every pairwise historical score among a match's
// participants by (rating-3)*5, clamped to [0,100]. It is applied once per
// recorded result. Preference and avoid lists are never touched, so a veto
// still wins on the next scoring.
func (m *Model) ApplyFeedback(matchID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, rating)
	}
	match, err := m.store.GetMatch(matchID)
	if err != nil {
		return err
	}

	delta := (rating - 3) * 5
	for i := 0; i < len(match.PlayerIDs); i++ {
		for j := i + 1; j < len(match.PlayerIDs); j++ {
			a, err := m.store.GetPlayer(match.PlayerIDs[i])
			if err != nil {
				log.Warn("Skipping feedback for missing player", "playerID", match.PlayerIDs[i], "matchID", matchID)
				continue
			}
			b, err := m.store.GetPlayer(match.PlayerIDs[j])
			if err != nil {
				log.Warn("Skipping feedback for missing player", "playerID", match.PlayerIDs[j], "matchID", matchID)
				continue
			}

			base := scoreNeutral
			if s, ok := a.Scores[b.ID]; ok {
				base = s
			} else if s, ok := b.Scores[a.ID]; ok {
				base = s
			}
			adjusted := clamp(base+delta, 0, 100)
			if err := m.store.SetPairScore(a.ID, b.ID, adjusted); err != nil {
				return fmt.Errorf("failed to store adjusted score for %s/%s: %w", a.ID, b.ID, err)
			}
			log.Debug("Adjusted pair score", "a", a.ID, "b", b.ID, "from", base, "to", adjusted, "rating", rating)
		}
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
