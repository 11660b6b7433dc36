package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jmadsen/courtline/internal/availability"
	"github.com/jmadsen/courtline/internal/booking"
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/compat"
	"github.com/jmadsen/courtline/internal/timeutil"
)

// slotDurationMinutes is the length of every generated match slot.
const slotDurationMinutes = 90

// New creates a Generator. The random source only drives doubles team
// shuffling; pass a fixed source for deterministic output.
func New(clubStore club.ClubStore, bookingStore booking.BookingStore, src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{
		club:    clubStore,
		booking: bookingStore,
		rand:    rand.New(src),
	}
}

// GenerateMatches produces proposals for one date. weekCounts, when
// non-nil, enables weekly-quota mode: players whose running count already
// meets their matches-per-week quota are dropped, and counts are bumped
// for every selected player. When slots is nil the date's stored slot
// template is used, falling back to the default slot list.
func (g *Generator) GenerateMatches(date string, matchType club.MatchType, weekCounts map[string]int, slots []string) ([]Proposal, error) {
	settings, err := g.club.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	players, err := g.club.GetAllPlayers()
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	courts, err := g.playableCourts(settings.CurrentSeason)
	if err != nil {
		return nil, err
	}

	if slots == nil {
		slots, err = g.club.GetSlotsForDate(date)
		if err != nil {
			return nil, err
		}
		if len(slots) == 0 {
			slots = timeutil.DefaultSlots()
		}
	}

	var proposals []Proposal
	for _, start := range slots {
		end, err := timeutil.AddMinutes(start, slotDurationMinutes)
		if err != nil {
			return nil, fmt.Errorf("invalid slot %q: %w", start, err)
		}

		freeCourts, err := g.freeCourts(courts, date, start, end)
		if err != nil {
			return nil, err
		}
		if len(freeCourts) == 0 {
			continue
		}

		eligible, err := availability.EligiblePlayers(players, date, start, matchType)
		if err != nil {
			return nil, err
		}
		if weekCounts != nil {
			eligible = underQuota(eligible, weekCounts)
		}
		if len(eligible) < matchType.PlayerCount() {
			continue
		}

		var slotProposals []Proposal
		if matchType == club.MatchTypeDoubles {
			slotProposals = g.formDoubles(eligible, freeCourts, date, start, settings.MinCompatibility)
		} else {
			slotProposals = g.pairSingles(eligible, freeCourts, date, start, settings)
		}

		if weekCounts != nil {
			for _, proposal := range slotProposals {
				for _, playerID := range proposal.PlayerIDs {
					weekCounts[playerID]++
				}
			}
		}
		proposals = append(proposals, slotProposals...)
	}

	log.Info("Generated match proposals", "date", date, "type", matchType, "count", len(proposals))
	return proposals, nil
}

// GenerateWeeklyMatches runs generation for 7 consecutive days starting at
// startDate. The quota map spans the whole week: a player counted on
// Monday stays counted on Sunday.
func (g *Generator) GenerateWeeklyMatches(startDate string, matchType club.MatchType) ([]Proposal, error) {
	weekCounts := make(map[string]int)
	var proposals []Proposal
	for day := 0; day < 7; day++ {
		date, err := timeutil.AddDays(startDate, day)
		if err != nil {
			return nil, err
		}
		daily, err := g.GenerateMatches(date, matchType, weekCounts, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to generate matches for %s: %w", date, err)
		}
		proposals = append(proposals, daily...)
	}
	return proposals, nil
}

// playableCourts returns courts that are available and belong to the
// current season, in court-list order.
func (g *Generator) playableCourts(season club.Season) ([]club.Court, error) {
	courts, err := g.club.GetAllCourts()
	if err != nil {
		return nil, fmt.Errorf("failed to load courts: %w", err)
	}
	var playable []club.Court
	for _, court := range courts {
		if court.Available && court.Season == season {
			playable = append(playable, court)
		}
	}
	return playable, nil
}

func (g *Generator) freeCourts(courts []club.Court, date, from, to string) ([]club.Court, error) {
	var free []club.Court
	for _, court := range courts {
		ok, err := g.booking.IsFree(court.ID, booking.ExactDate(date), from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to check court %s: %w", court.ID, err)
		}
		if ok {
			free = append(free, court)
		}
	}
	return free, nil
}

// underQuota drops players whose running weekly count has reached their
// quota. A quota of zero means the player never set one.
func underQuota(players []club.Player, weekCounts map[string]int) []club.Player {
	var kept []club.Player
	for _, player := range players {
		if player.MatchesPerWeek > 0 && weekCounts[player.ID] >= player.MatchesPerWeek {
			continue
		}
		kept = append(kept, player)
	}
	return kept
}

// pairSingles enumerates all legal pairs, sorts them by descending score
// and selects greedily. Ties keep enumeration order; this is a heuristic,
// not an optimal assignment. Pairs beyond the free court count are
// silently dropped.
func (g *Generator) pairSingles(eligible []club.Player, freeCourts []club.Court, date, start string, settings club.Settings) []Proposal {
	var candidates []pair
	for i := 0; i < len(eligible); i++ {
		for j := i + 1; j < len(eligible); j++ {
			diff := eligible[i].Level.Rank() - eligible[j].Level.Rank()
			if diff < 0 {
				diff = -diff
			}
			if diff > settings.MaxLevelDifference {
				continue
			}
			score := compat.Score(eligible[i], eligible[j])
			if score < settings.MinCompatibility {
				continue
			}
			candidates = append(candidates, pair{a: i, b: j, score: score})
		}
	}
	sortPairsByScore(candidates)

	used := make([]bool, len(eligible))
	var proposals []Proposal
	for _, candidate := range candidates {
		if len(proposals) >= len(freeCourts) {
			break
		}
		if used[candidate.a] || used[candidate.b] {
			continue
		}
		used[candidate.a] = true
		used[candidate.b] = true
		proposals = append(proposals, Proposal{
			ID:        uuid.New().String(),
			Date:      date,
			Time:      start,
			Type:      club.MatchTypeSingles,
			CourtID:   freeCourts[len(proposals)].ID,
			PlayerIDs: []string{eligible[candidate.a].ID, eligible[candidate.b].ID},
			Score:     candidate.score,
		})
	}
	return proposals
}

// sortPairsByScore sorts descending by score, stable so enumeration order
// breaks ties.
func sortPairsByScore(pairs []pair) {
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].score > pairs[j-1].score; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
}

// formDoubles shuffles the pool and pops groups of four. A group stands
// only if all six pairwise scores clear the threshold; rejected groups are
// discarded, not requeued, so shuffle order can leave compatible players
// unmatched. The group score is the rounded mean of the six pair scores.
func (g *Generator) formDoubles(eligible []club.Player, freeCourts []club.Court, date, start string, minCompatibility int) []Proposal {
	pool := make([]club.Player, len(eligible))
	copy(pool, eligible)
	g.rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	var proposals []Proposal
	for len(pool) >= 4 && len(proposals) < len(freeCourts) {
		group := pool[:4]
		pool = pool[4:]

		total := 0
		compatible := true
		for i := 0; i < 4 && compatible; i++ {
			for j := i + 1; j < 4; j++ {
				score := compat.Score(group[i], group[j])
				if score < minCompatibility {
					compatible = false
					break
				}
				total += score
			}
		}
		if !compatible {
			continue
		}

		proposals = append(proposals, Proposal{
			ID:        uuid.New().String(),
			Date:      date,
			Time:      start,
			Type:      club.MatchTypeDoubles,
			CourtID:   freeCourts[len(proposals)].ID,
			PlayerIDs: []string{group[0].ID, group[1].ID, group[2].ID, group[3].ID},
			Score:     int(math.Round(float64(total) / 6)),
		})
	}
	return proposals
}
