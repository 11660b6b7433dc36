package club

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/jmadsen/courtline/internal/timeutil"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

// UpsertPlayer inserts a new player or updates an existing one. The
// preferred and avoid sets are mutually exclusive; a player listing the
// same id in both is rejected before anything is written.
func (s *store) UpsertPlayer(player Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertPlayerLocked(player)
}

// UpsertPlayers inserts or updates a batch of players in one transaction.
func (s *store) UpsertPlayers(players []Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, player := range players {
		if err := s.upsertPlayerLocked(player); err != nil {
			return err
		}
	}
	return nil
}

func (s *store) upsertPlayerLocked(player Player) error {
	if err := validatePreferences(player); err != nil {
		return err
	}

	availabilityJSON, err := json.Marshal(player.Availability)
	if err != nil {
		return fmt.Errorf("failed to marshal availability: %w", err)
	}
	preferredJSON, err := json.Marshal(player.Preferred)
	if err != nil {
		return fmt.Errorf("failed to marshal preferred set: %w", err)
	}
	avoidJSON, err := json.Marshal(player.Avoid)
	if err != nil {
		return fmt.Errorf("failed to marshal avoid set: %w", err)
	}
	scores := player.Scores
	if scores == nil {
		scores = map[string]int{}
	}
	scoresJSON, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO players (id, name, level, plays_singles, plays_doubles, matches_per_week, member, availability_json, preferred_json, avoid_json, scores_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			level = excluded.level,
			plays_singles = excluded.plays_singles,
			plays_doubles = excluded.plays_doubles,
			matches_per_week = excluded.matches_per_week,
			member = excluded.member,
			availability_json = excluded.availability_json,
			preferred_json = excluded.preferred_json,
			avoid_json = excluded.avoid_json,
			scores_json = excluded.scores_json;
	`, player.ID, player.Name, string(player.Level), player.PlaysSingles, player.PlaysDoubles,
		player.MatchesPerWeek, player.Member, string(availabilityJSON), string(preferredJSON),
		string(avoidJSON), string(scoresJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert player %s: %w", player.ID, err)
	}
	return nil
}

func validatePreferences(player Player) error {
	avoid := make(map[string]bool, len(player.Avoid))
	for _, id := range player.Avoid {
		avoid[id] = true
	}
	for _, id := range player.Preferred {
		if avoid[id] {
			return fmt.Errorf("%w: player %s, conflicting id %s", ErrPreferenceConflict, player.ID, id)
		}
	}
	return nil
}

// GetPlayer retrieves a single player by id.
func (s *store) GetPlayer(playerID string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, name, level, plays_singles, plays_doubles, matches_per_week, member, availability_json, preferred_json, avoid_json, scores_json
		FROM players WHERE id = ?
	`, playerID)
	player, err := scanPlayer(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
		return nil, fmt.Errorf("failed to get player %s: %w", playerID, err)
	}
	return player, nil
}

// GetAllPlayers retrieves every player, ordered by name.
func (s *store) GetAllPlayers() ([]Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, name, level, plays_singles, plays_doubles, matches_per_week, member, availability_json, preferred_json, avoid_json, scores_json
		FROM players ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players = append(players, *player)
	}
	return players, nil
}

// scanPlayer is a helper to scan a single player row.
func scanPlayer(scanner interface{ Scan(...any) error }) (*Player, error) {
	var player Player
	var level string
	var availabilityJSON, preferredJSON, avoidJSON, scoresJSON sql.NullString

	err := scanner.Scan(
		&player.ID, &player.Name, &level, &player.PlaysSingles, &player.PlaysDoubles,
		&player.MatchesPerWeek, &player.Member, &availabilityJSON, &preferredJSON,
		&avoidJSON, &scoresJSON,
	)
	if err != nil {
		return nil, err
	}
	player.Level = Level(level)

	if availabilityJSON.Valid && availabilityJSON.String != "" {
		if err := json.Unmarshal([]byte(availabilityJSON.String), &player.Availability); err != nil {
			log.Error("Failed to unmarshal availability_json", "error", err, "playerID", player.ID)
		}
	}
	if preferredJSON.Valid && preferredJSON.String != "" {
		if err := json.Unmarshal([]byte(preferredJSON.String), &player.Preferred); err != nil {
			log.Error("Failed to unmarshal preferred_json", "error", err, "playerID", player.ID)
		}
	}
	if avoidJSON.Valid && avoidJSON.String != "" {
		if err := json.Unmarshal([]byte(avoidJSON.String), &player.Avoid); err != nil {
			log.Error("Failed to unmarshal avoid_json", "error", err, "playerID", player.ID)
		}
	}
	player.Scores = map[string]int{}
	if scoresJSON.Valid && scoresJSON.String != "" {
		if err := json.Unmarshal([]byte(scoresJSON.String), &player.Scores); err != nil {
			log.Error("Failed to unmarshal scores_json", "error", err, "playerID", player.ID)
		}
	}
	return &player, nil
}

// SetPairScore stores the historical compatibility score on both players.
// The score map is kept symmetric so either side of the pair resolves the
// same value.
func (s *store) SetPairScore(playerA, playerB string, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pair := range [][2]string{{playerA, playerB}, {playerB, playerA}} {
		var scoresJSON sql.NullString
		err := s.db.QueryRow("SELECT scores_json FROM players WHERE id = ?", pair[0]).Scan(&scoresJSON)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: %s", ErrPlayerNotFound, pair[0])
			}
			return fmt.Errorf("failed to read scores for player %s: %w", pair[0], err)
		}

		scores := map[string]int{}
		if scoresJSON.Valid && scoresJSON.String != "" {
			if err := json.Unmarshal([]byte(scoresJSON.String), &scores); err != nil {
				log.Error("Failed to unmarshal scores_json, resetting", "error", err, "playerID", pair[0])
				scores = map[string]int{}
			}
		}
		scores[pair[1]] = score

		updated, err := json.Marshal(scores)
		if err != nil {
			return fmt.Errorf("failed to marshal scores for player %s: %w", pair[0], err)
		}
		if _, err := s.db.Exec("UPDATE players SET scores_json = ? WHERE id = ?", string(updated), pair[0]); err != nil {
			return fmt.Errorf("failed to update scores for player %s: %w", pair[0], err)
		}
	}
	return nil
}

// UpsertCourt inserts a new court or updates an existing one.
func (s *store) UpsertCourt(court Court) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO courts (id, name, season, surface, covered_in_winter, available)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			season = excluded.season,
			surface = excluded.surface,
			covered_in_winter = excluded.covered_in_winter,
			available = excluded.available;
	`, court.ID, court.Name, string(court.Season), court.Surface, court.CoveredInWinter, court.Available)
	if err != nil {
		return fmt.Errorf("failed to upsert court %s: %w", court.ID, err)
	}
	return nil
}

// GetCourt retrieves a single court by id.
func (s *store) GetCourt(courtID string) (*Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var court Court
	var season string
	err := s.db.QueryRow(`
		SELECT id, name, season, surface, covered_in_winter, available FROM courts WHERE id = ?
	`, courtID).Scan(&court.ID, &court.Name, &season, &court.Surface, &court.CoveredInWinter, &court.Available)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrCourtNotFound, courtID)
		}
		return nil, fmt.Errorf("failed to get court %s: %w", courtID, err)
	}
	court.Season = Season(season)
	return &court, nil
}

// GetAllCourts retrieves every court, ordered by name. Court-list order is
// the order free courts get consumed in during generation.
func (s *store) GetAllCourts() ([]Court, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, season, surface, covered_in_winter, available FROM courts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query courts: %w", err)
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		var court Court
		var season string
		if err := rows.Scan(&court.ID, &court.Name, &season, &court.Surface, &court.CoveredInWinter, &court.Available); err != nil {
			log.Error("Failed to scan court row", "error", err)
			continue
		}
		court.Season = Season(season)
		courts = append(courts, court)
	}
	return courts, nil
}

// GetSettings returns the stored settings, falling back to defaults for
// any key that has never been written.
func (s *store) GetSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := DefaultSettings()
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return settings, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			log.Error("Failed to scan settings row", "error", err)
			continue
		}
		switch key {
		case "min_compatibility":
			fmt.Sscanf(value, "%d", &settings.MinCompatibility)
		case "max_level_difference":
			fmt.Sscanf(value, "%d", &settings.MaxLevelDifference)
		case "current_season":
			settings.CurrentSeason = Season(value)
		}
	}
	return settings, nil
}

// UpdateSettings persists the full settings object.
func (s *store) UpdateSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin settings transaction: %w", err)
	}
	pairs := map[string]string{
		"min_compatibility":    fmt.Sprintf("%d", settings.MinCompatibility),
		"max_level_difference": fmt.Sprintf("%d", settings.MaxLevelDifference),
		"current_season":       string(settings.CurrentSeason),
	}
	for key, value := range pairs {
		if _, err := tx.Exec(`
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value;
		`, key, value); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to write setting %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// ConfirmMatch appends a match proposal to the scheduled matches. The court
// and every participant must exist; the match enters the pipeline as NEW.
func (s *store) ConfirmMatch(match ScheduledMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM courts WHERE id = ?)", match.CourtID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check court %s: %w", match.CourtID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrCourtNotFound, match.CourtID)
	}
	for _, playerID := range match.PlayerIDs {
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)", playerID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check player %s: %w", playerID, err)
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
		}
	}

	playerIDsJSON, err := json.Marshal(match.PlayerIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal player ids: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO scheduled_matches (id, match_date, start_time, match_type, court_id, player_ids_json, score, confirmed, processing_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(id) DO NOTHING;
	`, match.ID, match.Date, match.Time, string(match.Type), match.CourtID, string(playerIDsJSON), match.Score, string(StatusNew))
	if err != nil {
		return fmt.Errorf("failed to confirm match %s: %w", match.ID, err)
	}
	log.Info("Confirmed match", "matchID", match.ID, "date", match.Date, "time", match.Time, "court", match.CourtID)
	return nil
}

// GetMatch retrieves a single scheduled match by id.
func (s *store) GetMatch(matchID string) (*ScheduledMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, match_date, start_time, match_type, court_id, player_ids_json, score, confirmed, processing_status
		FROM scheduled_matches WHERE id = ?
	`, matchID)
	match, err := s.scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	return match, nil
}

// GetMatchesForDate retrieves every scheduled match on the given date.
func (s *store) GetMatchesForDate(date string) ([]ScheduledMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, match_date, start_time, match_type, court_id, player_ids_json, score, confirmed, processing_status
		FROM scheduled_matches WHERE match_date = ? ORDER BY start_time
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for %s: %w", date, err)
	}
	defer rows.Close()
	return s.collectMatches(rows)
}

// GetMatchesForProcessing retrieves confirmed matches that have not yet
// completed the notification pipeline.
func (s *store) GetMatchesForProcessing() ([]ScheduledMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, match_date, start_time, match_type, court_id, player_ids_json, score, confirmed, processing_status
		FROM scheduled_matches WHERE processing_status != ? ORDER BY match_date, start_time
	`, string(StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for processing: %w", err)
	}
	defer rows.Close()
	return s.collectMatches(rows)
}

func (s *store) collectMatches(rows *sql.Rows) ([]ScheduledMatch, error) {
	var matches []ScheduledMatch
	for rows.Next() {
		match, err := s.scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, *match)
	}
	return matches, nil
}

// scanMatch scans a match row and resolves participant names. A missing
// player resolves to a placeholder rather than failing the read.
func (s *store) scanMatch(scanner interface{ Scan(...any) error }) (*ScheduledMatch, error) {
	var match ScheduledMatch
	var matchType, status string
	var playerIDsJSON sql.NullString

	err := scanner.Scan(
		&match.ID, &match.Date, &match.Time, &matchType, &match.CourtID,
		&playerIDsJSON, &match.Score, &match.Confirmed, &status,
	)
	if err != nil {
		return nil, err
	}
	match.Type = MatchType(matchType)
	match.ProcessingStatus = ProcessingStatus(status)

	if playerIDsJSON.Valid && playerIDsJSON.String != "" {
		if err := json.Unmarshal([]byte(playerIDsJSON.String), &match.PlayerIDs); err != nil {
			log.Error("Failed to unmarshal player_ids_json", "error", err, "matchID", match.ID)
		}
	}

	match.PlayerNames = make([]string, 0, len(match.PlayerIDs))
	for _, playerID := range match.PlayerIDs {
		var name string
		err := s.db.QueryRow("SELECT name FROM players WHERE id = ?", playerID).Scan(&name)
		if err != nil {
			name = UnknownPlayerName
		}
		match.PlayerNames = append(match.PlayerNames, name)
	}
	return &match, nil
}

// UpdateProcessingStatus transitions a scheduled match to a new state.
func (s *store) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE scheduled_matches SET processing_status = ? WHERE id = ?", string(status), matchID)
	return err
}

// UpsertSlotTemplate stores a custom slot-start list for one court on one
// date.
func (s *store) UpsertSlotTemplate(date, courtID string, slots []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slotsJSON, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO slot_templates (match_date, court_id, slots_json) VALUES (?, ?, ?)
		ON CONFLICT(match_date, court_id) DO UPDATE SET slots_json = excluded.slots_json;
	`, date, courtID, string(slotsJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert slot template: %w", err)
	}
	return nil
}

// GetSlotsForDate returns the union of every court's custom slot template
// for the date, sorted by clock time. An empty result means no template
// exists and the caller falls back to the default slot list.
func (s *store) GetSlotsForDate(date string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT slots_json FROM slot_templates WHERE match_date = ?", date)
	if err != nil {
		return nil, fmt.Errorf("failed to query slot templates: %w", err)
	}
	defer rows.Close()

	seen := map[int]string{}
	for rows.Next() {
		var slotsJSON string
		if err := rows.Scan(&slotsJSON); err != nil {
			log.Error("Failed to scan slot template row", "error", err)
			continue
		}
		var slots []string
		if err := json.Unmarshal([]byte(slotsJSON), &slots); err != nil {
			log.Error("Failed to unmarshal slots_json", "error", err, "date", date)
			continue
		}
		for _, slot := range slots {
			minutes, err := timeutil.ParseClock(slot)
			if err != nil {
				log.Warn("Skipping malformed slot in template", "slot", slot, "date", date)
				continue
			}
			seen[minutes] = timeutil.FormatClock(minutes)
		}
	}

	keys := make([]int, 0, len(seen))
	for minutes := range seen {
		keys = append(keys, minutes)
	}
	sort.Ints(keys)
	slots := make([]string, 0, len(keys))
	for _, minutes := range keys {
		slots = append(slots, seen[minutes])
	}
	return slots, nil
}

// Clear wipes all club data. Used by tests and the /clear endpoint.
func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}
	for _, table := range []string{"scheduled_matches", "reservations", "slot_templates", "players", "courts", "settings"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}
