package booking

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jmadsen/courtline/internal/timeutil"
)

// New creates a new BookingStore.
func New(db *sql.DB) BookingStore {
	return &store{
		db: db,
	}
}

// matchDurationMinutes is how long a scheduled match occupies its court.
const matchDurationMinutes = 90

func (s *store) IsFree(courtID string, scope Scope, from, to string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromMin, toMin, err := parseRange(from, to)
	if err != nil {
		return false, err
	}
	if err := scope.Validate(); err != nil {
		return false, err
	}

	available, err := s.courtAvailable(courtID)
	if err != nil {
		return false, err
	}
	if !available {
		return false, nil
	}

	reservations, err := s.fetchForCourt(courtID)
	if err != nil {
		return false, err
	}

	// Date-exact pass first, then the weekday pass over weekday-scoped
	// entries. The two are never merged into one overlap test.
	scopes := []Scope{scope}
	if scope.IsDate() {
		weekday, err := timeutil.WeekdayName(scope.Date)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidScope, err)
		}
		scopes = append(scopes, Weekly(weekday))
	}
	for _, pass := range scopes {
		for _, res := range reservations {
			if !res.Scope.Matches(pass) {
				continue
			}
			resFrom, err := timeutil.ParseClock(res.From)
			if err != nil {
				continue
			}
			resTo, err := timeutil.ParseClock(res.To)
			if err != nil {
				continue
			}
			if overlaps(resFrom, resTo, fromMin, toMin) {
				return false, nil
			}
		}
	}

	if scope.IsDate() {
		busy, err := s.matchOverlap(courtID, scope.Date, fromMin, toMin)
		if err != nil {
			return false, err
		}
		if busy {
			return false, nil
		}
	}
	return true, nil
}

// matchOverlap checks confirmed scheduled matches on the date. Each match
// blocks its court for the fixed match duration.
func (s *store) matchOverlap(courtID, date string, fromMin, toMin int) (bool, error) {
	rows, err := s.db.Query(`
		SELECT start_time FROM scheduled_matches
		WHERE court_id = ? AND match_date = ? AND confirmed = 1
	`, courtID, date)
	if err != nil {
		return false, fmt.Errorf("failed to query scheduled matches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var start string
		if err := rows.Scan(&start); err != nil {
			log.Error("Failed to scan scheduled match row", "error", err)
			continue
		}
		startMin, err := timeutil.ParseClock(start)
		if err != nil {
			log.Warn("Skipping scheduled match with malformed start time", "start", start)
			continue
		}
		if overlaps(startMin, startMin+matchDurationMinutes, fromMin, toMin) {
			return true, nil
		}
	}
	return false, nil
}

func (s *store) Upsert(reservation Reservation) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromMin, toMin, err := parseRange(reservation.From, reservation.To)
	if err != nil {
		return Reservation{}, err
	}
	if err := reservation.Scope.Validate(); err != nil {
		return Reservation{}, err
	}
	if _, err := ParseCategory(string(reservation.Category)); err != nil {
		return Reservation{}, err
	}
	if len(reservation.Occupants) > 4 {
		return Reservation{}, ErrTooManyOccupants
	}
	if exists, err := s.courtExists(reservation.CourtID); err != nil {
		return Reservation{}, err
	} else if !exists {
		return Reservation{}, fmt.Errorf("%w: %s", ErrCourtNotFound, reservation.CourtID)
	}

	if reservation.ID == "" {
		reservation.ID = uuid.New().String()
	}
	reservation.From = timeutil.FormatClock(fromMin)
	reservation.To = timeutil.FormatClock(toMin)

	existing, err := s.fetchForCourt(reservation.CourtID)
	if err != nil {
		return Reservation{}, err
	}
	kept, fragments := splitAround(existing, reservation.Scope, fromMin, toMin)

	rewritten := append(kept, fragments...)
	rewritten = append(rewritten, reservation)
	if err := s.rewriteCourt(reservation.CourtID, rewritten); err != nil {
		return Reservation{}, err
	}

	log.Info("Upserted reservation", "court", reservation.CourtID, "scope", reservation.Scope.String(),
		"from", reservation.From, "to", reservation.To, "category", reservation.Category,
		"fragments", len(fragments))
	return reservation, nil
}

func (s *store) DeleteRange(courtID string, scope Scope, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fromMin, toMin, err := parseRange(from, to)
	if err != nil {
		return err
	}
	if err := scope.Validate(); err != nil {
		return err
	}
	if exists, err := s.courtExists(courtID); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("%w: %s", ErrCourtNotFound, courtID)
	}

	existing, err := s.fetchForCourt(courtID)
	if err != nil {
		return err
	}
	kept, fragments := splitAround(existing, scope, fromMin, toMin)
	if err := s.rewriteCourt(courtID, append(kept, fragments...)); err != nil {
		return err
	}

	log.Info("Deleted reservation range", "court", courtID, "scope", scope.String(),
		"from", from, "to", to, "fragments", len(fragments))
	return nil
}

func (s *store) DeleteAllForScope(courtID string, scope Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := scope.Validate(); err != nil {
		return err
	}
	if exists, err := s.courtExists(courtID); err != nil {
		return err
	} else if !exists {
		return fmt.Errorf("%w: %s", ErrCourtNotFound, courtID)
	}

	var result sql.Result
	var err error
	if scope.IsDate() {
		result, err = s.db.Exec("DELETE FROM reservations WHERE court_id = ? AND res_date = ?", courtID, scope.Date)
	} else {
		result, err = s.db.Exec("DELETE FROM reservations WHERE court_id = ? AND res_date IS NULL AND weekday = ?", courtID, scope.Weekday)
	}
	if err != nil {
		return fmt.Errorf("failed to delete reservations for scope %s: %w", scope.String(), err)
	}
	deleted, _ := result.RowsAffected()
	log.Info("Cleared reservations for scope", "court", courtID, "scope", scope.String(), "deleted", deleted)
	return nil
}

func (s *store) ListForCourt(courtID string) ([]Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if exists, err := s.courtExists(courtID); err != nil {
		return nil, err
	} else if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCourtNotFound, courtID)
	}
	reservations, err := s.fetchForCourt(courtID)
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (s *store) courtExists(courtID string) (bool, error) {
	var exists bool
	if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM courts WHERE id = ?)", courtID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check court %s: %w", courtID, err)
	}
	return exists, nil
}

// courtAvailable returns the court's availability flag, or ErrCourtNotFound.
func (s *store) courtAvailable(courtID string) (bool, error) {
	var available bool
	err := s.db.QueryRow("SELECT available FROM courts WHERE id = ?", courtID).Scan(&available)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, fmt.Errorf("%w: %s", ErrCourtNotFound, courtID)
		}
		return false, fmt.Errorf("failed to check court %s: %w", courtID, err)
	}
	return available, nil
}

// fetchForCourt loads the court's full timeline, date entries first.
func (s *store) fetchForCourt(courtID string) ([]Reservation, error) {
	rows, err := s.db.Query(`
		SELECT id, court_id, res_date, weekday, from_time, to_time, category, label, occupants_json, price
		FROM reservations WHERE court_id = ?
		ORDER BY res_date IS NULL, res_date, weekday, from_time
	`, courtID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations for court %s: %w", courtID, err)
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		var res Reservation
		var date, weekday, occupantsJSON sql.NullString
		var category string
		var price sql.NullFloat64
		if err := rows.Scan(&res.ID, &res.CourtID, &date, &weekday, &res.From, &res.To, &category, &res.Label, &occupantsJSON, &price); err != nil {
			log.Error("Failed to scan reservation row", "error", err)
			continue
		}
		res.Category = Category(category)
		res.Scope = Scope{Date: date.String, Weekday: weekday.String}
		if occupantsJSON.Valid && occupantsJSON.String != "" {
			if err := json.Unmarshal([]byte(occupantsJSON.String), &res.Occupants); err != nil {
				log.Error("Failed to unmarshal occupants_json", "error", err, "reservationID", res.ID)
			}
		}
		if price.Valid {
			p := price.Float64
			res.Price = &p
		}
		reservations = append(reservations, res)
	}
	return reservations, nil
}

// rewriteCourt replaces the court's full timeline in one transaction. The
// read-modify-write is not transactional across callers: two concurrent
// writers race and the later write wins wholesale.
func (s *store) rewriteCourt(courtID string, reservations []Reservation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin reservation transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM reservations WHERE court_id = ?", courtID); err != nil {
		return fmt.Errorf("failed to clear reservations for court %s: %w", courtID, err)
	}
	for _, res := range reservations {
		occupantsJSON, err := json.Marshal(res.Occupants)
		if err != nil {
			return fmt.Errorf("failed to marshal occupants: %w", err)
		}
		var date, weekday any
		if res.Scope.IsDate() {
			date = res.Scope.Date
		} else {
			weekday = res.Scope.Weekday
		}
		var price any
		if res.Price != nil {
			price = *res.Price
		}
		if _, err := tx.Exec(`
			INSERT INTO reservations (id, court_id, res_date, weekday, from_time, to_time, category, label, occupants_json, price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, res.ID, res.CourtID, date, weekday, res.From, res.To, string(res.Category), res.Label, string(occupantsJSON), price); err != nil {
			return fmt.Errorf("failed to insert reservation %s: %w", res.ID, err)
		}
	}
	return tx.Commit()
}
