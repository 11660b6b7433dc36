package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jmadsen/courtline/internal/availability"
	"github.com/jmadsen/courtline/internal/booking"
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/compat"
	"github.com/jmadsen/courtline/internal/generator"
	"github.com/jmadsen/courtline/internal/pubsub"
	"github.com/jmadsen/courtline/internal/timeutil"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// respondJSON writes a JSON body with the right content type.
func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// writeStoreError maps sentinel errors onto HTTP status codes: unknown
// ids become 404, validation failures 400, everything else 500.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, club.ErrPlayerNotFound),
		errors.Is(err, club.ErrCourtNotFound),
		errors.Is(err, club.ErrMatchNotFound),
		errors.Is(err, booking.ErrCourtNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, booking.ErrInvalidRange),
		errors.Is(err, booking.ErrInvalidScope),
		errors.Is(err, booking.ErrUnknownCategory),
		errors.Is(err, booking.ErrTooManyOccupants),
		errors.Is(err, club.ErrPreferenceConflict),
		errors.Is(err, compat.ErrInvalidRating):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseMatchType(s string) (club.MatchType, error) {
	switch club.MatchType(s) {
	case club.MatchTypeSingles, club.MatchTypeDoubles:
		return club.MatchType(s), nil
	case "":
		return club.MatchTypeSingles, nil
	}
	return "", fmt.Errorf("unknown match type %q", s)
}

// scopeFromQuery builds a reservation scope from date/weekday parameters.
func scopeFromQuery(r *http.Request) booking.Scope {
	if date := r.URL.Query().Get("date"); date != "" {
		return booking.ExactDate(date)
	}
	return booking.Weekly(r.URL.Query().Get("weekday"))
}

func (s *Server) AvailabilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player")
		date := r.URL.Query().Get("date")
		clock := r.URL.Query().Get("time")
		if playerID == "" || date == "" || clock == "" {
			http.Error(w, "player, date and time are required", http.StatusBadRequest)
			return
		}

		player, err := s.Store.GetPlayer(playerID)
		if err != nil {
			log.Error("Failed to get player", "error", err, "playerID", playerID)
			writeStoreError(w, err)
			return
		}

		available, err := availability.IsAvailable(*player, date, clock)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		respondJSON(w, map[string]any{
			"player_id": playerID,
			"date":      date,
			"time":      clock,
			"available": available,
		})
	}
}

func (s *Server) AvailablePlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		clock := r.URL.Query().Get("time")
		if date == "" || clock == "" {
			http.Error(w, "date and time are required", http.StatusBadRequest)
			return
		}
		matchType, err := parseMatchType(r.URL.Query().Get("type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		players, err := s.Store.GetAllPlayers()
		if err != nil {
			log.Error("Failed to get players from store", "error", err)
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			return
		}

		eligible, err := availability.EligiblePlayers(players, date, clock, matchType)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondJSON(w, eligible)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		respondJSON(w, players)
	}
}

func (s *Server) ListCourtsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courts, err := s.Store.GetAllCourts()
		if err != nil {
			http.Error(w, "Failed to get courts", http.StatusInternalServerError)
			log.Error("Failed to get courts from store", "error", err)
			return
		}
		respondJSON(w, courts)
	}
}

func (s *Server) FreeCourtHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courtID := r.URL.Query().Get("court")
		from := r.URL.Query().Get("from")
		to := r.URL.Query().Get("to")
		if courtID == "" || from == "" || to == "" {
			http.Error(w, "court, from and to are required", http.StatusBadRequest)
			return
		}
		scope := scopeFromQuery(r)

		free, err := s.Booking.IsFree(courtID, scope, from, to)
		if err != nil {
			log.Error("Failed to check court availability", "error", err, "courtID", courtID)
			writeStoreError(w, err)
			return
		}

		respondJSON(w, map[string]any{
			"court_id": courtID,
			"scope":    scope,
			"from":     from,
			"to":       to,
			"free":     free,
		})
	}
}

// ReservationsHandler serves the reservation collection: GET lists a
// court's timeline, POST upserts one reservation.
func (s *Server) ReservationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listReservations(w, r)
		case http.MethodPost:
			s.upsertReservation(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) listReservations(w http.ResponseWriter, r *http.Request) {
	courtID := r.URL.Query().Get("court")
	if courtID == "" {
		http.Error(w, "court is required", http.StatusBadRequest)
		return
	}

	reservations, err := s.Booking.ListForCourt(courtID)
	if err != nil {
		log.Error("Failed to list reservations", "error", err, "courtID", courtID)
		writeStoreError(w, err)
		return
	}

	// An optional date narrows the listing to entries in effect on that
	// day: date-scoped entries for the date plus weekday-scoped ones for
	// its weekday.
	if date := r.URL.Query().Get("date"); date != "" {
		weekday, err := timeutil.WeekdayName(date)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filtered := make([]booking.Reservation, 0, len(reservations))
		for _, res := range reservations {
			if res.Scope.Matches(booking.ExactDate(date)) || res.Scope.Matches(booking.Weekly(weekday)) {
				filtered = append(filtered, res)
			}
		}
		reservations = filtered
	}

	respondJSON(w, reservations)
}

func (s *Server) upsertReservation(w http.ResponseWriter, r *http.Request) {
	var res booking.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	isDryRun := isDryRunFromContext(r)
	if isDryRun {
		log.Info("[Dry Run] Would upsert reservation", "courtID", res.CourtID, "scope", res.Scope.String(), "from", res.From, "to", res.To)
		respondJSON(w, res)
		return
	}

	stored, err := s.Booking.Upsert(res)
	if err != nil {
		log.Error("Failed to upsert reservation", "error", err, "courtID", res.CourtID)
		writeStoreError(w, err)
		return
	}
	s.Metrics.IncReservationsUpserted()
	if err := s.pubsub.SendMessage(string(pubsub.EventReservationChanged), stored); err != nil {
		log.Error("Failed to publish reservation changed event", "error", err)
	}
	respondJSON(w, stored)
}

// deleteRangeRequest is the body for /reservations/delete and, without
// the times, /reservations/clear.
type deleteRangeRequest struct {
	CourtID string        `json:"court_id"`
	Scope   booking.Scope `json:"scope"`
	From    string        `json:"from"`
	To      string        `json:"to"`
}

func (s *Server) DeleteReservationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteRangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would delete reservation range", "courtID", req.CourtID, "scope", req.Scope.String(), "from", req.From, "to", req.To)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "Dry run: nothing deleted.")
			return
		}

		if err := s.Booking.DeleteRange(req.CourtID, req.Scope, req.From, req.To); err != nil {
			log.Error("Failed to delete reservation range", "error", err, "courtID", req.CourtID)
			writeStoreError(w, err)
			return
		}
		s.Metrics.IncReservationsDeleted()
		if err := s.pubsub.SendMessage(string(pubsub.EventReservationChanged), req); err != nil {
			log.Error("Failed to publish reservation changed event", "error", err)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Reservation range deleted.")
	}
}

func (s *Server) ClearReservationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteRangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would clear reservations", "courtID", req.CourtID, "scope", req.Scope.String())
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "Dry run: nothing cleared.")
			return
		}

		if err := s.Booking.DeleteAllForScope(req.CourtID, req.Scope); err != nil {
			log.Error("Failed to clear reservations", "error", err, "courtID", req.CourtID)
			writeStoreError(w, err)
			return
		}
		s.Metrics.IncReservationsDeleted()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Reservations cleared.")
	}
}

// generateRequest is the body for /matches/generate.
type generateRequest struct {
	Date  string   `json:"date"`
	Type  string   `json:"type"`
	Slots []string `json:"slots,omitempty"`
}

func (s *Server) GenerateMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		matchType, err := parseMatchType(req.Type)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Date == "" {
			http.Error(w, "date is required", http.StatusBadRequest)
			return
		}

		log.Info("Starting match generation", "date", req.Date, "type", matchType)
		s.Metrics.IncGeneratorRuns()
		start := time.Now()
		// Quota tracking spans a week; a single-day run carries none.
		proposals, err := s.Generator.GenerateMatches(req.Date, matchType, nil, req.Slots)
		s.Metrics.ObserveGenerationDuration(time.Since(start).Seconds())
		if err != nil {
			log.Error("Match generation failed", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Metrics.AddProposalsCreated(len(proposals))
		log.Info("Match generation finished", "proposals", len(proposals))

		if err := s.Notifier.SendProposalDigest(req.Date, proposals, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send proposal digest", "error", err)
		}

		respondJSON(w, proposals)
	}
}

// generateWeekRequest is the body for /matches/generate-week.
type generateWeekRequest struct {
	Start string `json:"start"`
	Type  string `json:"type"`
}

func (s *Server) GenerateWeekHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateWeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		matchType, err := parseMatchType(req.Type)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Start == "" {
			http.Error(w, "start is required", http.StatusBadRequest)
			return
		}

		log.Info("Starting weekly match generation", "start", req.Start, "type", matchType)
		s.Metrics.IncGeneratorRuns()
		start := time.Now()
		proposals, err := s.Generator.GenerateWeeklyMatches(req.Start, matchType)
		s.Metrics.ObserveGenerationDuration(time.Since(start).Seconds())
		if err != nil {
			log.Error("Weekly match generation failed", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.Metrics.AddProposalsCreated(len(proposals))
		log.Info("Weekly match generation finished", "proposals", len(proposals))

		if err := s.Notifier.SendProposalDigest(req.Start, proposals, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send proposal digest", "error", err)
		}

		respondJSON(w, proposals)
	}
}

func (s *Server) ConfirmMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var proposal generator.Proposal
		if err := json.NewDecoder(r.Body).Decode(&proposal); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if proposal.ID == "" {
			proposal.ID = uuid.NewString()
		}

		match := club.ScheduledMatch{
			ID:               proposal.ID,
			Date:             proposal.Date,
			Time:             proposal.Time,
			Type:             proposal.Type,
			CourtID:          proposal.CourtID,
			PlayerIDs:        proposal.PlayerIDs,
			Score:            proposal.Score,
			Confirmed:        true,
			ProcessingStatus: club.StatusNew,
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would confirm match", "matchID", match.ID, "date", match.Date, "time", match.Time)
			respondJSON(w, match)
			return
		}

		if err := s.Store.ConfirmMatch(match); err != nil {
			log.Error("Failed to confirm match", "error", err, "matchID", match.ID)
			writeStoreError(w, err)
			return
		}
		s.Metrics.IncMatchesConfirmed()
		log.Info("Match confirmed", "matchID", match.ID, "date", match.Date, "time", match.Time)
		respondJSON(w, match)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			http.Error(w, "date is required", http.StatusBadRequest)
			return
		}
		matches, err := s.Store.GetMatchesForDate(date)
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		respondJSON(w, matches)
	}
}

func (s *Server) CompatibilityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a := r.URL.Query().Get("a")
		b := r.URL.Query().Get("b")
		if a == "" || b == "" {
			http.Error(w, "a and b are required", http.StatusBadRequest)
			return
		}

		score, err := s.Compat.GetCompatibility(a, b)
		if err != nil {
			log.Error("Failed to compute compatibility", "error", err, "a", a, "b", b)
			writeStoreError(w, err)
			return
		}

		respondJSON(w, map[string]any{"a": a, "b": b, "score": score})
	}
}

// feedbackRequest is the body for /feedback.
type feedbackRequest struct {
	MatchID string `json:"match_id"`
	Rating  int    `json:"rating"`
}

func (s *Server) FeedbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			// Also accept form-style parameters for easy curling.
			req.MatchID = r.URL.Query().Get("match_id")
			rating, convErr := strconv.Atoi(r.URL.Query().Get("rating"))
			if req.MatchID == "" || convErr != nil {
				http.Error(w, "Invalid JSON", http.StatusBadRequest)
				return
			}
			req.Rating = rating
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would apply feedback", "matchID", req.MatchID, "rating", req.Rating)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "Dry run: feedback not applied.")
			return
		}

		if err := s.Compat.ApplyFeedback(req.MatchID, req.Rating); err != nil {
			log.Error("Failed to apply feedback", "error", err, "matchID", req.MatchID)
			writeStoreError(w, err)
			return
		}
		if err := s.pubsub.SendMessage(string(pubsub.EventFeedbackApplied), req); err != nil {
			log.Error("Failed to publish feedback applied event", "error", err)
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Feedback applied.")
	}
}

func (s *Server) ProcessMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Starting match processing...")
		isDryRun := isDryRunFromContext(r)

		s.Processor.ProcessMatches(isDryRun)

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Match processing completed.")
		log.Info("Match processing finished.")
	}
}
