package http

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmadsen/courtline/internal/booking"
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/compat"
	"github.com/jmadsen/courtline/internal/config"
	"github.com/jmadsen/courtline/internal/database"
	"github.com/jmadsen/courtline/internal/generator"
	"github.com/jmadsen/courtline/internal/metrics"
	"github.com/jmadsen/courtline/internal/notifier"
	"github.com/jmadsen/courtline/internal/processor"
	"github.com/jmadsen/courtline/internal/pubsub"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, notif notifier.Notifier) (*Server, club.ClubStore, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	clubStore := club.New(db)
	bookingStore := booking.New(db)
	gen := generator.New(clubStore, bookingStore, rand.NewSource(1))
	compatModel := compat.New(clubStore)
	cfg := config.Config{}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock()
	proc := processor.New(clubStore, notif, metricsSvc, ps)
	server := NewServer(clubStore, bookingStore, gen, compatModel, metricsSvc, metricsHandler, cfg, notif, proc, ps)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, clubStore, teardown
}

func seedClub(t *testing.T, store club.ClubStore) {
	t.Helper()

	players := []club.Player{
		{
			ID: "p1", Name: "Anna", Level: club.LevelBeginner,
			PlaysSingles: true, Member: true,
			Availability: club.Availability{Recurring: []club.RecurringSlot{
				{Weekday: "monday", From: "08:00", To: "12:00"},
			}},
		},
		{ID: "p2", Name: "Bo", Level: club.LevelBeginner, PlaysSingles: true, Member: true},
	}
	require.NoError(t, store.UpsertPlayers(players))
	require.NoError(t, store.UpsertCourt(club.Court{
		ID: "court-1", Name: "Court 1", Season: club.SeasonSummer, Surface: "clay", Available: true,
	}))
}

func postJSON(t *testing.T, server *Server, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func getJSON(t *testing.T, server *Server, url string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	if out != nil && rr.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
	}
	return rr
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()

	rr := getJSON(t, server, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestAvailabilityHandler(t *testing.T) {
	server, store, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedClub(t, store)

	// 2025-03-10 is a Monday, inside Anna's recurring window.
	var resp map[string]any
	rr := getJSON(t, server, "/availability?player=p1&date=2025-03-10&time=09:00", &resp)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, resp["available"])

	rr = getJSON(t, server, "/availability?player=p1&date=2025-03-10&time=13:00", &resp)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, resp["available"])

	t.Run("unknown player is a 404", func(t *testing.T) {
		rr := getJSON(t, server, "/availability?player=nobody&date=2025-03-10&time=09:00", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing parameters are a 400", func(t *testing.T) {
		rr := getJSON(t, server, "/availability?player=p1", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAvailablePlayersHandler(t *testing.T) {
	server, store, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedClub(t, store)

	var players []club.Player
	rr := getJSON(t, server, "/players/available?date=2025-03-10&time=09:00&type=singles", &players)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, players, 2, "Anna is in her window, Bo has an open profile")

	// Outside Anna's window only Bo remains.
	rr = getJSON(t, server, "/players/available?date=2025-03-10&time=14:00&type=singles", &players)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, players, 1)
	assert.Equal(t, "p2", players[0].ID)
}

func TestReservationsLifecycle(t *testing.T) {
	server, store, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedClub(t, store)

	res := booking.Reservation{
		CourtID:  "court-1",
		Scope:    booking.ExactDate("2025-03-10"),
		From:     "09:00",
		To:       "11:00",
		Category: booking.CategoryLesson,
		Label:    "junior training",
	}

	rr := postJSON(t, server, "/reservations", res)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// The court is busy inside the window and free outside it.
	var free map[string]any
	rr = getJSON(t, server, "/courts/free?court=court-1&date=2025-03-10&from=09:30&to=10:00", &free)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, free["free"])

	rr = getJSON(t, server, "/courts/free?court=court-1&date=2025-03-10&from=11:00&to=12:00", &free)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, free["free"])

	// Listing with a date includes the entry.
	var listed []booking.Reservation
	rr = getJSON(t, server, "/reservations?court=court-1&date=2025-03-10", &listed)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, listed, 1)
	assert.Equal(t, "junior training", listed[0].Label)

	// Deleting the middle leaves two fragments.
	rr = postJSON(t, server, "/reservations/delete", deleteRangeRequest{
		CourtID: "court-1", Scope: booking.ExactDate("2025-03-10"), From: "09:30", To: "10:30",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = getJSON(t, server, "/reservations?court=court-1&date=2025-03-10", &listed)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, listed, 2)

	// Clearing the scope empties the timeline.
	rr = postJSON(t, server, "/reservations/clear", deleteRangeRequest{
		CourtID: "court-1", Scope: booking.ExactDate("2025-03-10"),
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = getJSON(t, server, "/reservations?court=court-1", &listed)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, listed)
}

func TestReservationValidationErrors(t *testing.T) {
	server, store, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedClub(t, store)

	t.Run("inverted range is a 400", func(t *testing.T) {
		rr := postJSON(t, server, "/reservations", booking.Reservation{
			CourtID: "court-1", Scope: booking.ExactDate("2025-03-10"),
			From: "11:00", To: "09:00", Category: booking.CategoryMatch,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown court is a 404", func(t *testing.T) {
		rr := postJSON(t, server, "/reservations", booking.Reservation{
			CourtID: "court-9", Scope: booking.ExactDate("2025-03-10"),
			From: "09:00", To: "11:00", Category: booking.CategoryMatch,
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown category is a 400", func(t *testing.T) {
		rr := postJSON(t, server, "/reservations", booking.Reservation{
			CourtID: "court-1", Scope: booking.ExactDate("2025-03-10"),
			From: "09:00", To: "11:00", Category: "party",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGenerateMatchesHandler(t *testing.T) {
	notif := notifier.NewMock()
	server, store, teardown := setupTestServer(t, notif)
	defer teardown()
	seedClub(t, store)

	var proposals []generator.Proposal
	rr := postJSON(t, server, "/matches/generate", generateRequest{
		Date: "2025-03-10", Type: "singles", Slots: []string{"09:30"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &proposals))
	require.Len(t, proposals, 1)
	assert.Equal(t, "court-1", proposals[0].CourtID)
	assert.ElementsMatch(t, []string{"p1", "p2"}, proposals[0].PlayerIDs)

	// A digest of the run goes to the club channel.
	require.Len(t, notif.SendProposalDigestCalls, 1)
	assert.Equal(t, "2025-03-10", notif.SendProposalDigestCalls[0].Date)

	t.Run("weekly quotas do not cap a single day", func(t *testing.T) {
		require.NoError(t, store.UpsertPlayers([]club.Player{
			{ID: "q1", Name: "Quota One", Level: club.LevelAdvanced, PlaysSingles: true, Member: true, MatchesPerWeek: 1},
			{ID: "q2", Name: "Quota Two", Level: club.LevelAdvanced, PlaysSingles: true, Member: true, MatchesPerWeek: 1},
		}))
		require.NoError(t, store.UpsertCourt(club.Court{
			ID: "court-2", Name: "Court 2", Season: club.SeasonSummer, Surface: "clay", Available: true,
		}))

		rr := postJSON(t, server, "/matches/generate", generateRequest{
			Date: "2025-03-12", Type: "singles", Slots: []string{"18:00", "20:00"},
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var quotaProposals []generator.Proposal
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &quotaProposals))

		count := 0
		for _, p := range quotaProposals {
			for _, id := range p.PlayerIDs {
				if id == "q1" {
					count++
				}
			}
		}
		assert.Equal(t, 2, count, "the weekly quota only binds across a week run")
	})

	t.Run("missing date is a 400", func(t *testing.T) {
		rr := postJSON(t, server, "/matches/generate", generateRequest{Type: "singles"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown type is a 400", func(t *testing.T) {
		rr := postJSON(t, server, "/matches/generate", generateRequest{Date: "2025-03-10", Type: "triples"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestConfirmMatchHandler(t *testing.T) {
	notif := notifier.NewMock()
	server, store, teardown := setupTestServer(t, notif)
	defer teardown()
	seedClub(t, store)

	proposal := generator.Proposal{
		Date: "2025-03-10", Time: "09:30", Type: club.MatchTypeSingles,
		CourtID: "court-1", PlayerIDs: []string{"p1", "p2"}, Score: 50,
	}

	rr := postJSON(t, server, "/matches/confirm", proposal)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var matches []club.ScheduledMatch
	rr = getJSON(t, server, "/matches?date=2025-03-10", &matches)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Confirmed)
	assert.Equal(t, club.StatusNew, matches[0].ProcessingStatus)

	// The confirmed match now blocks its court for the 90-minute window.
	var free map[string]any
	rr = getJSON(t, server, "/courts/free?court=court-1&date=2025-03-10&from=10:00&to=10:30", &free)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, free["free"])

	// Processing advances it and sends the notification.
	rr = getJSON(t, server, "/process", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, notif.SendMatchNotificationCalls, 1)
	assert.Equal(t, "Court 1", notif.SendMatchNotificationCalls[0].CourtName)

	t.Run("unknown court is a 404", func(t *testing.T) {
		bad := proposal
		bad.ID = ""
		bad.CourtID = "court-9"
		rr := postJSON(t, server, "/matches/confirm", bad)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("dry run does not persist", func(t *testing.T) {
		dry := proposal
		dry.ID = ""
		dry.Time = "15:30"
		rr := postJSON(t, server, "/matches/confirm?dry_run=true", dry)
		require.Equal(t, http.StatusOK, rr.Code)

		var after []club.ScheduledMatch
		getJSON(t, server, "/matches?date=2025-03-10", &after)
		assert.Len(t, after, 1, "only the earlier confirmed match is stored")
	})
}

func TestCompatibilityHandler(t *testing.T) {
	server, store, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedClub(t, store)

	var resp map[string]any
	rr := getJSON(t, server, "/compatibility?a=p1&b=p2", &resp)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(50), resp["score"], "no preferences or history means the neutral default")

	rr = getJSON(t, server, "/compatibility?a=p1&b=ghost", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFeedbackHandler(t *testing.T) {
	server, store, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedClub(t, store)

	require.NoError(t, store.ConfirmMatch(club.ScheduledMatch{
		ID: "match-1", Date: "2025-03-10", Time: "09:30", Type: club.MatchTypeSingles,
		CourtID: "court-1", PlayerIDs: []string{"p1", "p2"}, Confirmed: true,
	}))

	rr := postJSON(t, server, "/feedback", feedbackRequest{MatchID: "match-1", Rating: 5})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp map[string]any
	rr = getJSON(t, server, "/compatibility?a=p1&b=p2", &resp)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(60), resp["score"], "a 5 rating nudges the stored score up by 10")

	t.Run("out of range rating is a 400", func(t *testing.T) {
		rr := postJSON(t, server, "/feedback", feedbackRequest{MatchID: "match-1", Rating: 6})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown match is a 404", func(t *testing.T) {
		rr := postJSON(t, server, "/feedback", feedbackRequest{MatchID: "ghost", Rating: 4})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListPlayersAndCourts(t *testing.T) {
	server, store, teardown := setupTestServer(t, notifier.NewMock())
	defer teardown()
	seedClub(t, store)

	var players []club.Player
	rr := getJSON(t, server, "/players", &players)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, players, 2)

	var courts []club.Court
	rr = getJSON(t, server, "/courts", &courts)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, courts, 1)
	assert.Equal(t, "Court 1", courts[0].Name)
}
