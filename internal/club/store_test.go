package club_test

import (
	"database/sql"
	"testing"

	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (club.ClubStore, *sql.DB, func()) {
	t.Helper()
	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := club.New(db)
	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return store, db, teardown
}

func TestUpsertAndGetPlayer(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	player := club.Player{
		ID:             "p1",
		Name:           "Anna Holm",
		Level:          club.LevelIntermediate,
		PlaysSingles:   true,
		PlaysDoubles:   true,
		MatchesPerWeek: 2,
		Member:         true,
		Availability: club.Availability{
			Recurring: []club.RecurringSlot{{Weekday: "monday", From: "17:00", To: "21:00"}},
			Extra:     []club.DateSlot{{Date: "2025-07-01", From: "08:00", To: "22:00"}},
		},
		Preferred: []string{"p2"},
		Avoid:     []string{"p3"},
		Scores:    map[string]int{"p2": 75},
	}
	require.NoError(t, store.UpsertPlayer(player))

	got, err := store.GetPlayer("p1")
	require.NoError(t, err)
	assert.Equal(t, player.Name, got.Name)
	assert.Equal(t, club.LevelIntermediate, got.Level)
	assert.Equal(t, 2, got.MatchesPerWeek)
	assert.Equal(t, player.Availability, got.Availability)
	assert.Equal(t, []string{"p2"}, got.Preferred)
	assert.Equal(t, []string{"p3"}, got.Avoid)
	assert.Equal(t, 75, got.Scores["p2"])

	t.Run("upsert updates in place", func(t *testing.T) {
		player.Level = club.LevelAdvanced
		player.MatchesPerWeek = 0
		require.NoError(t, store.UpsertPlayer(player))

		got, err := store.GetPlayer("p1")
		require.NoError(t, err)
		assert.Equal(t, club.LevelAdvanced, got.Level)
		assert.Equal(t, 0, got.MatchesPerWeek)

		all, err := store.GetAllPlayers()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("unknown id yields the sentinel", func(t *testing.T) {
		_, err := store.GetPlayer("ghost")
		assert.ErrorIs(t, err, club.ErrPlayerNotFound)
	})
}

func TestUpsertPlayer_PreferenceConflict(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	err := store.UpsertPlayer(club.Player{
		ID:        "p1",
		Name:      "Conflicted",
		Preferred: []string{"p2"},
		Avoid:     []string{"p2"},
	})
	require.ErrorIs(t, err, club.ErrPreferenceConflict)

	// Nothing was written.
	_, err = store.GetPlayer("p1")
	assert.ErrorIs(t, err, club.ErrPlayerNotFound)
}

func TestSetPairScore_Symmetric(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]club.Player{
		{ID: "p1", Name: "Anna"},
		{ID: "p2", Name: "Bo"},
	}))

	require.NoError(t, store.SetPairScore("p1", "p2", 65))

	a, err := store.GetPlayer("p1")
	require.NoError(t, err)
	b, err := store.GetPlayer("p2")
	require.NoError(t, err)
	assert.Equal(t, 65, a.Scores["p2"])
	assert.Equal(t, 65, b.Scores["p1"])

	t.Run("unknown player yields the sentinel", func(t *testing.T) {
		err := store.SetPairScore("p1", "ghost", 50)
		assert.ErrorIs(t, err, club.ErrPlayerNotFound)
	})
}

func TestUpsertAndGetCourt(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	court := club.Court{
		ID:              "hall-a",
		Name:            "Hall A",
		Season:          club.SeasonWinter,
		Surface:         "carpet",
		CoveredInWinter: true,
		Available:       true,
	}
	require.NoError(t, store.UpsertCourt(court))

	got, err := store.GetCourt("hall-a")
	require.NoError(t, err)
	assert.Equal(t, court, *got)

	_, err = store.GetCourt("ghost")
	assert.ErrorIs(t, err, club.ErrCourtNotFound)
}

func TestSettings_DefaultsAndRoundTrip(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	settings, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, club.DefaultSettings(), settings, "an empty table yields the defaults")

	settings.MinCompatibility = 60
	settings.MaxLevelDifference = 0
	settings.CurrentSeason = club.SeasonWinter
	require.NoError(t, store.UpdateSettings(settings))

	got, err := store.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestConfirmMatch(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]club.Player{
		{ID: "p1", Name: "Anna"},
		{ID: "p2", Name: "Bo"},
	}))
	require.NoError(t, store.UpsertCourt(club.Court{ID: "court-1", Name: "Court 1", Season: club.SeasonSummer, Available: true}))

	match := club.ScheduledMatch{
		ID:        "match-1",
		Date:      "2025-03-10",
		Time:      "09:30",
		Type:      club.MatchTypeSingles,
		CourtID:   "court-1",
		PlayerIDs: []string{"p1", "p2"},
		Score:     50,
	}
	require.NoError(t, store.ConfirmMatch(match))

	got, err := store.GetMatch("match-1")
	require.NoError(t, err)
	assert.True(t, got.Confirmed)
	assert.Equal(t, club.StatusNew, got.ProcessingStatus)
	assert.Equal(t, []string{"Anna", "Bo"}, got.PlayerNames)

	t.Run("unknown court is rejected", func(t *testing.T) {
		bad := match
		bad.ID = "match-2"
		bad.CourtID = "ghost"
		assert.ErrorIs(t, store.ConfirmMatch(bad), club.ErrCourtNotFound)
	})

	t.Run("unknown player is rejected", func(t *testing.T) {
		bad := match
		bad.ID = "match-3"
		bad.PlayerIDs = []string{"p1", "ghost"}
		assert.ErrorIs(t, store.ConfirmMatch(bad), club.ErrPlayerNotFound)
	})

	t.Run("unknown match id yields the sentinel", func(t *testing.T) {
		_, err := store.GetMatch("ghost")
		assert.ErrorIs(t, err, club.ErrMatchNotFound)
	})
}

func TestMatchNameResolution_Placeholder(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]club.Player{
		{ID: "p1", Name: "Anna"},
		{ID: "p2", Name: "Bo"},
	}))
	require.NoError(t, store.UpsertCourt(club.Court{ID: "court-1", Name: "Court 1", Season: club.SeasonSummer, Available: true}))
	require.NoError(t, store.ConfirmMatch(club.ScheduledMatch{
		ID: "match-1", Date: "2025-03-10", Time: "09:30", Type: club.MatchTypeSingles,
		CourtID: "court-1", PlayerIDs: []string{"p1", "p2"},
	}))

	// Remove one participant behind the match's back.
	_, err := db.Exec("DELETE FROM players WHERE id = ?", "p2")
	require.NoError(t, err)

	got, err := store.GetMatch("match-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna", club.UnknownPlayerName}, got.PlayerNames)
}

func TestMatchPipelineQueries(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayers([]club.Player{
		{ID: "p1", Name: "Anna"},
		{ID: "p2", Name: "Bo"},
	}))
	require.NoError(t, store.UpsertCourt(club.Court{ID: "court-1", Name: "Court 1", Season: club.SeasonSummer, Available: true}))

	for _, id := range []string{"match-1", "match-2"} {
		require.NoError(t, store.ConfirmMatch(club.ScheduledMatch{
			ID: id, Date: "2025-03-10", Time: "09:30", Type: club.MatchTypeSingles,
			CourtID: "court-1", PlayerIDs: []string{"p1", "p2"},
		}))
	}

	pending, err := store.GetMatchesForProcessing()
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, store.UpdateProcessingStatus("match-1", club.StatusCompleted))

	pending, err = store.GetMatchesForProcessing()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "match-2", pending[0].ID)

	byDate, err := store.GetMatchesForDate("2025-03-10")
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	byDate, err = store.GetMatchesForDate("2025-03-11")
	require.NoError(t, err)
	assert.Empty(t, byDate)
}

func TestSlotTemplates(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	slots, err := store.GetSlotsForDate("2025-03-10")
	require.NoError(t, err)
	assert.Empty(t, slots, "no template means the caller falls back to the defaults")

	require.NoError(t, store.UpsertSlotTemplate("2025-03-10", "court-1", []string{"10:00", "12.30"}))
	require.NoError(t, store.UpsertSlotTemplate("2025-03-10", "court-2", []string{"09:00", "10:00"}))

	slots, err = store.GetSlotsForDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "12:30"}, slots, "the union is sorted and duplicates collapse")
}
