package compat_test

import (
	"testing"

	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/compat"
	"github.com/jmadsen/courtline/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Precedence(t *testing.T) {
	tests := []struct {
		name string
		a, b club.Player
		want int
	}{
		{
			name: "veto always wins even against preference",
			a:    club.Player{ID: "a", Avoid: []string{"b"}},
			b:    club.Player{ID: "b", Preferred: []string{"a"}},
			want: 0,
		},
		{
			name: "veto on either side",
			a:    club.Player{ID: "a"},
			b:    club.Player{ID: "b", Avoid: []string{"a"}},
			want: 0,
		},
		{
			name: "mutual preference",
			a:    club.Player{ID: "a", Preferred: []string{"b"}},
			b:    club.Player{ID: "b", Preferred: []string{"a"}},
			want: 100,
		},
		{
			name: "one-directional preference",
			a:    club.Player{ID: "a", Preferred: []string{"b"}},
			b:    club.Player{ID: "b"},
			want: 80,
		},
		{
			name: "preference beats stored history",
			a:    club.Player{ID: "a", Preferred: []string{"b"}, Scores: map[string]int{"b": 10}},
			b:    club.Player{ID: "b"},
			want: 80,
		},
		{
			name: "stored historical score",
			a:    club.Player{ID: "a", Scores: map[string]int{"b": 65}},
			b:    club.Player{ID: "b"},
			want: 65,
		},
		{
			name: "history on the other side of the pair",
			a:    club.Player{ID: "a"},
			b:    club.Player{ID: "b", Scores: map[string]int{"a": 35}},
			want: 35,
		},
		{
			name: "neutral default",
			a:    club.Player{ID: "a"},
			b:    club.Player{ID: "b"},
			want: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compat.Score(tt.a, tt.b)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, compat.Score(tt.b, tt.a), "scoring must be symmetric")
		})
	}
}

func setupModel(t *testing.T) (*compat.Model, club.ClubStore, func()) {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	store := club.New(db)
	return compat.New(store), store, teardown
}

func TestApplyFeedback_NudgesAllPairs(t *testing.T) {
	model, store, teardown := setupModel(t)
	defer teardown()

	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		require.NoError(t, store.UpsertPlayer(club.Player{ID: id, Name: id, PlaysDoubles: true}))
	}
	require.NoError(t, store.UpsertCourt(club.Court{ID: "c1", Name: "Court 1", Available: true}))
	require.NoError(t, store.ConfirmMatch(club.ScheduledMatch{
		ID: "m1", Date: "2025-03-10", Time: "18:00", Type: club.MatchTypeDoubles,
		CourtID: "c1", PlayerIDs: []string{"p1", "p2", "p3", "p4"}, Score: 50,
	}))

	// A 5-star rating nudges every pair up from the neutral 50 by 10.
	require.NoError(t, model.ApplyFeedback("m1", 5))

	score, err := model.GetCompatibility("p1", "p2")
	require.NoError(t, err)
	assert.Equal(t, 60, score)
	score, err = model.GetCompatibility("p3", "p4")
	require.NoError(t, err)
	assert.Equal(t, 60, score)

	// Feedback compounds on the stored score, once per recorded result.
	require.NoError(t, model.ApplyFeedback("m1", 1))
	score, err = model.GetCompatibility("p1", "p2")
	require.NoError(t, err)
	assert.Equal(t, 50, score)
}

func TestApplyFeedback_Clamps(t *testing.T) {
	model, store, teardown := setupModel(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayer(club.Player{ID: "p1", Name: "A", Scores: map[string]int{"p2": 97}}))
	require.NoError(t, store.UpsertPlayer(club.Player{ID: "p2", Name: "B", Scores: map[string]int{"p1": 97}}))
	require.NoError(t, store.UpsertCourt(club.Court{ID: "c1", Name: "Court 1", Available: true}))
	require.NoError(t, store.ConfirmMatch(club.ScheduledMatch{
		ID: "m1", Date: "2025-03-10", Time: "09:30", Type: club.MatchTypeSingles,
		CourtID: "c1", PlayerIDs: []string{"p1", "p2"},
	}))

	require.NoError(t, model.ApplyFeedback("m1", 5))
	score, err := model.GetCompatibility("p1", "p2")
	require.NoError(t, err)
	assert.Equal(t, 100, score, "scores clamp at 100")
}

func TestApplyFeedback_Validation(t *testing.T) {
	model, _, teardown := setupModel(t)
	defer teardown()

	assert.ErrorIs(t, model.ApplyFeedback("m1", 0), compat.ErrInvalidRating)
	assert.ErrorIs(t, model.ApplyFeedback("m1", 6), compat.ErrInvalidRating)
	assert.ErrorIs(t, model.ApplyFeedback("no-such-match", 4), club.ErrMatchNotFound)
}

func TestGetCompatibility_UnknownPlayer(t *testing.T) {
	model, store, teardown := setupModel(t)
	defer teardown()

	require.NoError(t, store.UpsertPlayer(club.Player{ID: "p1", Name: "A"}))
	_, err := model.GetCompatibility("p1", "ghost")
	assert.ErrorIs(t, err, club.ErrPlayerNotFound)
}
