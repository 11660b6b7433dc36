package processor

import (
	"testing"

	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/metrics"
	"github.com/jmadsen/courtline/internal/notifier"
	"github.com/jmadsen/courtline/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor() (*Processor, *club.MockStore, *notifier.Mock, *pubsub.Mock) {
	store := club.NewMock()
	notif := notifier.NewMock()
	ps := pubsub.NewMock()
	p := New(store, notif, metrics.NewMock(), ps)
	return p, store, notif, ps
}

func TestProcessMatches_NewMatchAdvancesToCompleted(t *testing.T) {
	p, store, notif, ps := newTestProcessor()

	store.GetMatchesForProcessingFunc = func() ([]club.ScheduledMatch, error) {
		return []club.ScheduledMatch{{
			ID:               "match-1",
			Date:             "2025-07-09",
			Time:             "09:30",
			Type:             club.MatchTypeSingles,
			CourtID:          "court-1",
			PlayerIDs:        []string{"p1", "p2"},
			ProcessingStatus: club.StatusNew,
		}}, nil
	}
	store.GetCourtFunc = func(courtID string) (*club.Court, error) {
		return &club.Court{ID: courtID, Name: "Center Court"}, nil
	}

	p.ProcessMatches(false)

	// The notification went out with the resolved court name.
	require.Len(t, notif.SendMatchNotificationCalls, 1)
	assert.Equal(t, "match-1", notif.SendMatchNotificationCalls[0].Match.ID)
	assert.Equal(t, "Center Court", notif.SendMatchNotificationCalls[0].CourtName)

	// The confirmed event was published.
	require.Len(t, ps.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventMatchConfirmed), ps.SendMessageCalls[0].Topic)

	// The match walked NEW -> NOTIFIED -> COMPLETED.
	require.Len(t, store.UpdateProcessingStatusCalls, 2)
	assert.Equal(t, club.StatusNotified, store.UpdateProcessingStatusCalls[0].Status)
	assert.Equal(t, club.StatusCompleted, store.UpdateProcessingStatusCalls[1].Status)
}

func TestProcessMatches_DryRunDoesNotWrite(t *testing.T) {
	p, store, notif, ps := newTestProcessor()

	store.GetMatchesForProcessingFunc = func() ([]club.ScheduledMatch, error) {
		return []club.ScheduledMatch{{
			ID:               "match-1",
			CourtID:          "court-1",
			ProcessingStatus: club.StatusNew,
		}}, nil
	}
	store.GetCourtFunc = func(courtID string) (*club.Court, error) {
		return &club.Court{ID: courtID, Name: "Court 1"}, nil
	}

	p.ProcessMatches(true)

	// The notifier is still invoked so operators can see what would happen,
	// but nothing is persisted or published.
	assert.Len(t, notif.SendMatchNotificationCalls, 1)
	assert.Empty(t, ps.SendMessageCalls)
	assert.Empty(t, store.UpdateProcessingStatusCalls)
}

func TestProcessMatches_CompletedMatchIsUntouched(t *testing.T) {
	p, store, notif, _ := newTestProcessor()

	store.GetMatchesForProcessingFunc = func() ([]club.ScheduledMatch, error) {
		return []club.ScheduledMatch{{
			ID:               "match-1",
			CourtID:          "court-1",
			ProcessingStatus: club.StatusCompleted,
		}}, nil
	}

	p.ProcessMatches(false)

	assert.Empty(t, notif.SendMatchNotificationCalls)
	assert.Empty(t, store.UpdateProcessingStatusCalls)
}

func TestProcessMatches_MissingCourtFallsBackToID(t *testing.T) {
	p, store, notif, _ := newTestProcessor()

	store.GetMatchesForProcessingFunc = func() ([]club.ScheduledMatch, error) {
		return []club.ScheduledMatch{{
			ID:               "match-1",
			CourtID:          "court-gone",
			ProcessingStatus: club.StatusNew,
		}}, nil
	}
	store.GetCourtFunc = func(courtID string) (*club.Court, error) {
		return nil, club.ErrCourtNotFound
	}

	p.ProcessMatches(false)

	require.Len(t, notif.SendMatchNotificationCalls, 1)
	assert.Equal(t, "court-gone", notif.SendMatchNotificationCalls[0].CourtName)
}

func TestProcessMatches_NoMatches(t *testing.T) {
	p, store, notif, _ := newTestProcessor()

	store.GetMatchesForProcessingFunc = func() ([]club.ScheduledMatch, error) {
		return nil, nil
	}

	p.ProcessMatches(false)

	assert.Empty(t, notif.SendMatchNotificationCalls)
}
