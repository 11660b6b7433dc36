package processor

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/metrics"
	"github.com/jmadsen/courtline/internal/pubsub"
)

// New creates a new Processor.
func New(store Store, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:    store,
		pubsub:   pubsub,
		notifier: notifier,
		metrics:  metrics,
	}
}

// ProcessMatches fetches matches that need processing and advances them through the state machine.
func (p *Processor) ProcessMatches(dryRun bool) {
	log.Info("Starting match processing...")
	matches, err := p.store.GetMatchesForProcessing()
	if err != nil {
		log.Error("Failed to get matches for processing", "error", err)
		return
	}

	if len(matches) == 0 {
		log.Info("No matches to process.")
		return
	}

	log.Info("Found matches to process", "count", len(matches))
	for i := range matches {
		startTime := time.Now()
		p.processMatch(&matches[i], dryRun)
		duration := time.Since(startTime).Milliseconds()
		p.metrics.ObserveProcessingDuration(float64(duration))
	}
	log.Info("Match processing finished.")
}

func (p *Processor) processMatch(match *club.ScheduledMatch, dryRun bool) {
	log.Info("Processing match", "matchID", match.ID, "initial_status", match.ProcessingStatus)
	for {
		currentState := match.ProcessingStatus
		log.Debug("Evaluating match state", "matchID", match.ID, "status", currentState)

		switch currentState {
		case club.StatusNew:
			log.Info("Match is new. Sending confirmation notification.", "matchID", match.ID)
			if !dryRun {
				if err := p.pubsub.SendMessage(string(pubsub.EventMatchConfirmed), match); err != nil {
					log.Error("Failed to publish match confirmed event", "error", err, "matchID", match.ID)
				}
			}
			if err := p.notifier.SendMatchNotification(match, p.courtName(match.CourtID), dryRun); err != nil {
				log.Error("Failed to send match notification", "error", err, "matchID", match.ID)
			}
			p.updateStatus(match, club.StatusNotified, dryRun)

		case club.StatusNotified:
			log.Info("Match has been notified. Marking as complete.", "matchID", match.ID)
			p.updateStatus(match, club.StatusCompleted, dryRun)

		case club.StatusCompleted:
			log.Debug("Match is complete. No further processing needed.", "matchID", match.ID)
			return // End of the line for this match

		default:
			log.Warn("Unknown processing status", "status", currentState, "matchID", match.ID)
			return // Exit if status is unknown
		}

		// If the status hasn't changed, we're done with this match for now.
		if match.ProcessingStatus == currentState {
			log.Debug("Match state did not change. Finished processing for now.", "matchID", match.ID, "status", currentState)
			break
		}
	}
	log.Info("Finished processing match", "matchID", match.ID, "final_status", match.ProcessingStatus)
}

// courtName resolves a court id to its display name for notifications.
// A missing court is not fatal; the id itself is used instead.
func (p *Processor) courtName(courtID string) string {
	court, err := p.store.GetCourt(courtID)
	if err != nil {
		if !errors.Is(err, club.ErrCourtNotFound) {
			log.Error("Failed to look up court for notification", "error", err, "courtID", courtID)
		}
		return courtID
	}
	return court.Name
}

func (p *Processor) updateStatus(match *club.ScheduledMatch, newStatus club.ProcessingStatus, dryRun bool) {
	if dryRun {
		log.Info("[Dry Run] Would update match status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Update in-memory for the loop
		return
	}

	err := p.store.UpdateProcessingStatus(match.ID, newStatus)
	if err != nil {
		log.Error("Failed to update processing status", "error", err, "matchID", match.ID)
	} else {
		log.Debug("Successfully updated status", "matchID", match.ID, "from", match.ProcessingStatus, "to", newStatus)
		match.ProcessingStatus = newStatus // Keep the in-memory object in sync
	}
}
