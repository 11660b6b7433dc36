package processor

import (
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/notifier"
)

// Store defines the database operations required by the processor.
type Store interface {
	GetMatchesForProcessing() ([]club.ScheduledMatch, error)
	UpdateProcessingStatus(matchID string, status club.ProcessingStatus) error
	GetCourt(courtID string) (*club.Court, error)
}

// Notifier defines the notification operations required by the processor.
type Notifier interface {
	notifier.Notifier
}
