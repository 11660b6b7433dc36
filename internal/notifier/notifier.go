package notifier

import (
	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/generator"
)

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For confirmed matches entering the notification pipeline
	SendMatchNotification(match *club.ScheduledMatch, courtName string, dryRun bool) error
	// For summarising a generation run
	SendProposalDigest(date string, proposals []generator.Proposal, dryRun bool) error
}
