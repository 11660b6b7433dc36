package notifier

import (
	"sync"

	"github.com/jmadsen/courtline/internal/club"
	"github.com/jmadsen/courtline/internal/generator"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendMatchNotificationFunc func(match *club.ScheduledMatch, courtName string, dryRun bool) error
	SendProposalDigestFunc    func(date string, proposals []generator.Proposal, dryRun bool) error

	// Call records
	SendMatchNotificationCalls []struct {
		Match     *club.ScheduledMatch
		CourtName string
	}
	SendProposalDigestCalls []struct {
		Date      string
		Proposals []generator.Proposal
	}
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchNotificationCalls = nil
	m.SendProposalDigestCalls = nil
}

func (m *Mock) SendMatchNotification(match *club.ScheduledMatch, courtName string, dryRun bool) error {
	m.mu.Lock()
	m.SendMatchNotificationCalls = append(m.SendMatchNotificationCalls, struct {
		Match     *club.ScheduledMatch
		CourtName string
	}{match, courtName})
	m.mu.Unlock()
	if m.SendMatchNotificationFunc != nil {
		return m.SendMatchNotificationFunc(match, courtName, dryRun)
	}
	return nil
}

func (m *Mock) SendProposalDigest(date string, proposals []generator.Proposal, dryRun bool) error {
	m.mu.Lock()
	m.SendProposalDigestCalls = append(m.SendProposalDigestCalls, struct {
		Date      string
		Proposals []generator.Proposal
	}{date, proposals})
	m.mu.Unlock()
	if m.SendProposalDigestFunc != nil {
		return m.SendProposalDigestFunc(date, proposals, dryRun)
	}
	return nil
}
