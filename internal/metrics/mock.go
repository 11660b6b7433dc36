package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	generatorRuns        int
	proposalsCreated     int
	matchesConfirmed     int
	reservationsUpserted int
	reservationsDeleted  int
	notifSent            int
	notifFailed          int
	generationDurations  []float64
	processingDurations  []float64
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		generationDurations: make([]float64, 0),
	}
}

func (m *Mock) IncGeneratorRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generatorRuns++
}

func (m *Mock) AddProposalsCreated(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposalsCreated += count
}

func (m *Mock) IncMatchesConfirmed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesConfirmed++
}

func (m *Mock) IncReservationsUpserted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservationsUpserted++
}

func (m *Mock) IncReservationsDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservationsDeleted++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) ObserveGenerationDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationDurations = append(m.generationDurations, seconds)
}

func (m *Mock) ObserveProcessingDuration(ms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processingDurations = append(m.processingDurations, ms)
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = seconds
}

// Counts returns a snapshot of the recorded counters for assertions.
func (m *Mock) Counts() (generatorRuns, proposalsCreated, matchesConfirmed, notifSent, notifFailed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generatorRuns, m.proposalsCreated, m.matchesConfirmed, m.notifSent, m.notifFailed
}
