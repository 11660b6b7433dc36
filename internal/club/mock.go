package club

import "sync"

// MockStore is a mock implementation of the ClubStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayerFunc            func(player Player) error
	UpsertPlayersFunc           func(players []Player) error
	GetPlayerFunc               func(playerID string) (*Player, error)
	GetAllPlayersFunc           func() ([]Player, error)
	SetPairScoreFunc            func(playerA, playerB string, score int) error
	UpsertCourtFunc             func(court Court) error
	GetCourtFunc                func(courtID string) (*Court, error)
	GetAllCourtsFunc            func() ([]Court, error)
	GetSettingsFunc             func() (Settings, error)
	UpdateSettingsFunc          func(settings Settings) error
	ConfirmMatchFunc            func(match ScheduledMatch) error
	GetMatchFunc                func(matchID string) (*ScheduledMatch, error)
	GetMatchesForDateFunc       func(date string) ([]ScheduledMatch, error)
	GetMatchesForProcessingFunc func() ([]ScheduledMatch, error)
	UpdateProcessingStatusFunc  func(matchID string, status ProcessingStatus) error
	UpsertSlotTemplateFunc      func(date, courtID string, slots []string) error
	GetSlotsForDateFunc         func(date string) ([]string, error)
	ClearFunc                   func()

	// Call records
	UpsertPlayerCalls  []Player
	UpsertPlayersCalls [][]Player
	SetPairScoreCalls  []struct {
		PlayerA string
		PlayerB string
		Score   int
	}
	ConfirmMatchCalls           []ScheduledMatch
	UpdateProcessingStatusCalls []struct {
		MatchID string
		Status  ProcessingStatus
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) UpsertPlayer(player Player) error {
	m.mu.Lock()
	m.UpsertPlayerCalls = append(m.UpsertPlayerCalls, player)
	m.mu.Unlock()
	if m.UpsertPlayerFunc != nil {
		return m.UpsertPlayerFunc(player)
	}
	return nil
}

func (m *MockStore) UpsertPlayers(players []Player) error {
	m.mu.Lock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	m.mu.Unlock()
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) GetPlayer(playerID string) (*Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(playerID)
	}
	return nil, ErrPlayerNotFound
}

func (m *MockStore) GetAllPlayers() ([]Player, error) {
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) SetPairScore(playerA, playerB string, score int) error {
	m.mu.Lock()
	m.SetPairScoreCalls = append(m.SetPairScoreCalls, struct {
		PlayerA string
		PlayerB string
		Score   int
	}{playerA, playerB, score})
	m.mu.Unlock()
	if m.SetPairScoreFunc != nil {
		return m.SetPairScoreFunc(playerA, playerB, score)
	}
	return nil
}

func (m *MockStore) UpsertCourt(court Court) error {
	if m.UpsertCourtFunc != nil {
		return m.UpsertCourtFunc(court)
	}
	return nil
}

func (m *MockStore) GetCourt(courtID string) (*Court, error) {
	if m.GetCourtFunc != nil {
		return m.GetCourtFunc(courtID)
	}
	return nil, ErrCourtNotFound
}

func (m *MockStore) GetAllCourts() ([]Court, error) {
	if m.GetAllCourtsFunc != nil {
		return m.GetAllCourtsFunc()
	}
	return nil, nil
}

func (m *MockStore) GetSettings() (Settings, error) {
	if m.GetSettingsFunc != nil {
		return m.GetSettingsFunc()
	}
	return DefaultSettings(), nil
}

func (m *MockStore) UpdateSettings(settings Settings) error {
	if m.UpdateSettingsFunc != nil {
		return m.UpdateSettingsFunc(settings)
	}
	return nil
}

func (m *MockStore) ConfirmMatch(match ScheduledMatch) error {
	m.mu.Lock()
	m.ConfirmMatchCalls = append(m.ConfirmMatchCalls, match)
	m.mu.Unlock()
	if m.ConfirmMatchFunc != nil {
		return m.ConfirmMatchFunc(match)
	}
	return nil
}

func (m *MockStore) GetMatch(matchID string) (*ScheduledMatch, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(matchID)
	}
	return nil, ErrMatchNotFound
}

func (m *MockStore) GetMatchesForDate(date string) ([]ScheduledMatch, error) {
	if m.GetMatchesForDateFunc != nil {
		return m.GetMatchesForDateFunc(date)
	}
	return nil, nil
}

func (m *MockStore) GetMatchesForProcessing() ([]ScheduledMatch, error) {
	if m.GetMatchesForProcessingFunc != nil {
		return m.GetMatchesForProcessingFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProcessingStatus(matchID string, status ProcessingStatus) error {
	m.mu.Lock()
	m.UpdateProcessingStatusCalls = append(m.UpdateProcessingStatusCalls, struct {
		MatchID string
		Status  ProcessingStatus
	}{matchID, status})
	m.mu.Unlock()
	if m.UpdateProcessingStatusFunc != nil {
		return m.UpdateProcessingStatusFunc(matchID, status)
	}
	return nil
}

func (m *MockStore) UpsertSlotTemplate(date, courtID string, slots []string) error {
	if m.UpsertSlotTemplateFunc != nil {
		return m.UpsertSlotTemplateFunc(date, courtID, slots)
	}
	return nil
}

func (m *MockStore) GetSlotsForDate(date string) ([]string, error) {
	if m.GetSlotsForDateFunc != nil {
		return m.GetSlotsForDateFunc(date)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}
