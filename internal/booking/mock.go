package booking

import "sync"

// MockStore is a mock implementation of the BookingStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	IsFreeFunc            func(courtID string, scope Scope, from, to string) (bool, error)
	UpsertFunc            func(reservation Reservation) (Reservation, error)
	DeleteRangeFunc       func(courtID string, scope Scope, from, to string) error
	DeleteAllForScopeFunc func(courtID string, scope Scope) error
	ListForCourtFunc      func(courtID string) ([]Reservation, error)

	// Call records
	IsFreeCalls []struct {
		CourtID string
		Scope   Scope
		From    string
		To      string
	}
	UpsertCalls []Reservation
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) IsFree(courtID string, scope Scope, from, to string) (bool, error) {
	m.mu.Lock()
	m.IsFreeCalls = append(m.IsFreeCalls, struct {
		CourtID string
		Scope   Scope
		From    string
		To      string
	}{courtID, scope, from, to})
	m.mu.Unlock()
	if m.IsFreeFunc != nil {
		return m.IsFreeFunc(courtID, scope, from, to)
	}
	return true, nil
}

func (m *MockStore) Upsert(reservation Reservation) (Reservation, error) {
	m.mu.Lock()
	m.UpsertCalls = append(m.UpsertCalls, reservation)
	m.mu.Unlock()
	if m.UpsertFunc != nil {
		return m.UpsertFunc(reservation)
	}
	return reservation, nil
}

func (m *MockStore) DeleteRange(courtID string, scope Scope, from, to string) error {
	if m.DeleteRangeFunc != nil {
		return m.DeleteRangeFunc(courtID, scope, from, to)
	}
	return nil
}

func (m *MockStore) DeleteAllForScope(courtID string, scope Scope) error {
	if m.DeleteAllForScopeFunc != nil {
		return m.DeleteAllForScopeFunc(courtID, scope)
	}
	return nil
}

func (m *MockStore) ListForCourt(courtID string) ([]Reservation, error) {
	if m.ListForCourtFunc != nil {
		return m.ListForCourtFunc(courtID)
	}
	return nil, nil
}
