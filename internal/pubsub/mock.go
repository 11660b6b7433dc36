package pubsub

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Mock is a mock implementation of the PubSubClient interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendMessageFunc func(topic string, data any) error

	SendMessageCalls []struct {
		Topic string
		Data  any
	}
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendMessage(topic string, data any) error {
	m.mu.Lock()
	m.SendMessageCalls = append(m.SendMessageCalls, struct {
		Topic string
		Data  any
	}{topic, data})
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(topic, data)
	}
	return nil
}

func (m *Mock) ProcessMessage(data []byte, returnValue any) error {
	return msgpack.Unmarshal(data, returnValue)
}
