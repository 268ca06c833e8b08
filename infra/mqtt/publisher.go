package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	coremqtt "github.com/kilianp07/haulage/core/mqtt"
)

// Message is a payload captured by MockPublisher.
type Message struct {
	Subject string
	Payload []byte
}

// MockPublisher is an in-memory publisher used in tests.
type MockPublisher struct {
	Messages []Message
	// Fail lists subjects whose publication fails.
	Fail map[string]bool
	mu   sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Fail: make(map[string]bool)}
}

// Publish records the JSON encoding of v or returns an error if configured to fail.
func (m *MockPublisher) Publish(_ context.Context, subject string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail[subject] {
		return fmt.Errorf("%w: %s", coremqtt.ErrPublish, subject)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.Messages = append(m.Messages, Message{Subject: subject, Payload: data})
	return nil
}

// Close is a no-op.
func (m *MockPublisher) Close() {}

// Subjects returns the subjects published so far, in order.
func (m *MockPublisher) Subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Messages))
	for i, msg := range m.Messages {
		out[i] = msg.Subject
	}
	return out
}

// NewPublisher returns a PahoPublisher when a broker is configured and a
// NopPublisher otherwise.
func NewPublisher(cfg Config) (coremqtt.Publisher, error) {
	if !cfg.Enabled() {
		return coremqtt.NopPublisher{}, nil
	}
	return NewPahoPublisher(cfg)
}
