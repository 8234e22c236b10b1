package sms

import (
	"context"
	"errors"
	"sync"
)

// SentMessage records a single send observed by MockSender
type SentMessage struct {
	Phone string
	Body  string
}

// MockSender implements Sender for tests, recording every send
type MockSender struct {
	mu   sync.Mutex
	Sent []SentMessage
	// Err, when set, is returned by Send without recording the message
	Err error
}

// ErrMockSendFailed is a convenience error for scripting transport failures
var ErrMockSendFailed = errors.New("mock send failed")

func (m *MockSender) Send(ctx context.Context, phone, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMessage{Phone: phone, Body: body})
	return nil
}

// Last returns the most recently sent message, or false if nothing was sent
func (m *MockSender) Last() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Sent) == 0 {
		return SentMessage{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

// Count returns the number of messages sent so far
func (m *MockSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
