package phonedir

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryPhoneDirectory implements PhoneDirectory using in-memory storage.
// Useful for development, demos and tests.
type InMemoryPhoneDirectory struct {
	mu     sync.RWMutex
	phones map[uuid.UUID]string
}

// NewInMemoryPhoneDirectory creates a new in-memory phone directory
func NewInMemoryPhoneDirectory() *InMemoryPhoneDirectory {
	return &InMemoryPhoneDirectory{
		phones: make(map[uuid.UUID]string),
	}
}

// GetPhone retrieves the phone number for a user
func (d *InMemoryPhoneDirectory) GetPhone(ctx context.Context, userID uuid.UUID) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	phone, ok := d.phones[userID]
	if !ok || phone == "" {
		return "", ErrPhoneNotFound
	}
	return phone, nil
}

// SetPhone stores or replaces the phone number for a user
func (d *InMemoryPhoneDirectory) SetPhone(userID uuid.UUID, phone string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.phones[userID] = phone
}

// DeletePhone removes the phone number for a user
func (d *InMemoryPhoneDirectory) DeletePhone(userID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.phones, userID)
}
