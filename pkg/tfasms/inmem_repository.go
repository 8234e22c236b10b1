package tfasms

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemorySessionRepository implements SessionRepository using in-memory
// storage. All data is lost when the process stops.
type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]VerificationSession
}

// NewInMemorySessionRepository creates a new in-memory session repository
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[uuid.UUID]VerificationSession),
	}
}

// GetSession retrieves the verification session for a user
func (r *InMemorySessionRepository) GetSession(ctx context.Context, userID uuid.UUID) (VerificationSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.sessions[userID]
	if !ok {
		return VerificationSession{}, ErrSessionNotFound
	}
	return sess, nil
}

// SaveCode stores a newly issued code, overwriting any previous one
func (r *InMemorySessionRepository) SaveCode(ctx context.Context, userID uuid.UUID, code string, issuedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.sessions[userID]
	sess.UserID = userID
	sess.Code = code
	sess.IssuedAt = issuedAt
	r.sessions[userID] = sess
	return nil
}

// SetAttempts stores the attempt counter for a user
func (r *InMemorySessionRepository) SetAttempts(ctx context.Context, userID uuid.UUID, attempts int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.sessions[userID]
	sess.UserID = userID
	sess.Attempts = attempts
	r.sessions[userID] = sess
	return nil
}

// DeleteSession removes all verification state for a user
func (r *InMemorySessionRepository) DeleteSession(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)
	return nil
}
