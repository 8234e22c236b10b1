package tfasms

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VerificationSession represents the per-user verification state without
// database-specific types. At most one session is live per user; issuing a
// new code overwrites the previous one.
type VerificationSession struct {
	UserID   uuid.UUID `json:"user_id"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
	Attempts int       `json:"attempts"`
}

// SessionRepository defines the interface for verification session storage.
//
// SaveCode and SetAttempts are upserts: writing to a user without a session
// creates one. Absence is reported as ErrSessionNotFound so callers can tell
// it apart from storage failure.
type SessionRepository interface {
	// GetSession retrieves the verification session for a user.
	GetSession(ctx context.Context, userID uuid.UUID) (VerificationSession, error)
	// SaveCode stores a newly issued code and its issue time, overwriting any
	// previous code. Attempts are left untouched.
	SaveCode(ctx context.Context, userID uuid.UUID, code string, issuedAt time.Time) error
	// SetAttempts stores the attempt counter for a user.
	SetAttempts(ctx context.Context, userID uuid.UUID, attempts int) error
	// DeleteSession removes the code, issue time and attempt counter for a user.
	// Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, userID uuid.UUID) error
}
