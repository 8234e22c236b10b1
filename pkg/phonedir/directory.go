package phonedir

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrPhoneNotFound is returned when a user has no phone number on file
var ErrPhoneNotFound = errors.New("phone number not found for user")

// PhoneDirectory resolves a user's SMS destination. Implementations return
// ErrPhoneNotFound when the user exists but has no number on file, or when the
// user is unknown; the two are indistinguishable to callers.
type PhoneDirectory interface {
	GetPhone(ctx context.Context, userID uuid.UUID) (string, error)
}
