package tfasms

import "errors"

var (
	// ErrSessionNotFound is returned when no verification session exists for a user
	ErrSessionNotFound = errors.New("verification session not found")

	// ErrNoDestination is returned when a user has no phone number on file
	ErrNoDestination = errors.New("no phone number on file for user")

	// ErrTransportFailure is returned when the SMS gateway reports a delivery failure.
	// Sends are never retried automatically; the caller is expected to offer an
	// explicit resend.
	ErrTransportFailure = errors.New("failed to send verification code")

	// ErrCooldownActive is returned when a code was sent too recently to send another
	ErrCooldownActive = errors.New("a code was sent recently, please wait before requesting another")

	// ErrMaxAttemptsReached is returned when the attempt cap is exhausted and a new
	// code must be requested before validation can continue
	ErrMaxAttemptsReached = errors.New("maximum number of attempts reached, please request a new code")

	// ErrInvalidCode is returned when a submitted code does not match the stored code
	ErrInvalidCode = errors.New("invalid verification code")
)
