// Package tfasms provides SMS one-time-code verification for simple-tfa.
//
// This package manages the lifecycle of six-digit verification codes:
// generation, delivery over SMS, expiry, resend cooldown, and
// attempt-capped validation.
//
// # Overview
//
// The tfasms package provides:
//   - Cryptographically random six-digit code generation
//   - Code delivery through a pluggable SMS sender
//   - Code expiry (5 minutes by default)
//   - Resend cooldown (30 seconds by default)
//   - Attempt-capped validation (3 attempts by default)
//   - Repository pattern for PostgreSQL, file, and in-memory storage
//
// # Basic Usage
//
//	import "github.com/tendant/simple-tfa/pkg/tfasms"
//
//	// Create service
//	repo := tfasms.NewInMemorySessionRepository()
//	service := tfasms.NewVerificationService(
//		repo,
//		phoneDirectory,
//		smsSender,
//		tfasms.WithMaxAttempts(3),
//		tfasms.WithResendCooldown(30*time.Second),
//		tfasms.WithCodeExpiry(5*time.Minute),
//	)
//
//	// Start a verification challenge (sends a code if none is live)
//	err := service.Begin(ctx, userID)
//
//	// Validate the code the user typed
//	err = service.Validate(ctx, userID, submittedCode)
//
// # Verification Flow
//
//	// Step 1: user passes primary authentication, challenge begins
//	if err := service.Begin(ctx, userID); err != nil {
//		return err
//	}
//
//	// Step 2: user submits the code from their phone
//	err := service.Validate(ctx, userID, code)
//	switch {
//	case err == nil:
//		// verified; clear state so a stale code cannot be replayed
//		service.Clear(ctx, userID)
//	case errors.Is(err, tfasms.ErrMaxAttemptsReached):
//		// too many wrong guesses; user must restart the challenge
//	case errors.Is(err, tfasms.ErrInvalidCode):
//		// wrong code, attempts remaining
//	}
//
// # Resending Codes
//
//	// User didn't receive the SMS: discard all state and send a fresh code
//	err := service.Resend(ctx, userID)
//
//	// Resend is unconditional at this layer; rate-limit the HTTP route
//	// that exposes it (see pkg/tfasms/api).
//
// # Repository Pattern
//
//	// PostgreSQL repository (migrations/tfa_sms.sql)
//	postgresRepo := tfasms.NewPostgresSessionRepository(pool)
//
//	// File-based repository (for development)
//	fileRepo, err := tfasms.NewFileSessionRepository("./data")
//
//	// Or pick by configuration
//	repo, err := tfasms.NewSessionRepository("postgres", tfasms.RepositoryConfig{Pool: pool})
//
// # Related Packages
//
//   - pkg/tfasms/api - HTTP handlers for the verification flow
//   - pkg/sms - SMS delivery (Twilio, debug, mock)
//   - pkg/phonedir - Phone number lookup per user
package tfasms
