package tfasms

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-tfa/pkg/phonedir"
	"github.com/tendant/simple-tfa/pkg/sms"
)

const (
	// DefaultMaxAttempts is the number of validation attempts allowed per code
	DefaultMaxAttempts = 3
	// DefaultResendCooldown is the minimum interval between two sends
	DefaultResendCooldown = 30 * time.Second
	// DefaultCodeExpiry is how long an issued code stays valid
	DefaultCodeExpiry = 5 * time.Minute
	// DefaultMessagePrefix prefixes the code in the SMS body
	DefaultMessagePrefix = "Your verification code is:"
)

// VerificationService owns the one-time-code lifecycle for SMS two-factor
// authentication: generation, storage, expiry, resend throttling and
// attempt-limited validation.
//
// Operations on the same user are serialized with a per-user mutex so that
// duplicate form submissions cannot race on the attempt counter.
type VerificationService struct {
	repo   SessionRepository
	phones phonedir.PhoneDirectory
	sender sms.Sender

	maxAttempts    int
	resendCooldown time.Duration
	codeExpiry     time.Duration
	messagePrefix  string

	mu        sync.Mutex
	userLocks map[uuid.UUID]*sync.Mutex
}

// VerificationServiceOption defines configuration options
type VerificationServiceOption func(*VerificationService)

// WithMaxAttempts sets the number of validation attempts allowed per code
func WithMaxAttempts(n int) VerificationServiceOption {
	return func(s *VerificationService) {
		s.maxAttempts = n
	}
}

// WithResendCooldown sets the minimum interval between two sends
func WithResendCooldown(d time.Duration) VerificationServiceOption {
	return func(s *VerificationService) {
		s.resendCooldown = d
	}
}

// WithCodeExpiry sets how long an issued code stays valid
func WithCodeExpiry(d time.Duration) VerificationServiceOption {
	return func(s *VerificationService) {
		s.codeExpiry = d
	}
}

// WithMessagePrefix sets the text placed before the code in the SMS body
func WithMessagePrefix(prefix string) VerificationServiceOption {
	return func(s *VerificationService) {
		s.messagePrefix = prefix
	}
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	repo SessionRepository,
	phones phonedir.PhoneDirectory,
	sender sms.Sender,
	opts ...VerificationServiceOption,
) *VerificationService {
	service := &VerificationService{
		repo:           repo,
		phones:         phones,
		sender:         sender,
		maxAttempts:    DefaultMaxAttempts,
		resendCooldown: DefaultResendCooldown,
		codeExpiry:     DefaultCodeExpiry,
		messagePrefix:  DefaultMessagePrefix,
		userLocks:      make(map[uuid.UUID]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// GenerateCode produces a cryptographically-uniform 6-digit decimal code,
// zero-padded ("007" stays "007")
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Begin starts a verification round for a user at authentication time.
//
// The attempt counter is reset unconditionally, so a fresh login always gets
// a clean attempt budget even when the code itself is reused. A new code is
// generated and sent only when none exists or the existing one is older than
// the code expiry; expiry-driven regeneration ignores the resend cooldown
// because no valid code exists. A live, unexpired code is kept as-is with no
// duplicate send.
func (s *VerificationService) Begin(ctx context.Context, userID uuid.UUID) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.SetAttempts(ctx, userID, 0); err != nil {
		return fmt.Errorf("failed to reset attempts: %w", err)
	}

	sess, err := s.repo.GetSession(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return s.sendNewCode(ctx, userID, true)
		}
		return fmt.Errorf("failed to load verification session: %w", err)
	}

	if sess.Code == "" || time.Since(sess.IssuedAt) > s.codeExpiry {
		slog.Info("No valid code found or code expired, generating new one", "userId", userID)
		return s.sendNewCode(ctx, userID, true)
	}

	return nil
}

// Ready reports whether the user has a resolvable SMS destination. No side
// effects.
func (s *VerificationService) Ready(ctx context.Context, userID uuid.UUID) bool {
	_, err := s.phones.GetPhone(ctx, userID)
	if err != nil && !errors.Is(err, phonedir.ErrPhoneNotFound) {
		slog.Warn("Failed to resolve phone number", "userId", userID, "error", err)
	}
	return err == nil
}

// Validate checks a submitted code against the stored one. A nil return means
// the code was accepted.
//
// Order matters: the attempt cap is checked first and, once reached, refuses
// further comparison without consuming attempts (ErrMaxAttemptsReached). Below
// the cap, the attempt is persisted before the comparison, so a crash
// mid-validation still counts it. Comparison is exact string equality; an
// absent stored code never matches anything, including an empty submission.
func (s *VerificationService) Validate(ctx context.Context, userID uuid.UUID, submittedCode string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.repo.GetSession(ctx, userID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("failed to load verification session: %w", err)
	}

	if sess.Attempts >= s.maxAttempts {
		slog.Warn("Maximum attempts reached", "userId", userID)
		return ErrMaxAttemptsReached
	}

	if err := s.repo.SetAttempts(ctx, userID, sess.Attempts+1); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	if sess.Code == "" || submittedCode != sess.Code {
		return ErrInvalidCode
	}

	return nil
}

// SendCode generates and sends a new code, honoring the resend cooldown.
// Returns ErrCooldownActive while the cooldown window from the last send is
// still open.
func (s *VerificationService) SendCode(ctx context.Context, userID uuid.UUID) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	return s.sendNewCode(ctx, userID, false)
}

// Resend clears the current code, attempt counter and send timestamp, then
// generates and sends a fresh code unconditionally. The resend cooldown is
// not consulted here; deployments that expose this over HTTP should rate
// limit the route (see cmd/tfasms).
func (s *VerificationService) Resend(ctx context.Context, userID uuid.UUID) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.DeleteSession(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear verification session: %w", err)
	}

	return s.sendNewCode(ctx, userID, true)
}

// Clear deletes all verification state for a user, returning the session to
// its initial state. Called on logout and on a fresh login-username
// submission.
func (s *VerificationService) Clear(ctx context.Context, userID uuid.UUID) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repo.DeleteSession(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear verification session: %w", err)
	}
	return nil
}

// RemainingAttempts returns how many validation attempts are left against the
// current code
func (s *VerificationService) RemainingAttempts(ctx context.Context, userID uuid.UUID) (int, error) {
	sess, err := s.repo.GetSession(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return s.maxAttempts, nil
		}
		return 0, fmt.Errorf("failed to load verification session: %w", err)
	}

	remaining := s.maxAttempts - sess.Attempts
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// CooldownRemaining returns how long until another code may be sent. Zero
// means a send is allowed now. A missing send timestamp counts as infinitely
// long ago.
func (s *VerificationService) CooldownRemaining(ctx context.Context, userID uuid.UUID) (time.Duration, error) {
	sess, err := s.repo.GetSession(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to load verification session: %w", err)
	}

	if sess.IssuedAt.IsZero() {
		return 0, nil
	}

	elapsed := time.Since(sess.IssuedAt)
	if elapsed >= s.resendCooldown {
		return 0, nil
	}
	return s.resendCooldown - elapsed, nil
}

// CanSend reports whether the resend cooldown allows sending a code now
func (s *VerificationService) CanSend(ctx context.Context, userID uuid.UUID) (bool, error) {
	remaining, err := s.CooldownRemaining(ctx, userID)
	if err != nil {
		return false, err
	}
	return remaining == 0, nil
}

// MaxAttempts returns the configured attempt cap
func (s *VerificationService) MaxAttempts() int {
	return s.maxAttempts
}

// sendNewCode generates, stores and dispatches a fresh code. Callers must
// hold the user lock. The code and send timestamp are persisted before the
// send, so a failed send still starts the cooldown window; the explicit
// resend path clears them again anyway.
func (s *VerificationService) sendNewCode(ctx context.Context, userID uuid.UUID, bypassCooldown bool) error {
	phone, err := s.phones.GetPhone(ctx, userID)
	if err != nil {
		if errors.Is(err, phonedir.ErrPhoneNotFound) {
			slog.Warn("No phone number found for user", "userId", userID)
			return ErrNoDestination
		}
		return fmt.Errorf("failed to resolve phone number: %w", err)
	}

	if !bypassCooldown {
		sess, err := s.repo.GetSession(ctx, userID)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("failed to load verification session: %w", err)
		}
		if !sess.IssuedAt.IsZero() {
			if elapsed := time.Since(sess.IssuedAt); elapsed < s.resendCooldown {
				return fmt.Errorf("%w (%.0fs remaining)", ErrCooldownActive, (s.resendCooldown - elapsed).Seconds())
			}
		}
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}

	if err := s.repo.SaveCode(ctx, userID, code, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	body := fmt.Sprintf("%s %s", s.messagePrefix, code)
	if err := s.sender.Send(ctx, phone, body); err != nil {
		slog.Error("Failed to send verification code", "userId", userID, "error", err)
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}

	slog.Info("Verification code sent", "userId", userID)
	return nil
}

// userLock returns the mutex serializing operations for a single user.
// Locks are kept for the lifetime of the service.
func (s *VerificationService) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}
