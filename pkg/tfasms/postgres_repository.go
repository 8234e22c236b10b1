package tfasms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSessionRepository implements SessionRepository using PostgreSQL.
// Schema: migrations/tfa_sms.sql.
type PostgresSessionRepository struct {
	db *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgreSQL-based session repository
func NewPostgresSessionRepository(db *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// GetSession retrieves the verification session for a user
func (r *PostgresSessionRepository) GetSession(ctx context.Context, userID uuid.UUID) (VerificationSession, error) {
	query := `
		SELECT user_id, code, issued_at, attempts
		FROM tfa_sms_sessions
		WHERE user_id = $1
	`

	var sess VerificationSession
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&sess.UserID,
		&sess.Code,
		&sess.IssuedAt,
		&sess.Attempts,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VerificationSession{}, ErrSessionNotFound
		}
		return VerificationSession{}, fmt.Errorf("failed to get session: %w", err)
	}

	return sess, nil
}

// SaveCode stores a newly issued code, overwriting any previous one
func (r *PostgresSessionRepository) SaveCode(ctx context.Context, userID uuid.UUID, code string, issuedAt time.Time) error {
	query := `
		INSERT INTO tfa_sms_sessions (user_id, code, issued_at, attempts)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (user_id)
		DO UPDATE SET code = EXCLUDED.code, issued_at = EXCLUDED.issued_at
	`

	if _, err := r.db.Exec(ctx, query, userID, code, issuedAt); err != nil {
		return fmt.Errorf("failed to save code: %w", err)
	}
	return nil
}

// SetAttempts stores the attempt counter for a user
func (r *PostgresSessionRepository) SetAttempts(ctx context.Context, userID uuid.UUID, attempts int) error {
	query := `
		INSERT INTO tfa_sms_sessions (user_id, code, issued_at, attempts)
		VALUES ($1, '', 'epoch', $2)
		ON CONFLICT (user_id)
		DO UPDATE SET attempts = EXCLUDED.attempts
	`

	if _, err := r.db.Exec(ctx, query, userID, attempts); err != nil {
		return fmt.Errorf("failed to set attempts: %w", err)
	}
	return nil
}

// DeleteSession removes all verification state for a user
func (r *PostgresSessionRepository) DeleteSession(ctx context.Context, userID uuid.UUID) error {
	query := `
		DELETE FROM tfa_sms_sessions
		WHERE user_id = $1
	`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
