package phonedir

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPhoneDirectory implements PhoneDirectory backed by a users table
type PostgresPhoneDirectory struct {
	db *pgxpool.Pool
}

// NewPostgresPhoneDirectory creates a new PostgreSQL-based phone directory
func NewPostgresPhoneDirectory(db *pgxpool.Pool) *PostgresPhoneDirectory {
	return &PostgresPhoneDirectory{db: db}
}

// GetPhone retrieves the phone number for a user
func (d *PostgresPhoneDirectory) GetPhone(ctx context.Context, userID uuid.UUID) (string, error) {
	query := `
		SELECT phone
		FROM users
		WHERE id = $1
		AND deleted_at IS NULL
	`

	var phone sql.NullString
	err := d.db.QueryRow(ctx, query, userID).Scan(&phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPhoneNotFound
		}
		return "", fmt.Errorf("failed to get phone number: %w", err)
	}

	if !phone.Valid || phone.String == "" {
		return "", ErrPhoneNotFound
	}

	return phone.String, nil
}
