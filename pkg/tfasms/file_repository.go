package tfasms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileSessionRepository implements SessionRepository using file-based storage
type FileSessionRepository struct {
	dataDir  string
	sessions map[uuid.UUID]VerificationSession
	mutex    sync.RWMutex
}

// NewFileSessionRepository creates a new file-based session repository
func NewFileSessionRepository(dataDir string) (*FileSessionRepository, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileSessionRepository{
		dataDir:  dataDir,
		sessions: make(map[uuid.UUID]VerificationSession),
	}

	// Load existing data
	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

// GetSession retrieves the verification session for a user
func (r *FileSessionRepository) GetSession(ctx context.Context, userID uuid.UUID) (VerificationSession, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sess, ok := r.sessions[userID]
	if !ok {
		return VerificationSession{}, ErrSessionNotFound
	}
	return sess, nil
}

// SaveCode stores a newly issued code, overwriting any previous one
func (r *FileSessionRepository) SaveCode(ctx context.Context, userID uuid.UUID, code string, issuedAt time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	prev, existed := r.sessions[userID]

	sess := prev
	sess.UserID = userID
	sess.Code = code
	sess.IssuedAt = issuedAt
	r.sessions[userID] = sess

	if err := r.save(); err != nil {
		// Rollback
		if existed {
			r.sessions[userID] = prev
		} else {
			delete(r.sessions, userID)
		}
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// SetAttempts stores the attempt counter for a user
func (r *FileSessionRepository) SetAttempts(ctx context.Context, userID uuid.UUID, attempts int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	prev, existed := r.sessions[userID]

	sess := prev
	sess.UserID = userID
	sess.Attempts = attempts
	r.sessions[userID] = sess

	if err := r.save(); err != nil {
		if existed {
			r.sessions[userID] = prev
		} else {
			delete(r.sessions, userID)
		}
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// DeleteSession removes all verification state for a user
func (r *FileSessionRepository) DeleteSession(ctx context.Context, userID uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	prev, existed := r.sessions[userID]
	if !existed {
		return nil
	}

	delete(r.sessions, userID)

	if err := r.save(); err != nil {
		r.sessions[userID] = prev
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// load reads session data from file
func (r *FileSessionRepository) load() error {
	filePath := filepath.Join(r.dataDir, "tfa_sms_sessions.json")

	// If file doesn't exist, start with empty map
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// If file is empty, start with empty map
	if len(data) == 0 {
		return nil
	}

	var sessions []VerificationSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	r.sessions = make(map[uuid.UUID]VerificationSession)
	for _, sess := range sessions {
		r.sessions[sess.UserID] = sess
	}

	return nil
}

// save writes session data to file atomically
func (r *FileSessionRepository) save() error {
	sessions := make([]VerificationSession, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "tfa_sms_sessions.json.tmp")
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "tfa_sms_sessions.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
