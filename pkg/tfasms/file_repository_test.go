package tfasms

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupFileRepo creates a temporary directory and repository for testing
func setupFileRepo(t *testing.T) (*FileSessionRepository, string) {
	tempDir := filepath.Join(os.TempDir(), "tfasms-test-"+uuid.New().String())
	err := os.MkdirAll(tempDir, 0755)
	require.NoError(t, err)

	repo, err := NewFileSessionRepository(tempDir)
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(tempDir)
	})

	return repo, tempDir
}

func TestFileSessionRepository_NewRepository(t *testing.T) {
	tempDir := filepath.Join(os.TempDir(), "tfasms-test-new-"+uuid.New().String())
	defer os.RemoveAll(tempDir)

	// Should create directory if it doesn't exist
	repo, err := NewFileSessionRepository(tempDir)
	assert.NoError(t, err)
	assert.NotNil(t, repo)
	assert.DirExists(t, tempDir)
}

func TestFileSessionRepository_SaveCode(t *testing.T) {
	repo, _ := setupFileRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	issuedAt := time.Now().UTC().Truncate(time.Second)

	t.Run("Success", func(t *testing.T) {
		err := repo.SaveCode(ctx, userID, "123456", issuedAt)
		require.NoError(t, err)

		sess, err := repo.GetSession(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "123456", sess.Code)
		assert.True(t, sess.IssuedAt.Equal(issuedAt))
		assert.Equal(t, 0, sess.Attempts)
	})

	t.Run("OverwritesPreviousCode", func(t *testing.T) {
		later := issuedAt.Add(time.Minute)
		err := repo.SaveCode(ctx, userID, "654321", later)
		require.NoError(t, err)

		sess, err := repo.GetSession(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "654321", sess.Code)
		assert.True(t, sess.IssuedAt.Equal(later))
	})

	t.Run("PreservesAttempts", func(t *testing.T) {
		require.NoError(t, repo.SetAttempts(ctx, userID, 2))
		require.NoError(t, repo.SaveCode(ctx, userID, "111111", issuedAt))

		sess, err := repo.GetSession(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, sess.Attempts)
	})
}

func TestFileSessionRepository_SetAttempts(t *testing.T) {
	repo, _ := setupFileRepo(t)
	ctx := context.Background()

	userID := uuid.New()

	t.Run("UpsertsWithoutCode", func(t *testing.T) {
		err := repo.SetAttempts(ctx, userID, 1)
		require.NoError(t, err)

		sess, err := repo.GetSession(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 1, sess.Attempts)
		assert.Empty(t, sess.Code)
	})

	t.Run("PreservesCode", func(t *testing.T) {
		require.NoError(t, repo.SaveCode(ctx, userID, "123456", time.Now().UTC()))
		require.NoError(t, repo.SetAttempts(ctx, userID, 3))

		sess, err := repo.GetSession(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "123456", sess.Code)
		assert.Equal(t, 3, sess.Attempts)
	})
}

func TestFileSessionRepository_DeleteSession(t *testing.T) {
	repo, _ := setupFileRepo(t)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, repo.SaveCode(ctx, userID, "123456", time.Now().UTC()))

	t.Run("Success", func(t *testing.T) {
		err := repo.DeleteSession(ctx, userID)
		require.NoError(t, err)

		_, err = repo.GetSession(ctx, userID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("MissingSessionIsNotAnError", func(t *testing.T) {
		err := repo.DeleteSession(ctx, uuid.New())
		assert.NoError(t, err)
	})
}

func TestFileSessionRepository_GetSession(t *testing.T) {
	repo, _ := setupFileRepo(t)
	ctx := context.Background()

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetSession(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestFileSessionRepository_Persistence(t *testing.T) {
	tempDir := filepath.Join(os.TempDir(), "tfasms-test-persist-"+uuid.New().String())
	defer os.RemoveAll(tempDir)

	ctx := context.Background()
	userID := uuid.New()
	issuedAt := time.Now().UTC().Truncate(time.Second)

	// Create repository and add data
	repo1, err := NewFileSessionRepository(tempDir)
	require.NoError(t, err)

	require.NoError(t, repo1.SaveCode(ctx, userID, "123456", issuedAt))
	require.NoError(t, repo1.SetAttempts(ctx, userID, 2))

	// Create new repository from same directory (simulating restart)
	repo2, err := NewFileSessionRepository(tempDir)
	require.NoError(t, err)

	// Data should be loaded
	sess, err := repo2.GetSession(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "123456", sess.Code)
	assert.True(t, sess.IssuedAt.Equal(issuedAt))
	assert.Equal(t, 2, sess.Attempts)
}

func TestFileSessionRepository_ConcurrentAccess(t *testing.T) {
	repo, _ := setupFileRepo(t)
	ctx := context.Background()

	numGoroutines := 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			_ = repo.SaveCode(ctx, uuid.New(), "123456", time.Now().UTC())
		}()
	}
	wg.Wait()

	assert.Equal(t, numGoroutines, len(repo.sessions))
}

func TestFileSessionRepository_SaveLoad(t *testing.T) {
	repo, _ := setupFileRepo(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.SaveCode(ctx, uuid.New(), "123456", time.Now().UTC()))
	}

	initialCount := len(repo.sessions)

	// Save
	repo.mutex.Lock()
	err := repo.save()
	repo.mutex.Unlock()
	require.NoError(t, err)

	// Clear and reload
	repo.mutex.Lock()
	repo.sessions = make(map[uuid.UUID]VerificationSession)
	err = repo.load()
	repo.mutex.Unlock()
	require.NoError(t, err)

	assert.Equal(t, initialCount, len(repo.sessions))
}
