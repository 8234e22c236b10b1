package tfasms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemorySessionRepository(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()

	userID := uuid.New()
	issuedAt := time.Now().UTC()

	t.Run("GetMissingSession", func(t *testing.T) {
		_, err := repo.GetSession(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("SaveAndGet", func(t *testing.T) {
		require.NoError(t, repo.SaveCode(ctx, userID, "123456", issuedAt))

		sess, err := repo.GetSession(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, sess.UserID)
		assert.Equal(t, "123456", sess.Code)
		assert.True(t, sess.IssuedAt.Equal(issuedAt))
	})

	t.Run("SetAttemptsPreservesCode", func(t *testing.T) {
		require.NoError(t, repo.SetAttempts(ctx, userID, 2))

		sess, err := repo.GetSession(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "123456", sess.Code)
		assert.Equal(t, 2, sess.Attempts)
	})

	t.Run("SetAttemptsUpsertsNewSession", func(t *testing.T) {
		other := uuid.New()
		require.NoError(t, repo.SetAttempts(ctx, other, 1))

		sess, err := repo.GetSession(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, 1, sess.Attempts)
		assert.Empty(t, sess.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteSession(ctx, userID))

		_, err := repo.GetSession(ctx, userID)
		assert.ErrorIs(t, err, ErrSessionNotFound)

		// Deleting again is fine
		assert.NoError(t, repo.DeleteSession(ctx, userID))
	})
}

func TestInMemorySessionRepository_ConcurrentAccess(t *testing.T) {
	repo := NewInMemorySessionRepository()
	ctx := context.Background()
	userID := uuid.New()

	numGoroutines := 50
	var wg sync.WaitGroup
	wg.Add(numGoroutines * 2)

	for i := 0; i < numGoroutines; i++ {
		go func(n int) {
			defer wg.Done()
			_ = repo.SetAttempts(ctx, userID, n)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = repo.GetSession(ctx, userID)
		}()
	}
	wg.Wait()

	sess, err := repo.GetSession(ctx, userID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sess.Attempts, 0)
	assert.Less(t, sess.Attempts, numGoroutines)
}
