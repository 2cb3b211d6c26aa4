package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelink/notelink/internal/client/storage"
)

// создаём тестовое BoltDB хранилище
func createTestStorage(t *testing.T) (*Storage, func()) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "client_test.db")

	ctx := context.Background()
	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		require.NoError(t, store.Close())
		require.NoError(t, os.RemoveAll(tmpDir))
	}

	return store, cleanup
}

func TestStorage_SaveGetDeleteAuth(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	auth := &storage.AuthData{
		ActorID:     "actor-id-123",
		AccessToken: "jwt-access-token",
		ServerURL:   "http://localhost:8080",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
	}

	// GetAuth до сохранения выдаст ErrAuthNotFound
	_, err := store.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	// Сохраняем auth
	err = store.SaveAuth(ctx, auth)
	require.NoError(t, err)

	// Получаем auth и сравниваем
	got, err := store.GetAuth(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, auth.ActorID, got.ActorID)
	assert.Equal(t, auth.AccessToken, got.AccessToken)
	assert.Equal(t, auth.ServerURL, got.ServerURL)
	assert.Equal(t, auth.ExpiresAt, got.ExpiresAt)

	// IsAuthenticated должна вернуть true (токен не просрочен)
	authOk, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, authOk)

	// Обновляем auth с истекшим токеном
	auth.ExpiresAt = time.Now().Add(-time.Hour).Unix()
	err = store.SaveAuth(ctx, auth)
	require.NoError(t, err)

	authOk, err = store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authOk)

	// Удаляем auth
	err = store.DeleteAuth(ctx)
	require.NoError(t, err)

	// Повторное удаление выдаст ErrAuthNotFound
	err = store.DeleteAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	// IsAuthenticated без данных вернет false без ошибки
	authOk, err = store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.False(t, authOk)
}

func TestStorage_IsAuthenticated_NoExpiry(t *testing.T) {
	ctx := context.Background()
	store, cleanup := createTestStorage(t)
	defer cleanup()

	// ExpiresAt == 0 означает токен без известного срока
	err := store.SaveAuth(ctx, &storage.AuthData{
		ActorID:     "actor-id-123",
		AccessToken: "jwt-access-token",
	})
	require.NoError(t, err)

	authOk, err := store.IsAuthenticated(ctx)
	require.NoError(t, err)
	assert.True(t, authOk)
}
