package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/notelink/notelink/internal/client/api"
	"github.com/notelink/notelink/internal/client/storage"
)

func TestCli_RunStatus_Authenticated(t *testing.T) {
	store := newWorkspaceStoreMock()
	require.NoError(t, store.SaveSnapshot(t.Context(), snapshotWithStrokes("ab12cd")))

	authMock := &authServiceMock{
		CurrentActorFunc: func(ctx context.Context) (*storage.AuthData, error) {
			return &storage.AuthData{
				ActorID:     "actor-self",
				AccessToken: "token",
				ServerURL:   "http://localhost:8080",
				ExpiresAt:   time.Now().Add(time.Hour).Unix(),
			}, nil
		},
	}

	cli, io := newTestCli(&clientapi.RoomAPIMock{}, authMock, store)

	err := cli.Run(t.Context(), "status", nil)
	require.NoError(t, err)

	out := io.output.String()
	assert.Contains(t, out, "Status: Active")
	assert.Contains(t, out, "actor-self")
	assert.Contains(t, out, "ab12cd")
	assert.Contains(t, out, "1 stroke(s)")
}

func TestCli_RunStatus_NoCredentials(t *testing.T) {
	authMock := &authServiceMock{
		CurrentActorFunc: func(ctx context.Context) (*storage.AuthData, error) {
			return nil, storage.ErrAuthNotFound
		},
	}

	cli, io := newTestCli(&clientapi.RoomAPIMock{}, authMock, newWorkspaceStoreMock())

	err := cli.Run(t.Context(), "status", nil)
	require.NoError(t, err)

	out := io.output.String()
	assert.Contains(t, out, "No actor credentials")
	assert.Contains(t, out, "No saved workspaces")
}

func TestCli_RunLogout(t *testing.T) {
	called := false
	authMock := &authServiceMock{
		LogoutFunc: func(ctx context.Context) error {
			called = true
			return nil
		},
	}

	cli, io := newTestCli(&clientapi.RoomAPIMock{}, authMock, newWorkspaceStoreMock())

	err := cli.Run(t.Context(), "logout", nil)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, io.output.String(), "credentials removed")
}
