package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/notelink/notelink/internal/client/api"
	"github.com/notelink/notelink/internal/client/iocli"
	"github.com/notelink/notelink/internal/client/storage"
)

// authServiceMock implements auth.Service via Func fields
type authServiceMock struct {
	EnsureActorFunc  func(ctx context.Context) (*storage.AuthData, error)
	CurrentActorFunc func(ctx context.Context) (*storage.AuthData, error)
	LogoutFunc       func(ctx context.Context) error
}

func (m *authServiceMock) EnsureActor(ctx context.Context) (*storage.AuthData, error) {
	if m.EnsureActorFunc != nil {
		return m.EnsureActorFunc(ctx)
	}
	return testAuthData(), nil
}

func (m *authServiceMock) CurrentActor(ctx context.Context) (*storage.AuthData, error) {
	if m.CurrentActorFunc != nil {
		return m.CurrentActorFunc(ctx)
	}
	return testAuthData(), nil
}

func (m *authServiceMock) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func testAuthData() *storage.AuthData {
	return &storage.AuthData{
		ActorID:     "actor-self",
		AccessToken: "test-token",
		ServerURL:   "http://localhost:8080",
	}
}

// workspaceStoreMock is an in-memory WorkspaceStorage and DocumentStorage
type workspaceStoreMock struct {
	snapshots map[string]*storage.Snapshot
	documents map[string][]byte
	mu        sync.Mutex
}

func newWorkspaceStoreMock() *workspaceStoreMock {
	return &workspaceStoreMock{
		snapshots: make(map[string]*storage.Snapshot),
		documents: make(map[string][]byte),
	}
}

func (m *workspaceStoreMock) SaveSnapshot(ctx context.Context, snapshot *storage.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *snapshot
	m.snapshots[snapshot.RoomID] = &cp
	return nil
}

func (m *workspaceStoreMock) GetSnapshot(ctx context.Context, roomID string) (*storage.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.snapshots[roomID]
	if !ok {
		return nil, storage.ErrSnapshotNotFound
	}
	cp := *snapshot
	return &cp, nil
}

func (m *workspaceStoreMock) DeleteSnapshot(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, roomID)
	return nil
}

func (m *workspaceStoreMock) ListRooms(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]string, 0, len(m.snapshots))
	for roomID := range m.snapshots {
		rooms = append(rooms, roomID)
	}
	return rooms, nil
}

func (m *workspaceStoreMock) SaveDocument(ctx context.Context, roomID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[roomID] = data
	return nil
}

func (m *workspaceStoreMock) GetDocument(ctx context.Context, roomID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.documents[roomID]
	if !ok {
		return nil, storage.ErrDocumentNotFound
	}
	return data, nil
}

func (m *workspaceStoreMock) DeleteDocument(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.documents, roomID)
	return nil
}

// capturingIO collects everything printed through the IO mock
type capturingIO struct {
	*iocli.IOMock
	output *strings.Builder
}

func newCapturingIO() *capturingIO {
	var output strings.Builder
	return &capturingIO{
		output: &output,
		IOMock: &iocli.IOMock{
			PrintlnFunc: func(a ...any) {
				output.WriteString(fmt.Sprintln(a...))
			},
			PrintfFunc: func(format string, a ...any) {
				output.WriteString(fmt.Sprintf(format, a...))
			},
		},
	}
}

func newTestCli(apiMock *api.RoomAPIMock, authMock *authServiceMock, store *workspaceStoreMock) (*Cli, *capturingIO) {
	io := newCapturingIO()
	return New(io, apiMock, authMock, store, store), io
}
