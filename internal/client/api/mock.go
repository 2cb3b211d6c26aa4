package api

import (
	"context"
	"sync"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/pkg/api"
)

// RoomAPIMock is a mock implementation of RoomAPI for tests.
// Each method delegates to the corresponding Func field and
// records its calls.
type RoomAPIMock struct {
	AuthenticateFunc     func(ctx context.Context) (*api.ActorResponse, error)
	CreateRoomFunc       func(ctx context.Context, token string, req api.CreateRoomRequest) (*models.RoomState, error)
	JoinRoomFunc         func(ctx context.Context, token, roomID string, req api.JoinRoomRequest) (*models.RoomState, error)
	GetRoomFunc          func(ctx context.Context, token, roomID string) (*models.RoomState, error)
	PatchRoomFunc        func(ctx context.Context, token, roomID string, req api.PatchRoomRequest) (*models.RoomState, error)
	AppendStrokeFunc     func(ctx context.Context, token, roomID string, req api.AppendStrokeRequest) (*models.StrokeRecord, error)
	ListStrokesFunc      func(ctx context.Context, token, roomID string, page int, since int64) (*api.ListStrokesResponse, error)
	UploadDocumentFunc   func(ctx context.Context, token, roomID string, data []byte) (*api.DocumentResponse, error)
	DownloadDocumentFunc func(ctx context.Context, token, documentURL string) ([]byte, error)
	SubmitGradeFunc      func(ctx context.Context, token, roomID string, req api.SubmissionRequest) (*api.SubmissionResponse, error)

	mu    sync.Mutex
	calls struct {
		Authenticate     int
		CreateRoom       int
		JoinRoom         int
		GetRoom          int
		PatchRoom        int
		AppendStroke     int
		ListStrokes      int
		UploadDocument   int
		DownloadDocument int
		SubmitGrade      int
	}
}

var _ RoomAPI = (*RoomAPIMock)(nil)

func (m *RoomAPIMock) Authenticate(ctx context.Context) (*api.ActorResponse, error) {
	m.record(func() { m.calls.Authenticate++ })
	return m.AuthenticateFunc(ctx)
}

func (m *RoomAPIMock) CreateRoom(ctx context.Context, token string, req api.CreateRoomRequest) (*models.RoomState, error) {
	m.record(func() { m.calls.CreateRoom++ })
	return m.CreateRoomFunc(ctx, token, req)
}

func (m *RoomAPIMock) JoinRoom(ctx context.Context, token, roomID string, req api.JoinRoomRequest) (*models.RoomState, error) {
	m.record(func() { m.calls.JoinRoom++ })
	return m.JoinRoomFunc(ctx, token, roomID, req)
}

func (m *RoomAPIMock) GetRoom(ctx context.Context, token, roomID string) (*models.RoomState, error) {
	m.record(func() { m.calls.GetRoom++ })
	return m.GetRoomFunc(ctx, token, roomID)
}

func (m *RoomAPIMock) PatchRoom(ctx context.Context, token, roomID string, req api.PatchRoomRequest) (*models.RoomState, error) {
	m.record(func() { m.calls.PatchRoom++ })
	return m.PatchRoomFunc(ctx, token, roomID, req)
}

func (m *RoomAPIMock) AppendStroke(ctx context.Context, token, roomID string, req api.AppendStrokeRequest) (*models.StrokeRecord, error) {
	m.record(func() { m.calls.AppendStroke++ })
	return m.AppendStrokeFunc(ctx, token, roomID, req)
}

func (m *RoomAPIMock) ListStrokes(ctx context.Context, token, roomID string, page int, since int64) (*api.ListStrokesResponse, error) {
	m.record(func() { m.calls.ListStrokes++ })
	return m.ListStrokesFunc(ctx, token, roomID, page, since)
}

func (m *RoomAPIMock) UploadDocument(ctx context.Context, token, roomID string, data []byte) (*api.DocumentResponse, error) {
	m.record(func() { m.calls.UploadDocument++ })
	return m.UploadDocumentFunc(ctx, token, roomID, data)
}

func (m *RoomAPIMock) DownloadDocument(ctx context.Context, token, documentURL string) ([]byte, error) {
	m.record(func() { m.calls.DownloadDocument++ })
	return m.DownloadDocumentFunc(ctx, token, documentURL)
}

func (m *RoomAPIMock) SubmitGrade(ctx context.Context, token, roomID string, req api.SubmissionRequest) (*api.SubmissionResponse, error) {
	m.record(func() { m.calls.SubmitGrade++ })
	return m.SubmitGradeFunc(ctx, token, roomID, req)
}

// AuthenticateCalls returns how many times Authenticate was called
func (m *RoomAPIMock) AuthenticateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.Authenticate
}

// AppendStrokeCalls returns how many times AppendStroke was called
func (m *RoomAPIMock) AppendStrokeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.AppendStroke
}

// ListStrokesCalls returns how many times ListStrokes was called
func (m *RoomAPIMock) ListStrokesCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.ListStrokes
}

// PatchRoomCalls returns how many times PatchRoom was called
func (m *RoomAPIMock) PatchRoomCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.PatchRoom
}

// SubmitGradeCalls returns how many times SubmitGrade was called
func (m *RoomAPIMock) SubmitGradeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls.SubmitGrade
}

func (m *RoomAPIMock) record(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}
