package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/server/storage"
	"github.com/notelink/notelink/internal/server/ws"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:         []byte("test-secret-key"),
		AccessTokenTTL: 15 * time.Minute,
	}
}

// memStore is an in-memory implementation of the room storage
// interfaces for handler tests
type memStore struct {
	rooms       map[string]*models.RoomState
	strokes     map[string][]models.StrokeRecord
	documents   map[string][]byte
	submissions map[string][]models.Submission
	nextSeq     map[string]int64

	createRoomError error
	getRoomError    error
	appendError     error

	mu sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		rooms:       make(map[string]*models.RoomState),
		strokes:     make(map[string][]models.StrokeRecord),
		documents:   make(map[string][]byte),
		submissions: make(map[string][]models.Submission),
		nextSeq:     make(map[string]int64),
	}
}

func copyRoom(room *models.RoomState) *models.RoomState {
	cp := *room
	cp.Members = make(map[string]models.Member, len(room.Members))
	for uid, m := range room.Members {
		cp.Members[uid] = m
	}
	return &cp
}

func (s *memStore) CreateRoom(ctx context.Context, room *models.RoomState) error {
	if s.createRoomError != nil {
		return s.createRoomError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.ID]; exists {
		return storage.ErrRoomAlreadyExists
	}
	s.rooms[room.ID] = copyRoom(room)
	return nil
}

func (s *memStore) GetRoom(ctx context.Context, roomID string) (*models.RoomState, error) {
	if s.getRoomError != nil {
		return nil, s.getRoomError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, storage.ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (s *memStore) PatchRoom(ctx context.Context, roomID string, patch storage.RoomPatch) (*models.RoomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, storage.ErrRoomNotFound
	}
	if patch.Page != nil {
		room.Page = *patch.Page
	}
	if patch.Zoom != nil {
		room.Zoom = *patch.Zoom
	}
	if patch.Paper != nil {
		room.Paper = *patch.Paper
	}
	if patch.DocumentURL != nil {
		room.DocumentURL = *patch.DocumentURL
	}
	room.UpdatedAt = time.Now().UTC()
	return copyRoom(room), nil
}

func (s *memStore) UpsertMember(ctx context.Context, roomID, uid string, member models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return storage.ErrRoomNotFound
	}
	room.Members[uid] = member
	return nil
}

func (s *memStore) AppendStroke(ctx context.Context, roomID, uid string, page int, stroke models.Stroke) (*models.StrokeRecord, error) {
	if s.appendError != nil {
		return nil, s.appendError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return nil, storage.ErrRoomNotFound
	}
	s.nextSeq[roomID]++
	record := models.StrokeRecord{
		CreatedAt: time.Now().UTC(),
		UID:       uid,
		Stroke:    stroke,
		Seq:       s.nextSeq[roomID],
		Page:      page,
	}
	s.strokes[roomID] = append(s.strokes[roomID], record)
	return &record, nil
}

func (s *memStore) ListStrokes(ctx context.Context, roomID string, page int, since int64) ([]models.StrokeRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return nil, 0, storage.ErrRoomNotFound
	}
	var records []models.StrokeRecord
	var maxSeq int64
	for _, rec := range s.strokes[roomID] {
		if rec.Page != page {
			continue
		}
		if rec.Seq > maxSeq {
			maxSeq = rec.Seq
		}
		if rec.Seq > since {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Seq < records[j].Seq })
	return records, maxSeq, nil
}

func (s *memStore) SaveDocument(ctx context.Context, roomID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[roomID] = data
	return nil
}

func (s *memStore) GetDocument(ctx context.Context, roomID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.documents[roomID]
	if !ok {
		return nil, storage.ErrDocumentNotFound
	}
	return data, nil
}

func (s *memStore) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[sub.RoomID]; !ok {
		return storage.ErrRoomNotFound
	}
	s.submissions[sub.RoomID] = append(s.submissions[sub.RoomID], *sub)
	return nil
}

func (s *memStore) ListSubmissions(ctx context.Context, roomID string) ([]models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.submissions[roomID]
	out := make([]models.Submission, 0, len(subs))
	for i := len(subs) - 1; i >= 0; i-- {
		out = append(out, subs[i])
	}
	return out, nil
}

// addRoom seeds a room with the given members into the store
func (s *memStore) addRoom(id string, members map[string]models.Member) *models.RoomState {
	now := time.Now().UTC()
	room := &models.RoomState{
		CreatedAt: now,
		UpdatedAt: now,
		Members:   members,
		ID:        id,
		Page:      1,
		Zoom:      1.0,
		Paper:     models.PaperSource,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[id] = room
	return room
}

func newTestRoomHandler(store *memStore) (*RoomHandler, *ws.Hub) {
	logger := setupTestLogger()
	hub := ws.NewHub(logger)
	return NewRoomHandler(logger, store, store, store, store, hub), hub
}

// withActor puts an actor id into the request context the way
// AuthMiddleware does
func withActor(r *http.Request, actorID string) *http.Request {
	ctx := context.WithValue(r.Context(), ActorIDKey, actorID)
	return r.WithContext(ctx)
}
