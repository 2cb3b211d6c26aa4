package handlers

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"time"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/server/storage"
	"github.com/notelink/notelink/internal/server/ws"
	"github.com/notelink/notelink/internal/validation"
	"github.com/notelink/notelink/pkg/api"
)

// roomIDAlphabet алфавит коротких идентификаторов комнат
const roomIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// createRoomAttempts число попыток при коллизии идентификатора
const createRoomAttempts = 5

// RoomHandler обрабатывает запросы к комнатам
type RoomHandler struct {
	logger      *slog.Logger
	rooms       storage.RoomStorage
	strokes     storage.StrokeStorage
	documents   storage.DocumentStorage
	submissions storage.SubmissionStorage
	hub         *ws.Hub
}

// NewRoomHandler создает новый handler для комнат
func NewRoomHandler(
	logger *slog.Logger,
	rooms storage.RoomStorage,
	strokes storage.StrokeStorage,
	documents storage.DocumentStorage,
	submissions storage.SubmissionStorage,
	hub *ws.Hub,
) *RoomHandler {
	return &RoomHandler{
		logger:      logger,
		rooms:       rooms,
		strokes:     strokes,
		documents:   documents,
		submissions: submissions,
		hub:         hub,
	}
}

// newRoomID генерирует короткий идентификатор комнаты
func newRoomID() (string, error) {
	id := make([]byte, validation.RoomIDLen)
	max := big.NewInt(int64(len(roomIDAlphabet)))
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate room id: %w", err)
		}
		id[i] = roomIDAlphabet[n.Int64()]
	}
	return string(id), nil
}

// Create обрабатывает POST /api/v1/rooms
// Создает комнату; создатель становится участником с ролью teacher
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := GetActorID(ctx)
	if !ok {
		writeError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create room request", slog.Any("error", err))
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Zoom <= 0 {
		req.Zoom = 1.0
	}
	if req.Paper == "" {
		req.Paper = models.PaperSource
	}
	if !req.Paper.Valid() {
		writeError(h.logger, w, "unknown paper template", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	room := &models.RoomState{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actorID,
		Page:      req.Page,
		Zoom:      req.Zoom,
		Paper:     req.Paper,
		Members: map[string]models.Member{
			actorID: {Role: models.RoleTeacher, JoinedAt: now},
		},
	}

	// Короткие идентификаторы могут столкнуться; пробуем несколько раз
	var created bool
	for attempt := 0; attempt < createRoomAttempts; attempt++ {
		id, err := newRoomID()
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to generate room id", slog.Any("error", err))
			writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		room.ID = id

		err = h.rooms.CreateRoom(ctx, room)
		if err == nil {
			created = true
			break
		}
		if errors.Is(err, storage.ErrRoomAlreadyExists) {
			continue
		}
		h.logger.ErrorContext(ctx, "failed to create room", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !created {
		h.logger.ErrorContext(ctx, "room id collisions exhausted attempts")
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "room created",
		slog.String("room_id", room.ID),
		slog.String("actor_id", actorID))

	writeJSON(h.logger, w, api.RoomResponse{Room: *room}, http.StatusCreated)
}

// Join обрабатывает POST /api/v1/rooms/{id}/join
// Добавляет актора в комнату с ролью, соответствующей mode ссылки
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID, ok := GetActorID(ctx)
	if !ok {
		writeError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}

	var req api.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode join request", slog.Any("error", err))
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Mode == "" {
		req.Mode = "view"
	}
	if err := validation.ValidateMode(req.Mode); err != nil {
		writeError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	member := models.Member{
		Role:     models.RoleForMode(req.Mode),
		JoinedAt: time.Now().UTC(),
	}

	if err := h.rooms.UpsertMember(ctx, roomID, actorID, member); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			writeError(h.logger, w, "room not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to upsert member", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get room after join", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "actor joined room",
		slog.String("room_id", roomID),
		slog.String("actor_id", actorID),
		slog.String("role", string(member.Role)))

	writeJSON(h.logger, w, api.RoomResponse{Room: *room}, http.StatusOK)
}

// Get обрабатывает GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			writeError(h.logger, w, "room not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get room", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(h.logger, w, api.RoomResponse{Room: *room}, http.StatusOK)
}

// Patch обрабатывает PATCH /api/v1/rooms/{id}
// Пополевое обновление документа комнаты: обновляются только
// присутствующие поля, каждое поле — last-writer-wins.
func (h *RoomHandler) Patch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, actorID, ok := h.writableRoom(w, r)
	if !ok {
		return
	}

	var req api.PatchRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode patch request", slog.Any("error", err))
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Page != nil && *req.Page <= 0 {
		writeError(h.logger, w, "page must be positive", http.StatusBadRequest)
		return
	}
	if req.Zoom != nil && *req.Zoom <= 0 {
		writeError(h.logger, w, "zoom must be positive", http.StatusBadRequest)
		return
	}
	if req.Paper != nil && !req.Paper.Valid() {
		writeError(h.logger, w, "unknown paper template", http.StatusBadRequest)
		return
	}

	patch := storage.RoomPatch{
		Page:        req.Page,
		Zoom:        req.Zoom,
		Paper:       req.Paper,
		DocumentURL: req.DocumentURL,
	}

	room, err := h.rooms.PatchRoom(ctx, roomID, patch)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			writeError(h.logger, w, "room not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to patch room", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "room patched",
		slog.String("room_id", roomID),
		slog.String("actor_id", actorID))

	h.hub.Broadcast(roomID, api.Event{Type: api.EventRoom, Room: room})

	writeJSON(h.logger, w, api.RoomResponse{Room: *room}, http.StatusOK)
}

// roomID извлекает и валидирует идентификатор комнаты из пути
func (h *RoomHandler) roomID(w http.ResponseWriter, r *http.Request) (string, bool) {
	roomID := r.PathValue("id")
	if err := validation.ValidateRoomID(roomID); err != nil {
		writeError(h.logger, w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return roomID, true
}

// writableRoom извлекает roomID и actorID и проверяет, что роль
// актора в комнате разрешает запись. Авторитетная проверка ролей
// выполняется здесь; клиентские проверки консультативные.
func (h *RoomHandler) writableRoom(w http.ResponseWriter, r *http.Request) (roomID, actorID string, ok bool) {
	ctx := r.Context()

	actorID, ok = GetActorID(ctx)
	if !ok {
		writeError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return "", "", false
	}

	roomID, ok = h.roomID(w, r)
	if !ok {
		return "", "", false
	}

	room, err := h.rooms.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			writeError(h.logger, w, "room not found", http.StatusNotFound)
			return "", "", false
		}
		h.logger.ErrorContext(ctx, "failed to get room", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return "", "", false
	}

	role, _ := room.MemberRole(actorID)
	if !role.CanWrite() {
		h.logger.WarnContext(ctx, "write denied",
			slog.String("room_id", roomID),
			slog.String("actor_id", actorID),
			slog.String("role", string(role)))
		writeError(h.logger, w, "role does not allow writes", http.StatusForbidden)
		return "", "", false
	}

	return roomID, actorID, true
}
