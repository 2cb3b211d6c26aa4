package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/server/storage"
	"github.com/notelink/notelink/pkg/api"
)

// AppendStroke обрабатывает POST /api/v1/rooms/{id}/strokes
// Добавляет штрих в append-only журнал комнаты; сервер назначает
// монотонный порядковый номер и метку времени. Записи журнала не
// редактируются и не удаляются.
func (h *RoomHandler) AppendStroke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, actorID, ok := h.writableRoom(w, r)
	if !ok {
		return
	}

	var req api.AppendStrokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode stroke request", slog.Any("error", err))
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Page <= 0 {
		writeError(h.logger, w, "page must be positive", http.StatusBadRequest)
		return
	}
	if len(req.Stroke.Points) == 0 {
		writeError(h.logger, w, "stroke must contain at least one point", http.StatusBadRequest)
		return
	}

	record, err := h.strokes.AppendStroke(ctx, roomID, actorID, req.Page, req.Stroke)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			writeError(h.logger, w, "room not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to append stroke", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.DebugContext(ctx, "stroke appended",
		slog.String("room_id", roomID),
		slog.String("actor_id", actorID),
		slog.Int64("seq", record.Seq),
		slog.Int("page", record.Page))

	h.hub.Broadcast(roomID, api.Event{Type: api.EventStroke, Record: record})

	writeJSON(h.logger, w, api.AppendStrokeResponse{Record: *record}, http.StatusCreated)
}

// ListStrokes обрабатывает GET /api/v1/rooms/{id}/strokes?page=N&since=S
// Возвращает записи страницы с Seq > since в порядке Seq
func (h *RoomHandler) ListStrokes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		writeError(h.logger, w, "invalid page parameter", http.StatusBadRequest)
		return
	}

	var since int64
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		since, err = strconv.ParseInt(sinceStr, 10, 64)
		if err != nil || since < 0 {
			writeError(h.logger, w, "invalid since parameter", http.StatusBadRequest)
			return
		}
	}

	records, maxSeq, err := h.strokes.ListStrokes(ctx, roomID, page, since)
	if err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			writeError(h.logger, w, "room not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to list strokes", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if records == nil {
		records = []models.StrokeRecord{}
	}

	writeJSON(h.logger, w, api.ListStrokesResponse{Records: records, MaxSeq: maxSeq}, http.StatusOK)
}
