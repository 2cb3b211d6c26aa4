package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/notelink/notelink/internal/server/storage"
	"github.com/notelink/notelink/pkg/api"
)

// maxDocumentSize предел размера загружаемого документа
const maxDocumentSize = 32 << 20 // 32 MiB

// UploadDocument обрабатывает PUT /api/v1/rooms/{id}/document
// Сохраняет байты общего документа и публикует его URL в документе
// комнаты. Повторная загрузка заменяет документ.
func (h *RoomHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, actorID, ok := h.writableRoom(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize+1))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read document body", slog.Any("error", err))
		writeError(h.logger, w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		writeError(h.logger, w, "document is empty", http.StatusBadRequest)
		return
	}
	if len(data) > maxDocumentSize {
		writeError(h.logger, w, "document too large", http.StatusRequestEntityTooLarge)
		return
	}

	if err := h.documents.SaveDocument(ctx, roomID, data); err != nil {
		h.logger.ErrorContext(ctx, "failed to save document", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	documentURL := fmt.Sprintf("/api/v1/rooms/%s/document", roomID)
	room, err := h.rooms.PatchRoom(ctx, roomID, storage.RoomPatch{DocumentURL: &documentURL})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to publish document url", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "document uploaded",
		slog.String("room_id", roomID),
		slog.String("actor_id", actorID),
		slog.Int("size", len(data)))

	h.hub.Broadcast(roomID, api.Event{Type: api.EventRoom, Room: room})

	writeJSON(h.logger, w, api.DocumentResponse{DocumentURL: documentURL}, http.StatusOK)
}

// DownloadDocument обрабатывает GET /api/v1/rooms/{id}/document
func (h *RoomHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, ok := h.roomID(w, r)
	if !ok {
		return
	}

	data, err := h.documents.GetDocument(ctx, roomID)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			writeError(h.logger, w, "document not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get document", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write document response", slog.Any("error", err))
	}
}
