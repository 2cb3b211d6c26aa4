package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/server/storage"
	"github.com/notelink/notelink/pkg/api"
)

// SubmitGrade обрабатывает POST /api/v1/rooms/{id}/submissions
// Сохраняет результат проверки работы. Запись доступна любому
// участнику комнаты: свою работу сдает и ученик.
func (h *RoomHandler) SubmitGrade(w http.ResponseWriter, r *http.Request) {
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

	var req api.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode submission request", slog.Any("error", err))
		writeError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Question == "" {
		writeError(h.logger, w, "question is required", http.StatusBadRequest)
		return
	}
	if req.Mode != "review" && req.Mode != "auto" {
		writeError(h.logger, w, "mode must be review or auto", http.StatusBadRequest)
		return
	}

	sub := &models.Submission{
		CreatedAt:   time.Now().UTC(),
		ID:          uuid.New().String(),
		RoomID:      roomID,
		UID:         actorID,
		Question:    req.Question,
		ModelAnswer: req.ModelAnswer,
		Answer:      req.Answer,
		Feedback:    req.Feedback,
		Mode:        req.Mode,
		Status:      models.SubmissionStatus(req.Mode),
		Score:       req.Score,
		MaxScore:    req.MaxScore,
		Page:        req.Page,
	}

	if err := h.submissions.SaveSubmission(ctx, sub); err != nil {
		if errors.Is(err, storage.ErrRoomNotFound) {
			writeError(h.logger, w, "room not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to save submission", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "submission saved",
		slog.String("room_id", roomID),
		slog.String("actor_id", actorID),
		slog.String("submission_id", sub.ID),
		slog.String("status", sub.Status))

	writeJSON(h.logger, w, api.SubmissionResponse{ID: sub.ID}, http.StatusCreated)
}
