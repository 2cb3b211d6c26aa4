package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/notelink/notelink/pkg/api"
)

// AuthHandler обрабатывает выдачу анонимных акторов
type AuthHandler struct {
	logger    *slog.Logger
	jwtConfig JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		jwtConfig: jwtConfig,
	}
}

// IssueActor обрабатывает POST /api/v1/auth/anon
// Выдает новый анонимный actor id и access token. Регистрации нет:
// актор существует, пока действует его токен и членство в комнатах.
func (h *AuthHandler) IssueActor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actorID := uuid.New().String()

	accessToken, expiresIn, err := GenerateAccessToken(h.jwtConfig, actorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		writeError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "anonymous actor issued", slog.String("actor_id", actorID))

	resp := api.ActorResponse{
		ActorID:     actorID,
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
	}

	writeJSON(h.logger, w, resp, http.StatusCreated)
}
