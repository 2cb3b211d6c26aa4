package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/notelink/notelink/pkg/api"
)

// writeJSON отправляет JSON ответ
func writeJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// writeError отправляет JSON ответ с ошибкой
func writeError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   message,
		Message: http.StatusText(statusCode),
	}
	writeJSON(logger, w, resp, statusCode)
}
