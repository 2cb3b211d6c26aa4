package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/notelink/notelink/internal/server/storage"
	"github.com/notelink/notelink/pkg/api"
)

const (
	// writeWait время на запись одного сообщения
	writeWait = 10 * time.Second
	// pongWait время ожидания pong от клиента
	pongWait = 60 * time.Second
	// pingPeriod период отправки ping; меньше pongWait
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Events обрабатывает GET /api/v1/rooms/{id}/events
// Переводит соединение в websocket и транслирует события комнаты:
// снимки документа после каждого изменения и добавленные записи
// журнала штрихов в порядке Seq. Первым событием отправляется
// текущий снимок комнаты.
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
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

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет ответ с ошибкой
		h.logger.WarnContext(ctx, "websocket upgrade failed", slog.Any("error", err))
		return
	}

	sub := h.hub.Subscribe(roomID)
	defer h.hub.Unsubscribe(roomID, sub)
	defer conn.Close()

	h.logger.InfoContext(ctx, "events subscriber connected", slog.String("room_id", roomID))

	// Читатель нужен только для обработки close и pong
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(1024)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snapshot := api.Event{Type: api.EventRoom, Room: room, SentAt: time.Now()}
	if err := writeEvent(conn, snapshot); err != nil {
		h.logger.WarnContext(ctx, "failed to send initial snapshot", slog.Any("error", err))
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				// Hub отключил подписчика
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				h.logger.DebugContext(ctx, "events write failed", slog.Any("error", err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			h.logger.InfoContext(ctx, "events subscriber disconnected", slog.String("room_id", roomID))
			return
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev api.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(ev)
}
