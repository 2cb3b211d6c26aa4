package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/notelink/notelink/pkg/api"
)

// EventSource определяет подписку на события комнаты.
type EventSource interface {
	// SubscribeEvents открывает поток событий комнаты. Канал закрывается
	// при отмене контекста или обрыве соединения.
	SubscribeEvents(ctx context.Context, token, roomID string) (<-chan api.Event, error)
}

// SubscribeEvents подключается к websocket эндпоинту комнаты и
// доставляет события в канал до отмены контекста или обрыва связи.
func (c *Client) SubscribeEvents(ctx context.Context, token, roomID string) (<-chan api.Event, error) {
	wsURL, err := c.eventsURL(roomID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (%d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	events := make(chan api.Event)
	done := make(chan struct{})

	// Закрываем соединение при отмене контекста, чтобы
	// разблокировать ReadJSON в читающей горутине. Выход читателя
	// завершает и эту горутину: переподключения не копят вотчеры.
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(events)
		defer close(done)
		defer func() {
			_ = conn.Close()
		}()

		for {
			var ev api.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// eventsURL строит ws(s) URL эндпоинта событий комнаты
func (c *Client) eventsURL(roomID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + fmt.Sprintf("/api/v1/rooms/%s/events", url.PathEscape(roomID))
	return u.String(), nil
}
