package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/pkg/api"
)

func TestClient_EventsURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{
			name:    "http to ws",
			baseURL: "http://localhost:8080",
			want:    "ws://localhost:8080/api/v1/rooms/ab12cd/events",
		},
		{
			name:    "https to wss",
			baseURL: "https://notes.example.com",
			want:    "wss://notes.example.com/api/v1/rooms/ab12cd/events",
		},
		{
			name:    "trailing slash",
			baseURL: "http://localhost:8080/",
			want:    "ws://localhost:8080/api/v1/rooms/ab12cd/events",
		},
		{
			name:    "unsupported scheme",
			baseURL: "ftp://localhost",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.baseURL)
			got, err := client.eventsURL("ab12cd")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_SubscribeEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/rooms/ab12cd/events", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer func() {
			_ = conn.Close()
		}()

		_ = conn.WriteJSON(api.Event{
			Type: api.EventStroke,
			Record: &models.StrokeRecord{
				Seq:  1,
				Page: 2,
				UID:  "actor-456",
			},
		})
		_ = conn.WriteJSON(api.Event{
			Type: api.EventRoom,
			Room: &models.RoomState{ID: "ab12cd", Page: 5},
		})
		// Держим соединение, пока клиент не отключится
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.SubscribeEvents(ctx, "tok", "ab12cd")
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, api.EventStroke, ev.Type)
	require.NotNil(t, ev.Record)
	assert.Equal(t, int64(1), ev.Record.Seq)

	ev = <-events
	assert.Equal(t, api.EventRoom, ev.Type)
	require.NotNil(t, ev.Room)
	assert.Equal(t, 5, ev.Room.Page)

	// После отмены контекста канал должен закрыться
	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("event channel was not closed after context cancellation")
	}
}

func TestClient_SubscribeEvents_ServerCloseFreesGoroutines(t *testing.T) {
	upgrader := websocket.Upgrader{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		// Сервер сразу закрывает поток: клиент переподключится
		_ = conn.Close()
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	baseline := runtime.NumGoroutine()

	// Много циклов под живым контекстом: обрыв потока должен
	// завершать обе горутины подписки, а не парковать вотчеры
	for range 20 {
		events, err := client.SubscribeEvents(ctx, "tok", "ab12cd")
		require.NoError(t, err)
		for range events {
		}
	}

	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+2
	}, 2*time.Second, 10*time.Millisecond,
		"subscription goroutines must exit when the stream ends")
}

func TestClient_SubscribeEvents_DialError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "room not found", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SubscribeEvents(context.Background(), "tok", "zzzzzz")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "websocket dial failed")
}
