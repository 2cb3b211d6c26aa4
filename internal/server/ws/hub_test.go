package ws

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/pkg/api"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.DiscardHandler))
}

func TestHub_BroadcastToSubscribers(t *testing.T) {
	hub := newTestHub()

	sub1 := hub.Subscribe("ab12cd")
	sub2 := hub.Subscribe("ab12cd")
	other := hub.Subscribe("zz99zz")

	hub.Broadcast("ab12cd", api.Event{
		Type: api.EventStroke,
		Record: &models.StrokeRecord{
			Seq:  1,
			Page: 1,
			UID:  "actor-1",
		},
	})

	for _, sub := range []*Subscriber{sub1, sub2} {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, api.EventStroke, ev.Type)
			require.NotNil(t, ev.Record)
			assert.Equal(t, int64(1), ev.Record.Seq)
			assert.False(t, ev.SentAt.IsZero())
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}

	// Подписчик другой комнаты событий не получает
	select {
	case ev := <-other.Events():
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}

func TestHub_BroadcastUnknownRoom(t *testing.T) {
	hub := newTestHub()

	// Не должно паниковать
	hub.Broadcast("ab12cd", api.Event{Type: api.EventRoom})
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := newTestHub()

	sub := hub.Subscribe("ab12cd")
	hub.Unsubscribe("ab12cd", sub)

	// Канал закрыт
	_, ok := <-sub.Events()
	assert.False(t, ok)

	// Повторная отписка безопасна
	hub.Unsubscribe("ab12cd", sub)

	hub.Broadcast("ab12cd", api.Event{Type: api.EventRoom})
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	hub := newTestHub()

	slow := hub.Subscribe("ab12cd")
	fast := hub.Subscribe("ab12cd")

	// Переполняем буфер медленного подписчика
	for i := 0; i <= subscriberBuffer; i++ {
		hub.Broadcast("ab12cd", api.Event{Type: api.EventRoom})
		// Быстрый подписчик вычитывает сразу
		<-fast.Events()
	}

	// Медленный подписчик отключен: канал закрыт после буфера
	received := 0
	for range slow.Events() {
		received++
	}
	assert.Equal(t, subscriberBuffer, received)

	// Быстрый подписчик продолжает получать события
	hub.Broadcast("ab12cd", api.Event{Type: api.EventRoom})
	select {
	case _, ok := <-fast.Events():
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("fast subscriber did not receive event")
	}
}
