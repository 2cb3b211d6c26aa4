// Package ws содержит hub рассылки событий комнат по websocket.
package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/notelink/notelink/pkg/api"
)

// subscriberBuffer размер буфера канала подписчика. Медленный
// подписчик, не успевающий вычитывать буфер, отключается.
const subscriberBuffer = 32

// Subscriber подписка на события одной комнаты.
type Subscriber struct {
	events chan api.Event
	once   sync.Once
}

// Events возвращает канал событий подписки. Канал закрывается
// при отписке или отключении медленного подписчика.
func (s *Subscriber) Events() <-chan api.Event {
	return s.events
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.events)
	})
}

// Hub ведет подписчиков по комнатам и рассылает им события.
type Hub struct {
	logger *slog.Logger
	rooms  map[string]map[*Subscriber]struct{}
	mu     sync.Mutex
}

// NewHub создает новый hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		rooms:  make(map[string]map[*Subscriber]struct{}),
	}
}

// Subscribe регистрирует подписчика комнаты
func (h *Hub) Subscribe(roomID string) *Subscriber {
	sub := &Subscriber{
		events: make(chan api.Event, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		h.rooms[roomID] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

// Unsubscribe снимает подписку и закрывает ее канал
func (h *Hub) Unsubscribe(roomID string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[roomID]
	if !ok {
		return
	}

	if _, ok := subs[sub]; !ok {
		return
	}

	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.rooms, roomID)
	}

	sub.close()
}

// Broadcast рассылает событие всем подписчикам комнаты.
// Подписчики с переполненным буфером отключаются, чтобы один
// медленный клиент не задерживал остальных.
func (h *Hub) Broadcast(roomID string, event api.Event) {
	if event.SentAt.IsZero() {
		event.SentAt = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[roomID]
	if !ok {
		return
	}

	for sub := range subs {
		select {
		case sub.events <- event:
		default:
			h.logger.Warn("Dropping slow subscriber", "room_id", roomID)
			delete(subs, sub)
			sub.close()
		}
	}

	if len(subs) == 0 {
		delete(h.rooms, roomID)
	}
}
