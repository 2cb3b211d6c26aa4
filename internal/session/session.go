// Package session хранит контекст локального актора: идентификатор,
// комнату и роль в ней. Контекст создается на старте сессии и
// передается компонентам явно — скрытого глобального состояния нет.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/notelink/notelink/internal/models"
)

// Session контекст локального актора.
type Session struct {
	actorID string
	roomID  string
	role    models.Role
	mu      sync.RWMutex
}

// New создает сессию без комнаты. Актор получает свежий uuid и роль
// зрителя; роль становится значимой после присоединения к комнате.
func New() *Session {
	return &Session{
		actorID: uuid.New().String(),
		role:    models.RoleViewer,
	}
}

// NewWithActorID создает сессию с заданным идентификатором актора.
// Используется для восстановления сохраненной сессии и в тестах.
func NewWithActorID(actorID string) *Session {
	return &Session{
		actorID: actorID,
		role:    models.RoleViewer,
	}
}

// ActorID возвращает идентификатор локального актора.
func (s *Session) ActorID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actorID
}

// JoinRoom фиксирует присоединение к комнате с заданной ролью.
func (s *Session) JoinRoom(roomID string, role models.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	s.role = role
}

// LeaveRoom сбрасывает комнату и роль.
func (s *Session) LeaveRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = ""
	s.role = models.RoleViewer
}

// RoomID возвращает идентификатор активной комнаты, "" если ее нет.
func (s *Session) RoomID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

// RoomActive возвращает true при активной комнате.
func (s *Session) RoomActive() bool {
	return s.RoomID() != ""
}

// Role возвращает текущую роль актора в комнате.
func (s *Session) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// UpdateRole обновляет роль по данным документа комнаты: сервер мог
// изменить членство после присоединения.
func (s *Session) UpdateRole(room *models.RoomState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roomID == "" || room == nil {
		return
	}
	if role, ok := room.MemberRole(s.actorID); ok {
		s.role = role
	}
}

// CanWrite — консультативный предикат записи: true при активной
// комнате и пишущей роли. Авторитетная проверка остается за сервером;
// локальная лишь избегает заведомо бесполезных запросов.
func (s *Session) CanWrite() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID != "" && s.role.CanWrite()
}
