// Package auth управляет анонимными учетными данными актора на клиенте.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/notelink/notelink/internal/client/api"
	"github.com/notelink/notelink/internal/client/storage"
)

// Service defines the interface for actor credential management
type Service interface {
	// EnsureActor возвращает действующие учетные данные актора,
	// при необходимости запрашивая новые у сервера
	EnsureActor(ctx context.Context) (*storage.AuthData, error)

	// CurrentActor возвращает сохраненные учетные данные
	// без обращения к серверу
	CurrentActor(ctx context.Context) (*storage.AuthData, error)

	// Logout удаляет локальные учетные данные актора
	Logout(ctx context.Context) error
}

// service реализует Service поверх API клиента и локального хранилища
type service struct {
	apiClient api.RoomAPI
	authStore storage.AuthStorage
	serverURL string
	logger    *slog.Logger
}

// NewService создает новый сервис учетных данных
func NewService(apiClient api.RoomAPI, authStore storage.AuthStorage, serverURL string, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		authStore: authStore,
		serverURL: serverURL,
		logger:    logger,
	}
}

// EnsureActor возвращает действующие учетные данные актора.
// Сохраненная личность переиспользуется между сессиями, чтобы
// подавление эха по uid оставалось стабильным.
func (s *service) EnsureActor(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.authStore.GetAuth(ctx)
	if err == nil && s.valid(auth) {
		return auth, nil
	}
	if err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return nil, fmt.Errorf("failed to read stored credentials: %w", err)
	}

	// Запрашиваем нового анонимного актора
	resp, err := s.apiClient.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	auth = &storage.AuthData{
		ActorID:     resp.ActorID,
		AccessToken: resp.AccessToken,
		ServerURL:   s.serverURL,
	}
	if resp.ExpiresIn > 0 {
		auth.ExpiresAt = time.Now().Unix() + resp.ExpiresIn
	}

	if err := s.authStore.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	s.logger.Info("issued anonymous actor", "actor_id", auth.ActorID)
	return auth, nil
}

// CurrentActor возвращает сохраненные учетные данные
func (s *service) CurrentActor(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.authStore.GetAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !s.valid(auth) {
		return nil, storage.ErrAuthNotFound
	}
	return auth, nil
}

// Logout удаляет локальные учетные данные актора
func (s *service) Logout(ctx context.Context) error {
	if err := s.authStore.DeleteAuth(ctx); err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	s.logger.Info("actor credentials removed")
	return nil
}

// valid проверяет срок действия и принадлежность серверу
func (s *service) valid(auth *storage.AuthData) bool {
	if auth == nil || auth.AccessToken == "" {
		return false
	}
	if auth.ServerURL != "" && s.serverURL != "" && auth.ServerURL != s.serverURL {
		return false
	}
	if auth.ExpiresAt > 0 && time.Now().Unix() >= auth.ExpiresAt {
		return false
	}
	return true
}
