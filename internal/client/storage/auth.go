package storage

import (
	"context"
)

// AuthStorage defines interface for storing actor credentials on client
type AuthStorage interface {
	// SaveAuth stores actor credentials
	SaveAuth(ctx context.Context, auth *AuthData) error

	// GetAuth retrieves stored actor credentials
	// Returns ErrAuthNotFound if no auth data exists
	GetAuth(ctx context.Context) (*AuthData, error)

	// DeleteAuth removes stored actor credentials
	DeleteAuth(ctx context.Context) error

	// IsAuthenticated checks if valid authentication exists (not expired)
	IsAuthenticated(ctx context.Context) (bool, error)
}

// AuthData represents anonymous actor credentials in storage.
// The actor identity is issued by the room backend and reused
// across sessions so that echo suppression stays stable.
type AuthData struct {
	ActorID     string `json:"actor_id"`
	AccessToken string `json:"access_token"`
	ServerURL   string `json:"server_url"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds
}
