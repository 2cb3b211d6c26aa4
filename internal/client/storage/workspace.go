package storage

import (
	"context"
	"time"

	"github.com/notelink/notelink/internal/models"
)

// Snapshot описывает сохраняемое состояние рабочей области комнаты:
// страница, масштаб, инструмент, шаблон бумаги и штрихи по страницам.
type Snapshot struct {
	SavedAt time.Time                `json:"saved_at"`
	Strokes map[int][]models.Stroke  `json:"strokes"`
	MaxSeq  map[int]int64            `json:"max_seq"` // наибольший примененный Seq по страницам
	RoomID  string                   `json:"room_id"`
	Tool    models.Tool              `json:"tool"`
	Paper   models.PaperTemplate     `json:"paper"`
	Zoom    float64                  `json:"zoom"`
	Page    int                      `json:"page"`
}

// WorkspaceStorage defines interface for persisting room workspaces on client
type WorkspaceStorage interface {
	// SaveSnapshot stores or replaces the workspace snapshot for a room
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// GetSnapshot retrieves the workspace snapshot for a room
	// Returns ErrSnapshotNotFound if no snapshot exists
	GetSnapshot(ctx context.Context, roomID string) (*Snapshot, error)

	// DeleteSnapshot removes the workspace snapshot for a room
	DeleteSnapshot(ctx context.Context, roomID string) error

	// ListRooms returns ids of rooms with stored snapshots
	ListRooms(ctx context.Context) ([]string, error)
}

// DocumentStorage defines interface for caching shared document bytes on client
type DocumentStorage interface {
	// SaveDocument stores document bytes for a room
	SaveDocument(ctx context.Context, roomID string, data []byte) error

	// GetDocument retrieves cached document bytes for a room
	// Returns ErrDocumentNotFound if no document is cached
	GetDocument(ctx context.Context, roomID string) ([]byte, error)

	// DeleteDocument removes cached document bytes for a room
	DeleteDocument(ctx context.Context, roomID string) error
}
