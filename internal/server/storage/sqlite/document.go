package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/notelink/notelink/internal/server/storage"
)

// SaveDocument stores or replaces the room's document bytes
func (s *Storage) SaveDocument(ctx context.Context, roomID string, data []byte) error {
	query := `
		INSERT INTO documents (room_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (room_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, roomID, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}

	return nil
}

// GetDocument retrieves the room's document bytes
func (s *Storage) GetDocument(ctx context.Context, roomID string) ([]byte, error) {
	var data []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE room_id = ?`, roomID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return data, nil
}
