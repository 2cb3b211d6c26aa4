package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/server/storage"
)

// CreateRoom creates a new room with its initial member set
func (s *Storage) CreateRoom(ctx context.Context, room *models.RoomState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO rooms (id, created_by, page, zoom, paper, document_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		room.ID,
		room.CreatedBy,
		room.Page,
		room.Zoom,
		string(room.Paper),
		room.DocumentURL,
		room.CreatedAt,
		room.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrRoomAlreadyExists
		}
		return fmt.Errorf("failed to insert room: %w", err)
	}

	for uid, member := range room.Members {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO members (room_id, uid, role, joined_at) VALUES (?, ?, ?, ?)`,
			room.ID, uid, string(member.Role), member.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRoom retrieves room state with members
func (s *Storage) GetRoom(ctx context.Context, roomID string) (*models.RoomState, error) {
	query := `
		SELECT id, created_by, page, zoom, paper, document_url, created_at, updated_at
		FROM rooms
		WHERE id = ?
	`

	room := &models.RoomState{}
	var paper string

	err := s.db.QueryRowContext(ctx, query, roomID).Scan(
		&room.ID,
		&room.CreatedBy,
		&room.Page,
		&room.Zoom,
		&paper,
		&room.DocumentURL,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	room.Paper = models.PaperTemplate(paper)

	members, err := s.roomMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.Members = members

	return room, nil
}

// roomMembers загружает участников комнаты
func (s *Storage) roomMembers(ctx context.Context, roomID string) (map[string]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uid, role, joined_at FROM members WHERE room_id = ?`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	members := make(map[string]models.Member)
	for rows.Next() {
		var uid, role string
		var joinedAt time.Time
		if err := rows.Scan(&uid, &role, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[uid] = models.Member{Role: models.Role(role), JoinedAt: joinedAt}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// PatchRoom applies a field-wise update and returns the new state.
// Поля, отсутствующие в патче, не трогаются: одновременные патчи
// разных полей не затирают друг друга.
func (s *Storage) PatchRoom(ctx context.Context, roomID string, patch storage.RoomPatch) (*models.RoomState, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	if patch.Page != nil {
		sets = append(sets, "page = ?")
		args = append(args, *patch.Page)
	}
	if patch.Zoom != nil {
		sets = append(sets, "zoom = ?")
		args = append(args, *patch.Zoom)
	}
	if patch.Paper != nil {
		sets = append(sets, "paper = ?")
		args = append(args, string(*patch.Paper))
	}
	if patch.DocumentURL != nil {
		sets = append(sets, "document_url = ?")
		args = append(args, *patch.DocumentURL)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().UTC())
		args = append(args, roomID)

		query := "UPDATE rooms SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to patch room: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to get affected rows: %w", err)
		}
		if affected == 0 {
			return nil, storage.ErrRoomNotFound
		}
	}

	return s.GetRoom(ctx, roomID)
}

// UpsertMember добавляет актора в комнату или обновляет его роль
func (s *Storage) UpsertMember(ctx context.Context, roomID, uid string, member models.Member) error {
	// Комната должна существовать
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, roomID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrRoomNotFound
		}
		return fmt.Errorf("failed to check room: %w", err)
	}

	query := `
		INSERT INTO members (room_id, uid, role, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (room_id, uid) DO UPDATE SET role = excluded.role
	`
	if _, err := s.db.ExecContext(ctx, query, roomID, uid, string(member.Role), member.JoinedAt); err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}

	return nil
}
