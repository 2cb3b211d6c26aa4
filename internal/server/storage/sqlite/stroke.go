package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/server/storage"
)

// AppendStroke appends a stroke to the room log and assigns the next
// monotonic Seq within the room. Пул соединений ограничен одним
// писателем, поэтому выборка MAX(seq)+1 внутри транзакции безопасна.
func (s *Storage) AppendStroke(ctx context.Context, roomID, uid string, page int, stroke models.Stroke) (*models.StrokeRecord, error) {
	points, err := json.Marshal(stroke.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal points: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Комната должна существовать
	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, roomID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to check room: %w", err)
	}

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM strokes WHERE room_id = ?`, roomID).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate seq: %w", err)
	}

	createdAt := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO strokes (room_id, seq, page, uid, mode, color, size, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		roomID, seq, page, uid,
		string(stroke.Mode), stroke.Color, stroke.Size, string(points),
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert stroke: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.StrokeRecord{
		CreatedAt: createdAt,
		UID:       uid,
		Stroke:    stroke,
		Seq:       seq,
		Page:      page,
	}, nil
}

// ListStrokes returns records of a page with Seq > since in Seq order
func (s *Storage) ListStrokes(ctx context.Context, roomID string, page int, since int64) ([]models.StrokeRecord, int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, page, uid, mode, color, size, points, created_at
		FROM strokes
		WHERE room_id = ? AND page = ? AND seq > ?
		ORDER BY seq
	`, roomID, page, since)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query strokes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []models.StrokeRecord
	var maxSeq int64
	for rows.Next() {
		var rec models.StrokeRecord
		var mode, points string
		err := rows.Scan(
			&rec.Seq,
			&rec.Page,
			&rec.UID,
			&mode,
			&rec.Stroke.Color,
			&rec.Stroke.Size,
			&points,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan stroke: %w", err)
		}
		rec.Stroke.Mode = models.StrokeMode(mode)
		if err := json.Unmarshal([]byte(points), &rec.Stroke.Points); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal points: %w", err)
		}
		if rec.Seq > maxSeq {
			maxSeq = rec.Seq
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate strokes: %w", err)
	}

	// Для пустой выборки возвращаем текущий максимум страницы, чтобы
	// клиент не перечитывал журнал с нуля
	if maxSeq == 0 {
		err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) FROM strokes WHERE room_id = ? AND page = ?`,
			roomID, page).Scan(&maxSeq)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to get max seq: %w", err)
		}
	}

	return records, maxSeq, nil
}
