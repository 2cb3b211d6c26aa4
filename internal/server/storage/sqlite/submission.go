package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/server/storage"
)

// SaveSubmission stores a grading record
func (s *Storage) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	// Комната должна существовать
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE id = ?`, sub.RoomID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrRoomNotFound
		}
		return fmt.Errorf("failed to check room: %w", err)
	}

	query := `
		INSERT INTO submissions (id, room_id, uid, page, question, model_answer, answer,
			feedback, mode, status, score, max_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		sub.ID,
		sub.RoomID,
		sub.UID,
		sub.Page,
		sub.Question,
		sub.ModelAnswer,
		sub.Answer,
		sub.Feedback,
		sub.Mode,
		sub.Status,
		sub.Score,
		sub.MaxScore,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// ListSubmissions returns room submissions in reverse chronological order
func (s *Storage) ListSubmissions(ctx context.Context, roomID string) ([]models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, uid, page, question, model_answer, answer,
			feedback, mode, status, score, max_score, created_at
		FROM submissions
		WHERE room_id = ?
		ORDER BY created_at DESC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		var score sql.NullFloat64
		err := rows.Scan(
			&sub.ID,
			&sub.RoomID,
			&sub.UID,
			&sub.Page,
			&sub.Question,
			&sub.ModelAnswer,
			&sub.Answer,
			&sub.Feedback,
			&sub.Mode,
			&sub.Status,
			&score,
			&sub.MaxScore,
			&sub.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if score.Valid {
			sub.Score = &score.Float64
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return subs, nil
}
