package storage

import (
	"context"

	"github.com/notelink/notelink/internal/models"
)

// RoomPatch описывает пополевое обновление документа комнаты.
// nil-поле означает "не менять" (LWW по полям).
type RoomPatch struct {
	Page        *int
	Zoom        *float64
	Paper       *models.PaperTemplate
	DocumentURL *string
}

// Empty возвращает true, если патч не меняет ни одного поля
func (p RoomPatch) Empty() bool {
	return p.Page == nil && p.Zoom == nil && p.Paper == nil && p.DocumentURL == nil
}

// RoomStorage defines interface for room document persistence
type RoomStorage interface {
	// CreateRoom creates a new room with its initial member set
	// Returns ErrRoomAlreadyExists if the id is taken
	CreateRoom(ctx context.Context, room *models.RoomState) error

	// GetRoom retrieves room state with members
	// Returns ErrRoomNotFound if room doesn't exist
	GetRoom(ctx context.Context, roomID string) (*models.RoomState, error)

	// PatchRoom applies a field-wise update and returns the new state
	// Returns ErrRoomNotFound if room doesn't exist
	PatchRoom(ctx context.Context, roomID string, patch RoomPatch) (*models.RoomState, error)

	// UpsertMember добавляет актора в комнату или обновляет его роль
	// Returns ErrRoomNotFound if room doesn't exist
	UpsertMember(ctx context.Context, roomID, uid string, member models.Member) error
}

// StrokeStorage defines interface for the append-only stroke log
type StrokeStorage interface {
	// AppendStroke appends a stroke to the room log and assigns the
	// next monotonic Seq within the room
	AppendStroke(ctx context.Context, roomID, uid string, page int, stroke models.Stroke) (*models.StrokeRecord, error)

	// ListStrokes returns records of a page with Seq > since in Seq
	// order, plus the page's max Seq (0 when the page is empty)
	ListStrokes(ctx context.Context, roomID string, page int, since int64) ([]models.StrokeRecord, int64, error)
}

// DocumentStorage defines interface for shared document bytes
type DocumentStorage interface {
	// SaveDocument stores or replaces the room's document bytes
	SaveDocument(ctx context.Context, roomID string, data []byte) error

	// GetDocument retrieves the room's document bytes
	// Returns ErrDocumentNotFound if no document was uploaded
	GetDocument(ctx context.Context, roomID string) ([]byte, error)
}

// SubmissionStorage defines interface for grading records
type SubmissionStorage interface {
	// SaveSubmission stores a grading record
	SaveSubmission(ctx context.Context, sub *models.Submission) error

	// ListSubmissions returns room submissions in reverse
	// chronological order
	ListSubmissions(ctx context.Context, roomID string) ([]models.Submission, error)
}
