package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/notelink/notelink/internal/client/storage"
	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/validation"
)

// runExport собирает страницы комнаты в PDF. Перед рендером журнал
// штрихов по возможности дотягивается с сервера; без сети экспорт
// работает по локальному снимку.
func (c *Cli) runExport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing room id. Usage: notelink export <room-id> [file.pdf]")
	}

	roomID := args[0]
	if err := validation.ValidateRoomID(roomID); err != nil {
		return err
	}

	output := fmt.Sprintf("notelink-%s.pdf", roomID)
	if len(args) > 1 {
		output = args[1]
	}

	haveLocal := true
	snapshot, err := c.workspaces.GetSnapshot(ctx, roomID)
	if err != nil {
		if !errors.Is(err, storage.ErrSnapshotNotFound) {
			return fmt.Errorf("failed to read workspace: %w", err)
		}
		haveLocal = false
		snapshot = &storage.Snapshot{
			RoomID: roomID,
			Tool:   models.ToolPen,
			Paper:  models.PaperPlain,
			Zoom:   1.0,
			Page:   1,
		}
	}

	if refreshed, err := c.refreshSnapshot(ctx, snapshot); err != nil {
		if !haveLocal {
			return fmt.Errorf("nothing to export: room %s has no local workspace and the server is unreachable: %w", roomID, err)
		}
		c.io.Printf("Warning: could not refresh from server: %v\n", err)
		c.io.Println("Exporting the local snapshot.")
	} else if refreshed {
		snapshot.SavedAt = time.Now()
		if err := c.workspaces.SaveSnapshot(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to save workspace: %w", err)
		}
	}

	pdf, err := c.exporter.ExportPDF(snapshot.Paper, snapshot.Strokes)
	if err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}

	if err := os.WriteFile(output, pdf, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	pages := 0
	for _, strokes := range snapshot.Strokes {
		if len(strokes) > 0 {
			pages++
		}
	}
	c.io.Printf("Exported %d page(s) to %s\n", pages, output)

	return nil
}

// refreshSnapshot дотягивает недостающие записи журнала с сервера.
// Возвращает true, если снимок изменился.
func (c *Cli) refreshSnapshot(ctx context.Context, snapshot *storage.Snapshot) (bool, error) {
	auth, err := c.authService.CurrentActor(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return false, fmt.Errorf("no actor credentials")
		}
		return false, err
	}

	room, err := c.apiClient.GetRoom(ctx, auth.AccessToken, snapshot.RoomID)
	if err != nil {
		return false, err
	}

	if snapshot.Strokes == nil {
		snapshot.Strokes = make(map[int][]models.Stroke)
	}
	if snapshot.MaxSeq == nil {
		snapshot.MaxSeq = make(map[int]int64)
	}

	// Известные локально страницы плюс текущая страница комнаты
	pages := make(map[int]bool, len(snapshot.Strokes)+1)
	for page := range snapshot.Strokes {
		pages[page] = true
	}
	for page := range snapshot.MaxSeq {
		pages[page] = true
	}
	if room.Page > 0 {
		pages[room.Page] = true
	}

	changed := false
	for page := range pages {
		resp, err := c.apiClient.ListStrokes(ctx, auth.AccessToken, snapshot.RoomID, page, snapshot.MaxSeq[page])
		if err != nil {
			return changed, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		for _, rec := range resp.Records {
			snapshot.Strokes[page] = append(snapshot.Strokes[page], rec.Stroke)
			if rec.Seq > snapshot.MaxSeq[page] {
				snapshot.MaxSeq[page] = rec.Seq
			}
			changed = true
		}
		if resp.MaxSeq > snapshot.MaxSeq[page] {
			snapshot.MaxSeq[page] = resp.MaxSeq
			changed = true
		}
	}

	if snapshot.Paper != room.Paper && room.Paper.Valid() {
		snapshot.Paper = room.Paper
		changed = true
	}

	return changed, nil
}
