package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notelink/notelink/internal/client/storage"
	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/internal/validation"
	"github.com/notelink/notelink/pkg/api"
)

// runJoin присоединяет актора к комнате с ролью, заданной mode
func (c *Cli) runJoin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing room id. Usage: notelink join <room-id> [view|edit|teacher]")
	}

	roomID := args[0]
	if err := validation.ValidateRoomID(roomID); err != nil {
		return err
	}

	mode := "view"
	if len(args) > 1 {
		mode = args[1]
	}
	if err := validation.ValidateMode(mode); err != nil {
		return err
	}

	auth, err := c.authService.EnsureActor(ctx)
	if err != nil {
		return err
	}

	room, err := c.apiClient.JoinRoom(ctx, auth.AccessToken, roomID, api.JoinRoomRequest{Mode: mode})
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	role, _ := room.MemberRole(auth.ActorID)

	// Рабочая область комнаты наследует сохраненные штрихи,
	// если комната уже открывалась на этом устройстве
	snapshot, err := c.workspaces.GetSnapshot(ctx, roomID)
	if err != nil {
		if !errors.Is(err, storage.ErrSnapshotNotFound) {
			return fmt.Errorf("failed to read workspace: %w", err)
		}
		snapshot = &storage.Snapshot{RoomID: roomID, Tool: models.ToolPen}
	}
	snapshot.SavedAt = time.Now()
	snapshot.Paper = room.Paper
	snapshot.Zoom = room.Zoom
	snapshot.Page = room.Page
	if err := c.workspaces.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}

	c.io.Printf("Joined room %s as %s\n", room.ID, role)
	c.io.Printf("Page %d, zoom %.2f, paper %s\n", room.Page, room.Zoom, room.Paper)
	if room.DocumentURL != "" {
		// Кэшируем общий документ для офлайн-работы; неудача не
		// мешает присоединению
		data, err := c.apiClient.DownloadDocument(ctx, auth.AccessToken, room.DocumentURL)
		if err != nil {
			c.io.Printf("Warning: could not download the shared document: %v\n", err)
		} else if err := c.documents.SaveDocument(ctx, roomID, data); err != nil {
			c.io.Printf("Warning: could not cache the shared document: %v\n", err)
		} else {
			c.io.Printf("Cached the shared document (%d bytes).\n", len(data))
		}
	}
	if !role.CanWrite() {
		c.io.Println("Role is read-only: strokes and viewport changes will not be published.")
	}

	return nil
}
