package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/notelink/notelink/internal/client/storage"
	"github.com/notelink/notelink/internal/models"
	"github.com/notelink/notelink/pkg/api"
)

// runCreate создает комнату; создатель получает роль teacher
func (c *Cli) runCreate(ctx context.Context, args []string) error {
	paper := models.PaperSource
	if len(args) > 0 {
		paper = models.PaperTemplate(args[0])
		if !paper.Valid() {
			return fmt.Errorf("unknown paper template %q. Use source, plain, ruled, grid or genkou", args[0])
		}
	}

	auth, err := c.authService.EnsureActor(ctx)
	if err != nil {
		return err
	}

	room, err := c.apiClient.CreateRoom(ctx, auth.AccessToken, api.CreateRoomRequest{
		Page:  1,
		Zoom:  1.0,
		Paper: paper,
	})
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	snapshot := &storage.Snapshot{
		SavedAt: time.Now(),
		RoomID:  room.ID,
		Tool:    models.ToolPen,
		Paper:   room.Paper,
		Zoom:    room.Zoom,
		Page:    room.Page,
	}
	if err := c.workspaces.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save workspace: %w", err)
	}

	c.io.Printf("Room created: %s\n", room.ID)
	c.io.Printf("Paper: %s\n", room.Paper)
	c.io.Println()
	c.io.Println("Share the room:")
	c.io.Printf("  view:    notelink join %s\n", room.ID)
	c.io.Printf("  edit:    notelink join %s edit\n", room.ID)
	c.io.Printf("  teacher: notelink join %s teacher\n", room.ID)

	return nil
}
