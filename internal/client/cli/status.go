package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/notelink/notelink/internal/client/storage"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Actor Status ===")
	c.io.Println()

	auth, err := c.authService.CurrentActor(ctx)
	switch {
	case errors.Is(err, storage.ErrAuthNotFound):
		c.io.Println("Status: No actor credentials")
		c.io.Println()
		c.io.Println("An actor is issued automatically on 'create' or 'join'.")
	case err != nil:
		return fmt.Errorf("failed to check credentials: %w", err)
	default:
		c.io.Println("Status: Active")
		c.io.Printf("Actor ID: %s\n", auth.ActorID)
		c.io.Printf("Server: %s\n", auth.ServerURL)
		if auth.ExpiresAt > 0 {
			expiresAt := time.Unix(auth.ExpiresAt, 0)
			remaining := time.Until(expiresAt)
			c.io.Printf("Token expires: %s\n", expiresAt.Format(time.RFC3339))
			if remaining > 0 {
				c.io.Printf("Time remaining: %s\n", remaining.Round(time.Second))
			} else {
				c.io.Println("Token has expired. A new actor will be issued on the next command.")
			}
		}
	}

	rooms, err := c.workspaces.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workspaces: %w", err)
	}

	c.io.Println()
	if len(rooms) == 0 {
		c.io.Println("No saved workspaces.")
		return nil
	}

	c.io.Printf("Saved workspaces (%d):\n", len(rooms))
	for _, roomID := range rooms {
		snapshot, err := c.workspaces.GetSnapshot(ctx, roomID)
		if err != nil {
			c.io.Printf("  %s (unreadable: %v)\n", roomID, err)
			continue
		}

		strokes := 0
		for _, page := range snapshot.Strokes {
			strokes += len(page)
		}
		c.io.Printf("  %s  page %d, zoom %.2f, paper %s, %d stroke(s), saved %s\n",
			roomID, snapshot.Page, snapshot.Zoom, snapshot.Paper,
			strokes, snapshot.SavedAt.Format(time.RFC3339))
	}

	return nil
}
