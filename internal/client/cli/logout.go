package cli

import (
	"context"
	"fmt"
)

// runLogout удаляет локальные учетные данные актора.
// Сохраненные рабочие области остаются на месте.
func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	c.io.Println("Actor credentials removed.")
	c.io.Println("A new actor will be issued on the next 'create' or 'join'.")

	return nil
}
