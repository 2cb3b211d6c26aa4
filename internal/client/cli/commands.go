package cli

import (
	"context"
	"fmt"
)

// Run выполняет команду и возвращает ошибку для main
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "create":
		return c.runCreate(ctx, args)
	case "join":
		return c.runJoin(ctx, args)
	case "status":
		return c.runStatus(ctx)
	case "export":
		return c.runExport(ctx, args)
	case "grade":
		return c.runGrade(ctx, args)
	case "logout":
		return c.runLogout(ctx)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}
