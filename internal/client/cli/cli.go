// Package cli реализует команды клиента notelink.
package cli

import (
	"fmt"

	"github.com/notelink/notelink/internal/client/api"
	"github.com/notelink/notelink/internal/client/auth"
	"github.com/notelink/notelink/internal/client/export"
	"github.com/notelink/notelink/internal/client/iocli"
	"github.com/notelink/notelink/internal/client/storage"
)

type Cli struct {
	io          iocli.IO
	apiClient   api.RoomAPI
	authService auth.Service
	workspaces  storage.WorkspaceStorage
	documents   storage.DocumentStorage
	exporter    *export.Exporter
}

func New(
	io iocli.IO,
	apiClient api.RoomAPI,
	authService auth.Service,
	workspaces storage.WorkspaceStorage,
	documents storage.DocumentStorage,
) *Cli {
	return &Cli{
		io:          io,
		apiClient:   apiClient,
		authService: authService,
		workspaces:  workspaces,
		documents:   documents,
		exporter:    export.NewExporter(),
	}
}

func PrintUsage() {
	fmt.Println("NoteLink Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  notelink [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version         Show version information")
	fmt.Println("  --server URL      Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH         Path to local database (default: notelink-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  create [paper]               Create a room (paper: source|plain|ruled|grid|genkou)")
	fmt.Println("  join <room-id> [mode]        Join a room (mode: view|edit|teacher)")
	fmt.Println("  status                       Show actor and saved workspaces")
	fmt.Println("  export <room-id> [file.pdf]  Export room pages to PDF")
	fmt.Println("  grade [flags]                Grade an answer (see 'grade -h')")
	fmt.Println("  logout                       Remove local actor credentials")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  notelink create ruled")
	fmt.Println("  notelink join ab12cd edit")
	fmt.Println("  notelink export ab12cd notes.pdf")
	fmt.Println("  GEMINI_API_KEY=... notelink grade -room ab12cd -mode auto \\")
	fmt.Println("      -question 'What is 2+2?' -model-answer '4' -answer '4'")
	fmt.Println("  notelink --server https://example.com join ab12cd")
}
