package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notelink/notelink/internal/server/handlers"
	"github.com/notelink/notelink/internal/server/middleware"
	"github.com/notelink/notelink/internal/server/storage/sqlite"
	"github.com/notelink/notelink/internal/server/ws"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "notelink-server.db", "Path to sqlite database")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Access token lifetime")
	rateLimit := flag.Int("rate-limit", 300, "Requests per minute per client")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	if err := run(logger, *addr, *dbPath, *tokenTTL, *rateLimit); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath string, tokenTTL time.Duration, rateLimit int) error {
	secret := os.Getenv("NOTELINK_JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("NOTELINK_JWT_SECRET environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	jwtConfig := handlers.JWTConfig{
		Secret:         []byte(secret),
		AccessTokenTTL: tokenTTL,
	}

	hub := ws.NewHub(logger)
	authHandler := handlers.NewAuthHandler(logger, jwtConfig)
	roomHandler := handlers.NewRoomHandler(logger, store, store, store, store, hub)
	healthHandler := handlers.NewHealthHandler(logger, Version)

	authRequired := middleware.AuthMiddleware(logger, jwtConfig)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/auth/anon", authHandler.IssueActor)

	mux.Handle("POST /api/v1/rooms", authRequired(http.HandlerFunc(roomHandler.Create)))
	mux.Handle("POST /api/v1/rooms/{id}/join", authRequired(http.HandlerFunc(roomHandler.Join)))
	mux.Handle("GET /api/v1/rooms/{id}", authRequired(http.HandlerFunc(roomHandler.Get)))
	mux.Handle("PATCH /api/v1/rooms/{id}", authRequired(http.HandlerFunc(roomHandler.Patch)))
	mux.Handle("POST /api/v1/rooms/{id}/strokes", authRequired(http.HandlerFunc(roomHandler.AppendStroke)))
	mux.Handle("GET /api/v1/rooms/{id}/strokes", authRequired(http.HandlerFunc(roomHandler.ListStrokes)))
	mux.Handle("PUT /api/v1/rooms/{id}/document", authRequired(http.HandlerFunc(roomHandler.UploadDocument)))
	mux.Handle("GET /api/v1/rooms/{id}/document", authRequired(http.HandlerFunc(roomHandler.DownloadDocument)))
	mux.Handle("POST /api/v1/rooms/{id}/submissions", authRequired(http.HandlerFunc(roomHandler.SubmitGrade)))

	// Websocket аутентифицируется заголовком при рукопожатии
	mux.Handle("GET /api/v1/rooms/{id}/events", authRequired(http.HandlerFunc(roomHandler.Events)))

	// Цепочка middleware: recovery -> logging -> rate limit
	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(rateLimit, time.Minute, logger)(handler)
	handler = middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "version", Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func printVersion() {
	fmt.Printf("NoteLink Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
