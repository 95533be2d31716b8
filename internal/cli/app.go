// Package cli implements the interactive console for the Lotus auth core:
// a small REPL that drives login, logout, password and username changes
// against the local state database.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/FalconEthics/lotus-auth/internal/auth"
	"github.com/FalconEthics/lotus-auth/internal/config"
	"github.com/FalconEthics/lotus-auth/internal/credentials"
	"github.com/FalconEthics/lotus-auth/internal/logging"
	"github.com/FalconEthics/lotus-auth/internal/session"
	"github.com/FalconEthics/lotus-auth/internal/storage"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	auth    *auth.Service
	durable *storage.SQLite
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	durable, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing state database: %w", err)
	}
	volatile := storage.NewMemory()

	store := credentials.NewStore(durable, cfg.KeyIterations, logger)
	sessions := session.NewManager(volatile, durable, cfg.SessionDuration, logger)
	svc := auth.NewService(store, sessions, cfg.Lockout(), logger)

	if err := svc.Bootstrap(ctx); err != nil {
		durable.Close()
		return nil, fmt.Errorf("error bootstrapping credential store: %w", err)
	}

	return &App{
		config:  cfg,
		auth:    svc,
		durable: durable,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() error {
	return a.durable.Close()
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.auth.IsAuthenticated(ctx)
}
