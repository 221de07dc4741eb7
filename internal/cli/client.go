package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mcoot/boardgametracker/internal/backend"
)

// NewClient creates the backend client shared by all commands. Every
// request carries a fresh X-Request-ID so it can be found in backend logs.
func NewClient(cfg *Config) *backend.Client {
	bc := backend.DefaultConfig()
	bc.BaseURL = cfg.ServerURL
	bc.Timeout = cfg.Timeout
	bc.UserAgent = "bgtrack"
	bc.RequestID = func(context.Context) string {
		return uuid.NewString()
	}
	return backend.NewClient(bc)
}

// run calls fn with the command context and logs the outcome at debug level
func run(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(cmd.Context())

	attrs := []any{
		slog.String("command", cmd.CommandPath()),
		slog.String("server", cfg.ServerURL),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.Debug("command finished", attrs...)
	return err
}

// parseID reads a positive numeric id argument
func parseID(raw, label string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", label, raw)
	}
	return id, nil
}
