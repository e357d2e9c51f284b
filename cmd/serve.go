package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/server"
	"github.com/desertthunder/reelx/internal/shared"
)

// Serve runs the local JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.Engine()
	if err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := int(cmd.Int("port")); port > 0 {
		cfg.Port = port
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	router := server.New(engine, logger)

	r.writePlain("→ Serving reelx API at http://%s (Ctrl+C to stop)\n", cfg.Addr())
	if err := server.Serve(ctx, cfg.Addr(), router, logger); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}
