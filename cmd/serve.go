package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/nowplaying/internal/server"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// serveAddr resolves the listen address from flags, falling back to the config.
func (r *Runner) serveAddr(cmd *cli.Command) string {
	cfg := *r.config
	if v := cmd.String("host"); v != "" {
		cfg.Server.Host = v
	}
	if v := cmd.Int("port"); v > 0 {
		cfg.Server.Port = int(v)
	}
	return cfg.Addr()
}

// Serve runs the web dashboard until SIGINT or SIGTERM, then shuts down gracefully.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	logger := shared.WithLogger(r.logger, "cmd", "serve")

	d, err := r.buildDeps(ctx, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	srv := server.New(server.Options{
		Session:       d.guard,
		AuthURL:       d.exchanger,
		Engine:        d.engine,
		Logger:        logger,
		SecureCookies: cmd.Bool("secure-cookies"),
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := r.serveAddr(cmd)
	errCh, err := srv.Start(ctx, addr)
	if err != nil {
		return err
	}
	r.writePlain("→ Dashboard running at http://%s/\n", addr)

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
