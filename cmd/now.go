package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/nowplaying/internal/formatter"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Now logs in through the browser, then prints the dashboard once, or on every track change with --watch.
func (r *Runner) Now(ctx context.Context, cmd *cli.Command) error {
	logger := shared.WithLogger(r.logger, "cmd", "now")

	d, err := r.buildDeps(ctx, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := r.login(ctx, d); err != nil {
		return err
	}

	useJSON, pretty := cmd.Bool("json"), cmd.Bool("pretty")
	if !cmd.Bool("watch") {
		dashboard, err := d.engine.Dashboard(ctx, nil)
		if err != nil {
			return err
		}
		return r.printDashboard(dashboard, useJSON, pretty)
	}

	interval := cmd.Duration("interval")
	if interval <= 0 {
		interval = r.config.WatchInterval()
	}
	return r.watch(ctx, d.engine, interval, useJSON, pretty)
}

// watch polls engine at most once per interval and prints when the playing item changes.
//
// Cancellation ends the loop without error. Failed polls are logged and retried on the next tick.
func (r *Runner) watch(ctx context.Context, engine tasks.Engine, interval time.Duration, useJSON, pretty bool) error {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	last := ""
	first := true

	r.logger.Info("watching playback", "interval", interval)
	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("rate limiter: %w", err)
		}

		dashboard, err := engine.Dashboard(ctx, nil)
		switch {
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrRefreshFailed):
			return err
		case err != nil:
			r.logger.Warn("poll failed", "error", err)
			continue
		}

		key := playingKey(dashboard)
		if !first && key == last {
			continue
		}
		first, last = false, key

		if err := r.printDashboard(dashboard, useJSON, pretty); err != nil {
			return err
		}
	}
}

// playingKey identifies the playing item, or "" when nothing plays.
func playingKey(d *tasks.Dashboard) string {
	if !d.Playing() {
		return ""
	}
	return d.Playback.Item.ID + "|" + d.Playback.Item.URI
}

func (r *Runner) printDashboard(d *tasks.Dashboard, useJSON, pretty bool) error {
	if useJSON {
		return r.writeJSON(d, pretty)
	}
	r.writePlainHeader(fmt.Sprintf("Now Playing • %s", d.FetchedAt.Local().Format(time.Kitchen)))
	return r.writeBytes(formatter.DashboardToText(d))
}
