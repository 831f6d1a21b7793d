package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/auth"
	"github.com/desertthunder/nowplaying/internal/news"
	"github.com/desertthunder/nowplaying/internal/repositories"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
)

// deps is the object graph shared by the commands that talk to Spotify.
type deps struct {
	exchanger *auth.OAuthExchanger
	guard     *auth.Guard
	engine    *tasks.DashboardEngine
	db        *sql.DB
}

// Close releases the history database, if one was opened.
func (d *deps) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// newsAggregator builds the scraper and its bounded fan-out. It needs no credentials.
func (r *Runner) newsAggregator(logger *log.Logger) *news.Aggregator {
	source := news.NewGoogleSourceFromConfig(r.config.Search, r.httpClient)
	return news.NewAggregator(source, r.config.Search.Concurrency, logger)
}

// buildDeps wires the session guard, Spotify client, news aggregator and, when enabled, play history.
//
// Credentials are required here and nowhere else, so `news` and `history` work without them.
func (r *Runner) buildDeps(ctx context.Context, logger *log.Logger) (*deps, error) {
	creds := r.config.Credentials.Spotify
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	exchanger, err := auth.NewOAuthExchanger(creds,
		auth.WithHTTPClient(r.httpClient),
		auth.WithEndpoint(r.config.Spotify.AuthURL, r.config.Spotify.TokenURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token exchanger: %w", err)
	}

	guard := auth.NewGuard(auth.NewStore(), exchanger, logger)
	spotify := services.NewSpotifyService(r.config.Spotify.APIBaseURL, r.httpClient)

	d := &deps{exchanger: exchanger, guard: guard}

	var opts []tasks.EngineOption
	if r.config.Database.History {
		db, err := shared.OpenHistoryDatabase(ctx, r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		d.db = db
		opts = append(opts, tasks.WithRecorder(repositories.NewPlayRepository(db)))
	}

	d.engine = tasks.NewDashboardEngine(guard, spotify, r.newsAggregator(logger), logger, opts...)
	return d, nil
}
