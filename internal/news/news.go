package news

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of artists searched at once.
const DefaultConcurrency = 4

// Source searches for news about a single query.
type Source interface {
	Search(ctx context.Context, query string) ([]models.NewsItem, error)
}

// Aggregator collects news for several artists from a [Source].
type Aggregator struct {
	source      Source
	concurrency int
	logger      *log.Logger
}

// NewAggregator creates an aggregator. A non-positive concurrency uses [DefaultConcurrency].
func NewAggregator(source Source, concurrency int, logger *log.Logger) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Aggregator{
		source:      source,
		concurrency: concurrency,
		logger:      shared.WithLogger(logger, "component", "news"),
	}
}

// FetchNews returns the news for every artist, grouped by artist in input order.
//
// Artists are searched in parallel. An artist whose search fails contributes nothing and is logged.
// The only error returned is the context's.
func (a *Aggregator) FetchNews(ctx context.Context, artists []models.Artist) ([]models.NewsItem, error) {
	if len(artists) == 0 {
		return []models.NewsItem{}, nil
	}

	slots := make([][]models.NewsItem, len(artists))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, artist := range artists {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			items, err := a.source.Search(gctx, artist.Name)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				a.logger.Warn("skipping artist", "artist", artist.Name, "err", err)
				return nil
			}
			slots[i] = items
			a.logger.Debug("fetched news", "artist", artist.Name, "count", len(items))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("news aggregation cancelled: %w", err)
	}

	var total int
	for _, s := range slots {
		total += len(s)
	}
	merged := make([]models.NewsItem, 0, total)
	for _, s := range slots {
		merged = append(merged, s...)
	}
	return merged, nil
}
