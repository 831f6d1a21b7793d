// package tasks implements the dashboard workflow.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// TokenRunner runs a call with a valid access token, refreshing once on expiry. Implemented by auth.Guard.
type TokenRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context, token string) error) error
}

// NewsFetcher collects news for artists. Implemented by news.Aggregator.
type NewsFetcher interface {
	FetchNews(ctx context.Context, artists []models.Artist) ([]models.NewsItem, error)
}

// PlayRecorder persists observed plays. Implemented by repositories.PlayRepository.
//
// Record reports whether a row was written; a repeat of the latest play is not.
type PlayRecorder interface {
	Record(ctx context.Context, play models.Play) (bool, error)
}

// Dashboard is everything shown for one request.
type Dashboard struct {
	Profile   *services.SpotifyUser      `json:"profile"`
	Playback  *services.PlaybackSnapshot `json:"playback"`
	News      []models.NewsItem          `json:"news"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Playing reports whether the dashboard has a playing item.
func (d *Dashboard) Playing() bool {
	return d != nil && d.Playback != nil && d.Playback.Item != nil
}

// Artists returns the playing item's artists, or an empty slice.
func (d *Dashboard) Artists() []models.Artist {
	if d == nil {
		return []models.Artist{}
	}
	return d.Playback.Artists()
}

// Engine builds dashboards.
type Engine interface {
	Dashboard(ctx context.Context, progress chan<- ProgressUpdate) (*Dashboard, error)
}

// DashboardEngine implements [Engine].
type DashboardEngine struct {
	guard    TokenRunner
	playback services.PlaybackClient
	news     NewsFetcher
	recorder PlayRecorder
	logger   *log.Logger
	now      func() time.Time
}

var _ Engine = (*DashboardEngine)(nil)

// EngineOption configures a [DashboardEngine].
type EngineOption func(*DashboardEngine)

// WithRecorder enables play history.
func WithRecorder(r PlayRecorder) EngineOption {
	return func(e *DashboardEngine) {
		e.recorder = r
	}
}

// WithClock replaces time.Now for FetchedAt and recorded plays.
func WithClock(now func() time.Time) EngineOption {
	return func(e *DashboardEngine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewDashboardEngine creates an engine from its collaborators.
func NewDashboardEngine(guard TokenRunner, playback services.PlaybackClient, news NewsFetcher, logger *log.Logger, opts ...EngineOption) *DashboardEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	e := &DashboardEngine{
		guard:    guard,
		playback: playback,
		news:     news,
		logger:   shared.WithLogger(logger, "component", "dashboard"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *DashboardEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Dashboard fetches profile and playback with a valid token, then news for the playing artists.
//
// Session errors from the guard are returned wrapped so callers can test for shared.ErrNotAuthenticated.
func (e *DashboardEngine) Dashboard(ctx context.Context, progress chan<- ProgressUpdate) (*Dashboard, error) {
	var (
		profile  *services.SpotifyUser
		playback *services.PlaybackSnapshot
	)

	err := e.guard.Do(ctx, func(ctx context.Context, token string) error {
		e.sendProgress(progress, fetchProfileUpdate())
		p, err := e.playback.Profile(ctx, token)
		if err != nil {
			return fmt.Errorf("failed to fetch profile: %w", err)
		}

		e.sendProgress(progress, fetchPlaybackUpdate())
		s, err := e.playback.CurrentPlayback(ctx, token)
		if err != nil {
			return fmt.Errorf("failed to fetch playback: %w", err)
		}

		profile, playback = p, s
		return nil
	})
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Profile:   profile,
		Playback:  playback,
		News:      []models.NewsItem{},
		FetchedAt: e.now(),
	}

	if !d.Playing() {
		e.logger.Debug("nothing playing", "user", profile.Name())
		e.sendProgress(progress, doneUpdate(d))
		return d, nil
	}

	artists := d.Artists()
	if len(artists) > 0 {
		e.sendProgress(progress, fetchNewsUpdate(models.ArtistNames(artists)))
		items, err := e.news.FetchNews(ctx, artists)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch news: %w", err)
		}
		d.News = items
	}

	e.record(ctx, progress, d)
	e.sendProgress(progress, doneUpdate(d))
	return d, nil
}

// record writes the play to history. Failures are logged only.
func (e *DashboardEngine) record(ctx context.Context, progress chan<- ProgressUpdate, d *Dashboard) {
	if e.recorder == nil {
		return
	}

	item := d.Playback.Item
	e.sendProgress(progress, recordPlayUpdate(item.Name))

	play := models.Play{
		ID:        shared.GenerateID(),
		TrackID:   item.ID,
		TrackName: item.Name,
		Artists:   models.ArtistNames(d.Artists()),
		NewsCount: len(d.News),
		PlayedAt:  d.FetchedAt,
	}

	recorded, err := e.recorder.Record(ctx, play)
	if err != nil {
		e.logger.Warn("failed to record play", "track", item.Name, "err", err)
		return
	}
	if recorded {
		e.logger.Debug("recorded play", "track", item.Name, "id", play.ID)
	}
}
