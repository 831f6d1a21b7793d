package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/nowplaying/internal/formatter"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
)

// News searches news for the artists named on the command line. No Spotify login is needed.
func (r *Runner) News(ctx context.Context, cmd *cli.Command) error {
	names := cmd.Args().Slice()
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one ARTIST is required", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	artists := make([]models.Artist, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			artists = append(artists, models.Artist{Name: name})
		}
	}
	if len(artists) == 0 {
		return fmt.Errorf("%w: artist names are blank", shared.ErrInvalidArgument)
	}

	logger := shared.WithLogger(r.logger, "cmd", "news")
	logger.Info("searching news", "artists", models.ArtistNames(artists))

	items, err := r.newsAggregator(logger).FetchNews(ctx, artists)
	if err != nil {
		return err
	}

	heading := "News for " + strings.Join(models.ArtistNames(artists), ", ")
	data, err := renderNews(format, heading, items)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.writePlain("✓ Wrote %d news items to %s\n", len(items), path)
		return nil
	}
	return r.writeBytes(data)
}

func renderNews(format formatter.Format, heading string, items []models.NewsItem) ([]byte, error) {
	if format != formatter.FormatJSON {
		return formatter.News(format, heading, items)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}
