// package formatter renders news, dashboards, and play history as CSV, Markdown, or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name case-insensitively; "md" is an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, markdown, csv or json)", shared.ErrInvalidArgument, s)
	}
}

// NewsToCSV converts news items to CSV with columns: Title, URL, Image, Preview
func NewsToCSV(items []models.NewsItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Title", "URL", "Image", "Preview"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		if err := writer.Write([]string{item.Title, item.URL, item.ImageURL, item.PreviewText}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// NewsToMarkdown renders news items under a level-one heading, one linked entry per item.
func NewsToMarkdown(heading string, items []models.NewsItem) []byte {
	var buf bytes.Buffer

	if heading != "" {
		fmt.Fprintf(&buf, "# %s\n\n", heading)
	}
	if len(items) == 0 {
		buf.WriteString("_No news found._\n")
		return buf.Bytes()
	}

	for i, item := range items {
		fmt.Fprintf(&buf, "%d. [%s](%s)\n", i+1, escapeMarkdown(item.Title), item.URL)
		if item.PreviewText != "" {
			fmt.Fprintf(&buf, "   > %s\n", escapeMarkdown(item.PreviewText))
		}
	}
	return buf.Bytes()
}

// NewsToText renders news items as numbered plain text.
func NewsToText(items []models.NewsItem) []byte {
	var buf bytes.Buffer

	if len(items) == 0 {
		buf.WriteString("No news found.\n")
		return buf.Bytes()
	}

	for i, item := range items {
		fmt.Fprintf(&buf, "%d. %s\n   %s\n", i+1, item.Title, item.URL)
		if item.PreviewText != "" {
			fmt.Fprintf(&buf, "   %s\n", item.PreviewText)
		}
	}
	return buf.Bytes()
}

// News renders items in format. JSON is handled by callers.
func News(format Format, heading string, items []models.NewsItem) ([]byte, error) {
	switch format {
	case FormatCSV:
		return NewsToCSV(items)
	case FormatMarkdown:
		return NewsToMarkdown(heading, items), nil
	case FormatText:
		return NewsToText(items), nil
	default:
		return nil, fmt.Errorf("%w: format %q", shared.ErrNotImplemented, format)
	}
}

// DashboardToText renders a dashboard header followed by its news.
func DashboardToText(d *tasks.Dashboard) []byte {
	var buf bytes.Buffer

	if d.Profile != nil {
		fmt.Fprintf(&buf, "User: %s\n", d.Profile.Name())
	}
	if !d.Playing() {
		buf.WriteString("Nothing playing.\n")
		return buf.Bytes()
	}

	item := d.Playback.Item
	status := "Playing"
	if !d.Playback.IsPlaying {
		status = "Paused"
	}
	fmt.Fprintf(&buf, "%s: %s\n", status, item.Name)
	if artists := models.ArtistNames(d.Artists()); len(artists) > 0 {
		fmt.Fprintf(&buf, "Artists: %s\n", strings.Join(artists, ", "))
	}
	if item.Album.Name != "" {
		fmt.Fprintf(&buf, "Album: %s\n", item.Album.Name)
	}
	fmt.Fprintf(&buf, "Progress: %s / %s\n", FormatDuration(d.Playback.ProgressMS), FormatDuration(item.DurationMS))
	if d.Playback.Device.Name != "" {
		fmt.Fprintf(&buf, "Device: %s\n", d.Playback.Device.Name)
	}

	fmt.Fprintf(&buf, "\nNews (%d):\n", len(d.News))
	buf.Write(NewsToText(d.News))
	return buf.Bytes()
}

// PlaysToText renders play history, newest first as given.
func PlaysToText(plays []models.Play) []byte {
	var buf bytes.Buffer

	if len(plays) == 0 {
		buf.WriteString("No plays recorded yet.\n")
		return buf.Bytes()
	}

	for _, p := range plays {
		fmt.Fprintf(&buf, "%s  %s - %s (%d news)\n",
			p.PlayedAt.Local().Format(time.DateTime),
			strings.Join(p.Artists, ", "),
			p.TrackName,
			p.NewsCount,
		)
	}
	return buf.Bytes()
}

// PlaysToCSV converts play history to CSV with columns: ID, Track ID, Track, Artists, News, Played At
func PlaysToCSV(plays []models.Play) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Track ID", "Track", "Artists", "News", "Played At"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range plays {
		record := []string{
			p.ID,
			p.TrackID,
			p.TrackName,
			strings.Join(p.Artists, "; "),
			strconv.Itoa(p.NewsCount),
			p.PlayedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatDuration renders milliseconds as m:ss, or h:mm:ss from an hour up.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// WriteFile writes data to path, creating or truncating it.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, "`", "\\`", `*`, `\*`, `_`, `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
