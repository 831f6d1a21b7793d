package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
	tu "github.com/desertthunder/nowplaying/internal/testing"
)

var testItems = []models.NewsItem{
	{Title: "Tour announced", URL: "https://news.example/tour", ImageURL: "https://img.example/t.jpg", PreviewText: "Thirty cities, one summer."},
	{Title: "New [single]", URL: "https://news.example/single", ImageURL: "https://cdn.browshot.com/static/images/not-found.png"},
}

func TestParseFormat(t *testing.T) {
	tc := map[string]Format{"": FormatText, "TEXT": FormatText, "md": FormatMarkdown, "markdown": FormatMarkdown, "csv": FormatCSV, "json": FormatJSON}
	for in, want := range tc {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseFormat("yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewsFormatters(t *testing.T) {
	t.Run("CSV", func(t *testing.T) {
		data, err := NewsToCSV(testItems)
		if err != nil {
			t.Fatalf("NewsToCSV failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "Title,URL,Image,Preview" {
			t.Errorf("unexpected header %q", lines[0])
		}
		if !strings.Contains(lines[1], `"Thirty cities, one summer."`) {
			t.Errorf("expected quoted preview, got %q", lines[1])
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		out := string(NewsToMarkdown("First Artist", testItems))
		for _, want := range []string{
			"# First Artist\n",
			"1. [Tour announced](https://news.example/tour)",
			"   > Thirty cities, one summer.",
			`2. [New \[single\]](https://news.example/single)`,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in:\n%s", want, out)
			}
		}
	})

	t.Run("Markdown empty", func(t *testing.T) {
		if out := string(NewsToMarkdown("", nil)); !strings.Contains(out, "No news found") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("Text", func(t *testing.T) {
		out := string(NewsToText(testItems))
		if !strings.HasPrefix(out, "1. Tour announced\n   https://news.example/tour\n") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if strings.Count(out, "\n") != 5 {
			t.Errorf("expected 5 lines, got:\n%s", out)
		}
	})

	t.Run("dispatch", func(t *testing.T) {
		for _, f := range []Format{FormatText, FormatMarkdown, FormatCSV} {
			if _, err := News(f, "x", testItems); err != nil {
				t.Errorf("News(%s) failed: %v", f, err)
			}
		}
		if _, err := News(FormatJSON, "x", testItems); !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented for json, got %v", err)
		}
	})
}

func TestDashboardToText(t *testing.T) {
	t.Run("playing", func(t *testing.T) {
		d := &tasks.Dashboard{
			Profile: &services.SpotifyUser{ID: "u1", DisplayName: "Listener"},
			Playback: &services.PlaybackSnapshot{
				IsPlaying:  false,
				ProgressMS: 65000,
				Device:     services.SpotifyDevice{Name: "Desk"},
				Item: &services.SpotifyTrack{
					Name:       "Song One",
					DurationMS: 3725000,
					Album:      services.SpotifyAlbum{Name: "Album"},
					Artists:    []services.SpotifyArtist{{Name: "A"}, {Name: "B"}},
				},
			},
			News: testItems[:1],
		}

		out := string(DashboardToText(d))
		for _, want := range []string{"User: Listener", "Paused: Song One", "Artists: A, B", "Album: Album", "Progress: 1:05 / 1:02:05", "Device: Desk", "News (1):", "1. Tour announced"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in:\n%s", want, out)
			}
		}
	})

	t.Run("nothing playing", func(t *testing.T) {
		out := string(DashboardToText(&tasks.Dashboard{}))
		if out != "Nothing playing.\n" {
			t.Errorf("unexpected output %q", out)
		}
	})
}

func TestPlays(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	plays := []models.Play{
		{ID: "p2", TrackID: "t2", TrackName: "Two", Artists: []string{"A", "B"}, NewsCount: 3, PlayedAt: at},
		{ID: "p1", TrackID: "t1", TrackName: "One", Artists: []string{"A"}, PlayedAt: at.Add(-time.Hour)},
	}

	t.Run("Text", func(t *testing.T) {
		out := string(PlaysToText(plays))
		if !strings.Contains(out, "A, B - Two (3 news)") {
			t.Errorf("unexpected output:\n%s", out)
		}
		if strings.Index(out, "Two") > strings.Index(out, "One") {
			t.Error("expected input order to be kept")
		}
		if got := string(PlaysToText(nil)); got != "No plays recorded yet.\n" {
			t.Errorf("unexpected empty output %q", got)
		}
	})

	t.Run("CSV", func(t *testing.T) {
		data, err := PlaysToCSV(plays)
		if err != nil {
			t.Fatalf("PlaysToCSV failed: %v", err)
		}
		if !strings.Contains(string(data), "p2,t2,Two,A; B,3,2024-05-01T12:30:00Z") {
			t.Errorf("unexpected CSV:\n%s", data)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tc := map[int]string{0: "0:00", -5: "0:00", 59999: "0:59", 61000: "1:01", 3600000: "1:00:00"}
	for in, want := range tc {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "news.md")

	if err := WriteFile(path, NewsToMarkdown("x", testItems)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	tu.AssertFileExists(t, path)
	if !strings.Contains(tu.MustReadFile(t, path), "Tour announced") {
		t.Error("written file missing content")
	}

	if err := WriteFile(filepath.Join(dir, "missing", "x.md"), nil); err == nil {
		t.Error("expected error for missing directory")
	}
}
