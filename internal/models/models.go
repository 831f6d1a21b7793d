// package models defines the data model for the now-playing news service
package models

import (
	"fmt"
	"strings"
	"time"
)

// Artist is a performing artist, sourced verbatim from playback data.
type Artist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// NewsItem is a single news result for an artist.
//
// URL is always an absolute http(s) URL; ImageURL falls back to a placeholder when the result has no thumbnail.
type NewsItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	PreviewText string `json:"preview_text"`
}

// ArtistNames returns the names of artists in order.
func ArtistNames(artists []Artist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

// Play records a track observed as currently playing.
type Play struct {
	ID        string    `json:"id"`
	TrackID   string    `json:"track_id"`
	TrackName string    `json:"track_name"`
	Artists   []string  `json:"artists"`
	NewsCount int       `json:"news_count"`
	PlayedAt  time.Time `json:"played_at"`
}

// Validate checks the fields required to persist a play.
func (p Play) Validate() error {
	if p.TrackID == "" {
		return fmt.Errorf("track id is required")
	}
	if strings.TrimSpace(p.TrackName) == "" {
		return fmt.Errorf("track name is required")
	}
	if p.NewsCount < 0 {
		return fmt.Errorf("news count must not be negative")
	}
	return nil
}
