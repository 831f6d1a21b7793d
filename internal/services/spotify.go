// Spotify Web API implementation of [PlaybackClient]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

const SpotifyBaseURL = "https://api.spotify.com/v1"

type followers struct {
	Total int `json:"total"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// Name returns the display name, falling back to the user id.
func (u *SpotifyUser) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyTrack represents the playing item. Episodes decode into the same shape with no artists.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	Explicit     bool            `json:"explicit"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// SpotifyDevice is the device playback is happening on.
type SpotifyDevice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent *int   `json:"volume_percent"`
}

// PlaybackSnapshot is the response of GET /me/player.
type PlaybackSnapshot struct {
	IsPlaying            bool          `json:"is_playing"`
	ProgressMS           int           `json:"progress_ms"`
	Timestamp            int64         `json:"timestamp"`
	CurrentlyPlayingType string        `json:"currently_playing_type"`
	ShuffleState         bool          `json:"shuffle_state"`
	RepeatState          string        `json:"repeat_state"`
	Device               SpotifyDevice `json:"device"`
	Item                 *SpotifyTrack `json:"item"`
}

// Artists returns the playing item's artists in the order Spotify lists them.
func (p *PlaybackSnapshot) Artists() []models.Artist {
	if p == nil || p.Item == nil {
		return []models.Artist{}
	}
	artists := make([]models.Artist, 0, len(p.Item.Artists))
	for _, a := range p.Item.Artists {
		artists = append(artists, models.Artist{Name: a.Name, ID: a.ID})
	}
	return artists
}

// TrackName returns the playing item's name, or an empty string.
func (p *PlaybackSnapshot) TrackName() string {
	if p == nil || p.Item == nil {
		return ""
	}
	return p.Item.Name
}

// UpstreamAPIError is a non-2xx, non-401 answer from the Spotify API.
type UpstreamAPIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *UpstreamAPIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify API error: %s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("spotify API error: %s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
}

func (e *UpstreamAPIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// apiErrorBody is the Web API's regular error object.
type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements [PlaybackClient] for the Spotify Web API.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

var _ PlaybackClient = (*SpotifyService)(nil)

// NewSpotifyService creates a client rooted at baseURL. An empty baseURL uses [SpotifyBaseURL];
// a nil client uses one with [DefaultTimeout].
func NewSpotifyService(baseURL string, client *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = SpotifyBaseURL
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout)
	}
	return &SpotifyService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// doRequest performs an authenticated GET and returns the raw body. A 2xx with no content returns nil.
func (s *SpotifyService) doRequest(ctx context.Context, token, endpoint string) ([]byte, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%s: %w", endpoint, shared.ErrTokenExpired)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		apiErr := &UpstreamAPIError{Method: http.MethodGet, Endpoint: endpoint, StatusCode: resp.StatusCode}
		var eb apiErrorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Message = eb.Error.Message
		}
		return nil, apiErr
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	}

	return bytes.TrimSpace(body), nil
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context, token string) (*SpotifyUser, error) {
	body, err := s.doRequest(ctx, token, "/me")
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: /me returned no body", shared.ErrParse)
	}

	var user SpotifyUser
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("%w: failed to decode profile: %w", shared.ErrParse, err)
	}
	return &user, nil
}

// CurrentPlayback retrieves the user's playback state. It returns nil, nil when nothing is playing.
func (s *SpotifyService) CurrentPlayback(ctx context.Context, token string) (*PlaybackSnapshot, error) {
	body, err := s.doRequest(ctx, token, "/me/player")
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var snapshot PlaybackSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: failed to decode playback: %w", shared.ErrParse, err)
	}
	if snapshot.Item == nil {
		return nil, nil
	}
	return &snapshot, nil
}
