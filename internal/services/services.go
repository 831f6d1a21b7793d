// package services defines clients for the HTTP APIs the dashboard reads from
package services

import (
	"context"
	"net/http"
	"time"
)

// PlaybackClient reads the signed-in user's profile and what they are listening to.
//
// Every call takes the bearer token explicitly so an auth.Guard can retry it after a refresh.
type PlaybackClient interface {
	// Profile returns the user behind token.
	Profile(ctx context.Context, token string) (*SpotifyUser, error)

	// CurrentPlayback returns the active playback, or nil when nothing is playing.
	CurrentPlayback(ctx context.Context, token string) (*PlaybackSnapshot, error)
}

// DefaultTimeout bounds every outbound request when no client is supplied.
const DefaultTimeout = 15 * time.Second

// NewHTTPClient returns a client with the given timeout, or [DefaultTimeout] when it is not positive.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
