package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// Guard decides whether the cached access token may be used and refreshes it when the provider rejects it.
//
// A Guard is safe for concurrent use.
type Guard struct {
	store     *Store
	exchanger Exchanger
	logger    *log.Logger

	mu    sync.Mutex
	state State
}

// NewGuard creates an [Unauthenticated] guard backed by store.
func NewGuard(store *Store, exchanger Exchanger, logger *log.Logger) *Guard {
	if store == nil {
		store = NewStore()
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Guard{
		store:     store,
		exchanger: exchanger,
		logger:    shared.WithLogger(logger, "component", "session"),
		state:     Unauthenticated,
	}
}

// State returns the current session state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Tokens returns the stored pair.
func (g *Guard) Tokens() TokenPair {
	return g.store.Get()
}

// apply moves to the state reached by e. Callers hold g.mu.
func (g *Guard) apply(e Event) error {
	next, err := Transition(g.state, e)
	if err != nil {
		return err
	}
	if next != g.state {
		g.logger.Debug("session transition", "from", g.state, "event", e, "to", next)
	}
	g.state = next
	return nil
}

// Authorize completes the authorization-code flow and stores the new access and refresh tokens.
func (g *Guard) Authorize(ctx context.Context, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	pair, err := g.exchanger.Exchange(ctx, AuthorizationCode(code))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	if pair.RefreshToken == "" {
		g.logger.Warn("authorization response carried no refresh token")
	}
	g.store.Set(pair)
	g.logger.Info("session authorized")
	return g.apply(Authorized)
}

// EnsureValidToken returns the cached access token without any network call.
//
// It fails with [shared.ErrNotAuthenticated] before authorization and with [shared.ErrTokenExpired]
// while the session is expired; use [Guard.Refresh] or [Guard.Do] to recover from the latter.
func (g *Guard) EnsureValidToken() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Unauthenticated:
		return "", shared.ErrNotAuthenticated
	case Expired:
		return "", shared.ErrTokenExpired
	default:
		return g.store.Get().AccessToken, nil
	}
}

// Invalidate records that the provider rejected token.
//
// It is a no-op when token is no longer the stored access token, which happens when another caller already refreshed.
func (g *Guard) Invalidate(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Authenticated || g.store.Get().AccessToken != token {
		return
	}
	_ = g.apply(Rejected)
	g.logger.Info("access token expired")
}

// Refresh exchanges the stored refresh token for a new access token and returns it.
//
// Only the access token is replaced; the stored refresh token is kept as is.
// If the session is already [Authenticated] the current token is returned without a request.
// On failure the session stays [Expired].
func (g *Guard) Refresh(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case Unauthenticated:
		return "", shared.ErrNotAuthenticated
	case Authenticated:
		return g.store.Get().AccessToken, nil
	}

	current := g.store.Get()
	if current.RefreshToken == "" {
		_ = g.apply(RefreshFailed)
		return "", fmt.Errorf("%w: %w", shared.ErrRefreshFailed, shared.ErrNoRefreshToken)
	}

	g.logger.Info("requesting a new access token")
	pair, err := g.exchanger.Exchange(ctx, Refresh(current.RefreshToken))
	if err != nil {
		_ = g.apply(RefreshFailed)
		g.logger.Error("token refresh failed", "err", err)
		return "", fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}

	// The refresh token from authorization stays in place; a rotated one in the response is ignored.
	g.store.Set(TokenPair{AccessToken: pair.AccessToken, RefreshToken: current.RefreshToken})
	if err := g.apply(Refreshed); err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}

// Do runs fn with a valid access token.
//
// When fn fails with [shared.ErrTokenExpired] the token is refreshed once and fn runs again with the new token.
// A call makes at most one refresh: if the session was already expired on entry, the refresh happens up front
// and a rejection of the fresh token is returned. Any other error, including a second 401, is returned unchanged.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	refreshed := false
	token, err := g.EnsureValidToken()
	if errors.Is(err, shared.ErrTokenExpired) {
		token, err = g.Refresh(ctx)
		refreshed = true
	}
	if err != nil {
		return err
	}

	err = fn(ctx, token)
	if refreshed || !errors.Is(err, shared.ErrTokenExpired) {
		return err
	}

	g.Invalidate(token)
	token, rerr := g.Refresh(ctx)
	if rerr != nil {
		return rerr
	}
	return fn(ctx, token)
}
