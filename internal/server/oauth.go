package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/nowplaying/internal/shared"
)

// Authorizer completes an authorization-code grant. Implemented by auth.Guard.
type Authorizer interface {
	Authorize(ctx context.Context, code string) error
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	err error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// verifyCallback checks the state and returns the authorization code from a callback request.
func verifyCallback(r *http.Request, expectedState string) (string, error) {
	q := r.URL.Query()
	state := q.Get("state")
	if expectedState == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expectedState)) != 1 {
		return "", shared.ErrInvalidState
	}

	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, q.Get("error"), q.Get("error_description"))
	}
	return code, nil
}

// OAuthHandler handles a single authorization-code callback on a loopback server started by the CLI.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	authorizer  Authorizer
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a handler that accepts the callback carrying state and hands its code to authorizer.
func NewOAuthHandler(authorizer Authorizer, state string) *OAuthHandler {
	return &OAuthHandler{
		authorizer: authorizer,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"GET /callback"}
}

// ServeHTTP validates the callback, completes authorization, and publishes the outcome on [OAuthHandler.Result].
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	code, err := verifyCallback(r, h.state)
	if err != nil {
		h.Send(OAuthResult{err: err})
		renderError(w, http.StatusBadRequest, callbackMessage(err))
		return
	}

	if err := h.authorizer.Authorize(r.Context(), code); err != nil {
		h.Send(OAuthResult{err: err})
		renderError(w, http.StatusBadGateway, "Token exchange failed")
		return
	}

	h.Send(OAuthResult{})
	renderPage(w, http.StatusOK, "authorized.html", nil)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

func callbackMessage(err error) string {
	if errors.Is(err, shared.ErrInvalidState) {
		return "Invalid state parameter"
	}
	return "Authorization failed"
}
