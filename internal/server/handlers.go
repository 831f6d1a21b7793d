package server

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
)

const stateCookie = "nowplaying_oauth_state"

type dashboardHandler struct {
	session Session
	authURL AuthURLBuilder
	engine  tasks.Engine
	logger  *log.Logger
	secure  bool
}

// needsLogin reports whether err can only be fixed by signing in again.
func needsLogin(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrRefreshFailed)
}

// failureStatus maps a dashboard error to 502 for upstream trouble and 500 otherwise.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrAPIRequest),
		errors.Is(err, shared.ErrTokenExpired),
		errors.Is(err, shared.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *dashboardHandler) index(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Dashboard(r.Context(), nil)
	if err != nil {
		if needsLogin(err) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		h.logger.Error("failed to build dashboard", "err", err)
		status := failureStatus(err)
		renderError(w, status, "Could not load your dashboard. Try again in a moment.")
		return
	}
	renderPage(w, http.StatusOK, "dashboard.html", d)
}

func (h *dashboardHandler) apiNow(w http.ResponseWriter, r *http.Request) {
	d, err := h.engine.Dashboard(r.Context(), nil)
	if err != nil {
		if needsLogin(err) {
			writeJSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		h.logger.Error("failed to build dashboard", "err", err)
		status := failureStatus(err)
		writeJSONError(w, status, http.StatusText(status))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *dashboardHandler) login(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", "err", err)
		renderError(w, http.StatusInternalServerError, "Could not start sign-in.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.authURL.AuthCodeURL(state), http.StatusFound)
}

func (h *dashboardHandler) callback(w http.ResponseWriter, r *http.Request) {
	var expected string
	if c, err := r.Cookie(stateCookie); err == nil {
		expected = c.Value
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.secure})

	code, err := verifyCallback(r, expected)
	if err != nil {
		h.logger.Warn("rejected oauth callback", "err", err)
		renderError(w, http.StatusBadRequest, callbackMessage(err))
		return
	}

	if err := h.session.Authorize(r.Context(), code); err != nil {
		h.logger.Error("authorization failed", "err", err)
		renderError(w, http.StatusBadGateway, "Spotify did not accept the sign-in. Please try again.")
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *dashboardHandler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"session": h.session.State().String(),
	})
}
