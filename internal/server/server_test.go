package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/nowplaying/internal/auth"
	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/services"
	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/desertthunder/nowplaying/internal/tasks"
)

type fakeSession struct {
	mu    sync.Mutex
	codes []string
	err   error
	state auth.State
}

func (f *fakeSession) Authorize(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes = append(f.codes, code)
	if f.err != nil {
		return f.err
	}
	f.state = auth.Authenticated
	return nil
}

func (f *fakeSession) State() auth.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

type fakeAuthURL struct{}

func (fakeAuthURL) AuthCodeURL(state string) string {
	return "https://accounts.example/authorize?state=" + url.QueryEscape(state)
}

type fakeEngine struct {
	dashboard *tasks.Dashboard
	err       error
	panics    bool
}

func (f *fakeEngine) Dashboard(context.Context, chan<- tasks.ProgressUpdate) (*tasks.Dashboard, error) {
	if f.panics {
		panic("boom")
	}
	return f.dashboard, f.err
}

func playingDashboard() *tasks.Dashboard {
	return &tasks.Dashboard{
		Profile: &services.SpotifyUser{ID: "u1", DisplayName: "Listener"},
		Playback: &services.PlaybackSnapshot{
			IsPlaying:  true,
			ProgressMS: 61000,
			Item: &services.SpotifyTrack{
				ID:         "t1",
				Name:       "Song <One>",
				DurationMS: 180000,
				Artists:    []services.SpotifyArtist{{ID: "a1", Name: "First Artist"}, {ID: "a2", Name: "Second Artist"}},
			},
		},
		News: []models.NewsItem{
			{Title: "Tour announced", URL: "https://news.example/tour", ImageURL: "https://img.example/t.jpg", PreviewText: "Thirty cities."},
		},
		FetchedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newTestServer(session Session, engine tasks.Engine, logs io.Writer) *Server {
	return New(Options{
		Session: session,
		AuthURL: fakeAuthURL{},
		Engine:  engine,
		Logger:  shared.NewLogger(logs),
	})
}

func serve(s http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestDashboardRoutes(t *testing.T) {
	t.Run("index renders dashboard", func(t *testing.T) {
		s := newTestServer(&fakeSession{}, &fakeEngine{dashboard: playingDashboard()}, io.Discard)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{
			"Song &lt;One&gt;",
			"First Artist, Second Artist",
			"Tour announced",
			`href="https://news.example/tour"`,
			"Signed in as Listener",
			"1m1s / 3m0s",
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected body to contain %q", want)
			}
		}
	})

	t.Run("index with nothing playing", func(t *testing.T) {
		d := &tasks.Dashboard{Profile: &services.SpotifyUser{ID: "u1"}, News: []models.NewsItem{}}
		s := newTestServer(&fakeSession{}, &fakeEngine{dashboard: d}, io.Discard)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Nothing playing") {
			t.Errorf("expected nothing playing page, got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("session errors redirect to login", func(t *testing.T) {
		for _, err := range []error{
			shared.ErrNotAuthenticated,
			errors.Join(shared.ErrRefreshFailed, shared.ErrNoRefreshToken),
		} {
			s := newTestServer(&fakeSession{}, &fakeEngine{err: err}, io.Discard)
			rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
				t.Errorf("%v: expected redirect to /login, got %d %q", err, rec.Code, rec.Header().Get("Location"))
			}
		}
	})

	t.Run("failures render generic error pages", func(t *testing.T) {
		tc := []struct {
			name string
			err  error
			want int
		}{
			{"upstream", &services.UpstreamAPIError{Method: "GET", Endpoint: "/me/player", StatusCode: 503}, http.StatusBadGateway},
			{"second 401", shared.ErrTokenExpired, http.StatusBadGateway},
			{"unexpected", errors.New("database is locked"), http.StatusInternalServerError},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				s := newTestServer(&fakeSession{}, &fakeEngine{err: tt.err}, io.Discard)
				rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

				if rec.Code != tt.want {
					t.Errorf("expected %d, got %d", tt.want, rec.Code)
				}
				if strings.Contains(rec.Body.String(), tt.err.Error()) {
					t.Error("error details must not leak into the page")
				}
			})
		}
	})

	t.Run("api now", func(t *testing.T) {
		s := newTestServer(&fakeSession{}, &fakeEngine{dashboard: playingDashboard()}, io.Discard)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/now", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %s", ct)
		}

		var got struct {
			Playback struct {
				Item struct {
					Name string `json:"name"`
				} `json:"item"`
			} `json:"playback"`
			News []models.NewsItem `json:"news"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Playback.Item.Name != "Song <One>" || len(got.News) != 1 {
			t.Errorf("unexpected payload %+v", got)
		}
	})

	t.Run("api now unauthenticated", func(t *testing.T) {
		s := newTestServer(&fakeSession{}, &fakeEngine{err: shared.ErrNotAuthenticated}, io.Discard)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/now", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("api now upstream failure", func(t *testing.T) {
		s := newTestServer(&fakeSession{}, &fakeEngine{err: shared.ErrAPIRequest}, io.Discard)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/now", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})

	t.Run("healthz", func(t *testing.T) {
		s := newTestServer(&fakeSession{state: auth.Expired}, &fakeEngine{}, io.Discard)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		var got map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got["status"] != "ok" || got["session"] != "expired" {
			t.Errorf("unexpected health %v", got)
		}
	})

	t.Run("unknown path and wrong method", func(t *testing.T) {
		s := newTestServer(&fakeSession{}, &fakeEngine{dashboard: playingDashboard()}, io.Discard)

		if rec := serve(s, httptest.NewRequest(http.MethodGet, "/nope", nil)); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/now", nil)); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("panic is recovered", func(t *testing.T) {
		var logs bytes.Buffer
		s := newTestServer(&fakeSession{}, &fakeEngine{panics: true}, &logs)
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(logs.String(), "handler panic") {
			t.Errorf("expected panic to be logged, got %q", logs.String())
		}
	})
}

func TestLoginFlow(t *testing.T) {
	login := func(t *testing.T, s *Server) *http.Cookie {
		t.Helper()
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/login", nil))
		if rec.Code != http.StatusFound {
			t.Fatalf("expected 302, got %d", rec.Code)
		}

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == stateCookie {
				cookie = c
			}
		}
		if cookie == nil || cookie.Value == "" {
			t.Fatal("expected state cookie")
		}
		if !cookie.HttpOnly {
			t.Error("state cookie must be HttpOnly")
		}

		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("invalid redirect: %v", err)
		}
		if loc.Query().Get("state") != cookie.Value {
			t.Errorf("redirect state %q does not match cookie %q", loc.Query().Get("state"), cookie.Value)
		}
		return cookie
	}

	t.Run("callback with matching state authorizes", func(t *testing.T) {
		session := &fakeSession{}
		s := newTestServer(session, &fakeEngine{}, io.Discard)
		cookie := login(t, s)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=the-code&state="+url.QueryEscape(cookie.Value), nil)
		req.AddCookie(cookie)
		rec := serve(s, req)

		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
			t.Errorf("expected redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
		}
		if len(session.codes) != 1 || session.codes[0] != "the-code" {
			t.Errorf("expected Authorize(the-code), got %v", session.codes)
		}
	})

	t.Run("state mismatch is rejected", func(t *testing.T) {
		session := &fakeSession{}
		s := newTestServer(session, &fakeEngine{}, io.Discard)
		cookie := login(t, s)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=the-code&state=forged", nil)
		req.AddCookie(cookie)
		rec := serve(s, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if len(session.codes) != 0 {
			t.Errorf("Authorize must not run, got %v", session.codes)
		}
	})

	t.Run("missing cookie is rejected", func(t *testing.T) {
		session := &fakeSession{}
		s := newTestServer(session, &fakeEngine{}, io.Discard)

		rec := serve(s, httptest.NewRequest(http.MethodGet, "/callback?code=c&state=", nil))
		if rec.Code != http.StatusBadRequest || len(session.codes) != 0 {
			t.Errorf("expected 400 without authorization, got %d %v", rec.Code, session.codes)
		}
	})

	t.Run("denied consent", func(t *testing.T) {
		session := &fakeSession{}
		s := newTestServer(session, &fakeEngine{}, io.Discard)
		cookie := login(t, s)

		req := httptest.NewRequest(http.MethodGet, "/callback?error=access_denied&state="+url.QueryEscape(cookie.Value), nil)
		req.AddCookie(cookie)
		rec := serve(s, req)

		if rec.Code != http.StatusBadRequest || len(session.codes) != 0 {
			t.Errorf("expected 400 without authorization, got %d %v", rec.Code, session.codes)
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		session := &fakeSession{err: shared.ErrAuthFailed}
		s := newTestServer(session, &fakeEngine{}, io.Discard)
		cookie := login(t, s)

		req := httptest.NewRequest(http.MethodGet, "/callback?code=c&state="+url.QueryEscape(cookie.Value), nil)
		req.AddCookie(cookie)
		rec := serve(s, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	newRouter := func(h *OAuthHandler) *BasicRouter {
		r := NewBasicRouter()
		r.Handler(h)
		return r
	}

	t.Run("success", func(t *testing.T) {
		session := &fakeSession{}
		h := NewOAuthHandler(session, "s1")
		rec := serve(newRouter(h), httptest.NewRequest(http.MethodGet, "/callback?code=c1&state=s1", nil))

		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Errorf("expected success page, got %d", rec.Code)
		}
		result := <-h.Result()
		if result.Error() != nil {
			t.Errorf("unexpected error: %v", result.Error())
		}
		if len(session.codes) != 1 || session.codes[0] != "c1" {
			t.Errorf("expected Authorize(c1), got %v", session.codes)
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		h := NewOAuthHandler(&fakeSession{}, "s1")
		rec := serve(newRouter(h), httptest.NewRequest(http.MethodGet, "/callback?code=c1&state=nope", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", result.Error())
		}
	})

	t.Run("authorize failure", func(t *testing.T) {
		h := NewOAuthHandler(&fakeSession{err: shared.ErrAuthFailed}, "s1")
		rec := serve(newRouter(h), httptest.NewRequest(http.MethodGet, "/callback?code=c1&state=s1", nil))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", rec.Code)
		}
		if result := <-h.Result(); !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("only first callback counts", func(t *testing.T) {
		session := &fakeSession{}
		h := NewOAuthHandler(session, "s1")
		r := newRouter(h)

		serve(r, httptest.NewRequest(http.MethodGet, "/callback?code=c1&state=s1", nil))
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/callback?code=c2&state=s1", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for replay, got %d", rec.Code)
		}
		if len(session.codes) != 1 {
			t.Errorf("expected one authorization, got %v", session.codes)
		}
		if _, open := <-h.Result(); !open {
			t.Error("expected one result before close")
		}
		if _, open := <-h.Result(); open {
			t.Error("expected channel to be closed")
		}
	})
}

func TestServerLifecycle(t *testing.T) {
	s := newTestServer(&fakeSession{state: auth.Authenticated}, &fakeEngine{}, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh, err := s.Start(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	if err := s.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("failed to shut down: %v", err)
	}
	if err, open := <-errCh; open && err != nil {
		t.Errorf("unexpected serve error: %v", err)
	}

	t.Run("shutdown before start", func(t *testing.T) {
		idle := newTestServer(&fakeSession{}, &fakeEngine{}, io.Discard)
		if err := idle.Shutdown(context.Background()); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		bad := newTestServer(&fakeSession{}, &fakeEngine{}, io.Discard)
		if _, err := bad.Start(ctx, "127.0.0.1:99999"); err == nil {
			t.Error("expected listen error")
		}
	})
}
