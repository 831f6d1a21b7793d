// Package server provides HTTP routing, middleware, and the web dashboard.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] registers
// method-qualified [http.ServeMux] patterns and wraps the whole mux in its middleware, first added outermost.
//
// # Dashboard
//
// [Server] serves:
//
//	GET /          dashboard page
//	GET /api/now   the same dashboard as JSON
//	GET /login     sets a state cookie and redirects to the Spotify consent page
//	GET /callback  verifies state, completes authorization, redirects to /
//	GET /healthz   session state
//
// A request that needs a session redirects to /login (or answers 401 on /api/now). Upstream failures
// answer 502, anything else 500; neither is retried.
//
// # Loopback OAuth
//
// [OAuthHandler] serves a single /callback for CLI commands: it checks the state it was created with,
// completes authorization, and reports the outcome once on [OAuthHandler.Result].
//
// # Middleware
//
// [Logging] is httplog's request logger over the application logger; [Recovery] converts panics to 500s.
package server
