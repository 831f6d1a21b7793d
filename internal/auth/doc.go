// Package auth owns the Spotify OAuth token lifecycle.
//
// # Components
//
//   - [Store] holds the single [TokenPair] for the process.
//   - [OAuthExchanger] performs the authorization-code and refresh-token grants against the token endpoint.
//   - [Guard] is the session state machine. It hands out access tokens, detects expiry from 401 responses
//     and refreshes silently.
//
// # States
//
// A [Guard] starts [Unauthenticated]. A successful authorization-code exchange moves it to [Authenticated].
// A call rejected with 401 moves it to [Expired], and a successful refresh moves it back. There is no terminal state.
// [Transition] is the single source of truth for legal moves.
//
// # Refresh
//
// [Guard.Do] runs a privileged call with the cached token. If the call fails with [shared.ErrTokenExpired]
// the guard refreshes exactly once and runs the call again. Refreshes are serialized so concurrent 401s
// cause a single token request. A refresh response without a refresh token keeps the stored one.
package auth
