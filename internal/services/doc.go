// Package services implements [PlaybackClient] against the Spotify Web API.
//
// # Spotify Implementation
//
// [SpotifyService] is stateless with respect to credentials: each call receives the access token to send.
// Token lifecycle lives in the auth package, which wraps calls with auth.Guard.Do.
//
// # Nothing Playing
//
// GET /me/player answers 204 with no body when no device is active, and may return a body whose item is null
// between tracks or during ads. Both are reported as a nil [PlaybackSnapshot] with no error.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrTokenExpired] : the API answered 401, refresh and retry
//   - [shared.ErrAPIRequest] : any other non-2xx status, as an [UpstreamAPIError]
//   - [shared.ErrParse] : the response body was not the expected JSON
package services
