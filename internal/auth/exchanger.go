package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/nowplaying/internal/shared"
	"golang.org/x/oauth2"
)

const (
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// Scopes needed to read the current playback state.
var Scopes = []string{"user-read-currently-playing", "user-read-playback-state"}

// GrantType identifies an OAuth2 grant.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantRefreshToken      GrantType = "refresh_token"
)

// Grant is the payload sent to the token endpoint. Build one with [AuthorizationCode] or [Refresh].
type Grant struct {
	Type         GrantType
	Code         string
	RefreshToken string
}

// AuthorizationCode returns a grant exchanging a one-time code from the authorize redirect.
func AuthorizationCode(code string) Grant {
	return Grant{Type: GrantAuthorizationCode, Code: code}
}

// Refresh returns a grant trading a refresh token for a new access token.
func Refresh(refreshToken string) Grant {
	return Grant{Type: GrantRefreshToken, RefreshToken: refreshToken}
}

// Exchanger performs token grants.
type Exchanger interface {
	Exchange(ctx context.Context, grant Grant) (TokenPair, error)
}

// TokenExchangeError reports a rejected or malformed token response.
type TokenExchangeError struct {
	Grant      GrantType
	StatusCode int
	Err        error
}

func (e *TokenExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s grant: status %d: %v", e.Grant, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s grant: %v", e.Grant, e.Err)
}

func (e *TokenExchangeError) Unwrap() []error {
	return []error{shared.ErrTokenExchange, e.Err}
}

// OAuthExchanger implements [Exchanger] on top of [oauth2.Config].
//
// Requests are form-encoded with the client credentials in an HTTP Basic header.
type OAuthExchanger struct {
	config     *oauth2.Config
	httpClient *http.Client
}

var _ Exchanger = (*OAuthExchanger)(nil)

// ExchangerOption configures an [OAuthExchanger].
type ExchangerOption func(*OAuthExchanger)

// WithHTTPClient sets the client used for token requests.
func WithHTTPClient(client *http.Client) ExchangerOption {
	return func(e *OAuthExchanger) {
		if client != nil {
			e.httpClient = client
		}
	}
}

// WithEndpoint overrides the authorize and token URLs.
func WithEndpoint(authURL, tokenURL string) ExchangerOption {
	return func(e *OAuthExchanger) {
		if authURL != "" {
			e.config.Endpoint.AuthURL = authURL
		}
		if tokenURL != "" {
			e.config.Endpoint.TokenURL = tokenURL
		}
	}
}

// NewOAuthExchanger creates an exchanger from Spotify credentials.
func NewOAuthExchanger(creds shared.SpotifyConfig, opts ...ExchangerOption) (*OAuthExchanger, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect_uri is required", shared.ErrMissingCredentials)
	}

	e := &OAuthExchanger{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   SpotifyAuthURL,
				TokenURL:  SpotifyTokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// AuthCodeURL returns the provider's consent page URL for the given state.
func (e *OAuthExchanger) AuthCodeURL(state string) string {
	return e.config.AuthCodeURL(state)
}

// Exchange sends the grant to the token endpoint and returns the resulting pair.
//
// The refresh token in the result is whatever the provider returned; merging with a stored one is the caller's job.
func (e *OAuthExchanger) Exchange(ctx context.Context, grant Grant) (TokenPair, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)

	var (
		token *oauth2.Token
		err   error
	)
	switch grant.Type {
	case GrantAuthorizationCode:
		if grant.Code == "" {
			return TokenPair{}, &TokenExchangeError{Grant: grant.Type, Err: shared.ErrMissingArgument}
		}
		token, err = e.config.Exchange(ctx, grant.Code)
	case GrantRefreshToken:
		if grant.RefreshToken == "" {
			return TokenPair{}, &TokenExchangeError{Grant: grant.Type, Err: shared.ErrNoRefreshToken}
		}
		// An expired token forces the source to hit the token endpoint.
		token, err = e.config.TokenSource(ctx, &oauth2.Token{RefreshToken: grant.RefreshToken}).Token()
	default:
		return TokenPair{}, &TokenExchangeError{Grant: grant.Type, Err: fmt.Errorf("%w: unsupported grant type", shared.ErrInvalidArgument)}
	}

	if err != nil {
		xerr := &TokenExchangeError{Grant: grant.Type, Err: err}
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) && rerr.Response != nil {
			xerr.StatusCode = rerr.Response.StatusCode
		}
		return TokenPair{}, xerr
	}

	pair := TokenPair{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}
	if grant.Type == GrantRefreshToken {
		// The token source copies the old refresh token into its result; report only what the response carried.
		pair.RefreshToken, _ = token.Extra("refresh_token").(string)
	}
	return pair, nil
}
