package auth

import "sync"

// TokenPair is the access/refresh token pair for the current session.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Empty reports whether the pair carries no access token.
func (p TokenPair) Empty() bool {
	return p.AccessToken == ""
}

// Store holds the process' [TokenPair]. It performs no validation.
//
// Individual reads and writes are safe for concurrent use; read-modify-write sequences belong to [Guard].
type Store struct {
	mu   sync.RWMutex
	pair TokenPair
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Get returns a copy of the current pair.
func (s *Store) Get() TokenPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

// Set replaces the current pair.
func (s *Store) Set(pair TokenPair) {
	s.mu.Lock()
	s.pair = pair
	s.mu.Unlock()
}
