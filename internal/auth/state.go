package auth

import "fmt"

// State is the session's position in the token lifecycle.
type State int

const (
	Unauthenticated State = iota // no tokens yet
	Authenticated                // access token present, assumed valid
	Expired                      // access token present, provider rejected it
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event drives a [State] change.
type Event int

const (
	Authorized    Event = iota // authorization-code exchange succeeded
	Rejected                   // provider answered 401 for the current access token
	Refreshed                  // refresh-token exchange succeeded
	RefreshFailed              // refresh-token exchange failed
)

func (e Event) String() string {
	switch e {
	case Authorized:
		return "authorized"
	case Rejected:
		return "rejected"
	case Refreshed:
		return "refreshed"
	case RefreshFailed:
		return "refresh_failed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned by [Transition] for an event the state cannot accept.
var ErrInvalidTransition = fmt.Errorf("invalid session transition")

// Transition returns the state reached from s on event e.
func Transition(s State, e Event) (State, error) {
	switch s {
	case Unauthenticated:
		if e == Authorized {
			return Authenticated, nil
		}
	case Authenticated:
		switch e {
		case Authorized:
			return Authenticated, nil
		case Rejected:
			return Expired, nil
		}
	case Expired:
		switch e {
		case Authorized, Refreshed:
			return Authenticated, nil
		case Rejected, RefreshFailed:
			return Expired, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
