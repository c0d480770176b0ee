// Package session holds the per-client authentication state of the POS views.
//
// A Session moves between two states only. A LoginSucceeded event authenticates it
// and a LoggedOut event resets it. Reduce is the pure transition function. Store
// holds one snapshot and replaces it wholesale on every accepted event. Loader
// performs the one-time session fetch when a client first mounts. Registry owns
// one Store per client.
package session

import "errors"

var (
	// ErrNoSession is returned by fetchers when the client carries no credential.
	ErrNoSession = errors.New("session: no credential present")
	// ErrInvalidSession is returned when a fetcher resolves to a login event
	// that would break the profile/token invariant.
	ErrInvalidSession = errors.New("session: fetched session is incomplete")
)

type Profile struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Session is an immutable snapshot. Profile and Token are both set or both empty,
// and IsAuthenticated is true exactly when Profile is set.
type Session struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	Profile         *Profile `json:"profile"`
	Token           string   `json:"token,omitempty"`
}

// Valid reports whether s satisfies the session invariant.
func (s Session) Valid() bool {
	hasProfile := s.Profile != nil
	return s.IsAuthenticated == hasProfile && hasProfile == (s.Token != "")
}

func (s Session) clone() Session {
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}

// Event is anything that can be dispatched to a Store. Only LoginSucceeded and
// LoggedOut change state; every other implementation is ignored.
type Event interface {
	EventName() string
}

type LoginSucceeded struct {
	Profile *Profile
	Token   string
}

func (LoginSucceeded) EventName() string { return "login_succeeded" }

func (e LoginSucceeded) complete() bool {
	return e.Profile != nil && e.Token != ""
}

// incompleteLogin reports whether event is a login that Reduce will refuse.
func incompleteLogin(event Event) bool {
	switch e := event.(type) {
	case LoginSucceeded:
		return !e.complete()
	case *LoginSucceeded:
		return e == nil || !e.complete()
	}
	return false
}

type LoggedOut struct{}

func (LoggedOut) EventName() string { return "logged_out" }

// Reduce applies event to state and returns the next snapshot. Unknown events and
// incomplete logins return state unchanged.
func Reduce(state Session, event Event) Session {
	switch e := event.(type) {
	case LoginSucceeded:
		if !e.complete() {
			return state
		}
		p := *e.Profile
		return Session{IsAuthenticated: true, Profile: &p, Token: e.Token}
	case *LoginSucceeded:
		if e == nil {
			return state
		}
		return Reduce(state, *e)
	case LoggedOut, *LoggedOut:
		return Session{}
	default:
		return state
	}
}
