// Package session is the single source of truth for "who is logged in and as
// what role". The session is a three-state sum - Unknown, LoggedOut,
// LoggedIn - so "still resolving" can never be mistaken for "logged out".
package session

import "github.com/sokoni/sokoni/client/rest"

// Status is the resolution state of the session.
type Status int

const (
	// Unknown means the initial credential check has not resolved yet.
	Unknown Status = iota
	// LoggedOut means there is no authenticated user.
	LoggedOut
	// LoggedIn means Profile holds the authenticated user.
	LoggedIn
)

func (s Status) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case LoggedOut:
		return "logged_out"
	case LoggedIn:
		return "logged_in"
	}
	return "invalid"
}

// Session is an immutable snapshot of the auth state. Profile is only
// meaningful when Status is LoggedIn.
type Session struct {
	Status  Status
	Profile rest.Profile
}

// LoggedIn reports whether the session carries an authenticated user.
func (s Session) LoggedIn() bool {
	return s.Status == LoggedIn
}

// Resolved reports whether the initial fetch has completed at least once.
func (s Session) Resolved() bool {
	return s.Status != Unknown
}
