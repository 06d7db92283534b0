// Package gate keeps the displayed route group consistent with the session
// state. It is an explicit state machine, testable without any rendering
// framework: the host wires a Navigator and feeds it session and route
// changes.
package gate

import (
	"sync"

	"github.com/sokoni/sokoni/client/session"
)

// State is the gate's authentication state.
type State int

const (
	// Loading means the initial session fetch has not resolved; no redirects run.
	Loading State = iota
	// Unauthenticated means the user must be inside the public route group.
	Unauthenticated
	// Authenticated means the user must be inside the app route group.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return "invalid"
}

// Group is a named partition of routes.
type Group int

const (
	// GroupPublic holds the login/registration/reset screens.
	GroupPublic Group = iota
	// GroupApp holds everything behind authentication.
	GroupApp
)

// Navigator performs route replacement. Replace rather than push: the user
// must not be able to navigate back across an auth boundary.
type Navigator interface {
	Replace(route string)
}

// Config parameterizes the gate. IsPublic classifies routes into groups;
// the entry routes are the redirect targets per group.
type Config struct {
	PublicEntry string
	AppEntry    string
	IsPublic    func(route string) bool
}

// Gate tracks session state and the current route, redirecting whenever they
// disagree. Redirects are idempotent: a route already in the correct group is
// never redirected, which breaks any potential loop.
type Gate struct {
	nav Navigator
	cfg Config

	mu          sync.Mutex
	state       State
	initialized bool
	route       string
}

// New builds a gate in the Loading state.
func New(nav Navigator, cfg Config) *Gate {
	return &Gate{nav: nav, cfg: cfg}
}

// State returns the current gate state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// OnSession feeds a session change into the state machine. The first resolved
// session marks the gate initialized; until then no redirect runs, so a
// not-yet-loaded session can never bounce the user to login mid-start.
func (g *Gate) OnSession(s session.Session) {
	g.mu.Lock()
	switch s.Status {
	case session.Unknown:
		g.state = Loading
		g.mu.Unlock()
		return
	case session.LoggedOut:
		g.state = Unauthenticated
	case session.LoggedIn:
		g.state = Authenticated
	}
	g.initialized = true
	g.mu.Unlock()

	g.evaluate()
}

// OnRoute records a route change and re-evaluates the redirect policy.
func (g *Gate) OnRoute(route string) {
	g.mu.Lock()
	g.route = route
	g.mu.Unlock()

	g.evaluate()
}

// evaluate issues at most one redirect to bring the route group in line with
// the gate state.
func (g *Gate) evaluate() {
	g.mu.Lock()
	state, initialized, route := g.state, g.initialized, g.route
	g.mu.Unlock()

	if !initialized || route == "" {
		return
	}

	inPublic := g.cfg.IsPublic(route)
	switch state {
	case Unauthenticated:
		if !inPublic {
			g.nav.Replace(g.cfg.PublicEntry)
		}
	case Authenticated:
		if inPublic {
			g.nav.Replace(g.cfg.AppEntry)
		}
	}
}
