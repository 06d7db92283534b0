package gate

import (
	"strings"
	"testing"

	"github.com/sokoni/sokoni/client/session"
)

type recordingNav struct {
	replacements []string
}

func (n *recordingNav) Replace(route string) {
	n.replacements = append(n.replacements, route)
}

func newTestGate() (*Gate, *recordingNav) {
	nav := &recordingNav{}
	g := New(nav, Config{
		PublicEntry: "/login",
		AppEntry:    "/home",
		IsPublic: func(route string) bool {
			return route == "/login" || strings.HasPrefix(route, "/auth/")
		},
	})
	return g, nav
}

func TestStartsLoadingWithoutRedirect(t *testing.T) {
	g, nav := newTestGate()

	if g.State() != Loading {
		t.Fatalf("expected Loading, got %s", g.State())
	}
	// A route change before the session resolves must not redirect: the user
	// could still turn out to be logged in.
	g.OnRoute("/home")
	if len(nav.replacements) != 0 {
		t.Fatalf("expected no redirect before first resolution, got %v", nav.replacements)
	}

	// Unknown sessions keep the gate in Loading.
	g.OnSession(session.Session{Status: session.Unknown})
	if g.State() != Loading || len(nav.replacements) != 0 {
		t.Fatalf("unknown session must not initialize the gate")
	}
}

func TestLoggedOutRedirectsToPublicEntry(t *testing.T) {
	g, nav := newTestGate()
	g.OnRoute("/home")

	g.OnSession(session.Session{Status: session.LoggedOut})

	if g.State() != Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %s", g.State())
	}
	if len(nav.replacements) != 1 || nav.replacements[0] != "/login" {
		t.Fatalf("expected redirect to /login, got %v", nav.replacements)
	}
}

func TestLoggedInRedirectsOffPublicRoutes(t *testing.T) {
	g, nav := newTestGate()
	g.OnRoute("/login")

	g.OnSession(session.Session{Status: session.LoggedIn})

	if len(nav.replacements) != 1 || nav.replacements[0] != "/home" {
		t.Fatalf("expected redirect to /home, got %v", nav.replacements)
	}
}

func TestNoRedirectWhenAlreadyInRightGroup(t *testing.T) {
	g, nav := newTestGate()
	g.OnRoute("/home")
	g.OnSession(session.Session{Status: session.LoggedIn})
	if len(nav.replacements) != 0 {
		t.Fatalf("expected no redirect, got %v", nav.replacements)
	}

	// Navigating within the group stays quiet too.
	g.OnRoute("/orders")
	if len(nav.replacements) != 0 {
		t.Fatalf("expected no redirect within group, got %v", nav.replacements)
	}
}

func TestRedirectTargetFollowsLatestSession(t *testing.T) {
	g, nav := newTestGate()
	g.OnRoute("/home")

	g.OnSession(session.Session{Status: session.LoggedIn})
	g.OnSession(session.Session{Status: session.LoggedOut})
	g.OnRoute("/login")
	g.OnSession(session.Session{Status: session.LoggedIn})

	// Logout bounced /home to /login; the later login bounced /login to /home.
	want := []string{"/login", "/home"}
	if len(nav.replacements) != len(want) {
		t.Fatalf("expected %v, got %v", want, nav.replacements)
	}
	for i := range want {
		if nav.replacements[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, nav.replacements)
		}
	}
}

func TestNoRedirectLoop(t *testing.T) {
	g, nav := newTestGate()
	g.OnSession(session.Session{Status: session.LoggedOut})

	// Simulate the navigator actually applying each redirect.
	g.OnRoute("/home")
	for i := 0; i < 5 && len(nav.replacements) > 0; i++ {
		last := nav.replacements[len(nav.replacements)-1]
		g.OnRoute(last)
	}
	// One redirect settles it: the entry route is inside the target group.
	if len(nav.replacements) != 1 {
		t.Fatalf("expected exactly one redirect, got %v", nav.replacements)
	}
}
