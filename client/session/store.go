package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sokoni/sokoni/client/rest"
)

// TokenExchanger resolves a stored bearer token into the current profile.
// *rest.Client satisfies it; tests substitute fakes.
type TokenExchanger interface {
	UserDetails(ctx context.Context, token string) (rest.Profile, error)
}

// Store owns the process-wide session. All mutation goes through its methods;
// observers are notified on every change. Methods are safe for concurrent use
// with last-write-wins semantics - concurrent fetches are tolerated, not
// deduplicated.
type Store struct {
	creds  CredentialStore
	api    TokenExchanger
	logger *slog.Logger

	mu        sync.Mutex
	session   Session
	token     string
	observers map[int]func(Session)
	nextObs   int
}

// NewStore builds a session store. The session starts Unknown until
// FetchCurrentUser resolves it.
func NewStore(creds CredentialStore, api TokenExchanger, logger *slog.Logger) *Store {
	return &Store{
		creds:     creds,
		api:       api,
		logger:    logger,
		session:   Session{Status: Unknown},
		observers: make(map[int]func(Session)),
	}
}

// Snapshot returns the current session.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Token returns the bearer token of the logged-in user, or "".
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Subscribe registers an observer called on every session change. The
// returned function unsubscribes; callers must invoke it when done.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// FetchCurrentUser resolves the session from the persisted credential. No
// credential resolves to LoggedOut immediately. Any exchange failure -
// expired token, network error - clears the credential and resolves
// LoggedOut: the store fails open to "logged out", never to a stale or
// ambiguous state.
func (s *Store) FetchCurrentUser(ctx context.Context) {
	token, err := s.creds.Load()
	if err != nil || token == "" {
		if err != nil && s.logger != nil {
			s.logger.Warn("credential load failed", "error", err)
		}
		s.set(Session{Status: LoggedOut}, "")
		return
	}

	profile, err := s.api.UserDetails(ctx, token)
	if err != nil {
		if s.logger != nil {
			s.logger.Info("token exchange failed, logging out", "error", err)
		}
		_ = s.creds.Clear()
		s.set(Session{Status: LoggedOut}, "")
		return
	}

	s.set(Session{Status: LoggedIn, Profile: profile}, token)
}

// SetUserData overrides the session synchronously after an action that
// already knows the fresh profile (login, role switch, profile update),
// avoiding a redundant round trip. The token is persisted.
func (s *Store) SetUserData(profile rest.Profile, token string) {
	if err := s.creds.Save(token); err != nil && s.logger != nil {
		s.logger.Warn("credential save failed", "error", err)
	}
	s.set(Session{Status: LoggedIn, Profile: profile}, token)
}

// UpdateProfile replaces the profile of an already logged-in session,
// keeping the current token. No-op when logged out.
func (s *Store) UpdateProfile(profile rest.Profile) {
	s.mu.Lock()
	if s.session.Status != LoggedIn {
		s.mu.Unlock()
		return
	}
	token := s.token
	s.mu.Unlock()
	s.set(Session{Status: LoggedIn, Profile: profile}, token)
}

// ClearUser logs out synchronously: the persisted credential is removed and
// the session resolves to LoggedOut.
func (s *Store) ClearUser() {
	if err := s.creds.Clear(); err != nil && s.logger != nil {
		s.logger.Warn("credential clear failed", "error", err)
	}
	s.set(Session{Status: LoggedOut}, "")
}

func (s *Store) set(session Session, token string) {
	s.mu.Lock()
	s.session = session
	s.token = token
	observers := make([]func(Session), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	// Observers run outside the lock so they can call back into the store.
	for _, fn := range observers {
		fn(session)
	}
}
