// Package session owns the credential and the identity resolved for it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-dashboard/internal/dashboard/apiclient"
	"github.com/safecity/incident-dashboard/internal/dashboard/credstore"
	"github.com/safecity/incident-dashboard/internal/dashboard/i18n"
	"github.com/safecity/incident-dashboard/internal/dashboard/state"
	"github.com/safecity/incident-dashboard/internal/dashboard/ui"
)

// ErrLoginFailed wraps the reason a login was rejected.
var ErrLoginFailed = errors.New("login failed")

// API is the part of the REST API the session uses.
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, token string) (*apiclient.Identity, error)
}

// Snapshot is a consistent view of the session. Identity is only set while
// Credential is.
type Snapshot struct {
	Credential string
	Identity   *apiclient.Identity
	Privileged bool
	Ready      bool
	Version    uint64
}

// Listener observes session changes. It runs on the goroutine that caused
// the change, after the store lock is released.
type Listener func(ctx context.Context, snap Snapshot)

type Deps struct {
	API         API
	Credentials credstore.Store
	Notifier    ui.Notifier
	Confirmer   ui.Confirmer
	Navigator   ui.Navigator
	Printer     *i18n.Printer
	Logger      zerolog.Logger
}

// Store is safe for concurrent use.
type Store struct {
	api   API
	creds credstore.Store
	notes ui.Notifier
	ask   ui.Confirmer
	nav   ui.Navigator
	t     *i18n.Printer
	log   zerolog.Logger

	mu         sync.Mutex
	credential string
	identity   *apiclient.Identity
	privileged bool
	ready      bool
	loading    int
	loggingOut bool
	err        error
	version    uint64
	gen        state.Generation
	flow       state.Flow

	listeners map[int]Listener
	nextID    int
}

func New(d Deps) *Store {
	if d.Printer == nil {
		d.Printer = i18n.New("")
	}
	return &Store{
		api:       d.API,
		creds:     d.Credentials,
		notes:     d.Notifier,
		ask:       d.Confirmer,
		nav:       d.Navigator,
		t:         d.Printer,
		log:       d.Logger,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Credential: s.credential,
		Privileged: s.privileged,
		Ready:      s.ready,
		Version:    s.version,
	}
	if s.identity != nil {
		id := *s.identity
		id.Roles = append([]string(nil), s.identity.Roles...)
		snap.Identity = &id
	}
	return snap
}

// changedLocked bumps the version and returns what listeners should see.
func (s *Store) changedLocked() (Snapshot, []Listener) {
	s.version++
	ls := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			ls = append(ls, l)
		}
	}
	return s.snapshotLocked(), ls
}

func publish(ctx context.Context, snap Snapshot, ls []Listener) {
	for _, l := range ls {
		l(ctx, snap)
	}
}

// Loading reports whether a login or identity request is running.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

func (s *Store) LoggingOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggingOut
}

// Err returns the last recorded failure, cleared by the next success.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Phase is the state of the logout confirmation flow.
func (s *Store) Phase() state.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Phase()
}

// Init restores the persisted credential and resolves its identity. The
// store is ready afterwards even when nothing was stored.
func (s *Store) Init(ctx context.Context) error {
	token, loadErr := s.creds.Load()
	if loadErr != nil {
		s.log.Warn().Err(loadErr).Msg("could not read stored credential")
		token = ""
	}

	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()

	if token != "" {
		s.setCredential(ctx, token)
	} else {
		s.mu.Lock()
		snap, ls := s.changedLocked()
		s.mu.Unlock()
		publish(ctx, snap, ls)
	}

	if loadErr != nil {
		return fmt.Errorf("session: restore credential: %w", loadErr)
	}
	return nil
}

// setCredential replaces the credential and, when present, resolves its
// identity once.
func (s *Store) setCredential(ctx context.Context, token string) {
	s.mu.Lock()
	if s.credential == token {
		s.mu.Unlock()
		return
	}
	s.credential = token
	s.identity = nil
	s.privileged = false
	s.gen.Next()
	snap, ls := s.changedLocked()
	s.mu.Unlock()

	publish(ctx, snap, ls)
	if token != "" {
		_, _ = s.FetchIdentity(ctx, token)
	}
}

// Login exchanges credentials for a token, persists it and resolves the
// identity. Failures wrap ErrLoginFailed with a readable reason.
func (s *Store) Login(ctx context.Context, email, password string) (string, error) {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()

	token, err := s.api.Login(ctx, email, password)

	s.mu.Lock()
	s.loading--
	if err != nil {
		msg := s.t.Server(apiclient.Message(err, s.t.T(i18n.LoginFailed)))
		s.err = fmt.Errorf("%w: %s", ErrLoginFailed, msg)
		recorded := s.err
		s.mu.Unlock()

		s.log.Debug().Err(err).Msg("login rejected")
		s.notes.Notify(ui.LevelError, msg)
		return "", recorded
	}
	s.err = nil
	s.mu.Unlock()

	if err := s.creds.Save(token); err != nil {
		s.log.Warn().Err(err).Msg("could not persist credential")
	}
	s.setCredential(ctx, token)
	s.nav.Navigate(ui.RouteDashboard)
	return token, nil
}

// FetchIdentity resolves the identity behind token. Responses for a
// credential that is no longer current, or for a superseded request, are
// discarded with state.ErrSuperseded. A failure keeps the credential.
func (s *Store) FetchIdentity(ctx context.Context, token string) (*apiclient.Identity, error) {
	s.mu.Lock()
	if token == "" || token != s.credential {
		s.mu.Unlock()
		return nil, state.ErrNotReady
	}
	g := s.gen.Next()
	s.loading++
	s.mu.Unlock()

	id, err := s.api.Me(ctx, token)

	s.mu.Lock()
	s.loading--
	if !s.gen.IsCurrent(g) || s.credential != token {
		s.mu.Unlock()
		s.log.Debug().Uint64("generation", g).Msg("discarding stale identity response")
		return nil, state.ErrSuperseded
	}
	if err != nil {
		msg := apiclient.Message(err, s.t.T(i18n.IdentityFailed))
		s.err = fmt.Errorf("session: fetch identity: %w", err)
		s.mu.Unlock()

		s.log.Warn().Err(err).Msg("identity request failed")
		s.notes.Notify(ui.LevelError, msg)
		return nil, err
	}
	s.identity = id
	s.privileged = state.IsPrivileged(id.Roles)
	s.err = nil
	snap, ls := s.changedLocked()
	s.mu.Unlock()

	publish(ctx, snap, ls)
	return snap.Identity, nil
}

// Logout asks for confirmation, revokes the token remotely and clears the
// local session whatever the remote outcome. Without a credential it only
// navigates to the login screen.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.credential
	if token == "" {
		s.mu.Unlock()
		s.nav.Navigate(ui.RouteLogin)
		return nil
	}
	if err := s.flow.Confirm(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	ok, err := s.ask.Confirm(ctx, ui.Intent{
		Title:        s.t.T(i18n.AppTitle),
		Prompt:       s.t.T(i18n.LogoutPrompt),
		ConfirmLabel: s.t.T(i18n.Yes),
		CancelLabel:  s.t.T(i18n.No),
	})
	if err != nil || !ok {
		s.mu.Lock()
		s.flow.Decline()
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %w", state.ErrCancelled, err)
		}
		return state.ErrCancelled
	}

	s.mu.Lock()
	s.flow.Proceed()
	s.loggingOut = true
	s.mu.Unlock()

	remoteErr := s.api.Logout(ctx, token)

	s.mu.Lock()
	s.credential = ""
	s.identity = nil
	s.privileged = false
	s.loggingOut = false
	s.err = nil
	s.gen.Next()
	s.flow.Settle()
	snap, ls := s.changedLocked()
	s.mu.Unlock()

	if err := s.creds.Clear(); err != nil {
		s.log.Warn().Err(err).Msg("could not clear stored credential")
	}
	publish(ctx, snap, ls)

	if remoteErr != nil {
		s.log.Warn().Err(remoteErr).Msg("remote logout failed, session cleared locally")
		s.notes.Notify(ui.LevelError, s.t.T(i18n.LogoutFailed))
	}
	s.nav.Navigate(ui.RouteLogin)
	return nil
}
