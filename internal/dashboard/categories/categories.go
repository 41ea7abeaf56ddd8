// Package categories keeps the incident category list in sync with the API.
package categories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/safecity/incident-dashboard/internal/dashboard/apiclient"
	"github.com/safecity/incident-dashboard/internal/dashboard/i18n"
	"github.com/safecity/incident-dashboard/internal/dashboard/session"
	"github.com/safecity/incident-dashboard/internal/dashboard/state"
	"github.com/safecity/incident-dashboard/internal/dashboard/ui"
)

type API interface {
	ListCategories(ctx context.Context, token string) ([]apiclient.Category, error)
	CreateCategory(ctx context.Context, token, name string) error
	UpdateCategory(ctx context.Context, token string, id int64, name string) error
	DeleteCategory(ctx context.Context, token string, id int64) error
}

// Session is what the store reads from the session store.
type Session interface {
	Snapshot() session.Snapshot
	Subscribe(l session.Listener) func()
}

type Deps struct {
	API       API
	Session   Session
	Notifier  ui.Notifier
	Confirmer ui.Confirmer
	Printer   *i18n.Printer
	Logger    zerolog.Logger
}

type nameInput struct {
	Name string `validate:"required,max=100"`
}

// Store is safe for concurrent use.
type Store struct {
	api      API
	session  Session
	notes    ui.Notifier
	ask      ui.Confirmer
	t        *i18n.Printer
	log      zerolog.Logger
	validate *validator.Validate

	unsubscribe func()

	mu         sync.Mutex
	items      []apiclient.Category
	settled    bool
	listing    bool
	deleting   bool
	err        error
	version    uint64
	credential string
	gen        state.Generation
	flow       state.Flow
}

// New builds the store and subscribes it to credential changes.
func New(d Deps) *Store {
	if d.Printer == nil {
		d.Printer = i18n.New("")
	}
	s := &Store{
		api:      d.API,
		session:  d.Session,
		notes:    d.Notifier,
		ask:      d.Confirmer,
		t:        d.Printer,
		log:      d.Logger,
		validate: validator.New(),
	}
	s.unsubscribe = d.Session.Subscribe(s.onSession)
	return s
}

// Close stops following the session.
func (s *Store) Close() {
	s.unsubscribe()
}

// onSession re-lists whenever the credential value changes and resets the
// store when it goes away.
func (s *Store) onSession(ctx context.Context, snap session.Snapshot) {
	s.mu.Lock()
	if snap.Credential == s.credential {
		s.mu.Unlock()
		return
	}
	s.credential = snap.Credential
	if snap.Credential == "" {
		s.resetLocked()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	_ = s.List(ctx)
}

func (s *Store) resetLocked() {
	s.items = nil
	s.settled = false
	s.listing = false
	s.deleting = false
	s.err = nil
	s.gen.Next()
	s.flow.Reset()
	s.version++
}

// Items returns the categories ordered by ascending id.
func (s *Store) Items() []apiclient.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apiclient.Category(nil), s.items...)
}

// Version changes every time the published list is replaced.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) ShowSkeleton() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return state.ShowSkeleton(s.settled, s.listing, len(s.items))
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listing
}

// Deleting reports whether a delete request is running.
func (s *Store) Deleting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleting
}

func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Store) Phase() state.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Phase()
}

// List fetches the categories. Without a credential it does nothing.
func (s *Store) List(ctx context.Context) error {
	token := s.session.Snapshot().Credential
	if token == "" {
		return nil
	}

	s.mu.Lock()
	g := s.gen.Next()
	s.listing = true
	s.mu.Unlock()

	items, err := s.api.ListCategories(ctx, token)

	s.mu.Lock()
	if !s.gen.IsCurrent(g) {
		s.mu.Unlock()
		return state.ErrSuperseded
	}
	s.listing = false
	s.settled = true
	if err != nil {
		s.err = err
		s.mu.Unlock()

		s.log.Warn().Err(err).Msg("list categories failed")
		s.notes.Notify(ui.LevelError, apiclient.Message(err, s.t.T(i18n.CategoriesListFailed)))
		return err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	s.items = items
	s.err = nil
	s.version++
	s.mu.Unlock()
	return nil
}

// credentialOrNotify returns the token or notifies that the user is not signed in.
func (s *Store) credentialOrNotify() (string, error) {
	token := s.session.Snapshot().Credential
	if token == "" {
		s.notes.Notify(ui.LevelError, s.t.T(i18n.NotAuthenticated))
		return "", state.ErrNotReady
	}
	return token, nil
}

func (s *Store) checkName(name string) (string, error) {
	in := nameInput{Name: strings.TrimSpace(name)}
	if err := s.validate.Struct(in); err != nil {
		return "", fmt.Errorf("%w: %w", state.ErrInvalidPayload, err)
	}
	return in.Name, nil
}

// Create adds a category and re-lists on success.
func (s *Store) Create(ctx context.Context, name string) error {
	return s.mutate(ctx, name, i18n.CategoryCreated, i18n.CategoryCreateFailed,
		func(token, name string) error { return s.api.CreateCategory(ctx, token, name) })
}

// Update renames a category and re-lists on success.
func (s *Store) Update(ctx context.Context, id int64, name string) error {
	return s.mutate(ctx, name, i18n.CategoryUpdated, i18n.CategoryUpdateFailed,
		func(token, name string) error { return s.api.UpdateCategory(ctx, token, id, name) })
}

func (s *Store) mutate(ctx context.Context, name, okKey, failKey string, call func(token, name string) error) error {
	token, err := s.credentialOrNotify()
	if err != nil {
		return err
	}
	name, err = s.checkName(name)
	if err != nil {
		s.notes.Notify(ui.LevelError, s.t.T(failKey))
		return err
	}

	s.mu.Lock()
	s.flow.Mutate()
	s.mu.Unlock()

	err = call(token, name)

	s.mu.Lock()
	s.flow.Settle()
	if err != nil {
		s.err = err
	}
	s.mu.Unlock()

	if err != nil {
		s.notes.Notify(ui.LevelError, apiclient.Message(err, s.t.T(failKey)))
		return err
	}
	s.notes.Notify(ui.LevelSuccess, s.t.T(okKey))
	return s.List(ctx)
}

// Delete asks for confirmation, deletes the category and re-lists. A
// declined confirmation returns state.ErrCancelled without any request.
func (s *Store) Delete(ctx context.Context, id int64) error {
	token, err := s.credentialOrNotify()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.flow.Confirm(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	ok, err := s.ask.Confirm(ctx, ui.Intent{
		Title:        s.t.T(i18n.CategoryDeleteTitle),
		Prompt:       s.t.T(i18n.CategoryDeletePrompt),
		ConfirmLabel: s.t.T(i18n.Yes),
		CancelLabel:  s.t.T(i18n.No),
		Danger:       true,
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
	s.deleting = true
	s.mu.Unlock()

	err = s.api.DeleteCategory(ctx, token, id)

	s.mu.Lock()
	s.deleting = false
	s.flow.Settle()
	if err != nil {
		s.err = err
	}
	s.mu.Unlock()

	if err != nil {
		s.notes.Notify(ui.LevelError, apiclient.Message(err, s.t.T(i18n.CategoryDeleteFailed)))
		return err
	}
	s.notes.Notify(ui.LevelSuccess, s.t.T(i18n.CategoryDeleted))
	return s.List(ctx)
}
