// Package incidents keeps the incident collection visible to the signed-in
// user in sync with the API.
package incidents

import (
	"context"
	"errors"
	"fmt"
	"reflect"
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
	ListIncidents(ctx context.Context, token string) ([]apiclient.Incident, error)
	ListUserIncidents(ctx context.Context, token string, userID int64) ([]apiclient.Incident, error)
	GetIncident(ctx context.Context, token string, id int64) (*apiclient.Incident, error)
	CreateIncident(ctx context.Context, token string, p apiclient.IncidentPayload) error
	UpdateIncident(ctx context.Context, token string, id int64, p apiclient.IncidentPayload) error
	DeleteIncident(ctx context.Context, token string, id int64) error
}

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

// trigger is what a refresh depends on.
type trigger struct {
	credential string
	userID     int64
	privileged bool
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

	mu       sync.Mutex
	items    []apiclient.Incident
	settled  bool
	listing  bool
	deleting bool
	err      error
	version  uint64
	last     trigger
	gen      state.Generation
	flow     state.Flow
}

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
		validate: newValidator(),
	}
	s.unsubscribe = d.Session.Subscribe(s.onSession)
	return s
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *Store) Close() {
	s.unsubscribe()
}

// onSession re-lists when credential, identity or privilege change and both
// credential and identity are present.
func (s *Store) onSession(ctx context.Context, snap session.Snapshot) {
	next := trigger{credential: snap.Credential, privileged: snap.Privileged}
	if snap.Identity != nil {
		next.userID = snap.Identity.ID
	}

	s.mu.Lock()
	if next == s.last {
		s.mu.Unlock()
		return
	}
	s.last = next
	if snap.Credential == "" {
		s.resetLocked()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if snap.Identity != nil {
		_ = s.List(ctx)
	}
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

// Items returns the incidents ordered by ascending id.
func (s *Store) Items() []apiclient.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apiclient.Incident(nil), s.items...)
}

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

// List fetches every incident for privileged users and the user's own
// incidents otherwise. Unlike category listing, a missing credential or
// identity is reported to the user.
func (s *Store) List(ctx context.Context) error {
	snap := s.session.Snapshot()
	if snap.Credential == "" || snap.Identity == nil {
		s.log.Debug().Bool("credential", snap.Credential != "").Msg("incident listing skipped, session incomplete")
		s.notes.Notify(ui.LevelWarning, s.t.T(i18n.IncidentsNoUser))
		return state.ErrNotReady
	}

	s.mu.Lock()
	g := s.gen.Next()
	s.listing = true
	s.mu.Unlock()

	var (
		items []apiclient.Incident
		err   error
	)
	if snap.Privileged {
		items, err = s.api.ListIncidents(ctx, snap.Credential)
	} else {
		items, err = s.api.ListUserIncidents(ctx, snap.Credential, snap.Identity.ID)
	}

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

		s.log.Warn().Err(err).Msg("list incidents failed")
		s.notes.Notify(ui.LevelError, apiclient.Message(err, s.t.T(i18n.IncidentsListFailed)))
		return err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	s.items = items
	s.err = nil
	s.version++
	s.mu.Unlock()
	return nil
}

// Get fetches one incident without touching the collection.
func (s *Store) Get(ctx context.Context, id int64) (*apiclient.Incident, error) {
	token, err := s.credentialOrNotify()
	if err != nil {
		return nil, err
	}
	inc, err := s.api.GetIncident(ctx, token, id)
	if err != nil {
		s.notes.Notify(ui.LevelError, apiclient.Message(err, s.t.T(i18n.IncidentFetchFailed)))
		return nil, err
	}
	return inc, nil
}

func (s *Store) credentialOrNotify() (string, error) {
	token := s.session.Snapshot().Credential
	if token == "" {
		s.notes.Notify(ui.LevelError, s.t.T(i18n.NotAuthenticated))
		return "", state.ErrNotReady
	}
	return token, nil
}

// Validate checks a payload the way the API would, without a request.
func (s *Store) Validate(p apiclient.IncidentPayload) error {
	if problems := s.problems(p); len(problems) > 0 {
		return fmt.Errorf("%w: %s", state.ErrInvalidPayload, strings.Join(problems, ", "))
	}
	return nil
}

// problems lists the offending fields by their JSON path.
func (s *Store) problems(p apiclient.IncidentPayload) []string {
	p.Description = strings.TrimSpace(p.Description)
	var out []string
	if err := s.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []string{err.Error()}
		}
		for _, fe := range verrs {
			ns := fe.Namespace()
			if i := strings.IndexByte(ns, '.'); i >= 0 {
				ns = ns[i+1:]
			}
			out = append(out, ns)
		}
	}
	if len(p.Location.Coordinates) == 2 {
		if lat := p.Location.Coordinates[1]; lat < -90 || lat > 90 {
			out = append(out, "location.coordinates[1]")
		}
	}
	return out
}

// Create reports a new incident and re-lists on success.
func (s *Store) Create(ctx context.Context, p apiclient.IncidentPayload) error {
	return s.mutate(ctx, p, i18n.IncidentCreated, i18n.IncidentCreateFailed,
		func(token string) error { return s.api.CreateIncident(ctx, token, p) })
}

// Update replaces an incident's fields and re-lists on success.
func (s *Store) Update(ctx context.Context, id int64, p apiclient.IncidentPayload) error {
	return s.mutate(ctx, p, i18n.IncidentUpdated, i18n.IncidentUpdateFailed,
		func(token string) error { return s.api.UpdateIncident(ctx, token, id, p) })
}

func (s *Store) mutate(ctx context.Context, p apiclient.IncidentPayload, okKey, failKey string, call func(token string) error) error {
	if problems := s.problems(p); len(problems) > 0 {
		detail := strings.Join(problems, ", ")
		s.notes.Notify(ui.LevelError, s.t.T(i18n.InvalidPayload, detail))
		return fmt.Errorf("%w: %s", state.ErrInvalidPayload, detail)
	}
	token, err := s.credentialOrNotify()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.flow.Mutate()
	s.mu.Unlock()

	err = call(token)

	s.mu.Lock()
	s.flow.Settle()
	if err != nil {
		s.err = err
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("incident mutation failed")
		s.notes.Notify(ui.LevelError, apiclient.Message(err, s.t.T(failKey)))
		return err
	}
	s.notes.Notify(ui.LevelSuccess, s.t.T(okKey))
	return s.List(ctx)
}

// Delete asks for confirmation, deletes the incident and re-lists.
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
		Title:        s.t.T(i18n.IncidentDeleteTitle),
		Prompt:       s.t.T(i18n.IncidentDeletePrompt),
		ConfirmLabel: s.t.T(i18n.IncidentDeleteConfirm),
		CancelLabel:  s.t.T(i18n.Cancel),
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

	err = s.api.DeleteIncident(ctx, token, id)

	s.mu.Lock()
	s.deleting = false
	s.flow.Settle()
	if err != nil {
		s.err = err
	}
	s.mu.Unlock()

	if err != nil {
		s.notes.Notify(ui.LevelError, apiclient.Message(err, s.t.T(i18n.IncidentDeleteFailed)))
		return err
	}
	s.notes.Notify(ui.LevelSuccess, s.t.T(i18n.IncidentDeleted))
	return s.List(ctx)
}
