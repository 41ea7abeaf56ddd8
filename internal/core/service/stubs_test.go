package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubAuthRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = r.nextID
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

type stubRevoker struct {
	revoked map[string]time.Time
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Time)}
}

func (r *stubRevoker) Revoke(_ context.Context, id string, until time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[id] = until
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[id]
	return ok, nil
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type stubCategoryRepo struct {
	byID   map[int64]*domain.Category
	nextID int64
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{byID: make(map[int64]*domain.Category)}
}

func (r *stubCategoryRepo) seed(name string) *domain.Category {
	r.nextID++
	c := &domain.Category{ID: r.nextID, Name: name}
	r.byID[c.ID] = c
	return c
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	for _, existing := range r.byID {
		if existing.Name == c.Name {
			return nil, domain.ErrCategoryExists
		}
	}
	r.nextID++
	clone := *c
	clone.ID = r.nextID
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *domain.Category) error {
	if _, ok := r.byID[c.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCategoryRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]*domain.Category, error) {
	out := make(map[int64]*domain.Category)
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			clone := *c
			out[id] = &clone
		}
	}
	return out, nil
}

func (r *stubCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(r.byID))
	for _, c := range r.byID {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------------------------------------------------------------------------
// Incidents
// ---------------------------------------------------------------------------

type stubIncidentRepo struct {
	byID       map[int64]*domain.Incident
	nextID     int64
	lastFilter ports.ListIncidentsFilter
	createErr  error
}

func newStubIncidentRepo() *stubIncidentRepo {
	return &stubIncidentRepo{byID: make(map[int64]*domain.Incident)}
}

func (r *stubIncidentRepo) Create(_ context.Context, i *domain.Incident) (*domain.Incident, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *i
	clone.ID = r.nextID
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubIncidentRepo) Update(_ context.Context, i *domain.Incident) error {
	if _, ok := r.byID[i.ID]; !ok {
		return domain.ErrIncidentNotFound
	}
	clone := *i
	r.byID[i.ID] = &clone
	return nil
}

func (r *stubIncidentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrIncidentNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubIncidentRepo) FindByID(_ context.Context, id int64) (*domain.Incident, error) {
	i, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	clone := *i
	return &clone, nil
}

// List applies the same filters the real Mongo repo would use.
func (r *stubIncidentRepo) List(_ context.Context, f ports.ListIncidentsFilter) ([]*domain.Incident, error) {
	r.lastFilter = f
	var out []*domain.Incident
	for _, i := range r.byID {
		if f.ReporterID != 0 && i.ReporterID != f.ReporterID {
			continue
		}
		if f.CategoryID != 0 && i.CategoryID != f.CategoryID {
			continue
		}
		clone := *i
		out = append(out, &clone)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r *stubIncidentRepo) CountByCategory(_ context.Context, categoryID int64) (int64, error) {
	var n int64
	for _, i := range r.byID {
		if i.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Activity
// ---------------------------------------------------------------------------

type stubRecorder struct {
	mu      sync.Mutex
	records []domain.IncidentActivity
}

func (r *stubRecorder) Record(a domain.IncidentActivity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, a)
}

func (r *stubRecorder) kinds() []domain.ActivityKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.ActivityKind, len(r.records))
	for i, a := range r.records {
		out[i] = a.Kind
	}
	return out
}
