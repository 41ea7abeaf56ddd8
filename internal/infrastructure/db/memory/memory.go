// Package memory implements the repository ports in process memory. It backs
// the API in STORAGE=memory mode and in client integration tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

// Store holds every collection behind one lock.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]*domain.User
	categories map[int64]*domain.Category
	incidents  map[int64]*domain.Incident
	activity   []domain.IncidentActivity
	revoked    map[string]time.Time
	seq        map[string]int64
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*domain.User),
		categories: make(map[int64]*domain.Category),
		incidents:  make(map[int64]*domain.Incident),
		revoked:    make(map[string]time.Time),
		seq:        make(map[string]int64),
		now:        time.Now,
	}
}

func (s *Store) next(name string) int64 {
	s.seq[name]++
	return s.seq[name]
}

// Ping always succeeds; it satisfies the readiness check signature.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Users() ports.AuthRepository          { return userRepo{s} }
func (s *Store) Categories() ports.CategoryRepository { return categoryRepo{s} }
func (s *Store) Incidents() ports.IncidentRepository  { return incidentRepo{s} }
func (s *Store) Activity() ports.ActivityRepository   { return activityRepo{s} }
func (s *Store) Revocations() ports.TokenRevoker      { return revocationList{s} }

// ActivityLog returns a copy of the recorded activity in insertion order.
func (s *Store) ActivityLog() []domain.IncidentActivity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.IncidentActivity(nil), s.activity...)
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

func cloneIncident(i *domain.Incident) *domain.Incident {
	c := *i
	if i.AssignedAt != nil {
		t := *i.AssignedAt
		c.AssignedAt = &t
	}
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r userRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[int64]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r userRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	created := cloneUser(user)
	created.ID = r.s.next("users")
	r.s.users[created.ID] = cloneUser(created)
	return created, nil
}

// --- categories ---

type categoryRepo struct{ s *Store }

func (r categoryRepo) nameTaken(name string, except int64) bool {
	for _, c := range r.s.categories {
		if c.ID != except && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (r categoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.nameTaken(c.Name, 0) {
		return nil, domain.ErrCategoryExists
	}
	created := *c
	created.ID = r.s.next("categories")
	stored := created
	r.s.categories[created.ID] = &stored
	return &created, nil
}

func (r categoryRepo) Update(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return domain.ErrCategoryNotFound
	}
	if r.nameTaken(c.Name, c.ID) {
		return domain.ErrCategoryExists
	}
	stored := *c
	r.s.categories[c.ID] = &stored
	return nil
}

func (r categoryRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	return nil
}

func (r categoryRepo) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (r categoryRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[int64]*domain.Category, len(ids))
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			cp := *c
			out[id] = &cp
		}
	}
	return out, nil
}

func (r categoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- incidents ---

type incidentRepo struct{ s *Store }

func (r incidentRepo) Create(_ context.Context, i *domain.Incident) (*domain.Incident, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	created := cloneIncident(i)
	created.ID = r.s.next("incidents")
	r.s.incidents[created.ID] = cloneIncident(created)
	return created, nil
}

func (r incidentRepo) Update(_ context.Context, i *domain.Incident) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.incidents[i.ID]; !ok {
		return domain.ErrIncidentNotFound
	}
	r.s.incidents[i.ID] = cloneIncident(i)
	return nil
}

func (r incidentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.incidents[id]; !ok {
		return domain.ErrIncidentNotFound
	}
	delete(r.s.incidents, id)
	return nil
}

func (r incidentRepo) FindByID(_ context.Context, id int64) (*domain.Incident, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.incidents[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	return cloneIncident(i), nil
}

func (r incidentRepo) List(_ context.Context, f ports.ListIncidentsFilter) ([]*domain.Incident, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*domain.Incident, 0, len(r.s.incidents))
	for _, i := range r.s.incidents {
		if f.ReporterID != 0 && i.ReporterID != f.ReporterID {
			continue
		}
		if f.CategoryID != 0 && i.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, cloneIncident(i))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (r incidentRepo) CountByCategory(_ context.Context, categoryID int64) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, i := range r.s.incidents {
		if i.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// --- activity ---

type activityRepo struct{ s *Store }

func (r activityRepo) Insert(_ context.Context, a *domain.IncidentActivity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.activity = append(r.s.activity, *a)
	return nil
}

// --- revocations ---

type revocationList struct{ s *Store }

func (r revocationList) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if tokenID == "" {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !until.After(r.s.now()) {
		return nil
	}
	r.s.revoked[tokenID] = until
	return nil
}

func (r revocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	until, ok := r.s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !until.After(r.s.now()) {
		delete(r.s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
