// Package apitest runs the SafeCity API in process for client tests. It serves
// the real router over in-memory storage, counts calls per route and can
// inject failures.
package apitest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/safecity/incident-dashboard/internal/api"
	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/service"
	"github.com/safecity/incident-dashboard/internal/infrastructure/db/memory"
	"github.com/safecity/incident-dashboard/internal/infrastructure/queue"
)

const (
	apiPrefix = "/api/v1"
	jwtSecret = "apitest-secret"
)

type fault struct {
	status int
	body   string
}

type Server struct {
	Store *memory.Store

	srv  *httptest.Server
	auth *service.AuthService

	mu     sync.Mutex
	calls  map[string]int
	faults map[string]fault
	delays map[string]time.Duration
}

// New starts a server that is closed when t finishes.
func New(t testing.TB) *Server {
	t.Helper()

	log := zerolog.Nop()
	store := memory.NewStore()
	dispatcher := queue.NewDispatcher(1, service.NewActivityService(store.Activity(), log), log)
	dispatcher.Start(context.Background())

	auth := service.NewAuthService(store.Users(), store.Revocations(), jwtSecret, time.Hour, log)
	router := api.NewRouter(api.Dependencies{
		Auth:       auth,
		Categories: service.NewCategoryService(store.Categories(), store.Incidents(), log),
		Incidents:  service.NewIncidentService(store.Incidents(), store.Categories(), store.Users(), dispatcher, log),
		Registry:   prometheus.NewRegistry(),
	}, log)

	s := &Server{
		Store:  store,
		auth:   auth,
		calls:  make(map[string]int),
		faults: make(map[string]fault),
		delays: make(map[string]time.Duration),
	}
	s.srv = httptest.NewServer(s.intercept(router))
	t.Cleanup(func() {
		s.srv.Close()
		dispatcher.Stop()
	})
	return s
}

// BaseURL is the API root, ending in /api/v1.
func (s *Server) BaseURL() string {
	return s.srv.URL + apiPrefix
}

// Client returns an HTTP client wired to the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

func routeKey(method, path string) string {
	return method + " " + path
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, strings.TrimPrefix(r.URL.Path, apiPrefix))

		s.mu.Lock()
		s.calls[key]++
		f, failing := s.faults[key]
		delay := s.delays[key]
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			if f.body != "" {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Calls reports how many requests hit method and path, e.g.
// Calls("GET", "/auth/me").
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[routeKey(method, path)]
}

// TotalCalls reports every request received so far.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

// ResetCalls zeroes the call counters.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// Fail makes method and path answer status with body until Recover is called.
// An empty body produces a response without a parseable payload.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[routeKey(method, path)] = fault{status: status, body: body}
}

// FailWithMessage answers with the API error envelope carrying msg.
func (s *Server) FailWithMessage(method, path string, status int, msg string) {
	s.Fail(method, path, status, fmt.Sprintf(`{"message":%q}`, msg))
}

// Delay holds requests to method and path for d before answering.
func (s *Server) Delay(method, path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[routeKey(method, path)] = d
}

// Recover removes every injected failure and delay.
func (s *Server) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]fault)
	s.delays = make(map[string]time.Duration)
}

// SeedUser stores a user with the given roles.
func (s *Server) SeedUser(t testing.TB, email, password, name string, roles ...string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("apitest: hash password: %v", err)
	}
	now := time.Now().UTC()
	u, err := s.Store.Users().Create(context.Background(), &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("apitest: seed user %s: %v", email, err)
	}
	return u
}

func (s *Server) SeedCategory(t testing.TB, name string) *domain.Category {
	t.Helper()
	now := time.Now().UTC()
	c, err := s.Store.Categories().Create(context.Background(), &domain.Category{Name: name, CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("apitest: seed category %s: %v", name, err)
	}
	return c
}

// SeedIncident stores inc as given, defaulting the status and timestamps.
func (s *Server) SeedIncident(t testing.TB, inc domain.Incident) *domain.Incident {
	t.Helper()
	if inc.Status == "" {
		inc.Status = domain.StatusReported
	}
	if inc.ReportedAt.IsZero() {
		inc.ReportedAt = time.Now().UTC()
	}
	if inc.UpdatedAt.IsZero() {
		inc.UpdatedAt = inc.ReportedAt
	}
	created, err := s.Store.Incidents().Create(context.Background(), &inc)
	if err != nil {
		t.Fatalf("apitest: seed incident: %v", err)
	}
	return created
}

// Token logs in directly against the auth service.
func (s *Server) Token(t testing.TB, email, password string) string {
	t.Helper()
	res, err := s.auth.Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("apitest: login %s: %v", email, err)
	}
	return res.AccessToken
}
