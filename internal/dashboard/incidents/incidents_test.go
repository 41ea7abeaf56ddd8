package incidents

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/safecity/incident-dashboard/internal/dashboard/apiclient"
	"github.com/safecity/incident-dashboard/internal/dashboard/i18n"
	"github.com/safecity/incident-dashboard/internal/dashboard/session"
	"github.com/safecity/incident-dashboard/internal/dashboard/state"
	"github.com/safecity/incident-dashboard/internal/dashboard/ui"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSession struct {
	mu        sync.Mutex
	snap      session.Snapshot
	listeners []session.Listener
}

func (f *fakeSession) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeSession) Subscribe(l session.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listeners = nil
	}
}

func (f *fakeSession) set(ctx context.Context, credential string, identity *apiclient.Identity) {
	f.mu.Lock()
	f.snap.Credential = credential
	f.snap.Identity = identity
	f.snap.Privileged = identity != nil && state.IsPrivileged(identity.Roles)
	f.snap.Version++
	snap := f.snap
	ls := append([]session.Listener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range ls {
		l(ctx, snap)
	}
}

type fakeAPI struct {
	mu        sync.Mutex
	items     []apiclient.Incident
	listErr   error
	mutateErr error
	paths     []string
	payloads  []apiclient.IncidentPayload
	onList    func()
}

func (f *fakeAPI) list(path string) ([]apiclient.Incident, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	hook := f.onList
	f.onList = nil
	items, err := append([]apiclient.Incident(nil), f.items...), f.listErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return items, err
}

func (f *fakeAPI) record(path string, p *apiclient.IncidentPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if p != nil {
		f.payloads = append(f.payloads, *p)
	}
	return f.mutateErr
}

func (f *fakeAPI) ListIncidents(context.Context, string) ([]apiclient.Incident, error) {
	return f.list("GET /incidents")
}

func (f *fakeAPI) ListUserIncidents(_ context.Context, _ string, userID int64) ([]apiclient.Incident, error) {
	return f.list("GET /users/" + itoa(userID) + "/incidents")
}

func (f *fakeAPI) GetIncident(_ context.Context, _ string, id int64) (*apiclient.Incident, error) {
	if err := f.record("GET /incidents/"+itoa(id), nil); err != nil {
		return nil, err
	}
	return &apiclient.Incident{ID: id, Description: "detail"}, nil
}

func (f *fakeAPI) CreateIncident(_ context.Context, _ string, p apiclient.IncidentPayload) error {
	return f.record("POST /incidents", &p)
}

func (f *fakeAPI) UpdateIncident(_ context.Context, _ string, id int64, p apiclient.IncidentPayload) error {
	if err := f.record("PUT /incidents/"+itoa(id), &p); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Description = p.Description
			if p.Status != "" {
				f.items[i].Status = p.Status
			}
		}
	}
	return nil
}

func (f *fakeAPI) DeleteIncident(_ context.Context, _ string, id int64) error {
	return f.record("DELETE /incidents/"+itoa(id), nil)
}

func (f *fakeAPI) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

var (
	reporter = &apiclient.Identity{ID: 7, Name: "Ana", Roles: []string{"reporter"}}
	admin    = &apiclient.Identity{ID: 1, Name: "Root", Roles: []string{"Admin"}}
)

type fixture struct {
	api     *fakeAPI
	session *fakeSession
	rec     *ui.Recorder
	store   *Store
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		api: &fakeAPI{items: []apiclient.Incident{
			{ID: 5, Description: "semáforo"},
			{ID: 2, Description: "bache"},
		}},
		session: &fakeSession{},
		rec:     &ui.Recorder{},
	}
	f.store = New(Deps{
		API:       f.api,
		Session:   f.session,
		Notifier:  f.rec,
		Confirmer: f.rec,
		Printer:   i18n.New("es"),
		Logger:    zerolog.Nop(),
	})
	t.Cleanup(f.store.Close)
	return f
}

func validPayload() apiclient.IncidentPayload {
	return apiclient.IncidentPayload{
		CategoryID:  2,
		Description: "pothole",
		Location:    apiclient.PointAt(-77.03, 3.88),
	}
}

func TestList_NonPrivilegedUsesOwnPath(t *testing.T) {
	f := newFixture(t)
	f.session.set(context.Background(), "tok", reporter)

	assert.Equal(t, []string{"GET /users/7/incidents"}, f.api.calls())
	got := f.store.Items()
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(5), got[1].ID)
}

func TestList_PrivilegedListsAll(t *testing.T) {
	f := newFixture(t)
	f.session.set(context.Background(), "tok", admin)

	assert.Equal(t, []string{"GET /incidents"}, f.api.calls())
}

func TestReactsToSessionTriple(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.session.set(ctx, "tok", nil)
	assert.Empty(t, f.api.calls(), "credential without identity waits")
	assert.Empty(t, f.rec.Notifications())

	f.session.set(ctx, "tok", reporter)
	f.session.set(ctx, "tok", reporter)
	assert.Len(t, f.api.calls(), 1)

	f.session.set(ctx, "tok", admin)
	assert.Equal(t, []string{"GET /users/7/incidents", "GET /incidents"}, f.api.calls())

	f.session.set(ctx, "", nil)
	assert.Empty(t, f.store.Items())
	assert.True(t, f.store.ShowSkeleton())
}

func TestList_MissingPrerequisitesNotify(t *testing.T) {
	f := newFixture(t)

	err := f.store.List(context.Background())

	assert.ErrorIs(t, err, state.ErrNotReady)
	assert.Empty(t, f.api.calls())
	assert.Equal(t, []string{"No se encontró el usuario, no se puede obtener incidentes aún"}, f.rec.Messages(ui.LevelWarning))
}

func TestShowSkeleton(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.store.ShowSkeleton())

	f.api.listErr = &apiclient.Error{Kind: apiclient.KindStatus, Status: http.StatusInternalServerError}
	var during bool
	f.api.onList = func() { during = f.store.ShowSkeleton() }
	f.session.set(context.Background(), "tok", reporter)

	assert.True(t, during)
	assert.False(t, f.store.ShowSkeleton(), "false once the first fetch settles, even on failure")
	assert.Equal(t, []string{"Error al obtener los incidentes"}, f.rec.Messages(ui.LevelError))
}

func TestCreate_TriggersExactlyOneList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", reporter)

	require.NoError(t, f.store.Create(ctx, validPayload()))

	want := []string{"GET /users/7/incidents", "POST /incidents", "GET /users/7/incidents"}
	if diff := cmp.Diff(want, f.api.calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []apiclient.IncidentPayload{validPayload()}, f.api.payloads)
	assert.Equal(t, []string{"Incidente creado exitosamente"}, f.rec.Messages(ui.LevelSuccess))
}

func TestUpdate_RefreshesFromServer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", admin)
	before := f.store.Version()

	p := validPayload()
	p.Description = "bache profundo"
	p.Status = apiclient.StatusInProgress
	require.NoError(t, f.store.Update(ctx, 2, p))

	want := []string{"GET /incidents", "PUT /incidents/2", "GET /incidents"}
	if diff := cmp.Diff(want, f.api.calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	items := f.store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, "bache profundo", items[0].Description)
	assert.Equal(t, apiclient.StatusInProgress, items[0].Status)
	assert.Greater(t, f.store.Version(), before)
	assert.Equal(t, []string{"Incidente actualizado correctamente"}, f.rec.Messages(ui.LevelSuccess))
	assert.Equal(t, state.PhaseSettled, f.store.Phase())
}

func TestCreate_ServerFailureDoesNotRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", reporter)
	f.api.mutateErr = &apiclient.Error{Kind: apiclient.KindStatus, Status: http.StatusUnprocessableEntity, Message: "Categoría inválida"}

	require.Error(t, f.store.Create(ctx, validPayload()))

	assert.Equal(t, []string{"GET /users/7/incidents", "POST /incidents"}, f.api.calls())
	assert.Equal(t, []string{"Categoría inválida"}, f.rec.Messages(ui.LevelError))
	assert.Error(t, f.store.Err())
}

func TestCreate_FallbackMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", reporter)
	f.api.mutateErr = &apiclient.Error{Kind: apiclient.KindStatus, Status: http.StatusBadGateway}

	require.Error(t, f.store.Update(ctx, 2, validPayload()))
	assert.Equal(t, []string{"Error al actualizar incidente"}, f.rec.Messages(ui.LevelError))
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		mutate func(p *apiclient.IncidentPayload)
		field  string
	}{
		{"missing category", func(p *apiclient.IncidentPayload) { p.CategoryID = 0 }, "category_id"},
		{"blank description", func(p *apiclient.IncidentPayload) { p.Description = "  " }, "description"},
		{"not a point", func(p *apiclient.IncidentPayload) { p.Location.Type = "Polygon" }, "location.type"},
		{"one coordinate", func(p *apiclient.IncidentPayload) { p.Location.Coordinates = []float64{1} }, "location.coordinates"},
		{"longitude out of range", func(p *apiclient.IncidentPayload) { p.Location.Coordinates = []float64{-200, 3} }, "location.coordinates[0]"},
		{"latitude out of range", func(p *apiclient.IncidentPayload) { p.Location.Coordinates = []float64{-77, 95} }, "location.coordinates[1]"},
		{"unknown status", func(p *apiclient.IncidentPayload) { p.Status = "closed" }, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayload()
			tt.mutate(&p)
			err := f.store.Validate(p)
			require.ErrorIs(t, err, state.ErrInvalidPayload)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
	assert.NoError(t, f.store.Validate(validPayload()))
}

func TestCreate_InvalidPayloadMakesNoCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", reporter)
	p := validPayload()
	p.CategoryID = 0

	err := f.store.Create(ctx, p)

	assert.ErrorIs(t, err, state.ErrInvalidPayload)
	assert.Len(t, f.api.calls(), 1)
	assert.Equal(t, []string{"Datos del incidente inválidos: category_id"}, f.rec.Messages(ui.LevelError))
}

func TestDelete_DeclinedMakesNoCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", reporter)
	before := f.store.Items()

	assert.ErrorIs(t, f.store.Delete(ctx, 2), state.ErrCancelled)

	assert.Len(t, f.api.calls(), 1)
	assert.Equal(t, before, f.store.Items())
	intents := f.rec.Intents()
	require.Len(t, intents, 1)
	assert.Equal(t, ui.Intent{
		Title:        "Eliminar incidente",
		Prompt:       "¿Estás seguro de eliminar este incidente?",
		ConfirmLabel: "Sí, eliminar",
		CancelLabel:  "Cancelar",
		Danger:       true,
	}, intents[0])
}

func TestDelete_ConfirmedRefreshes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", admin)
	f.rec.Answer = true

	require.NoError(t, f.store.Delete(ctx, 2))

	assert.Equal(t, []string{"GET /incidents", "DELETE /incidents/2", "GET /incidents"}, f.api.calls())
	assert.Equal(t, []string{"Incidente eliminado correctamente"}, f.rec.Messages(ui.LevelSuccess))
	assert.Equal(t, state.PhaseSettled, f.store.Phase())
}

func TestDelete_FailureClearsLoadingFlag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", admin)
	f.rec.Answer = true
	f.api.mutateErr = &apiclient.Error{Kind: apiclient.KindStatus, Status: http.StatusForbidden, Message: "This action is unauthorized."}

	require.Error(t, f.store.Delete(ctx, 2))
	assert.False(t, f.store.Deleting())
	assert.Equal(t, []string{"This action is unauthorized."}, f.rec.Messages(ui.LevelError))
}

func TestList_StaleResponseDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", reporter)

	f.api.onList = func() {
		f.api.mu.Lock()
		f.api.items = []apiclient.Incident{{ID: 11}}
		f.api.mu.Unlock()
		_ = f.store.List(ctx)
	}
	assert.ErrorIs(t, f.store.List(ctx), state.ErrSuperseded)
	require.Len(t, f.store.Items(), 1)
	assert.Equal(t, int64(11), f.store.Items()[0].ID)
}

func TestGet_DoesNotTouchCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok", reporter)
	version := f.store.Version()

	inc, err := f.store.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "detail", inc.Description)
	assert.Equal(t, version, f.store.Version())
}
