package categories

import (
	"context"
	"errors"
	"net/http"
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

func (f *fakeSession) set(ctx context.Context, credential string) {
	f.mu.Lock()
	f.snap.Credential = credential
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
	items     []apiclient.Category
	listErr   error
	mutateErr error
	listCalls int
	mutations int
	lastName  string
	lastToken string
	onList    func()
}

func (f *fakeAPI) ListCategories(_ context.Context, token string) ([]apiclient.Category, error) {
	f.mu.Lock()
	f.listCalls++
	f.lastToken = token
	hook := f.onList
	f.onList = nil
	items, err := append([]apiclient.Category(nil), f.items...), f.listErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return items, err
}

func (f *fakeAPI) mutate(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations++
	f.lastName = name
	return f.mutateErr
}

func (f *fakeAPI) CreateCategory(_ context.Context, _ string, name string) error {
	return f.mutate(name)
}

func (f *fakeAPI) UpdateCategory(_ context.Context, _ string, id int64, name string) error {
	if err := f.mutate(name); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Name = name
		}
	}
	return nil
}

func (f *fakeAPI) DeleteCategory(context.Context, string, int64) error {
	return f.mutate("")
}

func (f *fakeAPI) counts() (list, mutations int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.mutations
}

type fixture struct {
	api     *fakeAPI
	session *fakeSession
	rec     *ui.Recorder
	store   *Store
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		api: &fakeAPI{items: []apiclient.Category{
			{ID: 3, Name: "Ruido"},
			{ID: 1, Name: "Baches"},
			{ID: 2, Name: "Alumbrado"},
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

func ids(items []apiclient.Category) []int64 {
	out := make([]int64, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

func TestList_SortedAscendingByID(t *testing.T) {
	f := newFixture(t)
	f.session.set(context.Background(), "tok")

	if diff := cmp.Diff([]int64{1, 2, 3}, ids(f.store.Items())); diff != "" {
		t.Errorf("published order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "tok", f.api.lastToken)
}

func TestList_WithoutCredentialIsSilent(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.store.List(context.Background()))

	list, _ := f.api.counts()
	assert.Zero(t, list)
	assert.Empty(t, f.rec.Notifications())
	assert.True(t, f.store.ShowSkeleton())
}

func TestReactsToCredentialChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.session.set(ctx, "tok")
	f.session.set(ctx, "tok")
	list, _ := f.api.counts()
	assert.Equal(t, 1, list, "same credential value must not re-list")

	f.session.set(ctx, "tok-2")
	list, _ = f.api.counts()
	assert.Equal(t, 2, list)

	f.session.set(ctx, "")
	assert.Empty(t, f.store.Items())
	assert.True(t, f.store.ShowSkeleton(), "logout resets the store")
}

func TestShowSkeleton(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.store.ShowSkeleton(), "before any fetch settles")

	var during bool
	f.api.onList = func() { during = f.store.ShowSkeleton() }
	f.session.set(context.Background(), "tok")

	assert.True(t, during)
	assert.False(t, f.store.ShowSkeleton())
}

func TestShowSkeleton_FalseAfterFailedFirstLoad(t *testing.T) {
	f := newFixture(t)
	f.api.listErr = &apiclient.Error{Kind: apiclient.KindStatus, Status: http.StatusInternalServerError}

	f.session.set(context.Background(), "tok")

	assert.False(t, f.store.ShowSkeleton())
	assert.Error(t, f.store.Err())
	assert.Equal(t, []string{"Error al obtener las categorías"}, f.rec.Messages(ui.LevelError))
}

func TestList_StaleResponseDiscarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok")

	var nested error
	f.api.onList = func() {
		f.api.mu.Lock()
		f.api.items = []apiclient.Category{{ID: 9, Name: "Nueva"}}
		f.api.mu.Unlock()
		nested = f.store.List(ctx)
	}
	err := f.store.List(ctx)

	assert.ErrorIs(t, err, state.ErrSuperseded)
	require.NoError(t, nested)
	assert.Equal(t, []int64{9}, ids(f.store.Items()))
}

func TestCreate_RefreshesFromServer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok")
	before := f.store.Version()

	require.NoError(t, f.store.Create(ctx, "  Inundaciones "))

	list, mutations := f.api.counts()
	assert.Equal(t, 2, list)
	assert.Equal(t, 1, mutations)
	assert.Equal(t, "Inundaciones", f.api.lastName)
	assert.Greater(t, f.store.Version(), before)
	assert.Equal(t, []string{"Categoría creada"}, f.rec.Messages(ui.LevelSuccess))
	assert.Equal(t, state.PhaseSettled, f.store.Phase())
}

func TestUpdate_RefreshesFromServer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok")
	before := f.store.Version()

	require.NoError(t, f.store.Update(ctx, 2, "Luminarias"))

	list, mutations := f.api.counts()
	assert.Equal(t, 2, list, "one list on sign-in, one after the update")
	assert.Equal(t, 1, mutations)
	assert.Greater(t, f.store.Version(), before)
	want := []apiclient.Category{
		{ID: 1, Name: "Baches"},
		{ID: 2, Name: "Luminarias"},
		{ID: 3, Name: "Ruido"},
	}
	if diff := cmp.Diff(want, f.store.Items()); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"Categoría actualizada"}, f.rec.Messages(ui.LevelSuccess))
	assert.Equal(t, state.PhaseSettled, f.store.Phase())
}

func TestCreate_Failures(t *testing.T) {
	t.Run("not signed in", func(t *testing.T) {
		f := newFixture(t)
		err := f.store.Create(context.Background(), "Baches")
		assert.ErrorIs(t, err, state.ErrNotReady)
		assert.Equal(t, []string{"Usuario no autenticado"}, f.rec.Messages(ui.LevelError))
	})

	t.Run("empty name", func(t *testing.T) {
		f := newFixture(t)
		f.session.set(context.Background(), "tok")
		err := f.store.Create(context.Background(), "   ")
		assert.ErrorIs(t, err, state.ErrInvalidPayload)
		_, mutations := f.api.counts()
		assert.Zero(t, mutations)
	})

	t.Run("server rejects", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.session.set(ctx, "tok")
		items := f.store.Items()
		f.api.mutateErr = &apiclient.Error{
			Kind:   apiclient.KindStatus,
			Status: http.StatusConflict,
			Fields: map[string][]string{"name": {"The name has already been taken."}},
		}

		err := f.store.Update(ctx, 1, "Alumbrado")
		require.Error(t, err)
		assert.Equal(t, []string{"The name has already been taken."}, f.rec.Messages(ui.LevelError))
		list, _ := f.api.counts()
		assert.Equal(t, 1, list, "no refresh after a failed mutation")
		assert.Equal(t, items, f.store.Items())
	})
}

type confirmFunc func(context.Context, ui.Intent) (bool, error)

func (f confirmFunc) Confirm(ctx context.Context, in ui.Intent) (bool, error) { return f(ctx, in) }

func TestDelete_CreateWhileConfirmationPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.Close()
	var during []state.Phase
	var store *Store
	store = New(Deps{
		API:      f.api,
		Session:  f.session,
		Notifier: f.rec,
		Confirmer: confirmFunc(func(ctx context.Context, _ ui.Intent) (bool, error) {
			require.NoError(t, store.Create(ctx, "Inundaciones"))
			during = append(during, store.Phase())
			assert.ErrorIs(t, store.Delete(ctx, 2), state.ErrBusy)
			return false, nil
		}),
		Printer: i18n.New("es"),
		Logger:  zerolog.Nop(),
	})
	t.Cleanup(store.Close)
	f.session.set(ctx, "tok")

	err := store.Delete(ctx, 1)

	assert.ErrorIs(t, err, state.ErrCancelled)
	assert.Equal(t, []state.Phase{state.PhaseConfirming}, during)
	assert.Equal(t, state.PhaseSettled, store.Phase())
	_, mutations := f.api.counts()
	assert.Equal(t, 1, mutations, "only the create reached the API")
}

func TestDelete_DeclinedMakesNoCall(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok")
	before := f.store.Items()
	version := f.store.Version()

	err := f.store.Delete(ctx, 1)

	assert.ErrorIs(t, err, state.ErrCancelled)
	list, mutations := f.api.counts()
	assert.Equal(t, 1, list)
	assert.Zero(t, mutations)
	assert.Equal(t, before, f.store.Items())
	assert.Equal(t, version, f.store.Version())
	assert.Equal(t, state.PhaseIdle, f.store.Phase())

	intents := f.rec.Intents()
	require.Len(t, intents, 1)
	assert.Equal(t, ui.Intent{
		Title:        "Eliminar Categoría",
		Prompt:       "¿Desea eliminar la categoría seleccionada?",
		ConfirmLabel: "Sí",
		CancelLabel:  "No",
		Danger:       true,
	}, intents[0])
}

func TestDelete_Confirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok")
	f.rec.Answer = true

	require.NoError(t, f.store.Delete(ctx, 1))

	list, mutations := f.api.counts()
	assert.Equal(t, 2, list)
	assert.Equal(t, 1, mutations)
	assert.False(t, f.store.Deleting())
	assert.Equal(t, []string{"Categoría eliminada correctamente"}, f.rec.Messages(ui.LevelSuccess))
}

func TestDelete_Failure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.session.set(ctx, "tok")
	f.rec.Answer = true
	f.api.mutateErr = &apiclient.Error{Kind: apiclient.KindTransport, Err: errors.New("reset")}

	require.Error(t, f.store.Delete(ctx, 1))
	assert.False(t, f.store.Deleting())
	assert.Equal(t, []string{"Error al eliminar la categoría"}, f.rec.Messages(ui.LevelError))
	assert.Equal(t, state.PhaseSettled, f.store.Phase())
}
