// Package dashboard wires the client stores into one application container.
package dashboard

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/safecity/incident-dashboard/internal/dashboard/analytics"
	"github.com/safecity/incident-dashboard/internal/dashboard/apiclient"
	"github.com/safecity/incident-dashboard/internal/dashboard/categories"
	"github.com/safecity/incident-dashboard/internal/dashboard/credstore"
	"github.com/safecity/incident-dashboard/internal/dashboard/i18n"
	"github.com/safecity/incident-dashboard/internal/dashboard/incidents"
	"github.com/safecity/incident-dashboard/internal/dashboard/session"
	"github.com/safecity/incident-dashboard/internal/dashboard/state"
	"github.com/safecity/incident-dashboard/internal/dashboard/ui"
)

// UI bundles the presentation ports.
type UI interface {
	ui.Notifier
	ui.Confirmer
	ui.Navigator
}

type Deps struct {
	Client      *apiclient.Client
	Credentials credstore.Store
	UI          UI
	Printer     *i18n.Printer
	Logger      zerolog.Logger
}

// App is built once per process. Construct it, call Init, and Close it when
// done.
type App struct {
	Session    *session.Store
	Categories *categories.Store
	Incidents  *incidents.Store

	printer *i18n.Printer
	stats   *analytics.Memo
	log     zerolog.Logger
}

func New(d Deps) *App {
	if d.Printer == nil {
		d.Printer = i18n.New("")
	}
	sess := session.New(session.Deps{
		API:         d.Client,
		Credentials: d.Credentials,
		Notifier:    d.UI,
		Confirmer:   d.UI,
		Navigator:   d.UI,
		Printer:     d.Printer,
		Logger:      d.Logger.With().Str("store", "session").Logger(),
	})
	return &App{
		Session: sess,
		Categories: categories.New(categories.Deps{
			API:       d.Client,
			Session:   sess,
			Notifier:  d.UI,
			Confirmer: d.UI,
			Printer:   d.Printer,
			Logger:    d.Logger.With().Str("store", "categories").Logger(),
		}),
		Incidents: incidents.New(incidents.Deps{
			API:       d.Client,
			Session:   sess,
			Notifier:  d.UI,
			Confirmer: d.UI,
			Printer:   d.Printer,
			Logger:    d.Logger.With().Str("store", "incidents").Logger(),
		}),
		printer: d.Printer,
		stats: analytics.NewMemo(analytics.Labels{
			Uncategorized:   d.Printer.T(i18n.Uncategorized),
			UnknownReporter: d.Printer.T(i18n.UnknownReporter),
			NoLocation:      d.Printer.T(i18n.NoLocation),
		}),
		log: d.Logger,
	}
}

// Init restores the session; the stores load through their subscriptions.
func (a *App) Init(ctx context.Context) error {
	return a.Session.Init(ctx)
}

// Refresh re-lists categories and incidents concurrently. A failing store
// does not cancel the other one.
func (a *App) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return settled(a.Categories.List(ctx)) })
	g.Go(func() error { return settled(a.Incidents.List(ctx)) })
	return g.Wait()
}

// settled treats a response superseded by a newer request as success.
func settled(err error) error {
	if errors.Is(err, state.ErrSuperseded) {
		return nil
	}
	return err
}

// Summary aggregates the current snapshots, recomputing only after either
// collection changed.
func (a *App) Summary() (*analytics.Summary, error) {
	return a.stats.Get(
		a.Incidents.Version(), a.Incidents.Items(),
		a.Categories.Version(), a.Categories.Items(),
	)
}

// Close detaches the stores from the session.
func (a *App) Close() {
	a.Categories.Close()
	a.Incidents.Close()
}
