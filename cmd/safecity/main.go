// Command safecity is the terminal front end of the SafeCity incident
// dashboard.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/safecity/incident-dashboard/internal/dashboard"
	"github.com/safecity/incident-dashboard/internal/dashboard/apiclient"
	"github.com/safecity/incident-dashboard/internal/dashboard/credstore"
	"github.com/safecity/incident-dashboard/internal/dashboard/i18n"
	"github.com/safecity/incident-dashboard/internal/dashboard/state"
	"github.com/safecity/incident-dashboard/internal/dashboard/ui"
	"github.com/safecity/incident-dashboard/internal/pkg/config"
	"github.com/safecity/incident-dashboard/pkg/logger"
)

// options carries the persistent flags. Unset flags fall back to the
// environment read by config.LoadClient.
type options struct {
	apiURL      string
	lang        string
	credentials string
	timeout     time.Duration
	logLevel    string
	assumeYes   bool
	noColor     bool

	// env replaces the process environment in tests.
	env envconfig.Lookuper
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&options{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:          "safecity",
		Short:        "SafeCity incident dashboard",
		Long:         `Manage the session, incident categories and incidents of a SafeCity API, and print the dashboard summary.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.apiURL, "api-url", "", "API root, e.g. http://localhost:8080/api/v1 (or set SAFECITY_API_URL)")
	pf.StringVar(&opts.lang, "lang", "", "Message language: es or en (or set SAFECITY_LANG)")
	pf.StringVar(&opts.credentials, "credentials", "", "Credential file (or set SAFECITY_CREDENTIALS_FILE)")
	pf.DurationVar(&opts.timeout, "timeout", 0, "HTTP timeout, 0 disables it (or set SAFECITY_HTTP_TIMEOUT)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	pf.BoolVarP(&opts.assumeYes, "yes", "y", false, "Answer yes to every confirmation")
	pf.BoolVar(&opts.noColor, "no-color", false, "Disable colored prompts")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newCategoriesCmd(opts),
		newIncidentsCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

// settings merges explicit flags over the environment.
func (o *options) settings(cmd *cobra.Command) (*config.ClientConfig, error) {
	cfg, err := config.LoadClient(cmd.Context(), o.env)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = o.apiURL
	}
	if flags.Changed("lang") {
		cfg.Lang = o.lang
	}
	if flags.Changed("credentials") {
		cfg.CredentialsFile = o.credentials
	}
	if flags.Changed("timeout") {
		cfg.HTTPTimeout = o.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if cfg.CredentialsFile == "" {
		if cfg.CredentialsFile, err = credstore.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// session is one command invocation: the application container and the
// terminal it reports to.
type session struct {
	app  *dashboard.App
	term *ui.Terminal
	t    *i18n.Printer
	out  io.Writer
}

// open builds the application container. It does not restore the stored
// credential; call restore for that.
func (o *options) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.settings(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Output:  cmd.ErrOrStderr(),
		Service: "safecity",
	})
	client, err := apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(log.With().Str("component", "apiclient").Logger()),
	)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	term := &ui.Terminal{
		Out:       out,
		In:        cmd.InOrStdin(),
		AssumeYes: o.assumeYes,
		Color:     !o.noColor,
	}
	printer := i18n.New(cfg.Lang)
	app := dashboard.New(dashboard.Deps{
		Client:      client,
		Credentials: credstore.NewFile(cfg.CredentialsFile),
		UI:          term,
		Printer:     printer,
		Logger:      log,
	})
	log.Debug().Str("api", cfg.APIURL).Str("credentials", cfg.CredentialsFile).Msg("dashboard ready")
	return &session{app: app, term: term, t: printer, out: out}, nil
}

// restore opens the container and restores the stored session, which loads
// categories and incidents through the store subscriptions.
func (o *options) restore(cmd *cobra.Command) (*session, error) {
	s, err := o.open(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.app.Init(cmd.Context()); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// signedIn fails when no credential is stored.
func (s *session) signedIn() error {
	if s.app.Session.Snapshot().Credential == "" {
		s.term.Notify(ui.LevelWarning, s.t.T(i18n.NotAuthenticated))
		return state.ErrNotReady
	}
	return nil
}

// authenticated fails when no identity could be resolved.
func (s *session) authenticated() error {
	if err := s.signedIn(); err != nil {
		return err
	}
	if s.app.Session.Snapshot().Identity == nil {
		if err := s.app.Session.Err(); err != nil {
			return err
		}
		return state.ErrNotReady
	}
	return nil
}

func (s *session) close() {
	s.app.Close()
}

// declined turns a refused confirmation into a clean exit.
func declined(err error) error {
	if errors.Is(err, state.ErrCancelled) {
		return nil
	}
	return err
}
