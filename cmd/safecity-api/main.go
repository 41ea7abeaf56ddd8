// Command safecity-api serves the SafeCity incident REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/safecity/incident-dashboard/internal/api"
	"github.com/safecity/incident-dashboard/internal/api/handler"
	"github.com/safecity/incident-dashboard/internal/core/ports"
	"github.com/safecity/incident-dashboard/internal/core/service"
	"github.com/safecity/incident-dashboard/internal/infrastructure/db/memory"
	"github.com/safecity/incident-dashboard/internal/infrastructure/db/mongo"
	"github.com/safecity/incident-dashboard/internal/infrastructure/db/redis"
	"github.com/safecity/incident-dashboard/internal/infrastructure/queue"
	"github.com/safecity/incident-dashboard/internal/pkg/config"
	"github.com/safecity/incident-dashboard/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "safecity-api",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	// --- Activity pipeline ---
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers,
		service.NewActivityService(st.activity, logger.Component("activity")),
		logger.Component("dispatcher"))
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	// --- Services ---
	authService := service.NewAuthService(st.users, st.revoker, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Auth:       authService,
		Categories: service.NewCategoryService(st.categories, st.incidents, logger.Component("categories")),
		Incidents:  service.NewIncidentService(st.incidents, st.categories, st.users, dispatcher, logger.Component("incidents")),
		Checks:     st.checks,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// storage bundles the repositories of the selected backend.
type storage struct {
	users      ports.AuthRepository
	categories ports.CategoryRepository
	incidents  ports.IncidentRepository
	activity   ports.ActivityRepository
	revoker    ports.TokenRevoker
	checks     []handler.DependencyCheck
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, func(), error) {
	if cfg.InMemory() {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		mem := memory.NewStore()
		return &storage{
			users:      mem.Users(),
			categories: mem.Categories(),
			incidents:  mem.Incidents(),
			activity:   mem.Activity(),
			revoker:    mem.Revocations(),
			checks:     []handler.DependencyCheck{{Name: "memory", Ping: mem.Ping}},
		}, func() {}, nil
	}

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, nil, err
	}
	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		disconnect()
		return nil, nil, err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		disconnect()
		return nil, nil, err
	}

	st := &storage{
		users:      mongo.NewAuthRepository(db),
		categories: mongo.NewCategoryRepository(db),
		incidents:  mongo.NewIncidentRepository(db),
		activity:   mongo.NewActivityRepository(db),
		revoker:    redis.NewRevocationList(rdb),
		checks: []handler.DependencyCheck{
			{Name: "mongodb", Ping: mongo.Pinger(db)},
			{Name: "redis", Ping: redis.Pinger(rdb)},
		},
	}
	return st, func() {
		_ = rdb.Close()
		disconnect()
	}, nil
}
