package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/safecity/incident-dashboard/internal/api/docs"
	"github.com/safecity/incident-dashboard/internal/api/handler"
	"github.com/safecity/incident-dashboard/internal/api/middleware"
	"github.com/safecity/incident-dashboard/internal/core/domain"
	"github.com/safecity/incident-dashboard/internal/core/ports"
)

// Dependencies bundles what the router exposes.
type Dependencies struct {
	Auth       ports.AuthService
	Categories ports.CategoryService
	Incidents  ports.IncidentService
	// Checks are run by the readiness probe.
	Checks []handler.DependencyCheck
	// Registry receives the HTTP metrics and backs /metrics. Nil means the
	// default Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// @title        SafeCity Incident API
// @version      1.0
// @BasePath     /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in           header
// @name         Authorization
func NewRouter(deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(requestLogger(log))
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "safecity",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	categoryHandler := handler.NewCategoryHandler(deps.Categories)
	incidentHandler := handler.NewIncidentHandler(deps.Incidents)

	requireAuth := middleware.Auth(deps.Auth)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	v1 := e.Group("/api/v1")

	// --- Auth routes ---
	v1.POST("/login", authHandler.Login)
	v1.POST("/register", authHandler.Register)
	v1.POST("/auth/logout", authHandler.Logout, requireAuth)
	v1.GET("/auth/me", authHandler.Me, requireAuth)

	// --- Categories ---
	v1.GET("/incidentCategories", categoryHandler.List, requireAuth)
	v1.POST("/incidentCategories", categoryHandler.Create, requireAuth, adminOnly)
	v1.PUT("/incidentCategories/:id", categoryHandler.Update, requireAuth, adminOnly)
	v1.DELETE("/incidentCategories/:id", categoryHandler.Delete, requireAuth, adminOnly)

	// --- Incidents ---
	v1.GET("/incidents", incidentHandler.ListAll, requireAuth, adminOnly)
	v1.GET("/users/:id/incidents", incidentHandler.ListByUser, requireAuth)
	v1.GET("/incidents/:id", incidentHandler.Get, requireAuth)
	v1.POST("/incidents", incidentHandler.Create, requireAuth)
	v1.PUT("/incidents/:id", incidentHandler.Update, requireAuth)
	v1.DELETE("/incidents/:id", incidentHandler.Delete, requireAuth)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
