package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"trustie-admin/application/commands/bus"
	querybus "trustie-admin/application/queries/bus"
	"trustie-admin/interfaces/http/rest/handlers"
	"trustie-admin/interfaces/http/rest/middleware"
	"trustie-admin/pkg/common"
	pkgerrors "trustie-admin/pkg/errors"
	"trustie-admin/pkg/observability"
)

// ReadinessCheck reports whether a dependency can serve traffic
type ReadinessCheck func(ctx context.Context) error

// RouterConfig holds the HTTP-level settings
type RouterConfig struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	Debug          bool
	ServiceName    string
	EnableTracing  bool
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	sessions   *middleware.SessionGate
	collector  *observability.Collector
	readiness  map[string]ReadinessCheck
	config     RouterConfig
	logger     *zap.Logger
}

// NewRouter creates a new router instance. collector may be nil.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	sessions *middleware.SessionGate,
	collector *observability.Collector,
	config RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		sessions:   sessions,
		collector:  collector,
		readiness:  make(map[string]ReadinessCheck),
		config:     config,
		logger:     logger,
	}
}

// AddReadinessCheck registers a dependency probed by /ready
func (rt *Router) AddReadinessCheck(name string, check ReadinessCheck) {
	rt.readiness[name] = check
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.config.Debug)

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.collector != nil {
		router.Use(rt.collector.Middleware)
	}
	if rt.config.EnableTracing {
		router.Use(observability.TracingMiddleware(rt.config.ServiceName))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.collector != nil {
		router.Handle("/metrics", rt.collector.Handler())
	}

	// Dashboard pages
	router.Group(func(r chi.Router) {
		r.Use(rt.sessions.Pages)
		for _, page := range handlers.Pages {
			r.Get(page, handlers.Page(page))
		}
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(rt.sessions.API)

		userHandler := handlers.NewUserHandler(rt.queryBus, errorHandler, rt.logger)
		r.Route("/users", func(r chi.Router) {
			r.Get("/search", userHandler.Search)
			r.Get("/{userId}/profile/{section}", userHandler.GetProfileSection)
			r.Get("/{userId}/accounts", userHandler.ListAccounts)
		})

		eventHandler := handlers.NewEventHandler(rt.queryBus, errorHandler, rt.logger)
		r.Route("/events", func(r chi.Router) {
			r.Get("/search", eventHandler.Search)
			r.Get("/{eventId}", eventHandler.GetEvent)
		})

		postHandler := handlers.NewPostHandler(rt.commandBus, errorHandler, rt.config.MaxUploadBytes, rt.logger)
		r.Route("/posts", func(r chi.Router) {
			r.Post("/", postHandler.CreatePost)
			r.Post("/{postId}/publish", postHandler.PublishPost)
		})

		resourceHandler := handlers.NewResourceHandler(rt.commandBus, rt.queryBus, errorHandler, rt.config.MaxUploadBytes, rt.logger)
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", resourceHandler.ListResources)
			r.Post("/", resourceHandler.AddResource)
			r.Patch("/{resourceId}/{sk}", resourceHandler.UpdateResource)
		})
		r.Post("/knowledge/files", resourceHandler.UploadFile)

		dashboardHandler := handlers.NewDashboardHandler(rt.queryBus, errorHandler, rt.logger)
		r.Get("/images/url", dashboardHandler.GetImageURL)
		r.Get("/stats/{statsType}", dashboardHandler.GetStats)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	failed := make(map[string]string)
	for name, check := range rt.readiness {
		if err := check(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		details := make(map[string]interface{}, len(failed))
		for k, v := range failed {
			details[k] = v
		}
		common.RespondErrorWithDetails(w, http.StatusServiceUnavailable,
			common.StandardErrorCodes.ServiceUnavailable, "not ready", details)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
