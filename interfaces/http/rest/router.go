package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"raven/application/ports"
	"raven/interfaces/http/rest/handlers"
	"raven/interfaces/http/rest/middleware"
	"raven/pkg/auth"
	pkgerrors "raven/pkg/errors"
	"raven/pkg/observability"
)

// Options toggles optional router behavior
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
	// Debug exposes internal error messages in responses
	Debug bool
}

// Router creates and configures the HTTP router
type Router struct {
	service   handlers.NodeService
	health    ports.HealthChecker
	metrics   *observability.Metrics
	validator *auth.JWTValidator
	options   Options
	logger    *zap.Logger
}

// NewRouter creates a new router instance. health, metrics and validator may be nil.
func NewRouter(
	service handlers.NodeService,
	health ports.HealthChecker,
	metrics *observability.Metrics,
	validator *auth.JWTValidator,
	options Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		service:   service,
		health:    health,
		metrics:   metrics,
		validator: validator,
		options:   options,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.options.Debug)
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Metrics(rt.metrics))

	if rt.options.EnableCORS {
		origins := rt.options.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	healthHandler := handlers.NewHealthHandler(rt.health, rt.logger)
	router.Get("/health", healthHandler.Health)
	router.Get("/ready", healthHandler.Ready)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, errorHandler, rt.logger))

		r.Route("/nodes", func(r chi.Router) {
			nodeHandler := handlers.NewNodeHandler(rt.service, errorHandler, rt.logger)
			r.Post("/", nodeHandler.CreateNode)
			r.Patch("/{nodeID}", nodeHandler.UpdateNode)
			r.Delete("/{nodeID}", nodeHandler.DeleteNode)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return router
}
