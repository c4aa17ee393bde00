// Package rest wires the portal's HTTP surface: the facility proxy
// reads, the MAC auth update, tenant sync, and per-user API keys.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"mab-backend/interfaces/http/rest/handlers"
	"mab-backend/interfaces/http/rest/middleware"
	pkgerrors "mab-backend/pkg/errors"
)

// Router assembles the REST routes over the injected handlers.
type Router struct {
	facility       *handlers.FacilityHandler
	clients        *handlers.ClientHandler
	sync           *handlers.SyncHandler
	apiKeys        *handlers.APIKeyHandler
	errors         *pkgerrors.ErrorHandler
	allowedOrigins []string
	logger         *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	facility *handlers.FacilityHandler,
	clients *handlers.ClientHandler,
	sync *handlers.SyncHandler,
	apiKeys *handlers.APIKeyHandler,
	errors *pkgerrors.ErrorHandler,
	allowedOrigins []string,
	logger *zap.Logger,
) *Router {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Router{
		facility:       facility,
		clients:        clients,
		sync:           sync,
		apiKeys:        apiKeys,
		errors:         errors,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.RequestLogger(rt.logger))

	// OPTIONS preflight is answered here; no business handler sees it.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", middleware.HeaderAPIKey, middleware.HeaderTenantID},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Use(middleware.Credentials)

	router.Get("/health", rt.healthCheck)

	router.Route("/api/v1", func(r chi.Router) {
		// Mirror reads
		r.Get("/sites", rt.facility.Sites)
		r.Get("/buildings", rt.facility.Buildings)
		r.Get("/floors", rt.facility.Floors)
		r.Get("/segments", rt.facility.Segments)
		r.Get("/tree", rt.facility.Tree)

		// Upstream proxy routes sit behind the circuit breaker.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CircuitBreaker("nile-clients", rt.logger))
			r.Get("/clients", rt.clients.List)
			r.Patch("/clients", rt.clients.UpdateMACAuth)
		})
		r.Group(func(r chi.Router) {
			r.Use(middleware.CircuitBreaker("nile-sync", rt.logger))
			r.Post("/sync", rt.sync.Run)
		})

		// Per-user API keys
		r.Route("/apikeys", func(r chi.Router) {
			r.Get("/", rt.apiKeys.List)
			r.Post("/", rt.apiKeys.Create)
			r.Put("/", rt.apiKeys.Update)
			r.Delete("/", rt.apiKeys.Delete)
			r.Delete("/{keyID}", rt.apiKeys.Delete)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
