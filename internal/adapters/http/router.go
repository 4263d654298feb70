package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codehaven/licensing-service/internal/application"
)

// Handler is the HTTP adapter entrypoint for license use-cases.
// Keeping only application dependency here preserves clean adapter boundaries.
type Handler struct {
	service  *application.Service
	apiToken string
	ready    func(ctx context.Context) error
}

// NewHandler constructs an HTTP handler bound to the application service.
// ready is probed by /readyz and may be nil.
func NewHandler(service *application.Service, apiToken string, ready func(ctx context.Context) error) *Handler {
	return &Handler{service: service, apiToken: apiToken, ready: ready}
}

// NewRouter registers license HTTP routes and the middleware stack.
// Centralizing routes here ensures consistent auth and error behavior across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)

		r.Route("/licenses", func(r chi.Router) {
			r.Post("/verify", handler.verify)
			r.Post("/register", handler.register)
			r.Get("/status", handler.status)
			r.Post("/status", handler.status)
			r.Post("/bulk-verify", handler.bulkVerify)
			r.Get("/statistics", handler.statistics)
		})

		r.Route("/admin/products/{product_slug}/licenses/{purchase_code}", func(r chi.Router) {
			r.Post("/suspend", handler.adminSuspend)
			r.Post("/resume", handler.adminResume)
			r.Post("/revoke", handler.adminRevoke)
		})
	})

	return r
}
