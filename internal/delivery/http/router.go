package http

import (
	"net/http"

	"linkgate/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is http delivery providers.
var ProviderSet = wire.NewSet(NewRouter, NewRateLimiter)

// NewRouter creates a new Chi router with all middleware and routes
func NewRouter(
	redirect *service.RedirectService,
	links *service.LinkService,
	pages *service.StatusPages,
	health *service.HealthService,
	limiter *RateLimiter,
	logger log.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware chain
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.Check)

	// Short links; anything the resolver passes through falls to the 404 page.
	shortLinks := redirect.Handler(pages)
	r.Get(service.SlugPrefix+"*", shortLinks.ServeHTTP)
	r.Head(service.SlugPrefix+"*", shortLinks.ServeHTTP)

	pages.Register(r)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)
		links.Register(r)
	})

	return r
}
