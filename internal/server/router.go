package server

import (
	"net/http"

	"github.com/cloo-solutions/linkshelf/internal/api"
	"github.com/cloo-solutions/linkshelf/internal/api/handlers"
	"github.com/cloo-solutions/linkshelf/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Logger       zerolog.Logger
	SaveHandler  *handlers.SaveHandler
	ItemHandler  *handlers.ItemHandler
	MaxBodyBytes int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = middleware.DefaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// save answers every failure, an oversized body included, in its own envelope
		r.With(middleware.MaxBodyBytesWith(maxBodyBytes, api.SaveFailure)).Post("/save", cfg.SaveHandler.Save)

		r.Group(func(r chi.Router) {
			r.Use(middleware.MaxBodyBytes(maxBodyBytes))

			r.Route("/items", func(r chi.Router) {
				r.Get("/", cfg.ItemHandler.List)
				r.Get("/{id}", cfg.ItemHandler.Get)
				r.Get("/{id}/related", cfg.ItemHandler.Related)
				r.Get("/{id}/snapshot", cfg.ItemHandler.Snapshot)
			})

			r.Get("/platforms", cfg.ItemHandler.Platforms)
			r.Get("/tags", cfg.ItemHandler.Tags)
			r.Get("/sources", cfg.ItemHandler.Sources)
		})
	})

	return r
}
