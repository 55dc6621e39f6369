// Package httpapi exposes a studio over JSON. Each browser gets its own
// session, keyed by the textfx_session cookie.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slicken/TextFx-Studio/internal/app"
	"github.com/slicken/TextFx-Studio/internal/session"
)

// Server serves the studio API.
type Server struct {
	app      *app.App
	sessions *Registry
}

// New creates a server whose sessions are built by a.
func New(a *app.App) *Server {
	return &Server{
		app:      a,
		sessions: NewRegistry(func(id string) *session.Session { return a.NewSession(id) }, a.Config.SessionIdle),
	}
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *Registry { return s.sessions }

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(withLogging, withSecurityHeaders, withCORS)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)

		r.Route("/config", func(r chi.Router) {
			r.Get("/", s.handleConfig)
			r.Put("/text", s.handleSetText)
			r.Put("/style", s.handleSelectStyle)
			r.Put("/custom-style", s.handleCustomStyle)
			r.Post("/effects/{key}/toggle", s.handleToggleEffect)
			r.Put("/custom-effect", s.handleCustomEffect)
			r.Delete("/custom-effect", s.handleClearCustomEffect)
			r.Put("/background", s.handleSelectBackground)
			r.Put("/custom-background", s.handleCustomBackground)
			r.Put("/creativity", s.handleCreativity)
			r.Post("/randomize", s.handleRandomize)
			r.Post("/reset", s.handleReset)
		})

		r.Get("/prompt", s.handlePrompt)
		r.Post("/generate", s.handleGenerate)
		r.Get("/status", s.handleStatus)
		r.Delete("/status/notice", s.handleDismissNotice)
		r.Post("/export", s.handleExportCurrent)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleHistory)
			r.Get("/bundle", s.handleBundle)
			r.Route("/{id}", func(r chi.Router) {
				r.Post("/select", s.handleSelect)
				r.Get("/image", s.handleImage)
				r.Get("/thumbnail", s.handleThumbnail)
				r.Post("/export", s.handleExport)
			})
		})
	})

	return r
}
