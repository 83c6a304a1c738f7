// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vrsandeep/docscan/internal/core"
	"github.com/vrsandeep/docscan/internal/logger"
)

// Server holds the dependencies for our API.
type Server struct {
	app *core.App
	log zerolog.Logger
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app: app,
		log: logger.WithComponent("api"),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	r.Use(middleware.Recoverer)

	// Uploads are rasterized inside the request, so they get no timeout.
	r.With(LimitBody(s.app.Config().Upload.MaxBytes)).Post("/extractText", s.handleExtractText)

	// WebSocket route
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleGetVersion)
		r.Get("/queues", s.handleGetQueues)
		r.Get("/categories", s.handleGetCategories)

		// Maintenance jobs
		r.Get("/jobs", s.handleGetJobsStatus)
		r.Post("/jobs/{jobID}/run", s.handleRunJob)
	})

	return r
}
