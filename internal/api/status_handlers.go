package api

import (
	"net/http"

	"github.com/vrsandeep/docscan/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version})
}

// handleGetQueues lists every connected client with its backlog.
func (s *Server) handleGetQueues(w http.ResponseWriter, r *http.Request) {
	queues := s.app.Registry().Snapshot()
	if queues == nil {
		queues = []models.QueueStatus{}
	}
	RespondWithJSON(w, http.StatusOK, queues)
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.Extractors().Bindings())
}
