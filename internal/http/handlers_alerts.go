package http

import (
	"net/http"
	"time"

	"quattrini/internal/log"
)

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(list(s.tracker.Alerts())).Write(w)
}

// handleDismissAlert is idempotent: unknown or expired ids still get 204.
func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	s.tracker.DismissAlert(id)
	log.FromContext(r.Context()).DebugContext(r.Context(), "Alert dismissed", log.FieldAlertID, id)
	NoContent().Write(w)
}

type sessionView struct {
	Created    int       `json:"created"`
	Checkpoint time.Time `json:"checkpoint"`
	Version    uint64    `json:"version"`
}

// handleStartSession runs the recurring materialization pass on demand.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	created, err := s.tracker.StartSession(r.Context())
	if err != nil {
		s.fail(w, r, log.OpMaterialize, err)
		return
	}
	view := sessionView{
		Created:    len(created),
		Checkpoint: s.tracker.Checkpoint().UTC(),
		Version:    s.tracker.Version(),
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Session started",
		log.FieldOperation, log.OpMaterialize,
		"created", view.Created,
		log.FieldVersion, view.Version)
	NewJSONResponse().JSON(view).Write(w)
}

// handleReset wipes every collection and the derived view cache.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Reset(r.Context()); err != nil {
		s.fail(w, r, log.OpReset, err)
		return
	}
	s.views.Purge()
	s.mutated(r, log.OpReset, "all", "")
	NoContent().Write(w)
}
