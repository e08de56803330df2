// internal/app/features/events/routes.go
package events

import (
	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts event routes (typically at "/api/events").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public calendar.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeEvent)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}/status", h.HandleChangeStatus)
	})

	return r
}
