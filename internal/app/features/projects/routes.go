// internal/app/features/projects/routes.go
package projects

import (
	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts project routes (typically at "/api/projects").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/programs", h.ServePrograms)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	// Public.
	r.Get("/{id}", h.ServeProject)

	return r
}

// AdminRoutes mounts admin-only project routes (typically at
// "/api/admin/projects").
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Use(sm.RequireRole("admin"))
	r.Delete("/{id}", h.HandleHardDelete)
	return r
}
