// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts all Organization routes under the base path
// (typically "/api/organizations" from bootstrap).
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public directory.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeOrganization)

	// Admins and managers of the organization; decided by orgpolicy.
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Patch("/{id}", h.HandleUpdate)
		pr.Post("/{id}/images", h.HandleAddImage)
		pr.Delete("/{id}/images", h.HandleRemoveImage)
	})

	// Admin-only routes (managers cannot create).
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin"))
		pr.Post("/", h.HandleCreate)
	})

	return r
}
