// internal/app/features/users/routes.go
package users

import (
	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts user routes (typically at "/api/users").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Self or admin; decided per record by userpolicy.
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{id}", h.ServeUser)
		pr.Delete("/{id}", h.HandleDelete)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("admin"))
		pr.Patch("/{id}/role", h.HandleChangeRole)
		pr.Post("/{id}/claims/{organization}/review", h.HandleReviewClaim)
	})

	return r
}
