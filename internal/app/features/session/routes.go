// internal/app/features/session/routes.go
package session

import "github.com/go-chi/chi/v5"

// Routes mounts the session endpoints (typically under "/session").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Post("/logout", h.HandleLogout)
	return r
}
