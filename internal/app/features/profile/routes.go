// internal/app/features/profile/routes.go
package profile

import (
	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeProfile)
	r.Put("/setup", h.HandleSetup)
	r.Post("/setup/skip", h.HandleSkip)
	r.Get("/claims/{organization}", h.ServeClaim)
	r.Delete("/claims/{organization}", h.HandleWithdrawClaim)
	return r
}
