// internal/app/features/profilestatus/routes.go
package profilestatus

import (
	"github.com/aggienexus/nexus/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeStatus)
	return r
}
