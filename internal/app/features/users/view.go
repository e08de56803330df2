// internal/app/features/users/view.go
package users

import (
	"context"
	"net/http"

	"github.com/aggienexus/nexus/internal/app/policy/userpolicy"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
)

// ServeUser handles GET /api/users/{id}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := userpolicy.CheckView(ctx, h.Users, gates.Optional(r), id)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	httpjson.Write(w, http.StatusOK, u)
}
