// internal/app/features/organizations/images.go
package organizations

import (
	"context"
	"net/http"
	"strings"

	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/inputval"
	"github.com/aggienexus/nexus/internal/app/system/limits"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
)

type imageInput struct {
	URL string `json:"url" validate:"required,max=2000,httpurl" label:"Image URL"`
}

func (h *Handler) decodeImage(w http.ResponseWriter, r *http.Request) (imageInput, bool) {
	var in imageInput
	if err := httpjson.Decode(w, r, &in); err != nil {
		h.ErrLog.Write(w, r, err)
		return in, false
	}
	in.URL = strings.TrimSpace(in.URL)
	if res := inputval.Validate(in); res.HasErrors() {
		h.ErrLog.WriteValidation(w, res)
		return in, false
	}
	return in, true
}

// HandleAddImage handles POST /api/organizations/{id}/images.
func (h *Handler) HandleAddImage(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in, ok := h.decodeImage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, actorID, ok := h.authorize(ctx, w, r, id)
	if !ok {
		return
	}
	if len(org.Images) >= limits.MaxImages {
		h.ErrLog.Write(w, r, apperr.Validation("organization already has the maximum number of images"))
		return
	}

	if err := h.Orgs.AddImage(ctx, id, in.URL); err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "organization not found"))
		return
	}
	h.AuditLog.OrgUpdated(ctx, r, actorID, id, "image_added")
	h.respondOrg(ctx, w, r, id)
}

// HandleRemoveImage handles DELETE /api/organizations/{id}/images.
// Removing an image that is not present succeeds.
func (h *Handler) HandleRemoveImage(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.ObjectIDParam(r, "id")
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in, ok := h.decodeImage(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, actorID, ok := h.authorize(ctx, w, r, id)
	if !ok {
		return
	}
	if err := h.Orgs.RemoveImage(ctx, id, in.URL); err != nil {
		h.ErrLog.Write(w, r, apperr.Lookup(err, "organization not found"))
		return
	}
	h.AuditLog.OrgUpdated(ctx, r, actorID, id, "image_removed")
	h.respondOrg(ctx, w, r, id)
}
