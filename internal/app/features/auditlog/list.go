// internal/app/features/auditlog/list.go
package auditlog

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aggienexus/nexus/internal/app/store/audit"
	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/aggienexus/nexus/internal/app/system/gates"
	"github.com/aggienexus/nexus/internal/app/system/httpjson"
	"github.com/aggienexus/nexus/internal/app/system/paging"
	"github.com/aggienexus/nexus/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listResponse struct {
	Events []audit.Event `json:"events"`
}

// ServeList handles GET /api/admin/audit.
//
// Filters: category (auth|admin), event_type, user_id (affected user) and
// since (RFC 3339 timestamp or YYYY-MM-DD date). Newest events first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if _, ok := gates.RequireAdmin(w, r, h.ErrLog); !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		h.ErrLog.Write(w, r, apperr.Dependency("unable to load audit events", err))
		return
	}
	httpjson.Write(w, http.StatusOK, listResponse{Events: events})
}

func parseFilter(r *http.Request) (audit.QueryFilter, error) {
	filter := audit.QueryFilter{
		Category:  strings.ToLower(query.Get(r, "category")),
		EventType: query.Get(r, "event_type"),
		Limit:     paging.ParseLimit(r),
	}

	switch filter.Category {
	case "", audit.CategoryAuth, audit.CategoryAdmin:
	default:
		return filter, apperr.Validation("category must be auth or admin")
	}

	if s := query.Get(r, "user_id"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return filter, apperr.Validation("invalid user_id")
		}
		filter.UserID = &id
	}

	if s := query.Get(r, "since"); s != "" {
		t, err := parseSince(s)
		if err != nil {
			return filter, apperr.Validation("since must be an RFC 3339 timestamp or YYYY-MM-DD")
		}
		filter.Since = &t
	}
	return filter, nil
}

func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
