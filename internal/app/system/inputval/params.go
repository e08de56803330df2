package inputval

import (
	"net/http"
	"strings"

	"github.com/aggienexus/nexus/internal/app/system/apperr"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectIDParam parses the chi URL parameter name as an ObjectID.
// A malformed id is a validation error.
func ObjectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid " + name)
	}
	return id, nil
}

// ObjectIDs parses every entry of hexes, failing on the first bad one.
func ObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(h))
		if err != nil {
			return nil, apperr.Validation("invalid id: " + h)
		}
		out = append(out, id)
	}
	return out, nil
}
