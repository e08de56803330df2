// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by list endpoints.
const PageSize = 50

// MaxPageSize caps the limit a client may request.
const MaxPageSize = 200

// ParseLimit extracts the "limit" query parameter. Missing, invalid or
// non-positive values yield PageSize; values above MaxPageSize are capped.
func ParseLimit(r *http.Request) int64 {
	return ParseLimitWith(r, PageSize, MaxPageSize)
}

// ParseLimitWith is ParseLimit with an explicit default and cap.
func ParseLimitWith(r *http.Request, def, max int) int64 {
	s := query.Get(r, "limit")
	if s == "" {
		return int64(def)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return int64(def)
	}
	if n > max {
		n = max
	}
	return int64(n)
}
