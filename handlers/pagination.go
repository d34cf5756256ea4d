package handlers

import (
	"net/http"
	"strconv"

	"github.com/petfm/server/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePageRequest reads ?page= and ?size= query parameters. Page is
// zero-based. Out-of-range values fall back to the defaults instead of
// erroring, listing endpoints should never 400 on pagination.
func parsePageRequest(r *http.Request) models.PageRequest {
	req := models.PageRequest{Page: 0, Size: defaultPageSize}

	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed >= 0 {
			req.Page = parsed
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 && parsed <= maxPageSize {
			req.Size = parsed
		}
	}

	return req
}
