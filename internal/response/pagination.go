package response

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// Pagination holds parsed page parameters
type Pagination struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Paginated wraps a page of results with its metadata
type Paginated struct {
	Items      interface{} `json:"items"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int64       `json:"total_count"`
	TotalPages int64       `json:"total_pages"`
}

// ParsePagination reads page and limit query parameters, clamping
// out-of-range values to sane defaults.
func ParsePagination(r *http.Request) Pagination {
	page := defaultPage
	limit := defaultLimit

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewPaginated builds the page wrapper from a total count
func NewPaginated(items interface{}, p Pagination, total int64) *Paginated {
	totalPages := total / int64(p.Limit)
	if total%int64(p.Limit) != 0 {
		totalPages++
	}
	return &Paginated{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: total,
		TotalPages: totalPages,
	}
}
