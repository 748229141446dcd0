package pagination

import (
	"net/http"
	"strconv"
)

// Params is a resolved page request. Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// ParseQueryParams reads ?page= and ?limit=. Absent values take the configured
// defaults; a present value must be a positive integer within range.
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	q := r.URL.Query()

	page, err := queryInt(q.Get("page"), "page", config)
	if err != nil {
		return Params{}, err
	}
	limit, err := queryInt(q.Get("limit"), "limit", config)
	if err != nil {
		return Params{}, err
	}
	return Params{Page: page, Limit: limit}.Resolve(config)
}

// queryInt returns 0 for an empty value so Resolve substitutes the default.
func queryInt(raw, field string, config Config) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fieldError(field, config)
	}
	return n, nil
}
