package pagination

import (
	"fmt"

	"newsreader/internal/domain/entity"
)

// Resolve substitutes defaults for zero values. Negative values and limits
// above MaxLimit are rejected with an *entity.ValidationError, so callers can
// hand the error straight to the response mapper.
func (p Params) Resolve(config Config) (Params, error) {
	if p.Page < 0 {
		return Params{}, fieldError("page", config)
	}
	if p.Limit < 0 || p.Limit > config.MaxLimit {
		return Params{}, fieldError("limit", config)
	}
	if p.Page == 0 {
		p.Page = config.DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = config.DefaultLimit
	}
	return p, nil
}

func fieldError(field string, config Config) *entity.ValidationError {
	msg := "invalid page: must be a positive integer"
	if field == "limit" {
		msg = fmt.Sprintf("invalid limit: must be between 1 and %d", config.MaxLimit)
	}
	return &entity.ValidationError{Field: field, Message: msg}
}
