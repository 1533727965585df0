package domain

// Day listings default to two weeks of logs per page and never return more
// than a quarter of a year at once.
const (
	DefaultPageLimit = 14
	MaxPageLimit     = 92
)

// PaginationParams selects one page of a listing. Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams builds params from optional query values. Nil or
// non-positive values fall back to page 1 and DefaultPageLimit; the limit is
// clamped to MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page > 0 {
		p.Page = *page
	}
	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of rows to skip.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
