package models

// Page describes one slice of a paginated listing.
type Page struct {
	Page  int64 `json:"currentPage"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"totalPages"`
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// NewPage clamps the requested page and limit into range.
func NewPage(page, limit, total int64) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	pages := int64(0)
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Page{Page: page, Limit: limit, Total: total, Pages: pages}
}

func (p Page) Skip() int64 {
	return (p.Page - 1) * p.Limit
}
