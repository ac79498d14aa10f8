package repository

// Pages are 1-based. Stadium lists are small cards, so pages stay short.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type PageRequest struct {
	Page     int
	PageSize int
}

// Normalize fills defaults and clamps the size to MaxPageSize.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = DefaultPage
	}
	switch {
	case r.PageSize < 1:
		r.PageSize = DefaultPageSize
	case r.PageSize > MaxPageSize:
		r.PageSize = MaxPageSize
	}
	return r
}

// Offset assumes a normalized request.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// NewPageResult wraps one page of items; a nil slice becomes empty so the
// envelope renders [] rather than null.
func NewPageResult[T any](items []T, req PageRequest, total int64) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	out := PageResult[T]{Items: items, Page: req.Page, PageSize: req.PageSize, Total: total}
	if total > 0 && req.PageSize > 0 {
		out.TotalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	return out
}
