// Package listing filters, sorts and paginates in-memory result sets.
package listing

import "slices"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Query describes one listing request. Nil Filter keeps everything and nil Compare keeps the
// input order.
type Query[T any] struct {
	Filter     func(T) bool
	Compare    func(a, b T) int
	Descending bool
	Page       int
	PageSize   int
}

// Page is one slice of a listing result.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Normalize clamps page to at least 1 and pageSize to 1..MaxPageSize, using DefaultPageSize when
// it is not positive.
func Normalize(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Apply runs q over items. The input slice is not modified and the sort is stable, so equal
// elements keep their input order in both directions.
func Apply[T any](items []T, q Query[T]) Page[T] {
	page, size := Normalize(q.Page, q.PageSize)

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if q.Filter == nil || q.Filter(item) {
			matched = append(matched, item)
		}
	}

	if q.Compare != nil {
		compare := q.Compare
		if q.Descending {
			compare = func(a, b T) int { return q.Compare(b, a) }
		}
		slices.SortStableFunc(matched, compare)
	}

	result := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		Total:      len(matched),
		TotalPages: (len(matched) + size - 1) / size,
	}

	start := (page - 1) * size
	if start >= len(matched) {
		return result
	}
	end := min(start+size, len(matched))
	result.Items = matched[start:end]
	return result
}
