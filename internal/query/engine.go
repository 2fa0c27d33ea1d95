// Package query is the paginated query engine behind the member and message
// listings. It filters a snapshot of records, orders the survivors, and cuts
// one page out of them. It never mutates the records it is given.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/simp-lee/dating/internal/domain"
)

// Predicate reports whether a record passes a filter.
type Predicate[T any] func(T) bool

// Plan describes one paginated query. Filters are conjunctive.
// A nil Compare keeps the input order.
type Plan[T any] struct {
	Filters    []Predicate[T]
	Compare    func(a, b T) int
	PageNumber int
	PageSize   int
}

// ValidatePage rejects page numbers and sizes below 1. Values are never clamped.
func ValidatePage(pageNumber, pageSize int) error {
	if pageNumber < 1 {
		return domain.InvalidArgument(fmt.Sprintf("pageNumber must be at least 1, got %d", pageNumber))
	}
	if pageSize < 1 {
		return domain.InvalidArgument(fmt.Sprintf("pageSize must be at least 1, got %d", pageSize))
	}
	return nil
}

// Offset returns the index of the first record on pageNumber. Callers check
// HasPage first; the product overflows for pages far past the end.
func Offset(pageNumber, pageSize int) int {
	return (pageNumber - 1) * pageSize
}

// LastPage returns ceil(total/pageSize), or 0 for an empty set. It does not
// overflow for any pageSize >= 1.
func LastPage(total int64, pageSize int) int64 {
	if total <= 0 || pageSize < 1 {
		return 0
	}
	size := int64(pageSize)
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// HasPage reports whether pageNumber holds at least one of total records.
func HasPage(pageNumber, pageSize int, total int64) bool {
	return pageNumber >= 1 && int64(pageNumber) <= LastPage(total, pageSize)
}

// NewPage wraps items with counters derived from total, the size of the
// filtered set before slicing.
func NewPage[T any](items []T, total int64, pageNumber, pageSize int) *domain.Page[T] {
	if items == nil {
		items = []T{}
	}

	return &domain.Page[T]{
		Items:        items,
		CurrentPage:  pageNumber,
		ItemsPerPage: pageSize,
		TotalItems:   total,
		TotalPages:   int(LastPage(total, pageSize)),
	}
}

// Filter returns the records that pass every predicate, in input order.
func Filter[T any](records []T, filters ...Predicate[T]) []T {
	out := make([]T, 0, len(records))
next:
	for _, r := range records {
		for _, f := range filters {
			if !f(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Run applies s to records and returns the requested page. A page past the
// end of the filtered set is empty, not an error.
func Run[T any](records []T, s Plan[T]) (*domain.Page[T], error) {
	if err := ValidatePage(s.PageNumber, s.PageSize); err != nil {
		return nil, err
	}

	matched := Filter(records, s.Filters...)
	if s.Compare != nil {
		slices.SortStableFunc(matched, s.Compare)
	}

	total := len(matched)
	if !HasPage(s.PageNumber, s.PageSize, int64(total)) {
		return NewPage([]T{}, int64(total), s.PageNumber, s.PageSize), nil
	}

	start := Offset(s.PageNumber, s.PageSize)
	end := total
	if total-start > s.PageSize {
		end = start + s.PageSize
	}

	return NewPage(slices.Clone(matched[start:end]), int64(total), s.PageNumber, s.PageSize), nil
}

// Descending orders records by key, most recent first. Equal keys fall back
// to id, highest first, so the order is total and repeatable.
func Descending[T any](key func(T) time.Time, id func(T) uint) func(a, b T) int {
	return func(a, b T) int {
		if c := key(b).Compare(key(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(b), id(a))
	}
}
