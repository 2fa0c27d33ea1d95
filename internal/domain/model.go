package domain

import (
	"context"
	"time"
)

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Page is one page of a filtered and ordered result set. The counters
// describe the whole filtered set, not the page.
type Page[T any] struct {
	Items        []T   `json:"items"`
	CurrentPage  int   `json:"current_page"`
	ItemsPerPage int   `json:"items_per_page"`
	TotalItems   int64 `json:"total_items"`
	TotalPages   int   `json:"total_pages"`
}

// PageMeta is the pagination summary sent in the Pagination response header.
type PageMeta struct {
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	TotalItems   int64 `json:"totalItems"`
	TotalPages   int   `json:"totalPages"`
}

// Meta returns the page counters without the items.
func (p *Page[T]) Meta() PageMeta {
	return PageMeta{
		CurrentPage:  p.CurrentPage,
		ItemsPerPage: p.ItemsPerPage,
		TotalItems:   p.TotalItems,
		TotalPages:   p.TotalPages,
	}
}

// Store is the generic write side of the persistence boundary.
type Store[T any] interface {
	Add(ctx context.Context, entity *T) error
	Delete(ctx context.Context, entity *T) error
}
