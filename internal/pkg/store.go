package pkg

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/dating/internal/domain"
)

// gormStore implements domain.Store on top of GORM.
type gormStore[T any] struct {
	db *gorm.DB
}

// NewStore returns a domain.Store that writes T rows through db.
// Associations are never written along with the entity.
func NewStore[T any](db *gorm.DB) domain.Store[T] {
	return &gormStore[T]{db: db}
}

// Add inserts entity.
func (s *gormStore[T]) Add(ctx context.Context, entity *T) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return MapDBError(err, "")
	}
	return nil
}

// Delete removes entity by its primary key. Deleting a row that no longer
// exists reports CodeNotFound.
func (s *gormStore[T]) Delete(ctx context.Context, entity *T) error {
	result := s.db.WithContext(ctx).Delete(entity)
	if result.Error != nil {
		return MapDBError(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
