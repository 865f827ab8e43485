package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the shared data access path for one model type. Every list
// and detail read in the API goes through it so that filtering, paging and
// error classification live in one place.
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository creates a repository bound to db
func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// WithTx returns a repository that runs on tx
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx}
}

// DB returns the underlying handle scoped to ctx, for queries the
// repository does not cover
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// List returns one page of rows and the total row count before paging
func (r *Repository[T]) List(ctx context.Context, q Query) ([]T, int64, error) {
	base := q.filter(r.db.WithContext(ctx).Model(new(T))).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, MapError(err)
	}

	items := make([]T, 0)
	if err := q.page(base).Find(&items).Error; err != nil {
		return nil, 0, MapError(err)
	}
	return items, total, nil
}

// All returns every matching row, ignoring pagination
func (r *Repository[T]) All(ctx context.Context, q Query) ([]T, error) {
	q.Limit = 0
	items := make([]T, 0)
	if err := q.page(q.filter(r.db.WithContext(ctx).Model(new(T)))).Find(&items).Error; err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// Count returns the number of matching rows
func (r *Repository[T]) Count(ctx context.Context, q Query) (int64, error) {
	var total int64
	if err := q.filter(r.db.WithContext(ctx).Model(new(T))).Count(&total).Error; err != nil {
		return 0, MapError(err)
	}
	return total, nil
}

// Get loads one row by primary key
func (r *Repository[T]) Get(ctx context.Context, id uint, preloads ...string) (*T, error) {
	db := r.db.WithContext(ctx)
	for _, p := range preloads {
		db = db.Preload(p)
	}
	var item T
	if err := db.First(&item, id).Error; err != nil {
		return nil, MapError(err)
	}
	return &item, nil
}

// GetForUpdate loads one row by primary key with a row lock; use inside a transaction
func (r *Repository[T]) GetForUpdate(ctx context.Context, id uint) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, id).Error; err != nil {
		return nil, MapError(err)
	}
	return &item, nil
}

// First returns the first matching row
func (r *Repository[T]) First(ctx context.Context, q Query) (*T, error) {
	var item T
	if err := q.page(q.filter(r.db.WithContext(ctx).Model(new(T)))).First(&item).Error; err != nil {
		return nil, MapError(err)
	}
	return &item, nil
}

// Exists reports whether a row with id exists
func (r *Repository[T]) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, MapError(err)
	}
	return count > 0, nil
}

// Create inserts item
func (r *Repository[T]) Create(ctx context.Context, item *T) error {
	return MapError(r.db.WithContext(ctx).Create(item).Error)
}

// Save writes every field of item
func (r *Repository[T]) Save(ctx context.Context, item *T) error {
	return MapError(r.db.WithContext(ctx).Save(item).Error)
}

// Updates applies a partial update to the row with id
func (r *Repository[T]) Updates(ctx context.Context, id uint, values map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-deletes the row with id
func (r *Repository[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return MapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
