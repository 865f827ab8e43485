package database

import (
	"context"
	"errors"
	"testing"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenTestDB()
	if errors.Is(err, ErrNoTestDatabase) {
		t.Skip("TEST_DB_DSN not set, skipping database test")
	}
	require.NoError(t, err)
	return db
}

func TestQueryOffset(t *testing.T) {
	q := Query{}.Paginate(3, 10)
	assert.Equal(t, 20, q.Offset())

	q = Query{}.Paginate(0, 0)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.Limit)
	assert.Equal(t, 0, q.Offset())

	_, limit := NormalizePage(1, 1000)
	assert.Equal(t, MaxPageSize, limit)
}

func TestRepositoryListFiltersAndPages(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := NewRepository[model.Course](db)

	for _, name := range []string{"Go Basics", "Go Concurrency", "Security Awareness"} {
		require.NoError(t, repo.Create(ctx, &model.Course{CourseName: name, TargetRole: "Trainee"}))
	}

	items, total, err := repo.List(ctx, Query{}.SearchIn("go", "course_name").OrderBy("course_name ASC").Paginate(1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Go Basics", items[0].CourseName)

	count, err := repo.Count(ctx, Query{}.Where("target_role", "Trainee"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRepositoryNotFound(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := NewRepository[model.Course](db)

	_, err := repo.Get(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 999999), ErrNotFound)
}

func TestSeedRolesIsIdempotent(t *testing.T) {
	db := openDB(t)
	seeder := NewSeeder(db)

	require.NoError(t, seeder.SeedRoles())
	require.NoError(t, seeder.SeedRoles())

	var count int64
	require.NoError(t, db.Model(&model.Role{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}
