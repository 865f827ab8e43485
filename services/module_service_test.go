package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/content"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenTestDB()
	if errors.Is(err, database.ErrNoTestDatabase) {
		t.Skip("TEST_DB_DSN not set, skipping database test")
	}
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

func TestDensifyClosesGaps(t *testing.T) {
	mods := []model.Module{
		{ID: 10, ModuleOrder: 1},
		{ID: 12, ModuleOrder: 4},
		{ID: 11, ModuleOrder: 3},
		{ID: 13, ModuleOrder: 4},
	}
	assert.Equal(t, map[uint]int{10: 1, 11: 2, 12: 3, 13: 4}, densify(mods))
	assert.Empty(t, densify(nil))
}

func TestReorderPlan(t *testing.T) {
	plan, err := reorderPlan([]uint{1, 2, 3}, []uint{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[uint]int{3: 1, 1: 2, 2: 3}, plan)

	var verr *ValidationError
	_, err = reorderPlan([]uint{1, 2, 3}, []uint{1, 2})
	assert.True(t, errors.As(err, &verr))

	_, err = reorderPlan([]uint{1, 2, 3}, []uint{1, 2, 9})
	assert.True(t, errors.As(err, &verr))

	_, err = reorderPlan([]uint{1, 2, 3}, []uint{1, 1, 2})
	assert.True(t, errors.As(err, &verr))
}

func TestBuildContent(t *testing.T) {
	existing := content.Reference{
		Version: content.SchemaVersion,
		Primary: &content.Resource{Kind: content.KindFile, Key: "modules/1/a.pdf"},
	}

	ref := buildContent(existing, nil, []content.Link{{Name: "docs", URL: "https://docs"}})
	require.NotNil(t, ref.Primary)
	assert.Equal(t, content.KindFile, ref.Primary.Kind)
	assert.Len(t, ref.Links, 1)

	ref = buildContent(existing, strPtr(`{"url":"https://a.com","links":[{"name":"x","url":"https://b.com"}]}`), nil)
	assert.Equal(t, "https://a.com", ref.PrimaryURL())
	assert.Equal(t, []content.Link{{Name: "x", URL: "https://b.com"}}, ref.Links)

	ref = buildContent(existing, strPtr(""), nil)
	assert.Nil(t, ref.Primary)
}

func TestModuleOrderStaysDense(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	course := model.Course{CourseName: "Orientation"}
	require.NoError(t, db.Create(&course).Error)

	svc := NewModuleService(db)
	var ids []uint
	for _, name := range []string{"Welcome", "Policies", "Tools", "Wrap-up"} {
		m, err := svc.Create(ctx, course.ID, ModuleInput{ModuleName: strPtr(name)})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	orders := func() []int {
		mods, err := svc.ListByCourse(ctx, course.ID)
		require.NoError(t, err)
		out := make([]int, len(mods))
		for i, m := range mods {
			out[i] = m.ModuleOrder
		}
		return out
	}
	assert.Equal(t, []int{1, 2, 3, 4}, orders())

	require.NoError(t, svc.Delete(ctx, ids[1]))
	assert.Equal(t, []int{1, 2, 3}, orders())

	mods, err := svc.Reorder(ctx, course.ID, []uint{ids[3], ids[0], ids[2]})
	require.NoError(t, err)
	require.Len(t, mods, 3)
	assert.Equal(t, ids[3], mods[0].ID)
	assert.Equal(t, []int{1, 2, 3}, orders())
}

func TestModuleGetFollowsCourseCatalogue(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	course := model.Course{CourseName: "Payroll", TargetRole: access.HRName}
	require.NoError(t, db.Create(&course).Error)

	svc := NewModuleService(db)
	m, err := svc.Create(ctx, course.ID, ModuleInput{ModuleName: strPtr("Pay runs")})
	require.NoError(t, err)

	_, err = svc.Get(ctx, &session.Session{ProfileID: 42, Role: access.Trainee}, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(ctx, &session.Session{ProfileID: 1, Role: access.HR}, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pay runs", got.ModuleName)
}
