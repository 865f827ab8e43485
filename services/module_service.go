package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/content"
	"github.com/dabhanushali/enacton-training/utils/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ModuleService manages course modules and their ordering
type ModuleService struct {
	db      *gorm.DB
	modules *database.Repository[model.Module]
}

// NewModuleService creates a new module service
func NewModuleService(db *gorm.DB) *ModuleService {
	return &ModuleService{
		db:      db,
		modules: database.NewRepository[model.Module](db),
	}
}

// ModuleInput is a module create or update. ContentURL accepts a plain URL
// or the legacy {url, links} envelope; Links, when non-nil, replaces the
// secondary links.
type ModuleInput struct {
	ParentModuleID           *uint
	ModuleName               *string
	ModuleDescription        *string
	ContentType              *string
	ContentURL               *string
	Links                    []content.Link
	TextContent              *string
	IsRequired               *bool
	Points                   *int
	EstimatedDurationMinutes *int
}

// siblings matches modules that share an ordering sequence
func siblings(courseID uint, parentID *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("course_id = ?", courseID)
		if parentID == nil {
			return db.Where("parent_module_id IS NULL")
		}
		return db.Where("parent_module_id = ?", *parentID)
	}
}

// densify returns the 1-based position of every module after sorting by
// current order, ties broken by id.
func densify(mods []model.Module) map[uint]int {
	sorted := make([]model.Module, len(mods))
	copy(sorted, mods)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ModuleOrder != sorted[j].ModuleOrder {
			return sorted[i].ModuleOrder < sorted[j].ModuleOrder
		}
		return sorted[i].ID < sorted[j].ID
	})

	orders := make(map[uint]int, len(sorted))
	for i, m := range sorted {
		orders[m.ID] = i + 1
	}
	return orders
}

// reorderPlan checks that ids is exactly the current sibling set and
// returns each id's new 1-based position.
func reorderPlan(current []uint, ids []uint) (map[uint]int, error) {
	if len(ids) != len(current) {
		return nil, invalid("module_ids", fmt.Sprintf("Expected %d module ids, got %d", len(current), len(ids)))
	}
	known := make(map[uint]bool, len(current))
	for _, id := range current {
		known[id] = true
	}
	plan := make(map[uint]int, len(ids))
	for i, id := range ids {
		if !known[id] {
			return nil, invalid("module_ids", fmt.Sprintf("Module %d does not belong to this course", id))
		}
		if _, dup := plan[id]; dup {
			return nil, invalid("module_ids", fmt.Sprintf("Module %d appears more than once", id))
		}
		plan[id] = i + 1
	}
	return plan, nil
}

// applyOrders writes module_order for every module whose position changed
func applyOrders(ctx context.Context, tx *gorm.DB, mods []model.Module, orders map[uint]int) error {
	for _, m := range mods {
		next, ok := orders[m.ID]
		if !ok || next == m.ModuleOrder {
			continue
		}
		if err := tx.WithContext(ctx).Model(&model.Module{}).Where("id = ?", m.ID).
			UpdateColumn("module_order", next).Error; err != nil {
			return fmt.Errorf("failed to move module %d: %w", m.ID, database.MapError(err))
		}
	}
	return nil
}

// buildContent merges a module's existing content with an update
func buildContent(existing content.Reference, contentURL *string, links []content.Link) content.Reference {
	var ref content.Reference
	if contentURL != nil {
		env := content.DecodeLegacy(*contentURL)
		if links == nil {
			links = env.Links
		}
		ref = content.NewReference(env.URL, links)
	} else {
		ref = content.NewReference("", links)
		ref.Primary = existing.Primary
	}
	return ref
}

// ListByCourse returns the top-level modules of a course in order, each with
// its ordered sub-modules
func (s *ModuleService) ListByCourse(ctx context.Context, courseID uint) ([]model.Module, error) {
	var mods []model.Module
	err := s.db.WithContext(ctx).
		Scopes(siblings(courseID, nil)).
		Preload("SubModules", func(db *gorm.DB) *gorm.DB { return db.Order("module_order ASC, id ASC") }).
		Order("module_order ASC, id ASC").
		Find(&mods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", database.MapError(err))
	}
	return mods, nil
}

// Get loads a module with its sub-modules if sess may see its course
func (s *ModuleService) Get(ctx context.Context, sess *session.Session, id uint) (*model.Module, error) {
	m, err := s.modules.Get(ctx, id, "SubModules")
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", id, err)
	}
	if err := visibleCourse(ctx, s.db, sess, m.CourseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("module %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return m, nil
}

// Create appends a module at the end of its sibling sequence
func (s *ModuleService) Create(ctx context.Context, courseID uint, in ModuleInput) (*model.Module, error) {
	if in.ModuleName == nil || strings.TrimSpace(*in.ModuleName) == "" {
		return nil, invalid("module_name", "Module name is required")
	}

	module := model.Module{
		CourseID:       courseID,
		ParentModuleID: in.ParentModuleID,
		ContentType:    model.ContentTypeText,
		IsRequired:     true,
	}
	if err := applyModuleInput(&module, in); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the course row so concurrent appends get distinct orders
		var course model.Course
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&course, courseID).Error; err != nil {
			return fmt.Errorf("course %d: %w", courseID, database.MapError(err))
		}

		if in.ParentModuleID != nil {
			if err := s.checkParent(ctx, tx, courseID, *in.ParentModuleID); err != nil {
				return err
			}
		}

		next, err := nextModuleOrder(ctx, tx, courseID, in.ParentModuleID)
		if err != nil {
			return err
		}
		module.ModuleOrder = next

		return database.MapError(tx.Create(&module).Error)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create module: %w", err)
	}
	return &module, nil
}

// nextModuleOrder is max(module_order)+1 among siblings
func nextModuleOrder(ctx context.Context, db *gorm.DB, courseID uint, parentID *uint) (int, error) {
	var highest *int
	err := db.WithContext(ctx).Model(&model.Module{}).
		Scopes(siblings(courseID, parentID)).
		Select("MAX(module_order)").
		Scan(&highest).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read module order: %w", database.MapError(err))
	}
	if highest == nil {
		return 1, nil
	}
	return *highest + 1, nil
}

func (s *ModuleService) checkParent(ctx context.Context, tx *gorm.DB, courseID, parentID uint) error {
	var parent model.Module
	if err := tx.WithContext(ctx).First(&parent, parentID).Error; err != nil {
		if errors.Is(database.MapError(err), ErrNotFound) {
			return invalid("parent_module_id", "Parent module does not exist")
		}
		return fmt.Errorf("failed to load parent module: %w", err)
	}
	if parent.CourseID != courseID {
		return invalid("parent_module_id", "Parent module belongs to another course")
	}
	if parent.ParentModuleID != nil {
		return invalid("parent_module_id", "Sub-modules cannot be nested further")
	}
	return nil
}

// Update changes module fields; ordering is changed only through Reorder
func (s *ModuleService) Update(ctx context.Context, id uint, in ModuleInput) (*model.Module, error) {
	if in.ModuleName != nil && strings.TrimSpace(*in.ModuleName) == "" {
		return nil, invalid("module_name", "Module name is required")
	}

	module, err := s.modules.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", id, err)
	}
	if err := applyModuleInput(module, in); err != nil {
		return nil, err
	}
	if err := s.modules.Save(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to update module: %w", err)
	}
	return module, nil
}

// SetPrimaryFile points a module's primary resource at an uploaded object
func (s *ModuleService) SetPrimaryFile(ctx context.Context, id uint, key, url, name string, contentType model.ContentType) (*model.Module, error) {
	module, err := s.modules.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", id, err)
	}

	ref := module.ResolveContent()
	ref.Primary = &content.Resource{Kind: content.KindFile, Key: key, URL: url, Name: name}
	module.SetContent(ref)
	if contentType.Valid() {
		module.ContentType = contentType
	}

	if err := s.modules.Save(ctx, module); err != nil {
		return nil, fmt.Errorf("failed to attach file: %w", err)
	}
	return module, nil
}

// Delete removes a module and closes the gap in its sibling sequence
func (s *ModuleService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.modules.WithTx(tx)
		module, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("module %d: %w", id, err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete module: %w", err)
		}

		var rest []model.Module
		if err := tx.Scopes(siblings(module.CourseID, module.ParentModuleID)).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Find(&rest).Error; err != nil {
			return fmt.Errorf("failed to load sibling modules: %w", database.MapError(err))
		}
		return applyOrders(ctx, tx, rest, densify(rest))
	})
}

// Reorder sets the order of a course's top-level modules to ids, which must
// list every top-level module exactly once.
func (s *ModuleService) Reorder(ctx context.Context, courseID uint, ids []uint) ([]model.Module, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []model.Module
		if err := tx.Scopes(siblings(courseID, nil)).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Find(&current).Error; err != nil {
			return fmt.Errorf("failed to load modules: %w", database.MapError(err))
		}

		currentIDs := make([]uint, len(current))
		for i, m := range current {
			currentIDs[i] = m.ID
		}
		plan, err := reorderPlan(currentIDs, ids)
		if err != nil {
			return err
		}
		return applyOrders(ctx, tx, current, plan)
	})
	if err != nil {
		return nil, err
	}
	return s.ListByCourse(ctx, courseID)
}

// View resolves a module's content for display. Visibility follows the course catalogue.
func (s *ModuleService) View(ctx context.Context, sess *session.Session, id uint, resolve func(key string) (string, error)) (*ModuleView, error) {
	module, err := s.modules.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("module %d: %w", id, err)
	}

	if err := visibleCourse(ctx, s.db, sess, module.CourseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("module %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	view, err := content.BuildView(module.ResolveContent(), resolve)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve module content: %w", err)
	}
	return &ModuleView{Module: *module, View: view}, nil
}

// ModuleView is a module with render-ready content
type ModuleView struct {
	Module model.Module `json:"module"`
	View   content.View `json:"view"`
}

func applyModuleInput(m *model.Module, in ModuleInput) error {
	if in.ModuleName != nil {
		m.ModuleName = strings.TrimSpace(*in.ModuleName)
	}
	if in.ModuleDescription != nil {
		m.ModuleDescription = *in.ModuleDescription
	}
	if in.ContentType != nil {
		ct := model.ContentType(*in.ContentType)
		if !ct.Valid() {
			return invalid("content_type", "Unknown content type")
		}
		m.ContentType = ct
	}
	if in.ContentURL != nil || in.Links != nil {
		m.SetContent(buildContent(m.ResolveContent(), in.ContentURL, in.Links))
	}
	if in.TextContent != nil {
		m.TextContent = *in.TextContent
	}
	if in.IsRequired != nil {
		m.IsRequired = *in.IsRequired
	}
	if in.Points != nil {
		m.Points = *in.Points
	}
	if in.EstimatedDurationMinutes != nil {
		m.EstimatedDurationMinutes = *in.EstimatedDurationMinutes
	}
	return nil
}
