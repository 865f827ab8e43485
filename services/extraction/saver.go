package extraction

import (
	"context"
	"fmt"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services/saga"
	"github.com/dabhanushali/enacton-training/utils/content"
	"gorm.io/gorm"
)

// ModuleWriter is the persistence the saver needs
type ModuleWriter interface {
	NextTopLevelOrder(ctx context.Context, courseID uint) (int, error)
	Insert(ctx context.Context, m *model.Module) error
	Delete(ctx context.Context, ids []uint) error
}

// Saver inserts an extracted structure: every parent first, then the
// sub-modules pointing at the new parent ids. Parents are removed again when
// a sub-module insert fails.
type Saver struct {
	writer ModuleWriter
}

// NewSaver creates a saver over writer
func NewSaver(writer ModuleWriter) *Saver {
	return &Saver{writer: writer}
}

// Save inserts mods into courseID after any existing modules and returns
// the parents with their sub-modules attached
func (s *Saver) Save(ctx context.Context, courseID uint, mods []ExtractedModule) ([]model.Module, error) {
	if len(mods) == 0 {
		return nil, ErrNothingToSave
	}

	parents := make([]model.Module, len(mods))
	var parentIDs []uint

	insertParents := func(ctx context.Context) error {
		next, err := s.writer.NextTopLevelOrder(ctx, courseID)
		if err != nil {
			return err
		}
		for i, m := range mods {
			parents[i] = toModule(courseID, nil, next+i, m)
			if err := s.writer.Insert(ctx, &parents[i]); err != nil {
				return s.undo(ctx, parentIDs, fmt.Errorf("module %q: %w", m.ModuleName, err))
			}
			parentIDs = append(parentIDs, parents[i].ID)
		}
		return nil
	}

	deleteParents := func(ctx context.Context) error {
		return s.writer.Delete(ctx, parentIDs)
	}

	insertChildren := func(ctx context.Context) error {
		var childIDs []uint
		for i, m := range mods {
			parentID := parents[i].ID
			for j, sub := range m.SubModules {
				child := toModule(courseID, &parentID, j+1, sub)
				if err := s.writer.Insert(ctx, &child); err != nil {
					return s.undo(ctx, childIDs, fmt.Errorf("sub-module %q: %w", sub.ModuleName, err))
				}
				childIDs = append(childIDs, child.ID)
				parents[i].SubModules = append(parents[i].SubModules, child)
			}
		}
		return nil
	}

	err := saga.New("extraction_save").
		Step("insert_parent_modules", insertParents, deleteParents).
		Step("insert_sub_modules", insertChildren, nil).
		Run(ctx)
	if err != nil {
		return nil, err
	}
	return parents, nil
}

// undo removes rows a failing step already wrote; the saga only compensates
// steps that completed
func (s *Saver) undo(ctx context.Context, ids []uint, cause error) error {
	if len(ids) == 0 {
		return cause
	}
	if err := s.writer.Delete(context.WithoutCancel(ctx), ids); err != nil {
		return fmt.Errorf("%w (cleanup failed: %v)", cause, err)
	}
	return cause
}

func toModule(courseID uint, parentID *uint, order int, m ExtractedModule) model.Module {
	mod := model.Module{
		CourseID:                 courseID,
		ParentModuleID:           parentID,
		ModuleName:               m.ModuleName,
		ModuleDescription:        m.ModuleDescription,
		ModuleOrder:              order,
		ContentType:              model.ContentType(m.ContentType),
		IsRequired:               true,
		EstimatedDurationMinutes: m.EstimatedDurationMinutes,
	}
	if !mod.ContentType.Valid() {
		mod.ContentType = model.ContentTypeText
	}
	mod.SetContent(content.NewReference(m.ContentURL, nil))
	return mod
}

// GormModuleWriter writes modules with GORM
type GormModuleWriter struct {
	db *gorm.DB
}

// NewGormModuleWriter creates a writer on db
func NewGormModuleWriter(db *gorm.DB) *GormModuleWriter {
	return &GormModuleWriter{db: db}
}

// NextTopLevelOrder is max(module_order)+1 over the course's top-level modules
func (w *GormModuleWriter) NextTopLevelOrder(ctx context.Context, courseID uint) (int, error) {
	var highest *int
	err := w.db.WithContext(ctx).Model(&model.Module{}).
		Where("course_id = ? AND parent_module_id IS NULL", courseID).
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

// Insert creates one module row
func (w *GormModuleWriter) Insert(ctx context.Context, m *model.Module) error {
	return database.MapError(w.db.WithContext(ctx).Omit("SubModules").Create(m).Error)
}

// Delete removes module rows by id
func (w *GormModuleWriter) Delete(ctx context.Context, ids []uint) error {
	return database.MapError(w.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Module{}).Error)
}
