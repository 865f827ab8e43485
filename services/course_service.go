package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseService manages courses
type CourseService struct {
	db      *gorm.DB
	courses *database.Repository[model.Course]
}

// NewCourseService creates a new course service
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{
		db:      db,
		courses: database.NewRepository[model.Course](db),
	}
}

// CourseFilter narrows the course catalogue
type CourseFilter struct {
	TargetRole      string
	CourseType      string
	DifficultyLevel string
	IsMandatory     *bool
	Search          string
	Page            int
	Limit           int
}

// CourseInput is a course create or update. On update nil pointers leave the
// column unchanged.
type CourseInput struct {
	CourseName         *string
	CourseDescription  *string
	CourseType         *string
	DifficultyLevel    *string
	IsMandatory        *bool
	TargetRole         *string
	LearningObjectives *string
	Prerequisites      *string
	Skills             []string
	DurationHours      *int
	InstructorID       *uint
}

// catalogueFor limits trainees to courses aimed at their role (or at no
// role) and courses they are enrolled in.
func catalogueFor(sess *session.Session) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case sess == nil:
			return db.Where("1 = 0")
		case sess.Can(access.ManageCourses), sess.Can(access.EnrollOthers):
			return db
		default:
			return db.Where(
				"(courses.target_role = ? OR courses.target_role = '' OR courses.target_role IS NULL OR courses.id IN (SELECT course_id FROM course_enrollments WHERE employee_id = ?))",
				sess.Role.String(), sess.ProfileID,
			)
		}
	}
}

// visibleCourse returns ErrNotFound unless sess may see courseID
func visibleCourse(ctx context.Context, db *gorm.DB, sess *session.Session, courseID uint) error {
	var visible int64
	if err := db.WithContext(ctx).Model(&model.Course{}).
		Scopes(catalogueFor(sess)).
		Where("courses.id = ?", courseID).
		Count(&visible).Error; err != nil {
		return fmt.Errorf("failed to check course access: %w", err)
	}
	if visible == 0 {
		return fmt.Errorf("course %d: %w", courseID, ErrNotFound)
	}
	return nil
}

// List returns one page of courses visible to sess
func (s *CourseService) List(ctx context.Context, sess *session.Session, f CourseFilter) ([]model.Course, int64, error) {
	q := database.Query{}.Scope(catalogueFor(sess)).OrderBy("courses.created_at DESC, courses.id DESC")
	if f.TargetRole != "" {
		q = q.Where("target_role", f.TargetRole)
	}
	if f.CourseType != "" {
		q = q.Where("course_type", f.CourseType)
	}
	if f.DifficultyLevel != "" {
		q = q.Where("difficulty_level", f.DifficultyLevel)
	}
	if f.IsMandatory != nil {
		q = q.Where("is_mandatory", *f.IsMandatory)
	}
	if f.Search != "" {
		q = q.SearchIn(f.Search, "course_name", "course_description")
	}

	items, total, err := s.courses.List(ctx, q.Paginate(f.Page, f.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return items, total, nil
}

// Get loads a course with its ordered modules and assessment templates
func (s *CourseService) Get(ctx context.Context, sess *session.Session, id uint) (*model.Course, error) {
	var course model.Course
	err := s.db.WithContext(ctx).
		Scopes(catalogueFor(sess)).
		Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_module_id IS NULL").Order("module_order ASC, id ASC")
		}).
		Preload("Modules.SubModules", func(db *gorm.DB) *gorm.DB {
			return db.Order("module_order ASC, id ASC")
		}).
		Preload("Templates", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&course, id).Error
	if err != nil {
		err = database.MapError(err)
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	return &course, nil
}

// Exists reports whether a course row exists
func (s *CourseService) Exists(ctx context.Context, id uint) error {
	ok, err := s.courses.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check course: %w", err)
	}
	if !ok {
		return fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	return nil
}

// Create inserts a course. A blank name is rejected before any write.
func (s *CourseService) Create(ctx context.Context, sess *session.Session, in CourseInput) (*model.Course, error) {
	if in.CourseName == nil || strings.TrimSpace(*in.CourseName) == "" {
		return nil, invalid("course_name", "Course name is required")
	}
	if in.TargetRole != nil && *in.TargetRole != "" && !access.IsRoleName(*in.TargetRole) {
		return nil, invalid("target_role", "Unknown role")
	}

	course := model.Course{Skills: datatypes.JSONSlice[string]{}}
	applyCourseInput(&course, in)
	if sess != nil {
		createdBy := sess.ProfileID
		course.CreatedBy = &createdBy
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return nil, invalid("instructor_id", "Instructor does not exist")
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return &course, nil
}

// Update changes course fields
func (s *CourseService) Update(ctx context.Context, id uint, in CourseInput) (*model.Course, error) {
	if in.CourseName != nil && strings.TrimSpace(*in.CourseName) == "" {
		return nil, invalid("course_name", "Course name is required")
	}
	if in.TargetRole != nil && *in.TargetRole != "" && !access.IsRoleName(*in.TargetRole) {
		return nil, invalid("target_role", "Unknown role")
	}

	course, err := s.courses.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("course %d: %w", id, err)
	}
	applyCourseInput(course, in)

	if err := s.courses.Save(ctx, course); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return nil, invalid("instructor_id", "Instructor does not exist")
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return course, nil
}

// Delete removes a course and, through cascades, its modules and templates
func (s *CourseService) Delete(ctx context.Context, id uint) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return fmt.Errorf("course %d: %w", id, err)
	}
	return nil
}

func applyCourseInput(c *model.Course, in CourseInput) {
	if in.CourseName != nil {
		c.CourseName = strings.TrimSpace(*in.CourseName)
	}
	if in.CourseDescription != nil {
		c.CourseDescription = *in.CourseDescription
	}
	if in.CourseType != nil {
		c.CourseType = *in.CourseType
	}
	if in.DifficultyLevel != nil {
		c.DifficultyLevel = *in.DifficultyLevel
	}
	if in.IsMandatory != nil {
		c.IsMandatory = *in.IsMandatory
	}
	if in.TargetRole != nil {
		c.TargetRole = *in.TargetRole
		if r, err := access.ParseRole(*in.TargetRole); err == nil {
			c.TargetRole = r.String()
		}
	}
	if in.LearningObjectives != nil {
		c.LearningObjectives = *in.LearningObjectives
	}
	if in.Prerequisites != nil {
		c.Prerequisites = *in.Prerequisites
	}
	if in.Skills != nil {
		c.Skills = datatypes.JSONSlice[string](in.Skills)
	}
	if in.DurationHours != nil {
		c.DurationHours = *in.DurationHours
	}
	if in.InstructorID != nil {
		c.InstructorID = in.InstructorID
	}
}
