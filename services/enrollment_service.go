package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentService manages course enrollments and module progress
type EnrollmentService struct {
	db            *gorm.DB
	enrollments   *database.Repository[model.Enrollment]
	notifications *NotificationService
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(db *gorm.DB, notifications *NotificationService) *EnrollmentService {
	return &EnrollmentService{
		db:            db,
		enrollments:   database.NewRepository[model.Enrollment](db),
		notifications: notifications,
	}
}

// EnrollmentFilter narrows enrollment listings
type EnrollmentFilter struct {
	EmployeeID *uint
	CourseID   *uint
	Status     string
	Page       int
	Limit      int
}

// EnrollmentProgress is an enrollment with its computed completion percentage
type EnrollmentProgress struct {
	model.Enrollment
	CompletedModules int64 `json:"completed_modules"`
	TotalModules     int64 `json:"total_modules"`
	Progress         int   `json:"progress"`
}

// ModuleCompletion is the result of marking a module done
type ModuleCompletion struct {
	EnrollmentID        uint `json:"enrollment_id"`
	Progress            int  `json:"progress"`
	EnrollmentCompleted bool `json:"enrollment_completed"`
}

// ProgressPercent is completed/total as a rounded percentage. A completed
// enrollment is always 100 and a course without modules is 0.
func ProgressPercent(completed, total int64, status model.EnrollmentStatus) int {
	if status == model.EnrollmentStatusCompleted {
		return 100
	}
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Enroll enrolls employees in a course. An empty list enrolls the caller.
// Existing enrollments are kept as they are.
func (s *EnrollmentService) Enroll(ctx context.Context, sess *session.Session, courseID uint, employeeIDs []uint) ([]model.Enrollment, error) {
	if sess == nil {
		return nil, ErrForbidden
	}
	if len(employeeIDs) == 0 {
		employeeIDs = []uint{sess.ProfileID}
	}

	for _, id := range employeeIDs {
		if sess.IsSelf(id) {
			continue
		}
		if !sess.Can(access.EnrollOthers) {
			return nil, fmt.Errorf("%w: you can only enroll yourself", ErrForbidden)
		}
		ok, err := canActFor(ctx, s.db, sess, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: employee %d is not in your team", ErrForbidden, id)
		}
	}

	var course model.Course
	if err := s.db.WithContext(ctx).Select("id", "course_name").First(&course, courseID).Error; err != nil {
		return nil, fmt.Errorf("course %d: %w", courseID, database.MapError(err))
	}

	now := time.Now()
	rows := make([]model.Enrollment, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		by := sess.ProfileID
		rows = append(rows, model.Enrollment{
			EmployeeID: id,
			CourseID:   courseID,
			Status:     model.EnrollmentStatusEnrolled,
			EnrolledAt: now,
			EnrolledBy: &by,
		})
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if result.Error != nil {
		err := database.MapError(result.Error)
		if errors.Is(err, database.ErrForeignKey) {
			return nil, invalid("employee_ids", "One or more employees do not exist")
		}
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}

	for _, id := range employeeIDs {
		if sess.IsSelf(id) {
			continue
		}
		s.notifications.Notify(ctx, CreateNotificationRequest{
			UserID:   id,
			Type:     model.NotificationTypeInfo,
			Category: model.NotificationCategoryEnrollment,
			Title:    "New course enrollment",
			Message:  fmt.Sprintf("You have been enrolled in %s", course.CourseName),
			Metadata: model.NotificationMetadata{CourseID: courseID},
		})
	}

	enrolled, err := s.enrollments.All(ctx, database.Query{}.
		Where("course_id", courseID).
		WhereIn("employee_id", uintsToArgs(employeeIDs)...).
		With("Employee").
		OrderBy("id ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}
	return enrolled, nil
}

// List returns one page of enrollments visible to sess, with progress
func (s *EnrollmentService) List(ctx context.Context, sess *session.Session, f EnrollmentFilter) ([]EnrollmentProgress, int64, error) {
	q := database.Query{}.
		Scope(ownedBy(sess, "course_enrollments.employee_id")).
		With("Course", "Employee").
		OrderBy("course_enrollments.enrolled_at DESC, course_enrollments.id DESC").
		Paginate(f.Page, f.Limit)
	if f.EmployeeID != nil {
		q = q.Where("employee_id", *f.EmployeeID)
	}
	if f.CourseID != nil {
		q = q.Where("course_id", *f.CourseID)
	}
	if f.Status != "" {
		q = q.Where("status", f.Status)
	}

	rows, total, err := s.enrollments.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list enrollments: %w", err)
	}

	withProgress, err := s.WithProgress(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return withProgress, total, nil
}

// ForEmployee returns every enrollment of one employee with progress
func (s *EnrollmentService) ForEmployee(ctx context.Context, employeeID uint) ([]EnrollmentProgress, error) {
	rows, err := s.enrollments.All(ctx, database.Query{}.
		Where("employee_id", employeeID).
		With("Course").
		OrderBy("enrolled_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}
	return s.WithProgress(ctx, rows)
}

type courseCount struct {
	CourseID uint
	Total    int64
}

type employeeCourseCount struct {
	EmployeeID uint
	CourseID   uint
	Done       int64
}

// WithProgress computes progress for a batch of enrollments with two grouped queries
func (s *EnrollmentService) WithProgress(ctx context.Context, rows []model.Enrollment) ([]EnrollmentProgress, error) {
	out := make([]EnrollmentProgress, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	courseIDs := make([]uint, 0, len(rows))
	employeeIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		courseIDs = append(courseIDs, r.CourseID)
		employeeIDs = append(employeeIDs, r.EmployeeID)
	}

	var totals []courseCount
	if err := s.db.WithContext(ctx).Model(&model.Module{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to count modules: %w", err)
	}

	var done []employeeCourseCount
	if err := s.db.WithContext(ctx).Table("module_progress AS mp").
		Select("mp.employee_id, m.course_id, COUNT(*) AS done").
		Joins("JOIN course_modules m ON m.id = mp.module_id").
		Where("mp.employee_id IN ? AND m.course_id IN ?", employeeIDs, courseIDs).
		Group("mp.employee_id, m.course_id").
		Scan(&done).Error; err != nil {
		return nil, fmt.Errorf("failed to count progress: %w", err)
	}

	totalByCourse := make(map[uint]int64, len(totals))
	for _, t := range totals {
		totalByCourse[t.CourseID] = t.Total
	}
	doneBy := make(map[[2]uint]int64, len(done))
	for _, d := range done {
		doneBy[[2]uint{d.EmployeeID, d.CourseID}] = d.Done
	}

	for i, r := range rows {
		total := totalByCourse[r.CourseID]
		completed := doneBy[[2]uint{r.EmployeeID, r.CourseID}]
		out[i] = EnrollmentProgress{
			Enrollment:       r,
			CompletedModules: completed,
			TotalModules:     total,
			Progress:         ProgressPercent(completed, total, r.Status),
		}
	}
	return out, nil
}

// get loads an enrollment that sess may act on
func (s *EnrollmentService) get(ctx context.Context, sess *session.Session, id uint) (*model.Enrollment, error) {
	e, err := s.enrollments.First(ctx, database.Query{}.Where("id", id).Scope(ownedBy(sess, "course_enrollments.employee_id")))
	if err != nil {
		return nil, fmt.Errorf("enrollment %d: %w", id, err)
	}
	return e, nil
}

// Complete marks an enrollment completed
func (s *EnrollmentService) Complete(ctx context.Context, sess *session.Session, id uint) (*model.Enrollment, error) {
	e, err := s.get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if e.Status == model.EnrollmentStatusCompleted {
		return e, nil
	}

	now := time.Now()
	if err := s.enrollments.Updates(ctx, id, map[string]interface{}{
		"status":          model.EnrollmentStatusCompleted,
		"completion_date": now,
	}); err != nil {
		return nil, fmt.Errorf("failed to complete enrollment: %w", err)
	}
	e.Status = model.EnrollmentStatusCompleted
	e.CompletionDate = &now
	return e, nil
}

// Delete removes an enrollment. Trainees cannot unenroll themselves.
func (s *EnrollmentService) Delete(ctx context.Context, sess *session.Session, id uint) error {
	if !sess.Can(access.EnrollOthers) {
		return ErrForbidden
	}
	if _, err := s.get(ctx, sess, id); err != nil {
		return err
	}
	if err := s.enrollments.Delete(ctx, id); err != nil {
		return fmt.Errorf("enrollment %d: %w", id, err)
	}
	return nil
}

// CompleteModule records that the caller finished a module of a course they
// are enrolled in. The enrollment completes once every required module is done.
func (s *EnrollmentService) CompleteModule(ctx context.Context, sess *session.Session, moduleID uint) (*ModuleCompletion, error) {
	if sess == nil {
		return nil, ErrForbidden
	}

	var result ModuleCompletion
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var module model.Module
		if err := tx.Select("id", "course_id").First(&module, moduleID).Error; err != nil {
			return fmt.Errorf("module %d: %w", moduleID, database.MapError(err))
		}

		var enrollment model.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("employee_id = ? AND course_id = ?", sess.ProfileID, module.CourseID).
			First(&enrollment).Error; err != nil {
			if errors.Is(database.MapError(err), ErrNotFound) {
				return fmt.Errorf("%w: not enrolled in this course", ErrForbidden)
			}
			return database.MapError(err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "module_id"}},
			DoNothing: true,
		}).Create(&model.ModuleProgress{
			EmployeeID:  sess.ProfileID,
			ModuleID:    moduleID,
			CompletedAt: time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to record progress: %w", database.MapError(err))
		}

		var total, done, requiredLeft int64
		if err := tx.Model(&model.Module{}).Where("course_id = ?", module.CourseID).Count(&total).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ModuleProgress{}).
			Joins("JOIN course_modules m ON m.id = module_progress.module_id").
			Where("module_progress.employee_id = ? AND m.course_id = ?", sess.ProfileID, module.CourseID).
			Count(&done).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Module{}).
			Where("course_id = ? AND is_required = ?", module.CourseID, true).
			Where("id NOT IN (SELECT module_id FROM module_progress WHERE employee_id = ?)", sess.ProfileID).
			Count(&requiredLeft).Error; err != nil {
			return err
		}

		if requiredLeft == 0 && enrollment.Status != model.EnrollmentStatusCompleted {
			now := time.Now()
			if err := tx.Model(&enrollment).Updates(map[string]interface{}{
				"status":          model.EnrollmentStatusCompleted,
				"completion_date": now,
			}).Error; err != nil {
				return fmt.Errorf("failed to complete enrollment: %w", err)
			}
			enrollment.Status = model.EnrollmentStatusCompleted
			result.EnrollmentCompleted = true
		}

		result.EnrollmentID = enrollment.ID
		result.Progress = ProgressPercent(done, total, enrollment.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func uintsToArgs(ids []uint) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
