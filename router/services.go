package router

import (
	"time"

	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/services/extraction"
	"github.com/dabhanushali/enacton-training/utils/cache"
	"gorm.io/gorm"
)

// PreviewTTL is how long an extraction preview waits for review
const PreviewTTL = time.Hour

// Services holds the domain services shared by the routes and the cron jobs
type Services struct {
	Roles         *services.RoleService
	Employees     *services.EmployeeService
	Courses       *services.CourseService
	Modules       *services.ModuleService
	Assessments   *services.AssessmentService
	Notifications *services.NotificationService
	Enrollments   *services.EnrollmentService
	Projects      *services.ProjectService
	Dashboard     *services.DashboardService
	Extraction    *extraction.Service
}

// NewServices wires every service over db. redisCache may be nil; extraction
// previews then stay in process memory.
func NewServices(db *gorm.DB, redisCache *cache.RedisCache, extractionConfig extraction.Config) *Services {
	notifications := services.NewNotificationService(db)
	employees := services.NewEmployeeService(db)
	courses := services.NewCourseService(db)
	enrollments := services.NewEnrollmentService(db, notifications)
	projects := services.NewProjectService(db, notifications)

	return &Services{
		Roles:         services.NewRoleService(db),
		Employees:     employees,
		Courses:       courses,
		Modules:       services.NewModuleService(db),
		Assessments:   services.NewAssessmentService(db),
		Notifications: notifications,
		Enrollments:   enrollments,
		Projects:      projects,
		Dashboard:     services.NewDashboardService(db, employees, enrollments, projects),
		Extraction: extraction.NewService(
			courses,
			extraction.NewExtractor(extractionConfig),
			extraction.NewLoader(extractionConfig.Timeout),
			extraction.NewPreviewStore(redisCache, PreviewTTL),
			extraction.NewSaver(extraction.NewGormModuleWriter(db)),
		),
	}
}
