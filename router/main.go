package router

import (
	"time"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/handlers"
	auth_handlers "github.com/dabhanushali/enacton-training/handlers/auth"
	course_handlers "github.com/dabhanushali/enacton-training/handlers/course"
	dashboard_handlers "github.com/dabhanushali/enacton-training/handlers/dashboard"
	employee_handlers "github.com/dabhanushali/enacton-training/handlers/employee"
	enrollment_handlers "github.com/dabhanushali/enacton-training/handlers/enrollment"
	extraction_handlers "github.com/dabhanushali/enacton-training/handlers/extraction"
	notification_handlers "github.com/dabhanushali/enacton-training/handlers/notification"
	project_handlers "github.com/dabhanushali/enacton-training/handlers/project"
	"github.com/dabhanushali/enacton-training/services/objectstore"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/dabhanushali/enacton-training/utils/cache"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/gofiber/fiber/v2"
)

// Dependencies is everything the routes need from bootstrap. Redis and
// Objects may be nil.
type Dependencies struct {
	Store          database.Storage
	Redis          *cache.RedisCache
	Objects        *objectstore.Store
	JWT            *auth.JWTManager
	Services       *Services
	AllowedOrigins string
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	db := deps.Store.GetDB()
	svc := deps.Services

	// Initialize brute force protection
	var bruteForceProtection *middleware.BruteForceProtection
	if deps.Redis != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(deps.Redis)
	}

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(deps.JWT, db)
	required := authMiddleware.Required()
	can := middleware.RequirePermission

	authHandler := auth_handlers.NewAuthHandler(db, svc.Employees, deps.JWT, bruteForceProtection)
	employeeHandler := employee_handlers.NewEmployeeHandler(svc.Employees)
	roleHandler := employee_handlers.NewRoleHandler(svc.Roles)
	courseHandler := course_handlers.NewCourseHandler(svc.Courses)
	moduleHandler := course_handlers.NewModuleHandler(svc.Courses, svc.Modules, svc.Enrollments, deps.Objects)
	assessmentHandler := course_handlers.NewAssessmentHandler(svc.Courses, svc.Assessments)
	extractionHandler := extraction_handlers.NewExtractionHandler(svc.Extraction)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(svc.Enrollments)
	projectHandler := project_handlers.NewProjectHandler(svc.Projects, deps.Objects)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(svc.Dashboard)
	notificationHandler := notification_handlers.NewNotificationHandler(svc.Notifications)

	// Apply security middleware
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    deps.AllowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HealthCheck(db, deps.Redis))

	// API v1 group
	api := app.Group("/api/v1")

	// ==================== Auth & Profile ====================

	authGroup := api.Group("/auth")
	// open while no profile exists, HR-only afterwards
	authGroup.Post("/register", authMiddleware.Optional(), authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/logout", required, authHandler.Logout)
	authGroup.Post("/change-password", required, authHandler.ChangePassword)

	profileGroup := api.Group("/profile", required)
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// ==================== Employees & Roles ====================

	employees := api.Group("/employees", required)
	employees.Get("/", employeeHandler.ListEmployees) // scoped by role in the service
	employees.Get("/export.csv", can(access.ExportEmployees), employeeHandler.ExportEmployees)
	employees.Get("/:employeeId", employeeHandler.GetEmployee)
	employees.Post("/", can(access.ManageEmployees), middleware.AuditLog(db, "employee_create", "employees"), employeeHandler.CreateEmployee)
	employees.Put("/:employeeId", can(access.ManageEmployees), middleware.AuditLog(db, "employee_update", "employees"), employeeHandler.UpdateEmployee)
	employees.Delete("/:employeeId", can(access.ManageEmployees), middleware.AuditLog(db, "employee_delete", "employees"), employeeHandler.DeleteEmployee)
	employees.Post("/:employeeId/promote", can(access.PromoteManager), middleware.AuditLog(db, "employee_promote", "employees"), employeeHandler.PromoteEmployee)

	roles := api.Group("/roles", required)
	roles.Get("/", roleHandler.ListRoles)
	roles.Post("/", can(access.ManageRoles), middleware.AuditLog(db, "role_create", "roles"), roleHandler.CreateRole)
	roles.Put("/:id", can(access.ManageRoles), middleware.AuditLog(db, "role_update", "roles"), roleHandler.UpdateRole)

	// ==================== Courses, Modules & Assessments ====================

	courses := api.Group("/courses", required, can(access.ViewCourses))
	courses.Get("/", courseHandler.ListCourses)
	courses.Get("/:courseId", courseHandler.GetCourse)
	courses.Post("/", can(access.ManageCourses), courseHandler.CreateCourse)
	courses.Put("/:courseId", can(access.ManageCourses), courseHandler.UpdateCourse)
	courses.Delete("/:courseId", can(access.ManageCourses), courseHandler.DeleteCourse)

	courses.Get("/:courseId/modules", moduleHandler.ListModules)
	courses.Post("/:courseId/modules", can(access.ManageCourses), moduleHandler.CreateModule)
	courses.Put("/:courseId/modules/order", can(access.ManageCourses), moduleHandler.ReorderModules)

	courses.Get("/:courseId/assessments", assessmentHandler.ListAssessments)
	courses.Post("/:courseId/assessments", can(access.ManageCourses), assessmentHandler.CreateAssessment)

	courses.Post("/:courseId/extract", can(access.ExtractContent), extractionHandler.Extract)
	courses.Post("/:courseId/extract/:previewId/save", can(access.ExtractContent), extractionHandler.SavePreview)

	courses.Post("/:courseId/enrollments", enrollmentHandler.Enroll)

	modules := api.Group("/modules", required, can(access.ViewCourses))
	modules.Get("/:moduleId", moduleHandler.GetModule)
	modules.Get("/:moduleId/view", moduleHandler.ViewModule)
	modules.Post("/:moduleId/complete", moduleHandler.CompleteModule)
	modules.Put("/:moduleId", can(access.ManageCourses), moduleHandler.UpdateModule)
	modules.Delete("/:moduleId", can(access.ManageCourses), moduleHandler.DeleteModule)
	modules.Post("/:moduleId/file", can(access.ManageCourses), moduleHandler.UploadModuleFile)

	assessments := api.Group("/assessments", required, can(access.ViewCourses))
	assessments.Get("/:id", assessmentHandler.GetAssessment)
	assessments.Get("/:id/questions", assessmentHandler.ListQuestions)
	assessments.Put("/:id", can(access.ManageCourses), assessmentHandler.UpdateAssessment)
	assessments.Delete("/:id", can(access.ManageCourses), assessmentHandler.DeleteAssessment)
	assessments.Post("/:id/questions", can(access.ManageCourses), assessmentHandler.CreateQuestion)

	questions := api.Group("/questions", required, can(access.ManageCourses))
	questions.Put("/:id", assessmentHandler.UpdateQuestion)
	questions.Delete("/:id", assessmentHandler.DeleteQuestion)

	// ==================== Enrollments ====================

	enrollments := api.Group("/enrollments", required)
	enrollments.Get("/", enrollmentHandler.ListEnrollments)
	enrollments.Put("/:id/complete", enrollmentHandler.CompleteEnrollment)
	enrollments.Delete("/:id", can(access.EnrollOthers), enrollmentHandler.DeleteEnrollment)

	// ==================== Projects ====================

	projects := api.Group("/projects", required)
	projects.Get("/", projectHandler.ListProjects)
	projects.Get("/:id", projectHandler.GetProject)
	projects.Post("/", can(access.ManageProjects), projectHandler.CreateProject)
	projects.Put("/:id", can(access.ManageProjects), projectHandler.UpdateProject)
	projects.Delete("/:id", can(access.ManageProjects), projectHandler.DeleteProject)
	projects.Post("/:id/assignments", can(access.ManageProjects), projectHandler.AssignProject)

	assignments := api.Group("/assignments", required)
	assignments.Get("/", projectHandler.ListAssignments)
	assignments.Get("/:assignmentId", projectHandler.GetAssignment)
	assignments.Post("/:assignmentId/start", projectHandler.StartAssignment)
	assignments.Delete("/:assignmentId", can(access.ManageProjects), projectHandler.DeleteAssignment)
	assignments.Get("/:assignmentId/submissions", projectHandler.ListSubmissions)
	assignments.Post("/:assignmentId/submissions", can(access.SubmitWork), projectHandler.Submit)

	submissions := api.Group("/submissions", required)
	submissions.Get("/:submissionId/evaluation", projectHandler.GetEvaluation)
	submissions.Post("/:submissionId/evaluation", can(access.EvaluateSubmissions), projectHandler.Evaluate)

	// ==================== Dashboard & Notifications ====================

	api.Get("/dashboard", required, dashboardHandler.GetDashboard)

	notifications := api.Group("/notifications", required)
	notifications.Get("/", notificationHandler.GetNotifications)
	notifications.Get("/unread-count", notificationHandler.GetUnreadCount)
	notifications.Put("/read-all", notificationHandler.MarkAllAsRead)
	notifications.Put("/:id/read", notificationHandler.MarkAsRead)
}
