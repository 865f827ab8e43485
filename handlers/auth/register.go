package auth

import (
	"time"

	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/access"
	authutil "github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	employees            *services.EmployeeService
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, employees *services.EmployeeService, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		employees:            employees,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents an account registration request
type RegisterRequest struct {
	Email         string     `json:"email" validate:"required,email"`
	Password      string     `json:"password" validate:"required,min=8"`
	FirstName     string     `json:"first_name" validate:"required,notblank,max=100"`
	LastName      string     `json:"last_name" validate:"omitempty,max=100"`
	EmployeeCode  string     `json:"employee_code" validate:"omitempty,max=50"`
	Department    string     `json:"department" validate:"omitempty,max=100"`
	Designation   string     `json:"designation" validate:"omitempty,max=100"`
	Phone         string     `json:"phone" validate:"omitempty,max=30"`
	DateOfJoining *time.Time `json:"date_of_joining"`
	Role          string     `json:"role" validate:"omitempty,role"`
	ManagerID     *uint      `json:"manager_id" validate:"omitempty,min=1"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Profile *model.Profile `json:"profile"`
	authutil.TokenPair
}

// Register creates an account. The very first account bootstraps the
// system as HR; after that only employee managers may register others.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing int64
	if err := h.db.WithContext(c.UserContext()).Model(&model.Profile{}).Count(&existing).Error; err != nil {
		return response.InternalServerError(c, "Failed to check existing accounts")
	}

	bootstrap := existing == 0
	if bootstrap {
		req.Role = access.HRName
		req.ManagerID = nil
	} else {
		sess, ok := middleware.GetSession(c)
		if !ok {
			return response.Unauthorized(c, "Only HR can register new employees")
		}
		if !sess.Can(access.ManageEmployees) {
			return response.Forbidden(c, "Only HR can register new employees")
		}
	}

	profile, err := h.employees.Create(c.UserContext(), services.CreateEmployeeInput{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     validation.SanitizeString(req.FirstName),
		LastName:      validation.SanitizeString(req.LastName),
		EmployeeCode:  validation.SanitizeString(req.EmployeeCode),
		Department:    validation.SanitizeString(req.Department),
		Designation:   validation.SanitizeString(req.Designation),
		Phone:         validation.SanitizeString(req.Phone),
		DateOfJoining: req.DateOfJoining,
		Role:          req.Role,
		ManagerID:     req.ManagerID,
	})
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}

	if !bootstrap {
		// HR registering someone else does not log in as them
		return response.Created(c, profile)
	}

	log.Infof("[AUTH] bootstrap account %s created", profile.Email)
	pair, err := h.jwtManager.GeneratePair(profile.ID, profile.Email, profile.Role.Name, profile.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate tokens")
	}
	return response.Created(c, AuthResponse{Profile: profile, TokenPair: *pair})
}
