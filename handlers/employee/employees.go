package employee

import (
	"fmt"
	"time"

	"github.com/dabhanushali/enacton-training/handlers"
	"github.com/dabhanushali/enacton-training/services"
	"github.com/dabhanushali/enacton-training/utils/middleware"
	"github.com/dabhanushali/enacton-training/utils/query"
	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/dabhanushali/enacton-training/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// EmployeeHandler serves the employee directory
type EmployeeHandler struct {
	employees *services.EmployeeService
	validator *validation.Validator
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(employees *services.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{
		employees: employees,
		validator: validation.NewValidator(),
	}
}

// CreateEmployeeRequest represents the request body for adding an employee
type CreateEmployeeRequest struct {
	Email         string     `json:"email" validate:"required,email"`
	Password      string     `json:"password" validate:"required,min=8"`
	FirstName     string     `json:"first_name" validate:"required,notblank,max=100"`
	LastName      string     `json:"last_name" validate:"omitempty,max=100"`
	EmployeeCode  string     `json:"employee_code" validate:"omitempty,max=50"`
	Department    string     `json:"department" validate:"omitempty,max=100"`
	Designation   string     `json:"designation" validate:"omitempty,max=100"`
	Phone         string     `json:"phone" validate:"omitempty,max=30"`
	DateOfJoining *time.Time `json:"date_of_joining"`
	Status        string     `json:"status" validate:"omitempty,employee_status"`
	Role          string     `json:"role" validate:"omitempty,role"`
	ManagerID     *uint      `json:"manager_id" validate:"omitempty,min=1"`
}

// UpdateEmployeeRequest represents the request body for updating an employee.
// Send "clear_manager": true to remove the manager.
type UpdateEmployeeRequest struct {
	FirstName     *string    `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName      *string    `json:"last_name" validate:"omitempty,max=100"`
	EmployeeCode  *string    `json:"employee_code" validate:"omitempty,max=50"`
	Department    *string    `json:"department" validate:"omitempty,max=100"`
	Designation   *string    `json:"designation" validate:"omitempty,max=100"`
	Phone         *string    `json:"phone" validate:"omitempty,max=30"`
	DateOfJoining *time.Time `json:"date_of_joining"`
	Status        *string    `json:"status" validate:"omitempty,employee_status"`
	Role          *string    `json:"role" validate:"omitempty,role"`
	ManagerID     *uint      `json:"manager_id" validate:"omitempty,min=1"`
	ClearManager  bool       `json:"clear_manager"`
}

// PromoteRequest lists the employees who will report to the promoted one
type PromoteRequest struct {
	ReportIDs []uint `json:"report_ids" validate:"dive,min=1"`
}

func filterFromQuery(c *fiber.Ctx) (services.EmployeeFilter, error) {
	params := query.ParseListParams(c)
	managerID, err := query.OptionalUint(c, "manager_id")
	if err != nil {
		return services.EmployeeFilter{}, err
	}
	return services.EmployeeFilter{
		Department: c.Query("department"),
		Status:     c.Query("status"),
		Role:       c.Query("role"),
		ManagerID:  managerID,
		Search:     params.Search,
		Page:       params.Page,
		Limit:      params.Limit,
	}, nil
}

// ListEmployees handles GET /api/v1/employees
func (h *EmployeeHandler) ListEmployees(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	f, err := filterFromQuery(c)
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}

	employees, total, err := h.employees.List(c.UserContext(), sess, f)
	if err != nil {
		return handlers.Fail(c, err, "Employees")
	}

	return response.Paginated(c, employees, response.CalculatePagination(f.Page, f.Limit, total))
}

// GetEmployee handles GET /api/v1/employees/:employeeId
func (h *EmployeeHandler) GetEmployee(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "employeeId")
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}

	employee, err := h.employees.Get(c.UserContext(), sess, id)
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}
	return response.Success(c, employee)
}

// CreateEmployee handles POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *fiber.Ctx) error {
	var req CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	employee, err := h.employees.Create(c.UserContext(), services.CreateEmployeeInput{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     validation.SanitizeString(req.FirstName),
		LastName:      validation.SanitizeString(req.LastName),
		EmployeeCode:  validation.SanitizeString(req.EmployeeCode),
		Department:    validation.SanitizeString(req.Department),
		Designation:   validation.SanitizeString(req.Designation),
		Phone:         validation.SanitizeString(req.Phone),
		DateOfJoining: req.DateOfJoining,
		Status:        req.Status,
		Role:          req.Role,
		ManagerID:     req.ManagerID,
	})
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}
	return response.Created(c, employee)
}

// UpdateEmployee handles PUT /api/v1/employees/:employeeId
func (h *EmployeeHandler) UpdateEmployee(c *fiber.Ctx) error {
	id, err := query.ID(c, "employeeId")
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}

	var req UpdateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	employee, err := h.employees.Update(c.UserContext(), id, services.UpdateEmployeeInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		EmployeeCode:  req.EmployeeCode,
		Department:    req.Department,
		Designation:   req.Designation,
		Phone:         req.Phone,
		DateOfJoining: req.DateOfJoining,
		Status:        req.Status,
		Role:          req.Role,
		ManagerID:     req.ManagerID,
		ClearManager:  req.ClearManager,
	})
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}
	return response.SuccessWithMessage(c, "Employee updated successfully", employee)
}

// DeleteEmployee handles DELETE /api/v1/employees/:employeeId
func (h *EmployeeHandler) DeleteEmployee(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "employeeId")
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}

	if err := h.employees.Delete(c.UserContext(), sess, id); err != nil {
		return handlers.Fail(c, err, "Employee")
	}
	return response.SuccessWithMessage(c, "Employee deleted successfully", nil)
}

// PromoteEmployee handles POST /api/v1/employees/:employeeId/promote
func (h *EmployeeHandler) PromoteEmployee(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := query.ID(c, "employeeId")
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}

	var req PromoteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	employee, err := h.employees.Promote(c.UserContext(), sess, id, services.PromoteInput{ReportIDs: req.ReportIDs})
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}
	return response.SuccessWithMessage(c, "Employee promoted to Team Lead", employee)
}

// ExportEmployees handles GET /api/v1/employees/export.csv
func (h *EmployeeHandler) ExportEmployees(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	f, err := filterFromQuery(c)
	if err != nil {
		return handlers.Fail(c, err, "Employee")
	}

	employees, err := h.employees.Export(c.UserContext(), sess, f)
	if err != nil {
		return handlers.Fail(c, err, "Employees")
	}

	filename := fmt.Sprintf("employees-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return services.WriteEmployeesCSV(c.Response().BodyWriter(), employees)
}
