package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/services/saga"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

// EmployeeService manages the employee directory
type EmployeeService struct {
	db        *gorm.DB
	profiles  *database.Repository[model.Profile]
	roles     *RoleService
	blacklist *auth.BlacklistService
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(db *gorm.DB) *EmployeeService {
	return &EmployeeService{
		db:        db,
		profiles:  database.NewRepository[model.Profile](db),
		roles:     NewRoleService(db),
		blacklist: auth.NewBlacklistService(db),
	}
}

// EmployeeFilter narrows the directory listing
type EmployeeFilter struct {
	Department string
	Status     string
	Role       string
	ManagerID  *uint
	Search     string
	Page       int
	Limit      int
}

// CreateEmployeeInput is a new directory entry
type CreateEmployeeInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	EmployeeCode  string
	Department    string
	Designation   string
	Phone         string
	DateOfJoining *time.Time
	Status        string
	Role          string
	ManagerID     *uint
}

// UpdateEmployeeInput carries only the fields being changed
type UpdateEmployeeInput struct {
	FirstName     *string
	LastName      *string
	EmployeeCode  *string
	Department    *string
	Designation   *string
	Phone         *string
	DateOfJoining *time.Time
	Status        *string
	Role          *string
	ManagerID     *uint
	ClearManager  bool
}

// visibleTo scopes profile rows: team leads see themselves and their reports,
// trainees see themselves and their manager.
func visibleTo(sess *session.Session) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case sess == nil:
			return db.Where("1 = 0")
		case sess.SeesEverything():
			return db
		case sess.Can(access.ViewTeam):
			return db.Where("(profiles.id = ? OR profiles.manager_id = ?)", sess.ProfileID, sess.ProfileID)
		case sess.ManagerID != nil:
			return db.Where("profiles.id IN ?", []uint{sess.ProfileID, *sess.ManagerID})
		default:
			return db.Where("profiles.id = ?", sess.ProfileID)
		}
	}
}

func (s *EmployeeService) listQuery(sess *session.Session, f EmployeeFilter) database.Query {
	q := database.Query{}.
		Scope(visibleTo(sess)).
		With("Role", "Manager").
		OrderBy("profiles.first_name ASC, profiles.last_name ASC, profiles.id ASC")

	if f.Department != "" {
		q = q.Where("department", f.Department)
	}
	if f.Status != "" {
		q = q.Where("status", f.Status)
	}
	if f.ManagerID != nil {
		q = q.Where("manager_id", *f.ManagerID)
	}
	if f.Role != "" {
		role := f.Role
		q = q.Scope(func(db *gorm.DB) *gorm.DB {
			return db.Where("profiles.role_id IN (SELECT id FROM roles WHERE name = ?)", role)
		})
	}
	if f.Search != "" {
		q = q.SearchIn(f.Search, "first_name", "last_name", "email", "employee_code")
	}
	return q
}

// List returns one page of the directory as sess may see it
func (s *EmployeeService) List(ctx context.Context, sess *session.Session, f EmployeeFilter) ([]model.Profile, int64, error) {
	if sess == nil {
		return nil, 0, ErrForbidden
	}
	items, total, err := s.profiles.List(ctx, s.listQuery(sess, f).Paginate(f.Page, f.Limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return items, total, nil
}

// Get loads one employee if sess may see it
func (s *EmployeeService) Get(ctx context.Context, sess *session.Session, id uint) (*model.Profile, error) {
	p, err := s.profiles.First(ctx, database.Query{}.Where("id", id).Scope(visibleTo(sess)).With("Role", "Manager"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("employee %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load employee: %w", err)
	}
	return p, nil
}

// Team returns the direct reports of managerID with their roles
func (s *EmployeeService) Team(ctx context.Context, managerID uint) ([]model.Profile, error) {
	items, err := s.profiles.All(ctx, database.Query{}.Where("manager_id", managerID).With("Role").OrderBy("first_name ASC, id ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to load team: %w", err)
	}
	return items, nil
}

// ValidateManager checks that managerID can be the manager of employeeID.
// employeeID is zero for an employee that does not exist yet.
func (s *EmployeeService) ValidateManager(ctx context.Context, employeeID, managerID uint) error {
	if employeeID != 0 && employeeID == managerID {
		return invalid("manager_id", "An employee cannot be their own manager")
	}

	manager, err := s.profiles.Get(ctx, managerID, "Role")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("manager_id", "Manager does not exist")
		}
		return fmt.Errorf("failed to load manager: %w", err)
	}

	role, err := manager.AccessRole()
	if err != nil || !access.CanManage(role) {
		return invalid("manager_id", "Manager must be a Team Lead or higher")
	}
	return nil
}

// Create adds an employee
func (s *EmployeeService) Create(ctx context.Context, in CreateEmployeeInput) (*model.Profile, error) {
	roleName := in.Role
	if roleName == "" {
		roleName = access.TraineeName
	}
	role, err := s.roles.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	if in.ManagerID != nil {
		if err := s.ValidateManager(ctx, 0, *in.ManagerID); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordNoLetter) {
			return nil, invalid("password", err.Error())
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	status := model.EmployeeStatus(in.Status)
	if status == "" {
		status = model.EmployeeStatusActive
	}

	profile := model.Profile{
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:  hash,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		EmployeeCode:  optionalString(in.EmployeeCode),
		Department:    in.Department,
		Designation:   in.Designation,
		Phone:         in.Phone,
		DateOfJoining: in.DateOfJoining,
		Status:        status,
		RoleID:        role.ID,
		ManagerID:     in.ManagerID,
	}

	if err := s.profiles.Create(ctx, &profile); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, fmt.Errorf("%w: email or employee code already in use", ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	return s.profiles.Get(ctx, profile.ID, "Role", "Manager")
}

// Update applies changes to an employee. A role change or deactivation
// invalidates the employee's tokens.
func (s *EmployeeService) Update(ctx context.Context, id uint, in UpdateEmployeeInput) (*model.Profile, error) {
	current, err := s.profiles.Get(ctx, id, "Role")
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}

	updates := map[string]interface{}{}
	revoke := false

	setString := func(column string, v *string) {
		if v != nil {
			updates[column] = strings.TrimSpace(*v)
		}
	}
	setString("first_name", in.FirstName)
	setString("last_name", in.LastName)
	setString("department", in.Department)
	setString("designation", in.Designation)
	setString("phone", in.Phone)

	if in.EmployeeCode != nil {
		updates["employee_code"] = optionalString(*in.EmployeeCode)
	}
	if in.DateOfJoining != nil {
		updates["date_of_joining"] = in.DateOfJoining
	}
	if in.Status != nil {
		status := model.EmployeeStatus(*in.Status)
		if !status.Valid() {
			return nil, invalid("status", "Unknown employee status")
		}
		updates["status"] = status
		if status == model.EmployeeStatusInactive && current.Status != status {
			revoke = true
		}
	}
	if in.Role != nil {
		role, err := s.roles.GetByName(ctx, *in.Role)
		if err != nil {
			return nil, err
		}
		if role.ID != current.RoleID {
			if err := s.checkDemotion(ctx, id, role); err != nil {
				return nil, err
			}
			updates["role_id"] = role.ID
			revoke = true
		}
	}

	switch {
	case in.ClearManager:
		updates["manager_id"] = nil
	case in.ManagerID != nil:
		if err := s.ValidateManager(ctx, id, *in.ManagerID); err != nil {
			return nil, err
		}
		updates["manager_id"] = *in.ManagerID
	}

	if len(updates) > 0 {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.profiles.WithTx(tx).Updates(ctx, id, updates); err != nil {
				return err
			}
			if revoke {
				return s.blacklist.WithTx(tx).RevokeAllProfileTokens(ctx, id)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				return nil, fmt.Errorf("%w: employee code already in use", ErrDuplicate)
			}
			return nil, fmt.Errorf("failed to update employee: %w", err)
		}
	}

	return s.profiles.Get(ctx, id, "Role", "Manager")
}

// checkDemotion refuses to move id below Team Lead while others report to them
func (s *EmployeeService) checkDemotion(ctx context.Context, id uint, to *model.Role) error {
	next, err := access.ParseRole(to.Name)
	if err != nil {
		return invalid("role", "Unknown role")
	}
	if access.CanManage(next) {
		return nil
	}
	reports, err := s.profiles.Count(ctx, database.Query{}.Where("manager_id", id))
	if err != nil {
		return fmt.Errorf("failed to count reports: %w", err)
	}
	if reports > 0 {
		return fmt.Errorf("%w: employee still manages %d report(s); reassign them first", ErrConflict, reports)
	}
	return nil
}

// Delete removes an employee. Callers cannot delete themselves.
func (s *EmployeeService) Delete(ctx context.Context, sess *session.Session, id uint) error {
	if sess.IsSelf(id) {
		return fmt.Errorf("%w: you cannot delete your own account", ErrConflict)
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return fmt.Errorf("%w: employee still owns projects or evaluations", ErrConflict)
		}
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	return nil
}

// PromoteInput names the employees who will report to the promoted manager
type PromoteInput struct {
	ReportIDs []uint
}

// Promote makes an employee a Team Lead and moves reports under them. The
// role change and each reassignment are separate writes run as a saga: if
// any reassignment fails, earlier reassignments and the role change are
// undone.
func (s *EmployeeService) Promote(ctx context.Context, sess *session.Session, id uint, in PromoteInput) (*model.Profile, error) {
	if !sess.Can(access.PromoteManager) {
		return nil, ErrForbidden
	}

	employee, err := s.profiles.Get(ctx, id, "Role")
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", id, err)
	}
	current, err := employee.AccessRole()
	if err != nil {
		return nil, fmt.Errorf("employee %d has an unknown role: %w", id, err)
	}

	teamLead, err := s.roles.GetByName(ctx, access.TeamLeadName)
	if err != nil {
		return nil, err
	}

	reports := make([]model.Profile, 0, len(in.ReportIDs))
	for _, rid := range in.ReportIDs {
		if rid == id {
			return nil, invalid("report_ids", "An employee cannot report to themselves")
		}
		r, err := s.profiles.Get(ctx, rid)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, invalid("report_ids", fmt.Sprintf("Employee %d does not exist", rid))
			}
			return nil, fmt.Errorf("failed to load report %d: %w", rid, err)
		}
		reports = append(reports, *r)
	}

	tx := saga.New(fmt.Sprintf("promote employee %d", id))

	// only raise the role; promoting an HR user would be a demotion
	if !current.AtLeast(access.TeamLead) {
		previousRoleID := employee.RoleID
		tx.Step("set role",
			func(ctx context.Context) error {
				return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
					if err := s.profiles.WithTx(tx).Updates(ctx, id, map[string]interface{}{"role_id": teamLead.ID}); err != nil {
						return err
					}
					return s.blacklist.WithTx(tx).RevokeAllProfileTokens(ctx, id)
				})
			},
			func(ctx context.Context) error {
				return s.profiles.Updates(ctx, id, map[string]interface{}{"role_id": previousRoleID})
			},
		)
	}

	for _, r := range reports {
		report := r
		tx.Step(fmt.Sprintf("reassign %d", report.ID),
			func(ctx context.Context) error {
				return s.profiles.Updates(ctx, report.ID, map[string]interface{}{"manager_id": id})
			},
			func(ctx context.Context) error {
				return s.profiles.Updates(ctx, report.ID, map[string]interface{}{"manager_id": report.ManagerID})
			},
		)
	}

	if err := tx.Run(ctx); err != nil {
		return nil, fmt.Errorf("failed to promote employee: %w", err)
	}

	log.Infof("[EMPLOYEE] profile %d promoted to %s by %d with %d report(s)", id, access.TeamLeadName, sess.ProfileID, len(reports))
	return s.profiles.Get(ctx, id, "Role", "Manager")
}

// Export returns every employee matching f that sess may see, unpaged
func (s *EmployeeService) Export(ctx context.Context, sess *session.Session, f EmployeeFilter) ([]model.Profile, error) {
	if !sess.Can(access.ExportEmployees) {
		return nil, ErrForbidden
	}
	items, err := s.profiles.All(ctx, s.listQuery(sess, f))
	if err != nil {
		return nil, fmt.Errorf("failed to export employees: %w", err)
	}
	return items, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
