package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"gorm.io/gorm"
)

// RoleService reads and maintains the fixed role rows
type RoleService struct {
	roles *database.Repository[model.Role]
}

// NewRoleService creates a new role service
func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{roles: database.NewRepository[model.Role](db)}
}

// List returns every role, lowest rank first
func (s *RoleService) List(ctx context.Context) ([]model.Role, error) {
	rows, err := s.roles.All(ctx, database.Query{}.OrderBy("id ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return rows, nil
}

// GetByName resolves a role name (aliases accepted) to its row
func (s *RoleService) GetByName(ctx context.Context, name string) (*model.Role, error) {
	role, err := access.ParseRole(name)
	if err != nil {
		return nil, invalid("role", fmt.Sprintf("Unknown role %q", name))
	}
	row, err := s.roles.First(ctx, database.Query{}.Where("name", role.String()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("role %q is not provisioned: %w", role, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load role: %w", err)
	}
	return row, nil
}

// Create provisions one of the fixed roles. Arbitrary role names are rejected.
func (s *RoleService) Create(ctx context.Context, name, description string) (*model.Role, error) {
	role, err := access.ParseRole(name)
	if err != nil {
		return nil, invalid("name", "Role must be one of: Trainee, Team Lead, HR, Management")
	}
	row := model.Role{Name: role.String(), Description: strings.TrimSpace(description)}
	if err := s.roles.Create(ctx, &row); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, fmt.Errorf("%w: role %q already exists", ErrDuplicate, role)
		}
		return nil, fmt.Errorf("failed to create role: %w", err)
	}
	return &row, nil
}

// UpdateDescription changes a role's description; names are immutable
func (s *RoleService) UpdateDescription(ctx context.Context, id uint, description string) (*model.Role, error) {
	if err := s.roles.Updates(ctx, id, map[string]interface{}{"description": strings.TrimSpace(description)}); err != nil {
		return nil, fmt.Errorf("role %d: %w", id, err)
	}
	return s.roles.Get(ctx, id)
}
