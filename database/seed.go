package database

import (
	"errors"
	"fmt"
	"os"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/auth"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var roleDescriptions = map[access.Role]string{
	access.Trainee:    "New employee working through onboarding courses and projects",
	access.TeamLead:   "Manages a team, assigns projects and evaluates submissions",
	access.HR:         "Manages employees, courses and enrollments across the organisation",
	access.Management: "Organisation-wide visibility and role administration",
}

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Info("[SEED] Starting database seeding...")

	if err := s.SeedRoles(); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	if err := s.SeedHRAdmin(os.Getenv("HR_ADMIN_EMAIL"), os.Getenv("HR_ADMIN_PASSWORD")); err != nil {
		return fmt.Errorf("failed to seed HR admin: %w", err)
	}

	log.Info("[SEED] Database seeding completed")
	return nil
}

// SeedRoles inserts the fixed role set; existing rows are left untouched
func (s *Seeder) SeedRoles() error {
	roles := make([]model.Role, 0, len(access.AllRoles))
	for _, r := range access.AllRoles {
		roles = append(roles, model.Role{Name: r.String(), Description: roleDescriptions[r]})
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&roles).Error
}

// SeedHRAdmin creates the first HR account when none exists
func (s *Seeder) SeedHRAdmin(email, password string) error {
	var hrRole model.Role
	if err := s.db.Where("name = ?", access.HRName).First(&hrRole).Error; err != nil {
		return fmt.Errorf("HR role missing: %w", err)
	}

	var count int64
	if err := s.db.Model(&model.Profile{}).Where("role_id = ?", hrRole.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("[SEED] HR account already exists, skipping")
		return nil
	}

	if email == "" || password == "" {
		log.Warn("[SEED] HR_ADMIN_EMAIL and HR_ADMIN_PASSWORD not set, skipping HR account creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.Profile{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    "HR",
		LastName:     "Administrator",
		Department:   "Human Resources",
		Designation:  "HR Administrator",
		Status:       model.EmployeeStatusActive,
		RoleID:       hrRole.ID,
	}

	if err := s.db.Create(admin).Error; err != nil {
		if errors.Is(MapError(err), ErrDuplicate) {
			return fmt.Errorf("profile %s exists with another role", email)
		}
		return err
	}

	log.Infof("[SEED] Created HR account: %s", admin.Email)
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}
