package model

import (
	"strings"
	"time"

	"github.com/dabhanushali/enacton-training/utils/access"
)

// EmployeeStatus is the employment state of a profile
type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "Active"
	EmployeeStatusOnLeave  EmployeeStatus = "On Leave"
	EmployeeStatusInactive EmployeeStatus = "Inactive"
)

// Valid reports whether s is a known status
func (s EmployeeStatus) Valid() bool {
	switch s {
	case EmployeeStatusActive, EmployeeStatusOnLeave, EmployeeStatusInactive:
		return true
	}
	return false
}

// Profile is an employee account. Manager references are one level deep.
type Profile struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Email         string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"type:varchar(255);not null" json:"-"`
	FirstName     string         `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName      string         `gorm:"type:varchar(100)" json:"last_name"`
	EmployeeCode  *string        `gorm:"type:varchar(50);uniqueIndex" json:"employee_code"`
	Department    string         `gorm:"type:varchar(100);index" json:"department"`
	Designation   string         `gorm:"type:varchar(100)" json:"designation"`
	Phone         string         `gorm:"type:varchar(30)" json:"phone"`
	DateOfJoining *time.Time     `gorm:"type:date" json:"date_of_joining"`
	Status        EmployeeStatus `gorm:"type:varchar(20);not null;default:'Active';index" json:"status"`
	RoleID        uint           `gorm:"not null;index" json:"role_id"`
	ManagerID     *uint          `gorm:"index" json:"manager_id"`
	TokenVersion  int            `gorm:"default:0;not null" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Relationships
	Role    Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"role"`
	Manager *Profile `gorm:"foreignKey:ManagerID;constraint:OnDelete:SET NULL" json:"manager,omitempty"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// FullName joins first and last name
func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// AccessRole returns the typed role; Role must be preloaded
func (p Profile) AccessRole() (access.Role, error) {
	return p.Role.Access()
}
