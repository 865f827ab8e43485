package model

import (
	"time"

	"github.com/dabhanushali/enacton-training/utils/access"
)

// Role is a permission tier. Name is always one of the access role names.
type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for Role
func (Role) TableName() string {
	return "roles"
}

// Access returns the typed role for this row
func (r Role) Access() (access.Role, error) {
	return access.ParseRole(r.Name)
}
