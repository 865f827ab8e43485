package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records a privileged mutation (employee, role and promotion changes)
type AuditLog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ActorID     uint           `gorm:"not null;index" json:"actor_id"`
	ActorRole   string         `gorm:"type:varchar(50)" json:"actor_role"`
	Action      string         `gorm:"type:varchar(100);not null" json:"action"` // e.g. "employee_update", "role_create"
	Resource    string         `gorm:"type:varchar(100);index" json:"resource"`
	ResourceID  uint           `json:"resource_id"`
	NewValue    datatypes.JSON `gorm:"type:jsonb" json:"new_value"`
	StatusCode  int            `json:"status_code"`
	IPAddress   string         `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent   string         `gorm:"type:text" json:"user_agent"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
