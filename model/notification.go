package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationType represents the type/severity of notification
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// NotificationCategory represents the category of notification
type NotificationCategory string

const (
	NotificationCategoryAssignment NotificationCategory = "project_assignment"
	NotificationCategoryEvaluation NotificationCategory = "project_evaluation"
	NotificationCategoryEnrollment NotificationCategory = "course_enrollment"
	NotificationCategoryOverdue    NotificationCategory = "assignment_overdue"
	NotificationCategoryGeneral    NotificationCategory = "general"
)

// NotificationMetadata links a notification to the rows it is about
type NotificationMetadata struct {
	ProjectID    uint `json:"project_id,omitempty"`
	AssignmentID uint `json:"assignment_id,omitempty"`
	SubmissionID uint `json:"submission_id,omitempty"`
	CourseID     uint `json:"course_id,omitempty"`
}

// UserNotification represents a notification for an employee
type UserNotification struct {
	ID        uint                                     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time                                `json:"created_at"`
	UpdatedAt time.Time                                `json:"updated_at"`
	UserID    uint                                     `gorm:"index;not null" json:"user_id"`
	Type      NotificationType                         `gorm:"type:varchar(20);not null" json:"type"`
	Category  NotificationCategory                     `gorm:"type:varchar(30);not null" json:"category"`
	Title     string                                   `gorm:"type:varchar(255);not null" json:"title"`
	Message   string                                   `gorm:"type:text" json:"message"`
	Read      bool                                     `gorm:"default:false;index" json:"read"`
	Metadata  datatypes.JSONType[NotificationMetadata] `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	User Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for UserNotification
func (UserNotification) TableName() string {
	return "user_notifications"
}
