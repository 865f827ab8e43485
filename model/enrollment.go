package model

import "time"

// EnrollmentStatus tracks whether an employee finished a course
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Enrollment links an employee to a course
type Enrollment struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	EmployeeID     uint             `gorm:"not null;uniqueIndex:idx_enrollment_employee_course" json:"employee_id"`
	CourseID       uint             `gorm:"not null;uniqueIndex:idx_enrollment_employee_course;index" json:"course_id"`
	Status         EnrollmentStatus `gorm:"type:varchar(20);not null;default:'enrolled'" json:"status"`
	EnrolledAt     time.Time        `gorm:"not null" json:"enrolled_at"`
	CompletionDate *time.Time       `json:"completion_date"`
	EnrolledBy     *uint            `json:"enrolled_by"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	Employee *Profile `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"employee,omitempty"`
	Course   *Course  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for Enrollment
func (Enrollment) TableName() string {
	return "course_enrollments"
}

// ModuleProgress records that an employee finished a module
type ModuleProgress struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EmployeeID  uint      `gorm:"not null;uniqueIndex:idx_progress_employee_module" json:"employee_id"`
	ModuleID    uint      `gorm:"not null;uniqueIndex:idx_progress_employee_module;index" json:"module_id"`
	CompletedAt time.Time `gorm:"not null" json:"completed_at"`

	Employee *Profile `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE" json:"-"`
	Module   *Module  `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for ModuleProgress
func (ModuleProgress) TableName() string {
	return "module_progress"
}
