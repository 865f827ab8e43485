package model

import (
	"time"

	"gorm.io/datatypes"
)

// Course is a unit of training made of ordered modules and assessments
type Course struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	CourseName         string                      `gorm:"type:varchar(255);not null" json:"course_name"`
	CourseDescription  string                      `gorm:"type:text" json:"course_description"`
	CourseType         string                      `gorm:"type:varchar(50)" json:"course_type"`
	DifficultyLevel    string                      `gorm:"type:varchar(50)" json:"difficulty_level"`
	IsMandatory        bool                        `gorm:"default:false" json:"is_mandatory"`
	TargetRole         string                      `gorm:"type:varchar(50);index" json:"target_role"`
	LearningObjectives string                      `gorm:"type:text" json:"learning_objectives"`
	Prerequisites      string                      `gorm:"type:text" json:"prerequisites"`
	Skills             datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"skills"`
	DurationHours      int                         `gorm:"default:0" json:"duration_hours"`
	InstructorID       *uint                       `gorm:"index" json:"instructor_id"`
	CreatedBy          *uint                       `gorm:"index" json:"created_by"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`

	// Relationships
	Instructor *Profile             `gorm:"foreignKey:InstructorID;constraint:OnDelete:SET NULL" json:"instructor,omitempty"`
	Modules    []Module             `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
	Templates  []AssessmentTemplate `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"assessments,omitempty"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}
