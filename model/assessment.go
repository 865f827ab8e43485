package model

import "time"

// AssessmentType is the kind of assessment template
type AssessmentType string

const (
	AssessmentTypeQuiz       AssessmentType = "quiz"
	AssessmentTypeAssignment AssessmentType = "assignment"
	AssessmentTypeProject    AssessmentType = "project"
)

// Valid reports whether t is a known assessment type
func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentTypeQuiz, AssessmentTypeAssignment, AssessmentTypeProject:
		return true
	}
	return false
}

// QuestionType is the answer format of a question
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeEssay          QuestionType = "essay"
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer, QuestionTypeEssay:
		return true
	}
	return false
}

// HasOptions reports whether questions of this type carry an option set
func (t QuestionType) HasOptions() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// AssessmentTemplate is a quiz, assignment or project definition on a course
type AssessmentTemplate struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	CourseID         uint           `gorm:"not null;index" json:"course_id"`
	Title            string         `gorm:"type:varchar(255);not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	AssessmentType   AssessmentType `gorm:"type:varchar(20);not null" json:"assessment_type"`
	PassingScore     int            `gorm:"default:70" json:"passing_score"`
	TimeLimitMinutes int            `gorm:"default:0" json:"time_limit_minutes"`
	MaxAttempts      int            `gorm:"default:1" json:"max_attempts"`
	Instructions     string         `gorm:"type:text" json:"instructions"`
	IsMandatory      bool           `gorm:"default:false" json:"is_mandatory"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Questions []AssessmentQuestion `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

// TableName specifies the table name for AssessmentTemplate
func (AssessmentTemplate) TableName() string {
	return "assessment_templates"
}

// AssessmentQuestion belongs to a template
type AssessmentQuestion struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	TemplateID    uint         `gorm:"not null;index" json:"template_id"`
	QuestionText  string       `gorm:"type:text;not null" json:"question_text"`
	QuestionType  QuestionType `gorm:"type:varchar(30);not null" json:"question_type"`
	Points        int          `gorm:"default:1" json:"points"`
	QuestionOrder int          `gorm:"default:0" json:"question_order"`
	Explanation   string       `gorm:"type:text" json:"explanation,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	Options []QuestionOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

// TableName specifies the table name for AssessmentQuestion
func (AssessmentQuestion) TableName() string {
	return "assessment_questions"
}

// QuestionOption is one choice of a multiple-choice or true/false question
type QuestionOption struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	QuestionID  uint      `gorm:"not null;index" json:"question_id"`
	OptionText  string    `gorm:"type:text;not null" json:"option_text"`
	IsCorrect   bool      `gorm:"default:false" json:"is_correct,omitempty"`
	OptionOrder int       `gorm:"default:0" json:"option_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for QuestionOption
func (QuestionOption) TableName() string {
	return "question_options"
}
