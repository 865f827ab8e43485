package model

import (
	"math"
	"time"
)

// ProjectStatus is the project assignment lifecycle:
// Not_Started -> Started -> Submitted -> Completed. A submitted assignment may
// be sent back to Started when the evaluator requests a revision.
type ProjectStatus string

const (
	ProjectStatusNotStarted ProjectStatus = "Not_Started"
	ProjectStatusStarted    ProjectStatus = "Started"
	ProjectStatusSubmitted  ProjectStatus = "Submitted"
	ProjectStatusCompleted  ProjectStatus = "Completed"
)

var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusNotStarted: {ProjectStatusStarted},
	ProjectStatusStarted:    {ProjectStatusSubmitted},
	ProjectStatusSubmitted:  {ProjectStatusCompleted, ProjectStatusStarted},
	ProjectStatusCompleted:  {},
}

// Valid reports whether s is a known status
func (s ProjectStatus) Valid() bool {
	_, ok := projectTransitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is allowed. Writing the
// current status again is always allowed.
func (s ProjectStatus) CanTransition(next ProjectStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range projectTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Project is a piece of practical work assigned to employees
type Project struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	ProjectName  string        `gorm:"type:varchar(255);not null" json:"project_name"`
	Description  string        `gorm:"type:text" json:"description"`
	Instructions string        `gorm:"type:text" json:"instructions"`
	Deliverables string        `gorm:"type:text" json:"deliverables"`
	CourseID     *uint         `gorm:"index" json:"course_id"`
	CreatedBy    uint          `gorm:"not null;index" json:"created_by"`
	DueDate      *time.Time    `json:"due_date"`
	Status       ProjectStatus `gorm:"type:varchar(20);not null;default:'Not_Started'" json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`

	Creator     *Profile            `gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT" json:"creator,omitempty"`
	Course      *Course             `gorm:"foreignKey:CourseID;constraint:OnDelete:SET NULL" json:"course,omitempty"`
	Assignments []ProjectAssignment `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectAssignment links an employee to a project
type ProjectAssignment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	ProjectID   uint          `gorm:"not null;uniqueIndex:idx_assignment_project_assignee" json:"project_id"`
	AssigneeID  uint          `gorm:"not null;uniqueIndex:idx_assignment_project_assignee;index" json:"assignee_id"`
	AssignedBy  uint          `gorm:"not null" json:"assigned_by"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'Not_Started';index" json:"status"`
	DueDate     *time.Time    `json:"due_date"`
	StartedAt   *time.Time    `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at"`
	CompletedAt *time.Time    `json:"completed_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Project     *Project            `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	Assignee    *Profile            `gorm:"foreignKey:AssigneeID;constraint:OnDelete:CASCADE" json:"assignee,omitempty"`
	Submissions []ProjectSubmission `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"submissions,omitempty"`
}

// TableName specifies the table name for ProjectAssignment
func (ProjectAssignment) TableName() string {
	return "project_assignments"
}

// ProjectSubmission is one piece of submitted work for an assignment
type ProjectSubmission struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AssignmentID   uint      `gorm:"not null;index" json:"assignment_id"`
	SubmittedBy    uint      `gorm:"not null" json:"submitted_by"`
	SubmissionText string    `gorm:"type:text" json:"submission_text"`
	SubmissionURL  string    `gorm:"type:text" json:"submission_url"`
	FileKey        string    `gorm:"type:varchar(500)" json:"file_key,omitempty"`
	FileName       string    `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Evaluation *ProjectEvaluation `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"evaluation,omitempty"`
}

// TableName specifies the table name for ProjectSubmission
func (ProjectSubmission) TableName() string {
	return "project_submissions"
}

// ProjectEvaluation scores a submission on four 0-10 dimensions
type ProjectEvaluation struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SubmissionID       uint      `gorm:"not null;uniqueIndex" json:"submission_id"`
	EvaluatorID        uint      `gorm:"not null;index" json:"evaluator_id"`
	TechnicalScore     float64   `gorm:"not null" json:"technical_score"`
	QualityScore       float64   `gorm:"not null" json:"quality_score"`
	DocumentationScore float64   `gorm:"not null" json:"documentation_score"`
	TimelinessScore    float64   `gorm:"not null" json:"timeliness_score"`
	OverallScore       float64   `gorm:"not null" json:"overall_score"`
	Feedback           string    `gorm:"type:text" json:"feedback"`
	Strengths          string    `gorm:"type:text" json:"strengths"`
	Improvements       string    `gorm:"type:text" json:"improvements"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Evaluator *Profile `gorm:"foreignKey:EvaluatorID;constraint:OnDelete:RESTRICT" json:"evaluator,omitempty"`
}

// TableName specifies the table name for ProjectEvaluation
func (ProjectEvaluation) TableName() string {
	return "project_evaluations"
}

// ComputeOverall sets OverallScore to the mean of the four dimensions,
// rounded to two decimals.
func (e *ProjectEvaluation) ComputeOverall() {
	mean := (e.TechnicalScore + e.QualityScore + e.DocumentationScore + e.TimelinessScore) / 4
	e.OverallScore = math.Round(mean*100) / 100
}
