package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dabhanushali/enacton-training/database"
	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectService manages projects, assignments, submissions and evaluations
type ProjectService struct {
	db            *gorm.DB
	projects      *database.Repository[model.Project]
	assignments   *database.Repository[model.ProjectAssignment]
	submissions   *database.Repository[model.ProjectSubmission]
	evaluations   *database.Repository[model.ProjectEvaluation]
	notifications *NotificationService
}

// NewProjectService creates a new project service
func NewProjectService(db *gorm.DB, notifications *NotificationService) *ProjectService {
	return &ProjectService{
		db:            db,
		projects:      database.NewRepository[model.Project](db),
		assignments:   database.NewRepository[model.ProjectAssignment](db),
		submissions:   database.NewRepository[model.ProjectSubmission](db),
		evaluations:   database.NewRepository[model.ProjectEvaluation](db),
		notifications: notifications,
	}
}

// ProjectInput is a project create or update
type ProjectInput struct {
	ProjectName  *string
	Description  *string
	Instructions *string
	Deliverables *string
	CourseID     *uint
	DueDate      *time.Time
	Status       *string
}

// ProjectFilter narrows project listings
type ProjectFilter struct {
	CourseID *uint
	Status   string
	Search   string
	Page     int
	Limit    int
}

// ProjectSummary is a project with the number of submissions awaiting evaluation
type ProjectSummary struct {
	model.Project
	PendingEvaluations int64 `json:"pending_evaluations"`
}

// AssignmentFilter narrows assignment listings
type AssignmentFilter struct {
	ProjectID  *uint
	AssigneeID *uint
	Status     string
	Page       int
	Limit      int
}

// SubmitInput is one piece of submitted work. FileKey is set when the
// handler already stored an attachment.
type SubmitInput struct {
	SubmissionText string
	SubmissionURL  string
	FileKey        string
	FileName       string
}

// EvaluateInput scores a submission
type EvaluateInput struct {
	TechnicalScore     float64
	QualityScore       float64
	DocumentationScore float64
	TimelinessScore    float64
	Feedback           string
	Strengths          string
	Improvements       string
	RequestRevision    bool
}

// projectsVisibleTo scopes project rows. Trainees see projects assigned to
// them; team leads also see projects they created or assigned to a report.
func projectsVisibleTo(sess *session.Session) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case sess == nil:
			return db.Where("1 = 0")
		case sess.SeesEverything():
			return db
		case sess.Can(access.ViewTeam):
			return db.Where(
				"(projects.created_by = ? OR projects.id IN (SELECT project_id FROM project_assignments WHERE assignee_id = ? OR assignee_id IN (SELECT id FROM profiles WHERE manager_id = ?)))",
				sess.ProfileID, sess.ProfileID, sess.ProfileID,
			)
		default:
			return db.Where("projects.id IN (SELECT project_id FROM project_assignments WHERE assignee_id = ?)", sess.ProfileID)
		}
	}
}

// assignmentsVisibleTo scopes assignment rows the same way
func assignmentsVisibleTo(sess *session.Session) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case sess == nil:
			return db.Where("1 = 0")
		case sess.SeesEverything():
			return db
		case sess.Can(access.ViewTeam):
			return db.Where(
				"(project_assignments.assignee_id = ? OR project_assignments.assignee_id IN (SELECT id FROM profiles WHERE manager_id = ?) OR project_assignments.project_id IN (SELECT id FROM projects WHERE created_by = ?))",
				sess.ProfileID, sess.ProfileID, sess.ProfileID,
			)
		default:
			return db.Where("project_assignments.assignee_id = ?", sess.ProfileID)
		}
	}
}

// Transition returns the column updates that move a to next. A same-state
// write returns nil updates and no error.
func Transition(a *model.ProjectAssignment, next model.ProjectStatus, now time.Time) (map[string]interface{}, error) {
	if !next.Valid() {
		return nil, invalid("status", "Unknown project status")
	}
	if a.Status == next {
		return nil, nil
	}
	if !a.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, next)
	}

	updates := map[string]interface{}{"status": next}
	switch next {
	case model.ProjectStatusStarted:
		if a.StartedAt == nil {
			updates["started_at"] = now
			a.StartedAt = &now
		}
	case model.ProjectStatusSubmitted:
		updates["submitted_at"] = now
		a.SubmittedAt = &now
	case model.ProjectStatusCompleted:
		updates["completed_at"] = now
		a.CompletedAt = &now
	}
	a.Status = next
	return updates, nil
}

// PendingEvaluations counts submitted assignments whose latest submission has
// no evaluation. Submissions must be loaded with their evaluations.
func PendingEvaluations(assignments []model.ProjectAssignment) int {
	pending := 0
	for _, a := range assignments {
		if a.Status != model.ProjectStatusSubmitted {
			continue
		}
		latest := latestSubmission(a.Submissions)
		if latest == nil || latest.Evaluation == nil {
			pending++
		}
	}
	return pending
}

func latestSubmission(subs []model.ProjectSubmission) *model.ProjectSubmission {
	var latest *model.ProjectSubmission
	for i := range subs {
		s := &subs[i]
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) ||
			(s.CreatedAt.Equal(latest.CreatedAt) && s.ID > latest.ID) {
			latest = s
		}
	}
	return latest
}

const pendingEvaluationsSQL = `
SELECT a.project_id, COUNT(*) AS pending
FROM project_assignments a
WHERE a.status = ? AND a.project_id IN ?
  AND NOT EXISTS (
    SELECT 1 FROM project_evaluations e
    WHERE e.submission_id = (
      SELECT s.id FROM project_submissions s
      WHERE s.assignment_id = a.id
      ORDER BY s.created_at DESC, s.id DESC
      LIMIT 1
    )
  )
GROUP BY a.project_id`

type projectPending struct {
	ProjectID uint
	Pending   int64
}

// CountPendingEvaluations returns pending evaluation counts keyed by project id
func (s *ProjectService) CountPendingEvaluations(ctx context.Context, projectIDs ...uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}
	var rows []projectPending
	if err := s.db.WithContext(ctx).Raw(pendingEvaluationsSQL, model.ProjectStatusSubmitted, projectIDs).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending evaluations: %w", database.MapError(err))
	}
	for _, r := range rows {
		out[r.ProjectID] = r.Pending
	}
	return out, nil
}

// List returns one page of projects visible to sess with pending counts
func (s *ProjectService) List(ctx context.Context, sess *session.Session, f ProjectFilter) ([]ProjectSummary, int64, error) {
	q := database.Query{}.
		Scope(projectsVisibleTo(sess)).
		With("Creator", "Course").
		OrderBy("projects.created_at DESC, projects.id DESC").
		Paginate(f.Page, f.Limit)
	if f.CourseID != nil {
		q = q.Where("course_id", *f.CourseID)
	}
	if f.Status != "" {
		q = q.Where("status", f.Status)
	}
	if f.Search != "" {
		q = q.SearchIn(f.Search, "project_name", "description")
	}

	rows, total, err := s.projects.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	ids := make([]uint, len(rows))
	for i, p := range rows {
		ids[i] = p.ID
	}
	pending, err := s.CountPendingEvaluations(ctx, ids...)
	if err != nil {
		return nil, 0, err
	}

	out := make([]ProjectSummary, len(rows))
	for i, p := range rows {
		out[i] = ProjectSummary{Project: p, PendingEvaluations: pending[p.ID]}
	}
	return out, total, nil
}

// Get loads a visible project with its assignments and pending count
func (s *ProjectService) Get(ctx context.Context, sess *session.Session, id uint) (*ProjectSummary, error) {
	p, err := s.projects.First(ctx, database.Query{}.
		Where("id", id).
		Scope(projectsVisibleTo(sess)).
		Scope(func(db *gorm.DB) *gorm.DB {
			return db.Preload("Assignments", assignmentsVisibleTo(sess)).Preload("Assignments.Assignee")
		}).
		With("Creator", "Course"))
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", id, err)
	}

	pending, err := s.CountPendingEvaluations(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &ProjectSummary{Project: *p, PendingEvaluations: pending[p.ID]}, nil
}

// Create adds a project owned by the caller
func (s *ProjectService) Create(ctx context.Context, sess *session.Session, in ProjectInput) (*model.Project, error) {
	if in.ProjectName == nil || strings.TrimSpace(*in.ProjectName) == "" {
		return nil, invalid("project_name", "Project name is required")
	}
	p := model.Project{
		CreatedBy: sess.ProfileID,
		Status:    model.ProjectStatusNotStarted,
	}
	if err := applyProjectInput(&p, in); err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, &p); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return nil, invalid("course_id", "Course does not exist")
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

// owned loads a project the caller may manage: any project for HR and
// Management, only their own for a team lead.
func (s *ProjectService) owned(ctx context.Context, sess *session.Session, id uint) (*model.Project, error) {
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", id, err)
	}
	if !sess.SeesEverything() && p.CreatedBy != sess.ProfileID {
		return nil, fmt.Errorf("%w: project %d belongs to another owner", ErrForbidden, id)
	}
	return p, nil
}

// Update changes project fields. Status changes follow the project lifecycle.
func (s *ProjectService) Update(ctx context.Context, sess *session.Session, id uint, in ProjectInput) (*model.Project, error) {
	if in.ProjectName != nil && strings.TrimSpace(*in.ProjectName) == "" {
		return nil, invalid("project_name", "Project name is required")
	}
	p, err := s.owned(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := applyProjectInput(p, in); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return nil, invalid("course_id", "Course does not exist")
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

// Delete removes a project with its assignments and submissions
func (s *ProjectService) Delete(ctx context.Context, sess *session.Session, id uint) error {
	if _, err := s.owned(ctx, sess, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return fmt.Errorf("project %d: %w", id, err)
	}
	return nil
}

func applyProjectInput(p *model.Project, in ProjectInput) error {
	if in.ProjectName != nil {
		p.ProjectName = strings.TrimSpace(*in.ProjectName)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Instructions != nil {
		p.Instructions = *in.Instructions
	}
	if in.Deliverables != nil {
		p.Deliverables = *in.Deliverables
	}
	if in.CourseID != nil {
		p.CourseID = in.CourseID
	}
	if in.DueDate != nil {
		p.DueDate = in.DueDate
	}
	if in.Status != nil {
		next := model.ProjectStatus(*in.Status)
		if !next.Valid() {
			return invalid("status", "Unknown project status")
		}
		if !p.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
		}
		p.Status = next
	}
	return nil
}

// Assign assigns a project to employees. Team leads may assign to themselves
// and their direct reports. Existing assignments are left unchanged.
func (s *ProjectService) Assign(ctx context.Context, sess *session.Session, projectID uint, assigneeIDs []uint, dueDate *time.Time) ([]model.ProjectAssignment, error) {
	if len(assigneeIDs) == 0 {
		return nil, invalid("employee_ids", "At least one employee is required")
	}
	p, err := s.owned(ctx, sess, projectID)
	if err != nil {
		return nil, err
	}
	for _, id := range assigneeIDs {
		ok, err := canActFor(ctx, s.db, sess, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: employee %d is not in your team", ErrForbidden, id)
		}
	}

	if dueDate == nil {
		dueDate = p.DueDate
	}
	rows := make([]model.ProjectAssignment, 0, len(assigneeIDs))
	for _, id := range assigneeIDs {
		rows = append(rows, model.ProjectAssignment{
			ProjectID:  projectID,
			AssigneeID: id,
			AssignedBy: sess.ProfileID,
			Status:     model.ProjectStatusNotStarted,
			DueDate:    dueDate,
		})
	}

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "assignee_id"}},
			DoNothing: true,
		}).
		Create(&rows).Error; err != nil {
		err = database.MapError(err)
		if errors.Is(err, database.ErrForeignKey) {
			return nil, invalid("employee_ids", "One or more employees do not exist")
		}
		return nil, fmt.Errorf("failed to assign project: %w", err)
	}

	// rows skipped by ON CONFLICT keep a zero id
	for _, a := range rows {
		if a.ID == 0 {
			continue
		}
		s.notifications.Notify(ctx, CreateNotificationRequest{
			UserID:   a.AssigneeID,
			Type:     model.NotificationTypeInfo,
			Category: model.NotificationCategoryAssignment,
			Title:    "New project assigned",
			Message:  fmt.Sprintf("You have been assigned to %s", p.ProjectName),
			Metadata: model.NotificationMetadata{ProjectID: p.ID, AssignmentID: a.ID},
		})
	}

	assigned, err := s.assignments.All(ctx, database.Query{}.
		Where("project_id", projectID).
		WhereIn("assignee_id", uintsToArgs(assigneeIDs)...).
		With("Assignee").
		OrderBy("id ASC"))
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	return assigned, nil
}

// ListAssignments returns one page of assignments visible to sess
func (s *ProjectService) ListAssignments(ctx context.Context, sess *session.Session, f AssignmentFilter) ([]model.ProjectAssignment, int64, error) {
	q := database.Query{}.
		Scope(assignmentsVisibleTo(sess)).
		With("Project", "Assignee").
		OrderBy("project_assignments.created_at DESC, project_assignments.id DESC").
		Paginate(f.Page, f.Limit)
	if f.ProjectID != nil {
		q = q.Where("project_id", *f.ProjectID)
	}
	if f.AssigneeID != nil {
		q = q.Where("assignee_id", *f.AssigneeID)
	}
	if f.Status != "" {
		q = q.Where("status", f.Status)
	}

	rows, total, err := s.assignments.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	return rows, total, nil
}

// AssignmentsFor returns every assignment of the given employees with
// projects and evaluated submissions loaded
func (s *ProjectService) AssignmentsFor(ctx context.Context, employeeIDs ...uint) ([]model.ProjectAssignment, error) {
	if len(employeeIDs) == 0 {
		return []model.ProjectAssignment{}, nil
	}
	rows, err := s.assignments.All(ctx, database.Query{}.
		WhereIn("assignee_id", uintsToArgs(employeeIDs)...).
		With("Project", "Submissions", "Submissions.Evaluation").
		OrderBy("created_at DESC"))
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	return rows, nil
}

// GetAssignment loads a visible assignment with its submissions and evaluations
func (s *ProjectService) GetAssignment(ctx context.Context, sess *session.Session, id uint) (*model.ProjectAssignment, error) {
	a, err := s.assignments.First(ctx, database.Query{}.
		Where("id", id).
		Scope(assignmentsVisibleTo(sess)).
		Scope(func(db *gorm.DB) *gorm.DB {
			return db.Preload("Submissions", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at DESC, id DESC")
			})
		}).
		With("Project", "Assignee", "Submissions.Evaluation"))
	if err != nil {
		return nil, fmt.Errorf("assignment %d: %w", id, err)
	}
	return a, nil
}

// StartAssignment moves the caller's own assignment to Started
func (s *ProjectService) StartAssignment(ctx context.Context, sess *session.Session, id uint) (*model.ProjectAssignment, error) {
	var a model.ProjectAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.assignments.WithTx(tx).GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("assignment %d: %w", id, err)
		}
		if !sess.IsSelf(locked.AssigneeID) {
			return fmt.Errorf("%w: only the assignee can start work", ErrForbidden)
		}
		a = *locked

		updates, err := Transition(&a, model.ProjectStatusStarted, time.Now())
		if err != nil || updates == nil {
			return err
		}
		return database.MapError(tx.Model(&model.ProjectAssignment{}).Where("id = ?", id).Updates(updates).Error)
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// DeleteAssignment removes an assignment from a project the caller manages
func (s *ProjectService) DeleteAssignment(ctx context.Context, sess *session.Session, id uint) error {
	a, err := s.assignments.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("assignment %d: %w", id, err)
	}
	if _, err := s.owned(ctx, sess, a.ProjectID); err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return fmt.Errorf("assignment %d: %w", id, err)
	}
	return nil
}

// Submit records work for the caller's assignment and moves it to Submitted.
// Submitting again while already Submitted adds a newer submission.
func (s *ProjectService) Submit(ctx context.Context, sess *session.Session, assignmentID uint, in SubmitInput) (*model.ProjectSubmission, error) {
	if !sess.Can(access.SubmitWork) {
		return nil, ErrForbidden
	}
	in.SubmissionText = strings.TrimSpace(in.SubmissionText)
	in.SubmissionURL = strings.TrimSpace(in.SubmissionURL)
	if in.SubmissionText == "" && in.SubmissionURL == "" && in.FileKey == "" {
		return nil, invalid("submission", "Provide text, a link or a file")
	}

	var sub model.ProjectSubmission
	var assignment model.ProjectAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.assignments.WithTx(tx).GetForUpdate(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("assignment %d: %w", assignmentID, err)
		}
		if !sess.IsSelf(locked.AssigneeID) {
			return fmt.Errorf("%w: only the assignee can submit work", ErrForbidden)
		}
		assignment = *locked

		now := time.Now()
		updates, err := Transition(&assignment, model.ProjectStatusSubmitted, now)
		if err != nil {
			return err
		}

		sub = model.ProjectSubmission{
			AssignmentID:   assignmentID,
			SubmittedBy:    sess.ProfileID,
			SubmissionText: in.SubmissionText,
			SubmissionURL:  in.SubmissionURL,
			FileKey:        in.FileKey,
			FileName:       in.FileName,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to save submission: %w", database.MapError(err))
		}

		if updates == nil {
			updates = map[string]interface{}{"submitted_at": now}
		}
		return database.MapError(tx.Model(&model.ProjectAssignment{}).Where("id = ?", assignmentID).Updates(updates).Error)
	})
	if err != nil {
		return nil, err
	}

	log.Infof("[PROJECT] assignment %d submitted by profile %d", assignmentID, sess.ProfileID)
	return &sub, nil
}

// ListSubmissions returns the submissions of a visible assignment, newest first
func (s *ProjectService) ListSubmissions(ctx context.Context, sess *session.Session, assignmentID uint) ([]model.ProjectSubmission, error) {
	a, err := s.GetAssignment(ctx, sess, assignmentID)
	if err != nil {
		return nil, err
	}
	return a.Submissions, nil
}

// Evaluate scores a submission. The assignment moves to Completed, or back
// to Started when a revision is requested.
func (s *ProjectService) Evaluate(ctx context.Context, sess *session.Session, submissionID uint, in EvaluateInput) (*model.ProjectEvaluation, error) {
	if !sess.Can(access.EvaluateSubmissions) {
		return nil, ErrForbidden
	}
	if err := validateScores(in); err != nil {
		return nil, err
	}

	eval := model.ProjectEvaluation{
		SubmissionID:       submissionID,
		EvaluatorID:        sess.ProfileID,
		TechnicalScore:     in.TechnicalScore,
		QualityScore:       in.QualityScore,
		DocumentationScore: in.DocumentationScore,
		TimelinessScore:    in.TimelinessScore,
		Feedback:           in.Feedback,
		Strengths:          in.Strengths,
		Improvements:       in.Improvements,
	}
	eval.ComputeOverall()

	var assignment model.ProjectAssignment
	var projectName string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sub model.ProjectSubmission
		if err := tx.First(&sub, submissionID).Error; err != nil {
			return fmt.Errorf("submission %d: %w", submissionID, database.MapError(err))
		}

		locked, err := s.assignments.WithTx(tx).GetForUpdate(ctx, sub.AssignmentID)
		if err != nil {
			return fmt.Errorf("assignment %d: %w", sub.AssignmentID, err)
		}
		assignment = *locked

		var project model.Project
		if err := tx.Select("id", "project_name", "created_by").First(&project, assignment.ProjectID).Error; err != nil {
			return database.MapError(err)
		}
		projectName = project.ProjectName

		if !sess.SeesEverything() && project.CreatedBy != sess.ProfileID {
			ok, err := isDirectReport(ctx, tx, sess.ProfileID, assignment.AssigneeID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: submission is outside your team", ErrForbidden)
			}
		}
		if sess.IsSelf(assignment.AssigneeID) {
			return fmt.Errorf("%w: cannot evaluate your own work", ErrForbidden)
		}

		next := model.ProjectStatusCompleted
		if in.RequestRevision {
			next = model.ProjectStatusStarted
		}
		updates, err := Transition(&assignment, next, time.Now())
		if err != nil {
			return err
		}

		if err := tx.Create(&eval).Error; err != nil {
			err = database.MapError(err)
			if errors.Is(err, database.ErrDuplicate) {
				return fmt.Errorf("%w: submission %d is already evaluated", ErrConflict, submissionID)
			}
			return fmt.Errorf("failed to save evaluation: %w", err)
		}
		if updates == nil {
			return nil
		}
		return database.MapError(tx.Model(&model.ProjectAssignment{}).Where("id = ?", assignment.ID).Updates(updates).Error)
	})
	if err != nil {
		return nil, err
	}

	title, msg := "Submission evaluated", fmt.Sprintf("Your work on %s scored %.2f", projectName, eval.OverallScore)
	if in.RequestRevision {
		title, msg = "Revision requested", fmt.Sprintf("Your evaluator asked for changes on %s", projectName)
	}
	s.notifications.Notify(ctx, CreateNotificationRequest{
		UserID:   assignment.AssigneeID,
		Type:     model.NotificationTypeSuccess,
		Category: model.NotificationCategoryEvaluation,
		Title:    title,
		Message:  msg,
		Metadata: model.NotificationMetadata{
			ProjectID:    assignment.ProjectID,
			AssignmentID: assignment.ID,
			SubmissionID: submissionID,
		},
	})
	return &eval, nil
}

func validateScores(in EvaluateInput) error {
	fields := map[string]string{}
	check := func(name string, v float64) {
		if v < 0 || v > 10 {
			fields[name] = "Score must be between 0 and 10"
		}
	}
	check("technical_score", in.TechnicalScore)
	check("quality_score", in.QualityScore)
	check("documentation_score", in.DocumentationScore)
	check("timeliness_score", in.TimelinessScore)
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// GetEvaluation loads the evaluation of a visible submission
func (s *ProjectService) GetEvaluation(ctx context.Context, sess *session.Session, submissionID uint) (*model.ProjectEvaluation, error) {
	sub, err := s.submissions.Get(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("submission %d: %w", submissionID, err)
	}
	if _, err := s.GetAssignment(ctx, sess, sub.AssignmentID); err != nil {
		return nil, err
	}
	eval, err := s.evaluations.First(ctx, database.Query{}.Where("submission_id", submissionID).With("Evaluator"))
	if err != nil {
		return nil, fmt.Errorf("evaluation for submission %d: %w", submissionID, err)
	}
	return eval, nil
}

// Overdue returns assignments past their due date that are not completed
func (s *ProjectService) Overdue(ctx context.Context, now time.Time) ([]model.ProjectAssignment, error) {
	var rows []model.ProjectAssignment
	err := s.db.WithContext(ctx).
		Preload("Project").
		Where("status <> ? AND due_date IS NOT NULL AND due_date < ?", model.ProjectStatusCompleted, now).
		Order("due_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue assignments: %w", database.MapError(err))
	}
	return rows, nil
}
