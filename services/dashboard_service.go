package services

import (
	"context"
	"fmt"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/dabhanushali/enacton-training/utils/session"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// teamFetchLimit bounds concurrent per-member loads on the team dashboard
const teamFetchLimit = 8

// DashboardService aggregates the role-specific landing page
type DashboardService struct {
	db          *gorm.DB
	employees   *EmployeeService
	enrollments *EnrollmentService
	projects    *ProjectService
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB, employees *EmployeeService, enrollments *EnrollmentService, projects *ProjectService) *DashboardService {
	return &DashboardService{
		db:          db,
		employees:   employees,
		enrollments: enrollments,
		projects:    projects,
	}
}

// Dashboard is the payload for one caller; only the section for their role is set
type Dashboard struct {
	Role   string           `json:"role"`
	Mine   *PersonalSummary `json:"mine,omitempty"`
	Team   *TeamSummary     `json:"team,omitempty"`
	Org    *OrgSummary      `json:"organisation,omitempty"`
	Unread int64            `json:"unread_notifications"`
}

// PersonalSummary is an employee's own learning and project state
type PersonalSummary struct {
	Enrollments         []EnrollmentProgress        `json:"enrollments"`
	Assignments         []model.ProjectAssignment   `json:"assignments"`
	AssignmentsByStatus map[model.ProjectStatus]int `json:"assignments_by_status"`
	AverageProgress     int                         `json:"average_progress"`
}

// TeamMember is one direct report on the team dashboard
type TeamMember struct {
	Profile     model.Profile             `json:"profile"`
	Enrollments []EnrollmentProgress      `json:"enrollments"`
	Assignments []model.ProjectAssignment `json:"assignments"`
	Progress    int                       `json:"average_progress"`
}

// TeamSummary is a team lead's view of their reports
type TeamSummary struct {
	Members            []TeamMember `json:"members"`
	PendingEvaluations int64        `json:"pending_evaluations"`
}

// OrgSummary is the organisation-wide view for HR and Management
type OrgSummary struct {
	EmployeesByStatus    map[string]int64 `json:"employees_by_status"`
	Courses              int64            `json:"courses"`
	Enrollments          int64            `json:"enrollments"`
	CompletedEnrollments int64            `json:"completed_enrollments"`
	ProjectsByStatus     map[string]int64 `json:"projects_by_status"`
	PendingEvaluations   int64            `json:"pending_evaluations"`
}

// Get builds the dashboard for sess
func (s *DashboardService) Get(ctx context.Context, sess *session.Session) (*Dashboard, error) {
	if sess == nil {
		return nil, ErrForbidden
	}

	d := &Dashboard{Role: sess.Role.String()}

	var unread int64
	if err := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", sess.ProfileID, false).
		Count(&unread).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}
	d.Unread = unread

	mine, err := s.personal(ctx, sess.ProfileID)
	if err != nil {
		return nil, err
	}
	d.Mine = mine

	switch {
	case sess.Can(access.ViewOrgDashboard):
		org, err := s.organisation(ctx)
		if err != nil {
			return nil, err
		}
		d.Org = org
	case sess.Can(access.ViewTeam):
		team, err := s.team(ctx, sess.ProfileID)
		if err != nil {
			return nil, err
		}
		d.Team = team
	}
	return d, nil
}

func (s *DashboardService) personal(ctx context.Context, profileID uint) (*PersonalSummary, error) {
	enrollments, err := s.enrollments.ForEmployee(ctx, profileID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.projects.AssignmentsFor(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return &PersonalSummary{
		Enrollments:         enrollments,
		Assignments:         assignments,
		AssignmentsByStatus: CountByStatus(assignments),
		AverageProgress:     AverageProgress(enrollments),
	}, nil
}

// team loads each direct report concurrently; the first failure cancels the rest
func (s *DashboardService) team(ctx context.Context, leadID uint) (*TeamSummary, error) {
	reports, err := s.employees.Team(ctx, leadID)
	if err != nil {
		return nil, err
	}

	members := make([]TeamMember, len(reports))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teamFetchLimit)

	for i, p := range reports {
		i, p := i, p
		g.Go(func() error {
			enrollments, err := s.enrollments.ForEmployee(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("member %d: %w", p.ID, err)
			}
			assignments, err := s.projects.AssignmentsFor(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("member %d: %w", p.ID, err)
			}
			members[i] = TeamMember{
				Profile:     p,
				Enrollments: enrollments,
				Assignments: assignments,
				Progress:    AverageProgress(enrollments),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var projectIDs []uint
	if err := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("created_by = ?", leadID).
		Pluck("id", &projectIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	pending, err := s.projects.CountPendingEvaluations(ctx, projectIDs...)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range pending {
		total += n
	}
	return &TeamSummary{Members: members, PendingEvaluations: total}, nil
}

type statusCount struct {
	Status string
	Count  int64
}

func (s *DashboardService) organisation(ctx context.Context) (*OrgSummary, error) {
	db := s.db.WithContext(ctx)
	org := &OrgSummary{
		EmployeesByStatus: map[string]int64{},
		ProjectsByStatus:  map[string]int64{},
	}

	var employees []statusCount
	if err := db.Model(&model.Profile{}).Select("status, COUNT(*) AS count").Group("status").Scan(&employees).Error; err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}
	for _, r := range employees {
		org.EmployeesByStatus[r.Status] = r.Count
	}

	var projects []statusCount
	if err := db.Model(&model.ProjectAssignment{}).Select("status, COUNT(*) AS count").Group("status").Scan(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	for _, r := range projects {
		org.ProjectsByStatus[r.Status] = r.Count
	}

	if err := db.Model(&model.Course{}).Count(&org.Courses).Error; err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if err := db.Model(&model.Enrollment{}).Count(&org.Enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	if err := db.Model(&model.Enrollment{}).Where("status = ?", model.EnrollmentStatusCompleted).Count(&org.CompletedEnrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	var projectIDs []uint
	if err := db.Model(&model.Project{}).Pluck("id", &projectIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	pending, err := s.projects.CountPendingEvaluations(ctx, projectIDs...)
	if err != nil {
		return nil, err
	}
	for _, n := range pending {
		org.PendingEvaluations += n
	}
	return org, nil
}

// CountByStatus tallies assignments by lifecycle status. Every status is
// present in the result.
func CountByStatus(assignments []model.ProjectAssignment) map[model.ProjectStatus]int {
	out := map[model.ProjectStatus]int{
		model.ProjectStatusNotStarted: 0,
		model.ProjectStatusStarted:    0,
		model.ProjectStatusSubmitted:  0,
		model.ProjectStatusCompleted:  0,
	}
	for _, a := range assignments {
		out[a.Status]++
	}
	return out
}

// AverageProgress is the mean progress across enrollments, 0 when there are none
func AverageProgress(enrollments []EnrollmentProgress) int {
	if len(enrollments) == 0 {
		return 0
	}
	sum := 0
	for _, e := range enrollments {
		sum += e.Progress
	}
	return (sum + len(enrollments)/2) / len(enrollments)
}
