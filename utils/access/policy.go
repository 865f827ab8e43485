package access

// Permission names a guarded capability
type Permission string

const (
	ViewCourses         Permission = "courses:view"
	ManageCourses       Permission = "courses:manage"
	EnrollOthers        Permission = "enrollments:manage"
	ViewEmployees       Permission = "employees:view"
	ManageEmployees     Permission = "employees:manage"
	ExportEmployees     Permission = "employees:export"
	PromoteManager      Permission = "employees:promote"
	ViewTeam            Permission = "team:view"
	ViewAllData         Permission = "data:view_all"
	ManageProjects      Permission = "projects:manage"
	EvaluateSubmissions Permission = "submissions:evaluate"
	SubmitWork          Permission = "submissions:create"
	ViewOrgDashboard    Permission = "dashboard:org"
	ManageRoles         Permission = "roles:manage"
	ExtractContent      Permission = "content:extract"
)

var grants = map[Role][]Permission{
	Trainee: {
		ViewCourses,
		SubmitWork,
	},
	TeamLead: {
		ViewCourses,
		EnrollOthers,
		ViewEmployees,
		ViewTeam,
		ManageProjects,
		EvaluateSubmissions,
		SubmitWork,
	},
	HR: {
		ViewCourses,
		ManageCourses,
		EnrollOthers,
		ViewEmployees,
		ManageEmployees,
		ExportEmployees,
		PromoteManager,
		ViewTeam,
		ViewAllData,
		ManageProjects,
		EvaluateSubmissions,
		ViewOrgDashboard,
		ExtractContent,
	},
	Management: {
		ViewCourses,
		ManageCourses,
		EnrollOthers,
		ViewEmployees,
		ManageEmployees,
		ExportEmployees,
		PromoteManager,
		ViewTeam,
		ViewAllData,
		ManageProjects,
		EvaluateSubmissions,
		ViewOrgDashboard,
		ManageRoles,
		ExtractContent,
	},
}

var table = buildTable()

func buildTable() map[Role]map[Permission]struct{} {
	t := make(map[Role]map[Permission]struct{}, len(grants))
	for role, perms := range grants {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		t[role] = set
	}
	return t
}

// Can is the single authorization predicate used by middleware and services.
func Can(role Role, perm Permission) bool {
	set, ok := table[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// CanManage reports whether role may be referenced as someone's manager
func CanManage(role Role) bool {
	return role.AtLeast(TeamLead)
}

// Permissions returns the permissions granted to role, in declaration order
func Permissions(role Role) []Permission {
	perms := grants[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
