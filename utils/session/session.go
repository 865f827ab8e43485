package session

import (
	"github.com/dabhanushali/enacton-training/utils/access"
)

// Session is the authenticated caller, built once per request by the auth
// middleware and passed explicitly into services.
type Session struct {
	ProfileID uint
	Email     string
	Role      access.Role
	Status    string
	ManagerID *uint
	TokenJTI  string
}

// Can reports whether the session's role holds perm
func (s *Session) Can(perm access.Permission) bool {
	if s == nil {
		return false
	}
	return access.Can(s.Role, perm)
}

// IsSelf reports whether profileID is the caller
func (s *Session) IsSelf(profileID uint) bool {
	return s != nil && s.ProfileID == profileID
}

// SeesEverything reports whether list queries are unscoped for this caller
func (s *Session) SeesEverything() bool {
	return s.Can(access.ViewAllData)
}

// IsTeamLead reports whether the caller is scoped to their direct reports
func (s *Session) IsTeamLead() bool {
	return s != nil && s.Role == access.TeamLead
}
