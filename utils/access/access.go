package access

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRole = errors.New("unknown role")

// Role is one of the fixed permission tiers. The zero value is not a valid role.
type Role int

const (
	Trainee Role = iota + 1
	TeamLead
	HR
	Management
)

// Persisted role names
const (
	TraineeName    = "Trainee"
	TeamLeadName   = "Team Lead"
	HRName         = "HR"
	ManagementName = "Management"
)

// AllRoles lists every role from lowest to highest rank
var AllRoles = []Role{Trainee, TeamLead, HR, Management}

// String returns the persisted role name
func (r Role) String() string {
	switch r {
	case Trainee:
		return TraineeName
	case TeamLead:
		return TeamLeadName
	case HR:
		return HRName
	case Management:
		return ManagementName
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Valid reports whether r is one of the defined roles
func (r Role) Valid() bool {
	return r >= Trainee && r <= Management
}

// Rank orders roles; higher ranks can do everything lower ranks can manage
func (r Role) Rank() int {
	if !r.Valid() {
		return 0
	}
	return int(r)
}

// AtLeast reports whether r ranks at or above other
func (r Role) AtLeast(other Role) bool {
	return r.Valid() && r.Rank() >= other.Rank()
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, ErrUnknownRole
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole accepts the persisted names, case-insensitively. "TeamLead" and
// "team_lead" are accepted as aliases for "Team Lead".
func ParseRole(name string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer("_", " ", "-", " ").Replace(normalized)

	switch normalized {
	case "trainee":
		return Trainee, nil
	case "team lead", "teamlead":
		return TeamLead, nil
	case "hr":
		return HR, nil
	case "management":
		return Management, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// IsRoleName reports whether name parses to a role
func IsRoleName(name string) bool {
	_, err := ParseRole(name)
	return err == nil
}
