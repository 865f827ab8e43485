package access

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"Trainee":    Trainee,
		"Team Lead":  TeamLead,
		"team_lead":  TeamLead,
		"TeamLead":   TeamLead,
		"hr":         HR,
		"Management": Management,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseRole("admin")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleRoundTripsThroughJSON(t *testing.T) {
	payload, err := json.Marshal(map[string]Role{"role": TeamLead})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"Team Lead"}`, string(payload))

	var decoded struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"HR"}`), &decoded))
	assert.Equal(t, HR, decoded.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"Intern"}`), &decoded))
}

func TestRankOrdering(t *testing.T) {
	assert.True(t, Management.AtLeast(HR))
	assert.True(t, HR.AtLeast(TeamLead))
	assert.False(t, Trainee.AtLeast(TeamLead))
	assert.False(t, Role(0).AtLeast(Trainee))
}

func TestCan(t *testing.T) {
	assert.True(t, Can(Trainee, ViewCourses))
	assert.False(t, Can(Trainee, ManageCourses))
	assert.False(t, Can(Trainee, ViewEmployees))

	assert.True(t, Can(TeamLead, EvaluateSubmissions))
	assert.False(t, Can(TeamLead, ExportEmployees))
	assert.False(t, Can(TeamLead, ViewAllData))

	assert.True(t, Can(HR, ExportEmployees))
	assert.False(t, Can(HR, ManageRoles))

	assert.True(t, Can(Management, ManageRoles))
	assert.False(t, Can(Role(99), ViewCourses))
}

func TestCanManage(t *testing.T) {
	assert.False(t, CanManage(Trainee))
	for _, r := range []Role{TeamLead, HR, Management} {
		assert.True(t, CanManage(r), r.String())
	}
}
