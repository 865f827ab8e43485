package session

import (
	"testing"

	"github.com/dabhanushali/enacton-training/utils/access"
	"github.com/stretchr/testify/assert"
)

func TestSession(t *testing.T) {
	lead := &Session{ProfileID: 7, Role: access.TeamLead}
	assert.True(t, lead.Can(access.EvaluateSubmissions))
	assert.True(t, lead.IsSelf(7))
	assert.False(t, lead.IsSelf(8))
	assert.True(t, lead.IsTeamLead())
	assert.False(t, lead.SeesEverything())

	hr := &Session{ProfileID: 1, Role: access.HR}
	assert.True(t, hr.SeesEverything())

	var none *Session
	assert.False(t, none.Can(access.ViewCourses))
	assert.False(t, none.IsSelf(0))
}
