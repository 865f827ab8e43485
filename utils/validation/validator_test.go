package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	CourseName  string `json:"course_name" validate:"notblank,max=255"`
	Role        string `json:"role" validate:"omitempty,role"`
	ContentType string `json:"content_type" validate:"omitempty,content_type"`
	Status      string `json:"status" validate:"omitempty,project_status"`
}

func TestValidateStructReportsJSONFields(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(sampleRequest{CourseName: "   ", Role: "Intern", ContentType: "audio", Status: "Done"})
	require.Error(t, err)

	var verrs *Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "course_name is required", verrs.Fields["course_name"])
	assert.Contains(t, verrs.Fields["role"], "Team Lead")
	assert.Contains(t, verrs.Fields, "content_type")
	assert.Contains(t, verrs.Fields, "status")
}

func TestValidateStructAcceptsDomainValues(t *testing.T) {
	v := NewValidator()

	err := v.ValidateStruct(sampleRequest{
		CourseName:  "Onboarding 101",
		Role:        "Team Lead",
		ContentType: "video",
		Status:      "Not_Started",
	})
	assert.NoError(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  a\x00bc \n"))
}
