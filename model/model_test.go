package model

import (
	"testing"

	"github.com/dabhanushali/enacton-training/utils/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStatusTransitions(t *testing.T) {
	allowed := [][2]ProjectStatus{
		{ProjectStatusNotStarted, ProjectStatusStarted},
		{ProjectStatusStarted, ProjectStatusSubmitted},
		{ProjectStatusSubmitted, ProjectStatusCompleted},
		{ProjectStatusSubmitted, ProjectStatusStarted},
		{ProjectStatusStarted, ProjectStatusStarted},
	}
	for _, pair := range allowed {
		assert.True(t, pair[0].CanTransition(pair[1]), "%s -> %s", pair[0], pair[1])
	}

	rejected := [][2]ProjectStatus{
		{ProjectStatusNotStarted, ProjectStatusSubmitted},
		{ProjectStatusNotStarted, ProjectStatusCompleted},
		{ProjectStatusCompleted, ProjectStatusStarted},
		{ProjectStatusStarted, ProjectStatusNotStarted},
		{ProjectStatus("Paused"), ProjectStatus("Paused")},
	}
	for _, pair := range rejected {
		assert.False(t, pair[0].CanTransition(pair[1]), "%s -> %s", pair[0], pair[1])
	}
}

func TestComputeOverall(t *testing.T) {
	e := ProjectEvaluation{TechnicalScore: 8, QualityScore: 7, DocumentationScore: 6, TimelinessScore: 9.5}
	e.ComputeOverall()
	assert.Equal(t, 7.63, e.OverallScore)
}

func TestModuleResolveContentPrefersStructured(t *testing.T) {
	m := Module{ContentURL: "https://legacy.example.com"}
	assert.Equal(t, "https://legacy.example.com", m.ResolveContent().PrimaryURL())

	m.SetContent(content.NewReference("https://new.example.com", []content.Link{{Name: "x", URL: "https://b.com"}}))
	ref := m.ResolveContent()
	require.NotNil(t, ref.Primary)
	assert.Equal(t, "https://new.example.com", ref.PrimaryURL())
	assert.Equal(t, content.SchemaVersion, ref.Version)

	legacy := content.DecodeLegacy(m.ContentURL)
	assert.Equal(t, "https://new.example.com", legacy.URL)
	assert.Len(t, legacy.Links, 1)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, ContentTypeMixed.Valid())
	assert.False(t, ContentType("audio").Valid())
	assert.True(t, EmployeeStatusOnLeave.Valid())
	assert.False(t, EmployeeStatus("Retired").Valid())
	assert.True(t, QuestionTypeTrueFalse.HasOptions())
	assert.False(t, QuestionTypeEssay.HasOptions())
	assert.True(t, AssessmentTypeProject.Valid())
}
