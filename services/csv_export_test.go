package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/dabhanushali/enacton-training/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteCSVRow(t *testing.T) {
	assert.Equal(t, `"a ""b""","",","`, quoteCSVRow([]string{`a "b"`, "", ","}))
}

func TestQuoteCSVRowNeutralizesFormulas(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{`=HYPERLINK("http://x","y")`, `"'=HYPERLINK(""http://x"",""y"")"`},
		{"+91 98765 43210", `"'+91 98765 43210"`},
		{"-2+3", `"'-2+3"`},
		{"@SUM(A1)", `"'@SUM(A1)"`},
		{"\t=1", "\"'\t=1\""},
		{"Engineer", `"Engineer"`},
		{"a=b", `"a=b"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, quoteCSVRow([]string{tt.field}), tt.field)
	}
}

func TestWriteEmployeesCSV(t *testing.T) {
	code := "EMP-001"
	joined := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	profiles := []model.Profile{
		{
			FirstName:     "Asha",
			LastName:      "Rao",
			Email:         "asha@example.com",
			EmployeeCode:  &code,
			Department:    "Engineering",
			Designation:   `Engineer "II"`,
			DateOfJoining: &joined,
			Status:        model.EmployeeStatusActive,
			Role:          model.Role{Name: "Trainee"},
			Manager:       &model.Profile{FirstName: "Vik", LastName: "Shah"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEmployeesCSV(&buf, profiles))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], `"Employee Code","First Name"`))
	assert.Equal(t,
		`"EMP-001","Asha","Rao","asha@example.com","Engineering","Engineer ""II""","","2024-03-01","Active","Trainee","Vik Shah"`,
		lines[1])
}
