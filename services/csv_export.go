package services

import (
	"bufio"
	"io"
	"strings"

	"github.com/dabhanushali/enacton-training/model"
)

var employeeCSVHeader = []string{
	"Employee Code", "First Name", "Last Name", "Email", "Department",
	"Designation", "Phone", "Date of Joining", "Status", "Role", "Manager",
}

// neutralizeFormula prefixes fields a spreadsheet would evaluate as a formula
func neutralizeFormula(f string) string {
	if f != "" && strings.ContainsRune("=+-@\t\r", rune(f[0])) {
		return "'" + f
	}
	return f
}

// quoteCSVRow quotes every field, doubles embedded quotes and neutralizes formulas
func quoteCSVRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(neutralizeFormula(f), `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func employeeCSVRow(p model.Profile) []string {
	code := ""
	if p.EmployeeCode != nil {
		code = *p.EmployeeCode
	}
	joined := ""
	if p.DateOfJoining != nil {
		joined = p.DateOfJoining.Format("2006-01-02")
	}
	manager := ""
	if p.Manager != nil {
		manager = p.Manager.FullName()
	}
	return []string{
		code, p.FirstName, p.LastName, p.Email, p.Department,
		p.Designation, p.Phone, joined, string(p.Status), p.Role.Name, manager,
	}
}

// WriteEmployeesCSV writes a header row and one fully quoted row per employee
func WriteEmployeesCSV(w io.Writer, profiles []model.Profile) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(quoteCSVRow(employeeCSVHeader) + "\n"); err != nil {
		return err
	}
	for _, p := range profiles {
		if _, err := bw.WriteString(quoteCSVRow(employeeCSVRow(p)) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
