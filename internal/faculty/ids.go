package faculty

import (
	"fmt"
	"strings"
	"unicode"
)

// DepartmentCode is the first three letters of the department, uppercased,
// padded with X when the name is shorter.
func DepartmentCode(department string) string {
	var b strings.Builder
	for _, r := range department {
		if b.Len() == 3 {
			break
		}
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	for b.Len() < 3 {
		b.WriteByte('X')
	}
	return b.String()
}

// GenerateIDs derives the human-readable faculty and employee ids, e.g.
// FAC2026CSE004 and EMP2026CSE004. The sequence comes from a document count,
// so two concurrent registrations can produce the same pair; the unique
// indexes reject the second and the registrar retries.
func GenerateIDs(year int, department string, seq int64) (facultyID, employeeID string) {
	code := DepartmentCode(department)
	return fmt.Sprintf("FAC%d%s%03d", year, code, seq), fmt.Sprintf("EMP%d%s%03d", year, code, seq)
}
