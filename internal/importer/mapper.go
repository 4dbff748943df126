// Package importer converts loosely-typed spreadsheet rows into engine
// operations. Header casing and aliases vary wildly across uploaded
// files, so every row is canonicalized before alias matching, and errors
// are collected per row instead of aborting the batch.
package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"traincore/internal/core"
)

// Row is one external record after header canonicalization: keys are
// trimmed, lower-cased, with internal whitespace collapsed to
// underscores.
type Row map[string]string

// Kind identifies one of the three supported import layouts.
type Kind string

const (
	KindEmployees Kind = "employees"
	KindCourses   Kind = "courses"
	KindHistory   Kind = "history"
)

// headerOffset converts a 0-based data-row index into the row number the
// user sees in the spreadsheet: row 1 is the header, so the first data
// row reports as row 2.
const headerOffset = 2

// Alias tables are data-driven: canonical field -> accepted header
// variants (post-canonicalization). Extending coverage for a new header
// style means adding a string here, not touching control flow.
var (
	employeeIDAliases = []string{"id", "employeeid", "employee_id", "personnel_id"}
	nameLocalAliases  = []string{"name_local", "name_th", "nameth", "full_name_th", "full_name_local"}
	nameIntlAliases   = []string{"name_international", "name_en", "nameen", "full_name_en", "full_name_international"}
	departmentAliases = []string{"department", "dept", "sector"}
	positionAliases   = []string{"position", "job_title", "pos"}

	courseCodeAliases = []string{"code", "coursecode", "course_code"}
	hoursAliases      = []string{"hours", "total_hours", "credit", "attended_hours"}
	categoryAliases   = []string{"category", "type"}
	validityAliases   = []string{"validity", "validity_months", "expire"}

	historyEmployeeAliases = []string{"employeeid", "employee_id", "id", "personnel_id"}
	historyCourseAliases   = []string{"coursecode", "course_code", "code"}
	dateAliases            = []string{"date", "training_date"}
)

// CanonicalKey normalizes one raw header: trim, lower-case, collapse
// internal whitespace runs to a single underscore.
func CanonicalKey(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(header))), "_")
}

// NormalizeRow canonicalizes every key of a raw record. Later duplicate
// headers win, matching spreadsheet reading order.
func NormalizeRow(raw map[string]string) Row {
	row := make(Row, len(raw))
	for key, value := range raw {
		row[CanonicalKey(key)] = strings.TrimSpace(value)
	}
	return row
}

// pick returns the first non-empty value among the aliased keys.
func (r Row) pick(aliases []string) string {
	for _, key := range aliases {
		if v := r[key]; v != "" {
			return v
		}
	}
	return ""
}

func (r Row) pickFloat(aliases []string) (float64, bool) {
	raw := r.pick(aliases)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r Row) pickInt(aliases []string) *int {
	raw := r.pick(aliases)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// Mapper drives a batch of canonicalized rows against the engine.
type Mapper struct {
	service *core.Service
}

// NewMapper binds a mapper to the engine it reconciles rows into.
func NewMapper(service *core.Service) *Mapper {
	return &Mapper{service: service}
}

// Import dispatches a batch by kind.
func (m *Mapper) Import(ctx context.Context, kind Kind, rows []Row) ([]string, error) {
	switch kind {
	case KindEmployees:
		return m.ImportEmployees(ctx, rows), nil
	case KindCourses:
		return m.ImportCourses(ctx, rows), nil
	case KindHistory:
		return m.ImportHistory(ctx, rows), nil
	default:
		return nil, fmt.Errorf("unknown import kind %s", kind)
	}
}

// ImportEmployees upserts one employee per valid row. A row missing its
// id or carrying no name in either language is skipped with a collected
// error; the batch always runs to the end. An empty slice of errors
// signals full-batch success.
func (m *Mapper) ImportEmployees(ctx context.Context, rows []Row) []string {
	var errs []string
	for i, row := range rows {
		id := row.pick(employeeIDAliases)
		nameLocal := row.pick(nameLocalAliases)
		nameIntl := row.pick(nameIntlAliases)
		if id == "" || (nameLocal == "" && nameIntl == "") {
			errs = append(errs, fmt.Sprintf("Row %d: missing id or name (local/international)", i+headerOffset))
			continue
		}
		_, err := m.service.UpsertEmployee(ctx, core.EmployeeInput{
			ID:                id,
			NameLocal:         nameLocal,
			NameInternational: nameIntl,
			Department:        row.pick(departmentAliases),
			Position:          row.pick(positionAliases),
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %v", i+headerOffset, err))
		}
	}
	return errs
}

// ImportCourses upserts one course per valid row. Requires a code, at
// least one name, and parseable positive hours.
func (m *Mapper) ImportCourses(ctx context.Context, rows []Row) []string {
	var errs []string
	for i, row := range rows {
		code := row.pick(courseCodeAliases)
		nameLocal := row.pick(nameLocalAliases)
		nameIntl := row.pick(nameIntlAliases)
		hours, ok := row.pickFloat(hoursAliases)
		if code == "" || (nameLocal == "" && nameIntl == "") || !ok {
			errs = append(errs, fmt.Sprintf("Row %d: missing required fields (code, name, or hours)", i+headerOffset))
			continue
		}
		_, err := m.service.UpsertCourse(ctx, core.CourseInput{
			Code:              code,
			NameLocal:         nameLocal,
			NameInternational: nameIntl,
			Category:          row.pick(categoryAliases),
			TotalHours:        hours,
			ValidityMonths:    row.pickInt(validityAliases),
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %v", i+headerOffset, err))
		}
	}
	return errs
}

// ImportHistory records one manual-history entry per valid row. History
// rows reference entities that must already exist, so the employee and
// course are resolved against the current snapshot first; an unresolved
// reference is a row error, not a batch abort. The snapshot is re-read
// per row so a roster row imported moments earlier is visible.
func (m *Mapper) ImportHistory(ctx context.Context, rows []Row) []string {
	var errs []string
	for i, row := range rows {
		employeeID := row.pick(historyEmployeeAliases)
		courseCode := row.pick(historyCourseAliases)
		date := row.pick(dateAliases)
		hours, ok := row.pickFloat(hoursAliases)
		if employeeID == "" || courseCode == "" || date == "" || !ok {
			errs = append(errs, fmt.Sprintf("Row %d: missing required fields (employee id, course code, date, hours)", i+headerOffset))
			continue
		}

		snapshot := m.service.Store().Get()
		if _, found := snapshot.FindEmployee(employeeID); !found {
			errs = append(errs, fmt.Sprintf("Row %d: employee %s not found", i+headerOffset, employeeID))
			continue
		}
		if _, found := snapshot.FindCourse(courseCode); !found {
			errs = append(errs, fmt.Sprintf("Row %d: course %s not found", i+headerOffset, courseCode))
			continue
		}

		_, err := m.service.RecordManualHistory(ctx, core.ManualHistoryInput{
			EmployeeID: employeeID,
			CourseCode: courseCode,
			Date:       date,
			Hours:      hours,
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("Row %d: %v", i+headerOffset, err))
		}
	}
	return errs
}
