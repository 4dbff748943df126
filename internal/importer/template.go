package importer

// Template describes the canonical upload layout for one import kind: a
// header row plus a single example data row for the user to replace.
type Template struct {
	Filename string
	Sheet    string
	Headers  []string
	Example  []string
}

// TemplateFor returns the canonical template for an import kind. The
// headers use the primary alias of each field so a template downloaded
// and re-uploaded unchanged round-trips cleanly.
func TemplateFor(kind Kind) (Template, bool) {
	switch kind {
	case KindEmployees:
		return Template{
			Filename: "employee_template.xlsx",
			Sheet:    "Template",
			Headers:  []string{"ID", "Name_TH", "Name_EN", "Department", "Position"},
			Example:  []string{"EMP001", "สมชาย รักดี", "Somchai Rakdee", "Engineering", "Developer"},
		}, true
	case KindCourses:
		return Template{
			Filename: "course_template.xlsx",
			Sheet:    "Template",
			Headers:  []string{"Code", "Name_TH", "Name_EN", "Category", "Hours", "Validity"},
			Example:  []string{"C001", "ความปลอดภัย", "Safety Training", "Safety", "8", "12"},
		}, true
	case KindHistory:
		return Template{
			Filename: "history_template.xlsx",
			Sheet:    "Template",
			Headers:  []string{"EmployeeID", "CourseCode", "Date", "Hours"},
			Example:  []string{"EMP001", "C001", "2023-01-01", "4"},
		}, true
	}
	return Template{}, false
}
