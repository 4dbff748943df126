package domain

// Default field values applied by the entity factories. Defined once so
// call sites never scatter their own fallbacks.
const (
	DefaultFieldValue     = "N/A"
	DefaultCourseCategory = "Technical"

	// Sentinels identifying synthetic sessions created by manual or bulk
	// history entry.
	ManualEntryLocation  = "Manual Entry"
	ManualEntryTrainer   = "External"
	ManualEntryOrganizer = "Self/Manual"
)

// NewEmployee builds an employee record applying the bilingual name
// fallback and field defaults. isActive is true when the caller supplied no
// explicit value.
func NewEmployee(id, nameLocal, nameIntl, department, position string, isActive *bool) Employee {
	local, intl := fallbackNames(nameLocal, nameIntl)
	active := true
	if isActive != nil {
		active = *isActive
	}
	return Employee{
		ID:                id,
		NameLocal:         local,
		NameInternational: intl,
		Department:        orDefault(department),
		Position:          orDefault(position),
		IsActive:          active,
	}
}

// NewCourse builds a course record applying the bilingual name fallback and
// the category default.
func NewCourse(code, nameLocal, nameIntl, category string, totalHours float64, validityMonths *int) Course {
	local, intl := fallbackNames(nameLocal, nameIntl)
	if category == "" {
		category = DefaultCourseCategory
	}
	var validity *int
	if validityMonths != nil {
		v := *validityMonths
		validity = &v
	}
	return Course{
		Code:              code,
		NameLocal:         local,
		NameInternational: intl,
		Category:          category,
		TotalHours:        totalHours,
		ValidityMonths:    validity,
	}
}

// fallbackNames substitutes a missing name with the other language's value,
// then with the shared default.
func fallbackNames(local, intl string) (string, string) {
	if local == "" {
		local = intl
	}
	if intl == "" {
		intl = local
	}
	if local == "" {
		local = DefaultFieldValue
		intl = DefaultFieldValue
	}
	return local, intl
}

func orDefault(v string) string {
	if v == "" {
		return DefaultFieldValue
	}
	return v
}
