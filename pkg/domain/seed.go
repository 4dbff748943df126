package domain

func ptr[T any](v T) *T { return &v }

// SeedSnapshot returns the fixed starter dataset used when storage is empty
// or unreadable.
func SeedSnapshot() Snapshot {
	return Snapshot{
		Employees: []Employee{
			{ID: "EMP001", NameLocal: "John Doe", NameInternational: "John Doe", Department: "Engineering", Position: "Senior Dev", IsActive: true},
			{ID: "EMP002", NameLocal: "Jane Smith", NameInternational: "Jane Smith", Department: "Operations", Position: "Manager", IsActive: true},
		},
		Courses: []Course{
			{Code: "SEC101", NameLocal: "Cybersecurity Awareness", NameInternational: "Cybersecurity Awareness", Category: "Compliance", TotalHours: 4, ValidityMonths: ptr(12)},
			{Code: "REACT202", NameLocal: "Advanced React Patterns", NameInternational: "Advanced React Patterns", Category: "Technical", TotalHours: 16},
			{Code: "SAFE505", NameLocal: "Fire & Emergency Safety", NameInternational: "Fire & Emergency Safety", Category: "Safety", TotalHours: 8, ValidityMonths: ptr(24)},
		},
		Sessions: []TrainingSession{
			{ID: "SESS001", CourseCode: "SEC101", StartDate: "2024-05-01", EndDate: "2024-05-01", Location: "Online", Trainer: ptr("Alice Vance"), Organizer: ptr("IT Security Dept")},
			{ID: "SESS002", CourseCode: "REACT202", StartDate: "2024-06-10", EndDate: "2024-06-12", Location: "Room A", Trainer: ptr("Bob Martin"), Organizer: ptr("L&D Team")},
			{ID: "SESS003", CourseCode: "SAFE505", StartDate: "2024-07-20", EndDate: "2024-07-20", Location: "Assembly Point", Trainer: ptr("Safety Officer"), Organizer: ptr("HR")},
		},
		Registrations: []Registration{
			{ID: "REG001", EmployeeID: "EMP001", SessionID: "SESS001", Status: StatusAttended},
			{ID: "REG002", EmployeeID: "EMP002", SessionID: "SESS001", Status: StatusRegistered},
			{ID: "REG003", EmployeeID: "EMP001", SessionID: "SESS003", Status: StatusAttended},
		},
		Attendance: []AttendanceRecord{
			{ID: "ATT001", RegistrationID: "REG001", Date: "2024-05-01", Hours: 4},
			{ID: "ATT002", RegistrationID: "REG003", Date: "2024-07-20", Hours: 8},
		},
	}
}
