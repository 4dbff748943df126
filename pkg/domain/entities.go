// Package domain defines the persistent entities, the snapshot shape, and
// the error taxonomy used by traincore. It has no dependencies so that
// infra packages can depend on it one-way.
package domain

import (
	"encoding/json"
	"strings"
)

// AttendanceStatus is the derived completion state of a registration.
type AttendanceStatus string

// Registration statuses. Derivation only ever advances a registration
// forward through Registered -> PartiallyAttended -> Attended.
const (
	StatusRegistered        AttendanceStatus = "Registered"
	StatusPartiallyAttended AttendanceStatus = "Partially Attended"
	StatusAttended          AttendanceStatus = "Attended"
	StatusAbsent            AttendanceStatus = "Absent"
)

// statusRank orders statuses for forward-only derivation. Absent ranks with
// Registered: recorded hours move it forward, nothing moves it back.
var statusRank = map[AttendanceStatus]int{
	StatusRegistered:        0,
	StatusAbsent:            0,
	StatusPartiallyAttended: 1,
	StatusAttended:          2,
}

// Outranks reports whether s is a strictly later stage than other.
func (s AttendanceStatus) Outranks(other AttendanceStatus) bool {
	return statusRank[s] > statusRank[other]
}

// NormalizeKey produces the canonical form of a natural-key string used for
// every cross-entity identity comparison: trimmed and lower-cased.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Employee is a personnel record keyed by its natural employee id.
type Employee struct {
	ID                string `json:"id"`
	NameLocal         string `json:"name_local"`
	NameInternational string `json:"name_international"`
	Department        string `json:"department"`
	Position          string `json:"position"`
	IsActive          bool   `json:"is_active"`
}

type employeeAlias Employee

// UnmarshalJSON backfills is_active to true when the field is absent from
// the payload. Snapshots written before the field existed load as active.
func (e *Employee) UnmarshalJSON(data []byte) error {
	aux := struct {
		employeeAlias
		IsActive *bool `json:"is_active"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Employee(aux.employeeAlias)
	if aux.IsActive == nil {
		e.IsActive = true
	} else {
		e.IsActive = *aux.IsActive
	}
	return nil
}

// Course is a catalog entry keyed by its natural course code. TotalHours is
// the completion threshold for status derivation.
type Course struct {
	Code              string  `json:"code"`
	NameLocal         string  `json:"name_local"`
	NameInternational string  `json:"name_international"`
	Category          string  `json:"category"`
	TotalHours        float64 `json:"total_hours"`
	ValidityMonths    *int    `json:"validity_months,omitempty"`
}

// TrainingSession is a scheduled delivery of a course. Sessions are
// append-only; dates are opaque YYYY-MM-DD strings compared by equality.
type TrainingSession struct {
	ID         string  `json:"id"`
	CourseCode string  `json:"course_code"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Location   string  `json:"location"`
	Trainer    *string `json:"trainer,omitempty"`
	Organizer  *string `json:"organizer,omitempty"`
}

// Registration links an employee to a session. At most one registration
// exists per (normalized employee id, session id) pair.
type Registration struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employee_id"`
	SessionID  string           `json:"session_id"`
	Status     AttendanceStatus `json:"status"`
}

// AttendanceRecord logs hours attended against a registration. Multiple
// records per registration are expected, one per training day.
type AttendanceRecord struct {
	ID             string  `json:"id"`
	RegistrationID string  `json:"registration_id"`
	Date           string  `json:"date"`
	Hours          float64 `json:"hours"`
}

// Snapshot is the full application state: exactly five named collections.
// This shape is both the durable persistence format and the export/import
// blob format.
type Snapshot struct {
	Employees     []Employee         `json:"employees"`
	Courses       []Course           `json:"courses"`
	Sessions      []TrainingSession  `json:"sessions"`
	Registrations []Registration     `json:"registrations"`
	Attendance    []AttendanceRecord `json:"attendance"`
}

// Clone returns a deep copy of the snapshot. Callers receive clones so that
// committed state is never aliased outside the store.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Employees:     make([]Employee, len(s.Employees)),
		Courses:       make([]Course, len(s.Courses)),
		Sessions:      make([]TrainingSession, len(s.Sessions)),
		Registrations: make([]Registration, len(s.Registrations)),
		Attendance:    make([]AttendanceRecord, len(s.Attendance)),
	}
	copy(out.Employees, s.Employees)
	for i, c := range s.Courses {
		out.Courses[i] = cloneCourse(c)
	}
	for i, sess := range s.Sessions {
		out.Sessions[i] = cloneSession(sess)
	}
	copy(out.Registrations, s.Registrations)
	copy(out.Attendance, s.Attendance)
	return out
}

func cloneCourse(c Course) Course {
	if c.ValidityMonths != nil {
		v := *c.ValidityMonths
		c.ValidityMonths = &v
	}
	return c
}

func cloneSession(s TrainingSession) TrainingSession {
	if s.Trainer != nil {
		v := *s.Trainer
		s.Trainer = &v
	}
	if s.Organizer != nil {
		v := *s.Organizer
		s.Organizer = &v
	}
	return s
}

// FindEmployee locates an employee by normalized id.
func (s Snapshot) FindEmployee(id string) (Employee, bool) {
	key := NormalizeKey(id)
	for _, e := range s.Employees {
		if NormalizeKey(e.ID) == key {
			return e, true
		}
	}
	return Employee{}, false
}

// FindCourse locates a course by normalized code.
func (s Snapshot) FindCourse(code string) (Course, bool) {
	key := NormalizeKey(code)
	for _, c := range s.Courses {
		if NormalizeKey(c.Code) == key {
			return cloneCourse(c), true
		}
	}
	return Course{}, false
}

// FindSession locates a session by exact id. Session ids are
// system-generated and never normalized.
func (s Snapshot) FindSession(id string) (TrainingSession, bool) {
	for _, sess := range s.Sessions {
		if sess.ID == id {
			return cloneSession(sess), true
		}
	}
	return TrainingSession{}, false
}

// FindRegistration locates a registration by normalized employee id and
// exact session id.
func (s Snapshot) FindRegistration(employeeID, sessionID string) (Registration, bool) {
	key := NormalizeKey(employeeID)
	for _, r := range s.Registrations {
		if NormalizeKey(r.EmployeeID) == key && r.SessionID == sessionID {
			return r, true
		}
	}
	return Registration{}, false
}

// SumAttendance totals recorded hours for a registration id.
func (s Snapshot) SumAttendance(registrationID string) float64 {
	var total float64
	for _, a := range s.Attendance {
		if a.RegistrationID == registrationID {
			total += a.Hours
		}
	}
	return total
}
