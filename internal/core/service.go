package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"traincore/pkg/domain"
)

// Service exposes the reconciliation operations over the store. Every
// mutating operation finishes with exactly one save (or none when nothing
// changed), so observers always see a consistent post-state.
type Service struct {
	store   *Store
	metrics MetricsRecorder
	newID   func() string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMetrics installs a recorder observed once per operation.
func WithMetrics(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithIDGenerator overrides system id generation (tests).
func WithIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService constructs a reconciliation service backed by the supplied
// store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		metrics: NopMetrics{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying state store for reads and subscriptions.
func (s *Service) Store() *Store { return s.store }

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
}

// EmployeeInput carries the caller-supplied employee fields. IsActive nil
// means "not supplied" and defaults to active.
type EmployeeInput struct {
	ID                string
	NameLocal         string
	NameInternational string
	Department        string
	Position          string
	IsActive          *bool
}

// CourseInput carries the caller-supplied course fields.
type CourseInput struct {
	Code              string
	NameLocal         string
	NameInternational string
	Category          string
	TotalHours        float64
	ValidityMonths    *int
}

// SessionInput carries the caller-supplied session fields. ID is optional;
// a missing id is generated.
type SessionInput struct {
	ID         string
	CourseCode string
	StartDate  string
	EndDate    string
	Location   string
	Trainer    *string
	Organizer  *string
}

// RegistrationInput enrolls an employee into a session.
type RegistrationInput struct {
	EmployeeID string
	SessionID  string
}

// AttendanceInput appends logged hours to a registration.
type AttendanceInput struct {
	RegistrationID string
	Date           string
	Hours          float64
}

// ManualHistoryInput is the compound manual/bulk history entry.
type ManualHistoryInput struct {
	EmployeeID string
	CourseCode string
	Date       string
	Hours      float64
	Trainer    *string
}

// UpsertEmployee inserts or replaces an employee keyed by normalized id.
// A re-add whose id normalizes to an existing employee replaces that record
// in place.
func (s *Service) UpsertEmployee(ctx context.Context, in EmployeeInput) (emp domain.Employee, err error) {
	defer func(start time.Time) { s.observe(ctx, "upsert_employee", start, err) }(time.Now())

	id := strings.TrimSpace(in.ID)
	if id == "" {
		return domain.Employee{}, &domain.ValidationError{Field: "employee id", Reason: "is required"}
	}
	emp = domain.NewEmployee(id, in.NameLocal, in.NameInternational, in.Department, in.Position, in.IsActive)
	err = s.store.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		key := domain.NormalizeKey(id)
		for i, existing := range next.Employees {
			if domain.NormalizeKey(existing.ID) == key {
				next.Employees[i] = emp
				return true, nil
			}
		}
		next.Employees = append(next.Employees, emp)
		return true, nil
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return emp, nil
}

// ToggleEmployeeStatus flips an employee's active flag. An unknown id is a
// silent no-op that skips the save.
func (s *Service) ToggleEmployeeStatus(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "toggle_employee_status", start, err) }(time.Now())

	err = s.store.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		key := domain.NormalizeKey(id)
		for i, emp := range next.Employees {
			if domain.NormalizeKey(emp.ID) == key {
				next.Employees[i].IsActive = !emp.IsActive
				return true, nil
			}
		}
		return false, nil
	})
	return err
}

// DeleteEmployee removes an employee along with every registration whose
// employee id normalizes to it and every attendance record hanging off
// those registrations, as one atomic transition with a single save.
func (s *Service) DeleteEmployee(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.observe(ctx, "delete_employee", start, err) }(time.Now())

	err = s.store.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		key := domain.NormalizeKey(id)

		kept := next.Employees[:0]
		removed := false
		for _, emp := range next.Employees {
			if domain.NormalizeKey(emp.ID) == key {
				removed = true
				continue
			}
			kept = append(kept, emp)
		}
		if !removed {
			return false, nil
		}
		next.Employees = kept

		doomed := make(map[string]struct{})
		regs := next.Registrations[:0]
		for _, reg := range next.Registrations {
			if domain.NormalizeKey(reg.EmployeeID) == key {
				doomed[reg.ID] = struct{}{}
				continue
			}
			regs = append(regs, reg)
		}
		next.Registrations = regs

		atts := next.Attendance[:0]
		for _, att := range next.Attendance {
			if _, gone := doomed[att.RegistrationID]; gone {
				continue
			}
			atts = append(atts, att)
		}
		next.Attendance = atts
		return true, nil
	})
	return err
}

// UpsertCourse inserts or replaces a course keyed by normalized code. The
// code, at least one name, and a positive hour total are required.
func (s *Service) UpsertCourse(ctx context.Context, in CourseInput) (course domain.Course, err error) {
	defer func(start time.Time) { s.observe(ctx, "upsert_course", start, err) }(time.Now())

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return domain.Course{}, &domain.ValidationError{Field: "course code", Reason: "is required"}
	}
	if strings.TrimSpace(in.NameLocal) == "" && strings.TrimSpace(in.NameInternational) == "" {
		return domain.Course{}, &domain.ValidationError{Field: "course name", Reason: "at least one language is required"}
	}
	if in.TotalHours <= 0 {
		return domain.Course{}, &domain.ValidationError{Field: "total hours", Reason: "must be positive"}
	}
	course = domain.NewCourse(code, in.NameLocal, in.NameInternational, in.Category, in.TotalHours, in.ValidityMonths)
	err = s.store.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		key := domain.NormalizeKey(code)
		for i, existing := range next.Courses {
			if domain.NormalizeKey(existing.Code) == key {
				next.Courses[i] = course
				return true, nil
			}
		}
		next.Courses = append(next.Courses, course)
		return true, nil
	})
	if err != nil {
		return domain.Course{}, err
	}
	return course, nil
}

// AddSession appends a session. The course code must be present but does
// not have to resolve yet; unresolved codes are tolerated until status
// derivation.
func (s *Service) AddSession(ctx context.Context, in SessionInput) (session domain.TrainingSession, err error) {
	defer func(start time.Time) { s.observe(ctx, "add_session", start, err) }(time.Now())

	if strings.TrimSpace(in.CourseCode) == "" {
		return domain.TrainingSession{}, &domain.ValidationError{Field: "course code", Reason: "is required"}
	}
	session = domain.TrainingSession{
		ID:         in.ID,
		CourseCode: in.CourseCode,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Location:   in.Location,
		Trainer:    in.Trainer,
		Organizer:  in.Organizer,
	}
	if session.ID == "" {
		session.ID = s.newID()
	}
	err = s.store.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		next.Sessions = append(next.Sessions, session)
		return true, nil
	})
	if err != nil {
		return domain.TrainingSession{}, err
	}
	return session, nil
}

// RegisterEmployee enrolls an employee into a session with status
// Registered. A second registration for the same normalized (employee,
// session) pair fails with a DuplicateRegistrationError and does not save.
func (s *Service) RegisterEmployee(ctx context.Context, in RegistrationInput) (reg domain.Registration, err error) {
	defer func(start time.Time) { s.observe(ctx, "register_employee", start, err) }(time.Now())

	if strings.TrimSpace(in.EmployeeID) == "" {
		return domain.Registration{}, &domain.ValidationError{Field: "employee id", Reason: "is required"}
	}
	if strings.TrimSpace(in.SessionID) == "" {
		return domain.Registration{}, &domain.ValidationError{Field: "session id", Reason: "is required"}
	}
	reg = domain.Registration{
		ID:         s.newID(),
		EmployeeID: in.EmployeeID,
		SessionID:  in.SessionID,
		Status:     domain.StatusRegistered,
	}
	err = s.store.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		if _, exists := next.FindRegistration(in.EmployeeID, in.SessionID); exists {
			return false, &domain.DuplicateRegistrationError{EmployeeID: in.EmployeeID, SessionID: in.SessionID}
		}
		next.Registrations = append(next.Registrations, reg)
		return true, nil
	})
	if err != nil {
		return domain.Registration{}, err
	}
	return reg, nil
}

// RecordAttendance appends an attendance record unconditionally (multiple
// records per registration are legitimate) and re-derives the owning
// registration's status. A registration, session, or course that cannot be
// resolved skips derivation rather than failing. One save regardless of
// whether the status changed.
func (s *Service) RecordAttendance(ctx context.Context, in AttendanceInput) (record domain.AttendanceRecord, err error) {
	defer func(start time.Time) { s.observe(ctx, "record_attendance", start, err) }(time.Now())

	if strings.TrimSpace(in.RegistrationID) == "" {
		return domain.AttendanceRecord{}, &domain.ValidationError{Field: "registration id", Reason: "is required"}
	}
	if in.Hours < 0 {
		return domain.AttendanceRecord{}, &domain.ValidationError{Field: "hours", Reason: "must not be negative"}
	}
	record = domain.AttendanceRecord{
		ID:             s.newID(),
		RegistrationID: in.RegistrationID,
		Date:           in.Date,
		Hours:          in.Hours,
	}
	err = s.store.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		next.Attendance = append(next.Attendance, record)
		deriveRegistrationStatus(next, in.RegistrationID)
		return true, nil
	})
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	return record, nil
}

// RecordManualHistory is the compound bulk-history workhorse: it finds or
// creates the synthetic manual-entry session for the (course, date) pair,
// finds or creates the registration, appends one attendance record, and
// re-derives the status — all under a single save. Calling it repeatedly
// for the same (employee, course, date) triple reuses the session and
// registration and appends one more record each time.
func (s *Service) RecordManualHistory(ctx context.Context, in ManualHistoryInput) (record domain.AttendanceRecord, err error) {
	defer func(start time.Time) { s.observe(ctx, "record_manual_history", start, err) }(time.Now())

	if strings.TrimSpace(in.EmployeeID) == "" {
		return domain.AttendanceRecord{}, &domain.ValidationError{Field: "employee id", Reason: "is required"}
	}
	if strings.TrimSpace(in.CourseCode) == "" {
		return domain.AttendanceRecord{}, &domain.ValidationError{Field: "course code", Reason: "is required"}
	}
	if strings.TrimSpace(in.Date) == "" {
		return domain.AttendanceRecord{}, &domain.ValidationError{Field: "date", Reason: "is required"}
	}
	if in.Hours < 0 {
		return domain.AttendanceRecord{}, &domain.ValidationError{Field: "hours", Reason: "must not be negative"}
	}

	err = s.store.mutate(ctx, func(next *domain.Snapshot) (bool, error) {
		session, ok := findManualSession(next, in.CourseCode, in.Date)
		if !ok {
			trainer := in.Trainer
			if trainer == nil {
				t := domain.ManualEntryTrainer
				trainer = &t
			}
			organizer := domain.ManualEntryOrganizer
			session = domain.TrainingSession{
				ID:         s.newID(),
				CourseCode: in.CourseCode,
				StartDate:  in.Date,
				EndDate:    in.Date,
				Location:   domain.ManualEntryLocation,
				Trainer:    trainer,
				Organizer:  &organizer,
			}
			next.Sessions = append(next.Sessions, session)
		}

		reg, ok := next.FindRegistration(in.EmployeeID, session.ID)
		if !ok {
			reg = domain.Registration{
				ID:         s.newID(),
				EmployeeID: in.EmployeeID,
				SessionID:  session.ID,
				Status:     domain.StatusRegistered,
			}
			next.Registrations = append(next.Registrations, reg)
		}

		record = domain.AttendanceRecord{
			ID:             s.newID(),
			RegistrationID: reg.ID,
			Date:           in.Date,
			Hours:          in.Hours,
		}
		next.Attendance = append(next.Attendance, record)
		deriveRegistrationStatus(next, reg.ID)
		return true, nil
	})
	if err != nil {
		return domain.AttendanceRecord{}, err
	}
	return record, nil
}

// findManualSession locates the synthetic manual-entry session for a
// (course, date) pair: normalized-equal course code, matching start date,
// and the manual-entry location sentinel.
func findManualSession(snap *domain.Snapshot, courseCode, date string) (domain.TrainingSession, bool) {
	key := domain.NormalizeKey(courseCode)
	for _, sess := range snap.Sessions {
		if domain.NormalizeKey(sess.CourseCode) == key && sess.StartDate == date && sess.Location == domain.ManualEntryLocation {
			return sess, true
		}
	}
	return domain.TrainingSession{}, false
}
