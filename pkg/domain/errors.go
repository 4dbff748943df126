package domain

import "fmt"

// ValidationError reports a required-field precondition failure on a write
// operation. The caller decides whether to surface or collect it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// DuplicateRegistrationError reports an attempt to register an (employee,
// session) pair that already has a registration. The operation does not
// save when it returns this error.
type DuplicateRegistrationError struct {
	EmployeeID string
	SessionID  string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("registration for employee %q in session %q already exists", e.EmployeeID, e.SessionID)
}

// MalformedSnapshotError reports persisted or imported bytes that fail to
// parse or lack the required collections. On load the store recovers with
// the seed dataset; on import the current state is left untouched.
type MalformedSnapshotError struct {
	Reason string
	Err    error
}

func (e *MalformedSnapshotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed snapshot: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed snapshot: %s", e.Reason)
}

func (e *MalformedSnapshotError) Unwrap() error { return e.Err }
