package domain

import (
	"encoding/json"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		" emp001 ":  "emp001",
		"EMP001":    "emp001",
		"\tSeC101 ": "sec101",
		"":          "",
	}
	for in, want := range cases {
		if got := NormalizeKey(in); got != want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusOutranks(t *testing.T) {
	if !StatusAttended.Outranks(StatusPartiallyAttended) {
		t.Fatalf("attended should outrank partially attended")
	}
	if !StatusPartiallyAttended.Outranks(StatusRegistered) {
		t.Fatalf("partially attended should outrank registered")
	}
	if StatusRegistered.Outranks(StatusAbsent) || StatusAbsent.Outranks(StatusRegistered) {
		t.Fatalf("registered and absent share a rank")
	}
	if StatusRegistered.Outranks(StatusAttended) {
		t.Fatalf("derivation must never rank backwards")
	}
}

func TestEmployeeUnmarshalBackfillsIsActive(t *testing.T) {
	var legacy Employee
	if err := json.Unmarshal([]byte(`{"id":"EMP009","name_local":"X"}`), &legacy); err != nil {
		t.Fatalf("unmarshal legacy: %v", err)
	}
	if !legacy.IsActive {
		t.Fatalf("missing is_active must load as active")
	}

	var inactive Employee
	if err := json.Unmarshal([]byte(`{"id":"EMP010","is_active":false}`), &inactive); err != nil {
		t.Fatalf("unmarshal explicit: %v", err)
	}
	if inactive.IsActive {
		t.Fatalf("explicit is_active=false must be preserved")
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	orig := SeedSnapshot()
	clone := orig.Clone()

	clone.Employees[0].ID = "MUTATED"
	*clone.Courses[0].ValidityMonths = 99
	*clone.Sessions[0].Trainer = "MUTATED"
	clone.Registrations[0].Status = StatusAbsent

	if orig.Employees[0].ID == "MUTATED" {
		t.Fatalf("employee slice aliased")
	}
	if *orig.Courses[0].ValidityMonths == 99 {
		t.Fatalf("course validity pointer aliased")
	}
	if *orig.Sessions[0].Trainer == "MUTATED" {
		t.Fatalf("session trainer pointer aliased")
	}
	if orig.Registrations[0].Status == StatusAbsent {
		t.Fatalf("registration slice aliased")
	}
}

func TestSnapshotLookupsUseNormalizedKeys(t *testing.T) {
	snap := SeedSnapshot()

	if _, ok := snap.FindEmployee("  emp001 "); !ok {
		t.Fatalf("employee lookup should normalize")
	}
	if _, ok := snap.FindCourse("sec101"); !ok {
		t.Fatalf("course lookup should normalize")
	}
	if _, ok := snap.FindSession("sess001"); ok {
		t.Fatalf("session ids are exact, not normalized")
	}
	if _, ok := snap.FindSession("SESS001"); !ok {
		t.Fatalf("session lookup by exact id failed")
	}
	if _, ok := snap.FindRegistration(" EMP001 ", "SESS001"); !ok {
		t.Fatalf("registration lookup should normalize the employee id")
	}
}

func TestSumAttendance(t *testing.T) {
	snap := Snapshot{Attendance: []AttendanceRecord{
		{ID: "A1", RegistrationID: "R1", Hours: 3},
		{ID: "A2", RegistrationID: "R1", Hours: 5},
		{ID: "A3", RegistrationID: "R2", Hours: 2},
	}}
	if got := snap.SumAttendance("R1"); got != 8 {
		t.Fatalf("sum = %v, want 8", got)
	}
	if got := snap.SumAttendance("R9"); got != 0 {
		t.Fatalf("sum for unknown registration = %v, want 0", got)
	}
}
