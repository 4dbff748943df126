package core

import "traincore/pkg/domain"

// deriveRegistrationStatus recomputes a registration's completion status
// from its summed attendance hours against the course's total hours.
//
// The derivation is strictly forward: the new status is written only when
// it outranks the current one, so an advanced registration never regresses
// (a zero-hour record cannot reset Attended). A registration, session, or
// course that cannot be resolved skips derivation entirely; imports may
// arrive out of dependency order and that is tolerated, not an error.
func deriveRegistrationStatus(snap *domain.Snapshot, registrationID string) {
	idx := -1
	for i, reg := range snap.Registrations {
		if reg.ID == registrationID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}
	reg := snap.Registrations[idx]

	session, ok := snap.FindSession(reg.SessionID)
	if !ok {
		return
	}
	course, ok := snap.FindCourse(session.CourseCode)
	if !ok || course.TotalHours <= 0 {
		return
	}

	total := snap.SumAttendance(reg.ID)
	derived := domain.StatusRegistered
	switch {
	case total >= course.TotalHours:
		derived = domain.StatusAttended
	case total > 0:
		derived = domain.StatusPartiallyAttended
	}
	if derived.Outranks(reg.Status) {
		snap.Registrations[idx].Status = derived
	}
}
