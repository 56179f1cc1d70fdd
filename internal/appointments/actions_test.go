package appointments

import (
	"testing"
)

func actionCodes(actions []Action) []string {
	var codes []string
	for _, a := range actions {
		codes = append(codes, a.Code)
	}
	return codes
}

func equalCodes(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAvailableActionsTerminal(t *testing.T) {
	for _, status := range []string{"completed", "canceled", "cancelled", "Completed"} {
		a := Appointment{ID: "1", Status: status, Date: "2026-03-10", Time: "09:00"}
		if got := AvailableActions(a, ref, nil); got != nil {
			t.Errorf("status %q should have no actions, got %v", status, actionCodes(got))
		}
	}
}

func TestAvailableActionsPending(t *testing.T) {
	a := Appointment{ID: "1", Status: "pending", Date: "2026-03-11", Time: "09:00"}
	got := actionCodes(AvailableActions(a, ref, nil))
	if !equalCodes(got, []string{ActionApprove, ActionCancel}) {
		t.Errorf("pending should offer approve then cancel, got %v", got)
	}
}

func TestAvailableActionsApprovedUpcoming(t *testing.T) {
	a := Appointment{ID: "1", Status: "approved", Date: "2026-03-11", Time: "09:00", DoctorTimeZone: "UTC"}
	got := actionCodes(AvailableActions(a, ref, nil))
	if !equalCodes(got, []string{ActionCancel}) {
		t.Errorf("approved upcoming should offer only cancel, got %v", got)
	}
}

func TestAvailableActionsApprovedPast(t *testing.T) {
	a := Appointment{ID: "1", Status: "approved", Date: "2026-03-10", Time: "08:00", DoctorTimeZone: "UTC"}
	got := actionCodes(AvailableActions(a, ref, nil))
	if !equalCodes(got, []string{ActionShown, ActionNotShown, ActionCancel}) {
		t.Errorf("approved past should lead with attendance, got %v", got)
	}
}

func TestAvailableActionsPastPendingHasNoAttendance(t *testing.T) {
	a := Appointment{ID: "1", Status: "pending", Date: "2026-03-10", Time: "08:00", DoctorTimeZone: "UTC"}
	got := actionCodes(AvailableActions(a, ref, nil))
	if !equalCodes(got, []string{ActionApprove, ActionCancel}) {
		t.Errorf("attendance is reserved for approved appointments, got %v", got)
	}
}

func TestAvailableActionsUnparseableTimeStaysUpcoming(t *testing.T) {
	a := Appointment{ID: "1", Status: "approved", Date: "2026-03-01", Time: "whenever"}
	got := actionCodes(AvailableActions(a, ref, nil))
	if !equalCodes(got, []string{ActionCancel}) {
		t.Errorf("broken timestamp must not unlock attendance, got %v", got)
	}
}

func TestCancelRequiresNote(t *testing.T) {
	a := Appointment{ID: "1", Status: "pending", Date: "2026-03-11", Time: "09:00"}
	for _, action := range AvailableActions(a, ref, nil) {
		if action.Code == ActionCancel && !action.RequiresNote {
			t.Error("cancel must require a note")
		}
		if action.Code == ActionApprove && action.RequiresNote {
			t.Error("approve must not require a note")
		}
	}
}

func TestKnownAction(t *testing.T) {
	for _, code := range []string{ActionApprove, ActionCancel, ActionShown, ActionNotShown} {
		if !KnownAction(code) {
			t.Errorf("%q should be known", code)
		}
	}
	for _, code := range []string{"", "delete", "cancelled", "shown-up"} {
		if KnownAction(code) {
			t.Errorf("%q should not be known", code)
		}
	}
}

func TestIsAttendanceAction(t *testing.T) {
	if !IsAttendanceAction(ActionShown) || !IsAttendanceAction(ActionNotShown) {
		t.Error("shown and not_shown are attendance actions")
	}
	if IsAttendanceAction(ActionApprove) || IsAttendanceAction(ActionCancel) {
		t.Error("status actions are not attendance actions")
	}
}
