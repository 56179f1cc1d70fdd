package appointments

import (
	"time"

	"github.com/mapleime/doctor-portal/pkg/logging"
)

// Action codes carry the exact values the upstream mutations expect; note
// that the status mutation uses the American spelling "canceled".
const (
	ActionApprove  = "approved"
	ActionCancel   = "canceled"
	ActionShown    = AttendanceShown
	ActionNotShown = AttendanceNotShown
)

// Action is one entry of the per-row decision menu.
type Action struct {
	Code         string `json:"code"`
	Label        string `json:"label"`
	Description  string `json:"description"`
	RequiresNote bool   `json:"requiresNote"`
}

var (
	approveAction = Action{
		Code:        ActionApprove,
		Label:       "Approve",
		Description: "Confirm & notify patient via email + SMS",
	}
	cancelAction = Action{
		Code:         ActionCancel,
		Label:        "Cancel",
		Description:  "Cancel & notify patient via email + SMS",
		RequiresNote: true,
	}
	shownAction = Action{
		Code:        ActionShown,
		Label:       "Mark Show",
		Description: "Mark attendance: Patient showed up",
	}
	notShownAction = Action{
		Code:         ActionNotShown,
		Label:        "No Show",
		Description:  "Mark attendance: Patient did not show up",
		RequiresNote: true,
	}
)

// IsAttendanceAction reports whether code targets the attendance (decision)
// mutation rather than the status mutation.
func IsAttendanceAction(code string) bool {
	return code == ActionShown || code == ActionNotShown
}

// KnownAction reports whether code is one this service can execute.
func KnownAction(code string) bool {
	switch code {
	case ActionApprove, ActionCancel, ActionShown, ActionNotShown:
		return true
	}
	return false
}

// AvailableActions returns the ordered decision menu for an appointment.
//
// Completed and cancelled appointments are terminal and return nothing, so
// callers suppress the menu entirely. Otherwise the base set is
// approve/cancel minus whichever matches the current status. Once an
// approved appointment is past due, attendance recording leads the menu:
// shown first, then not_shown, then cancel.
func AvailableActions(a Appointment, now time.Time, logger *logging.Logger) []Action {
	if a.IsTerminal() {
		return nil
	}

	status := a.CanonicalStatus()

	var out []Action
	if status == StatusApproved && IsPastDue(a, now, logger) {
		out = append(out, shownAction, notShownAction)
	}
	if status != StatusApproved {
		out = append(out, approveAction)
	}
	if status != StatusCancelled {
		out = append(out, cancelAction)
	}
	return out
}
