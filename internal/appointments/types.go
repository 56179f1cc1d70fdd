package appointments

import "strings"

// Canonical status vocabulary. The upstream API is loose about casing and
// uses both "cancelled" and "canceled"; NormalizeStatus folds all of that
// into the lower-case forms below. Unknown statuses pass through verbatim
// (lower-cased) so new upstream values render instead of disappearing.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Attendance decision values.
const (
	AttendanceShown    = "shown"
	AttendanceNotShown = "not_shown"
)

// DefaultAppointmentType is shown when upstream omits the type label.
const DefaultAppointmentType = "General Consultation"

// Appointment is the list-level record returned by GetDoctorAppointments.
// All civil date/time fields are doctor-local; Date is YYYY-MM-DD and Time
// is either "H:MM" (24h) or "H:MM AM/PM" (12h), not pre-normalized.
type Appointment struct {
	ID              string  `json:"id"`
	TrackingID      *int64  `json:"trackingId"`
	PatientName     string  `json:"patientName"`
	PatientEmail    string  `json:"patientEmail"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	Status          string  `json:"status"`
	AppointmentType string  `json:"appointmentType"`
	Fee             float64 `json:"fee"`
	Attendance      *string `json:"attendance"`
	DoctorTimeZone  string  `json:"doctorTimeZone,omitempty"`
}

// NormalizeStatus lower-cases a status and folds the American spelling of
// cancelled into the canonical one.
func NormalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "canceled" {
		return StatusCancelled
	}
	return s
}

// CanonicalStatus returns the appointment's normalized status, defaulting to
// pending when upstream sent an empty string.
func (a Appointment) CanonicalStatus() string {
	s := NormalizeStatus(a.Status)
	if s == "" {
		return StatusPending
	}
	return s
}

// Type returns the appointment type label, defaulting when absent.
func (a Appointment) Type() string {
	if strings.TrimSpace(a.AppointmentType) == "" {
		return DefaultAppointmentType
	}
	return a.AppointmentType
}

// IsTerminal reports whether the appointment is in a state that exposes no
// further actions.
func (a Appointment) IsTerminal() bool {
	switch a.CanonicalStatus() {
	case StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// FamilyMember is a dependent listed on the appointment detail.
type FamilyMember struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	Gender      string `json:"gender"`
}

// RescheduleEntry is one entry of an appointment's reschedule history,
// ordered oldest first as returned by upstream.
type RescheduleEntry struct {
	OldDate           *string `json:"oldDate"`
	OldTime           *string `json:"oldTime"`
	NewDate           *string `json:"newDate"`
	NewTime           *string `json:"newTime"`
	RescheduledAt     *string `json:"rescheduledAt"`
	RescheduledByName *string `json:"rescheduledByName"`
	Reason            *string `json:"reason"`
}

// Detail is the full appointment record returned by GetAppointmentById.
// Read-only in this service; only the external system mutates it.
type Detail struct {
	Appointment

	PatientPhone       *string `json:"patientPhone"`
	PatientAddress     *string `json:"patientAddress"`
	PatientPostalCode  *string `json:"patientPostalCode"`
	PatientDateOfBirth *string `json:"patientDateOfBirth"`
	PatientGender      *string `json:"patientGender"`

	FamilyMembers []FamilyMember `json:"familyMembers"`

	Notes       *string `json:"notes"`
	StatusNotes *string `json:"statusNotes"`
	DoctorID    string  `json:"doctorId"`

	AttendanceNotes         *string `json:"attendanceNotes"`
	AttendanceUpdatedAt     *string `json:"attendanceUpdatedAt"`
	AttendanceUpdatedByName *string `json:"attendanceUpdatedByName"`

	RescheduleAttemptUsed   bool              `json:"rescheduleAttemptUsed"`
	RescheduleRequestStatus *string           `json:"rescheduleRequestStatus"`
	RescheduleHistory       []RescheduleEntry `json:"rescheduleHistory"`

	CancellationStatus *string `json:"cancellationStatus"`
	CancellationReason *string `json:"cancellationReason"`

	CreatedAt *string `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt"`
}
