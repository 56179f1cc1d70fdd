package appointments

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an appointment does not exist or is not
// owned by the requesting doctor; upstream does not distinguish the two.
var ErrNotFound = errors.New("appointments: not found")

// ListQuery carries the variables of a remote appointment list query.
// Empty string/zero fields are omitted from the remote call.
type ListQuery struct {
	DoctorID  string
	StartDate string
	EndDate   string
	Status    string
	Page      int
	Limit     int
}

// Page is one page of remote results.
type Page struct {
	HasNextPage  bool          `json:"hasNextPage"`
	Appointments []Appointment `json:"appointments"`
}

// Source reads appointment data from the external system.
type Source interface {
	ListAppointments(ctx context.Context, q ListQuery) (*Page, error)
	AppointmentByID(ctx context.Context, id, doctorID string) (*Detail, error)
}

// ActionResult is the outcome of a remote mutation as reported upstream.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Mutator executes appointment mutations against the external system.
// Status changes and attendance decisions are distinct remote operations.
type Mutator interface {
	UpdateStatus(ctx context.Context, id, doctorID, status, notes string) (ActionResult, error)
	UpdateDecision(ctx context.Context, id, doctorID, decision, notes string) (ActionResult, error)
}
