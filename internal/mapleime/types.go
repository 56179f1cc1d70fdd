package mapleime

import "github.com/mapleime/doctor-portal/internal/appointments"

type graphQLRequest struct {
	OperationName string      `json:"operationName,omitempty"`
	Query         string      `json:"query"`
	Variables     interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// Narrow response payloads for each API operation.

type doctorAppointmentsData struct {
	GetDoctorAppointments *struct {
		HasNextPage  bool                       `json:"hasNextPage"`
		Appointments []appointments.Appointment `json:"appointments"`
	} `json:"getDoctorAppointments"`
}

type appointmentByIDData struct {
	GetAppointmentByID *appointments.Detail `json:"getAppointmentById"`
}

type mutationStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type updateStatusData struct {
	UpdateAppointmentStatus *mutationStatus `json:"updateAppointmentStatus"`
}

type updateDecisionData struct {
	UpdateAppointmentDecision *mutationStatus `json:"updateAppointmentDecision"`
}

// WeeklySlot is one weekday's bookable window in the doctor's settings.
type WeeklySlot struct {
	Day     string `json:"day"`
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// DoctorSettings is the scheduling configuration stored upstream.
type DoctorSettings struct {
	SlotIntervalMinutes int          `json:"slotIntervalMinutes"`
	TimeZone            string       `json:"timeZone"`
	Availability        []WeeklySlot `json:"availability"`
}

type doctorSettingsData struct {
	GetDoctorSettings *DoctorSettings `json:"getDoctorSettings"`
}

type updateSettingsData struct {
	UpdateDoctorSettings *mutationStatus `json:"updateDoctorSettings"`
}
