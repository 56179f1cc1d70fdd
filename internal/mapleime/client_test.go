package mapleime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mapleime/doctor-portal/internal/appointments"
)

type recordedRequest struct {
	Authorization string
	Body          graphQLRequest
}

// fakeUpstream is a canned GraphQL endpoint recording every request.
func fakeUpstream(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		requests = append(requests, recordedRequest{
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestListAppointments(t *testing.T) {
	srv, requests := fakeUpstream(t, http.StatusOK, `{
		"data": {
			"getDoctorAppointments": {
				"hasNextPage": true,
				"appointments": [
					{"id": "appt-1", "patientName": "Jane Roe", "date": "2026-03-11", "time": "09:00", "status": "pending", "fee": 120},
					{"id": "appt-2", "patientName": "John Doe", "date": "2026-03-12", "time": "2:30 PM", "status": "approved"}
				]
			}
		}
	}`)

	client := NewClient(srv.URL, "token-123", nil)
	page, err := client.ListAppointments(context.Background(), appointments.ListQuery{
		DoctorID:  "doc-1",
		StartDate: "2026-03-01",
		Status:    "pending",
		Page:      2,
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if !page.HasNextPage || len(page.Appointments) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Appointments[0].ID != "appt-1" || page.Appointments[0].Fee != 120 {
		t.Errorf("unexpected first row: %+v", page.Appointments[0])
	}

	req := (*requests)[0]
	if req.Authorization != "Bearer token-123" {
		t.Errorf("expected bearer auth, got %q", req.Authorization)
	}
	if req.Body.OperationName != "GetDoctorAppointments" {
		t.Errorf("unexpected operation %q", req.Body.OperationName)
	}
	vars, ok := req.Body.Variables.(map[string]interface{})
	if !ok {
		t.Fatalf("variables not a map: %T", req.Body.Variables)
	}
	if vars["doctorId"] != "doc-1" || vars["status"] != "pending" {
		t.Errorf("unexpected variables: %v", vars)
	}
	if _, present := vars["endDate"]; present {
		t.Error("empty endDate must be omitted")
	}
}

func TestListAppointmentsRequiresDoctorID(t *testing.T) {
	client := NewClient("http://unused", "token", nil)
	if _, err := client.ListAppointments(context.Background(), appointments.ListQuery{}); err == nil {
		t.Fatal("expected error for missing doctor id")
	}
}

func TestListAppointmentsNullPayload(t *testing.T) {
	srv, _ := fakeUpstream(t, http.StatusOK, `{"data": {"getDoctorAppointments": null}}`)
	client := NewClient(srv.URL, "token", nil)

	page, err := client.ListAppointments(context.Background(), appointments.ListQuery{DoctorID: "doc-1"})
	if err != nil {
		t.Fatalf("ListAppointments: %v", err)
	}
	if page.HasNextPage || len(page.Appointments) != 0 {
		t.Errorf("null payload maps to an empty page, got %+v", page)
	}
}

func TestAppointmentByIDNotFound(t *testing.T) {
	srv, _ := fakeUpstream(t, http.StatusOK, `{"data": {"getAppointmentById": null}}`)
	client := NewClient(srv.URL, "token", nil)

	_, err := client.AppointmentByID(context.Background(), "appt-404", "doc-1")
	if !errors.Is(err, appointments.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppointmentByID(t *testing.T) {
	srv, _ := fakeUpstream(t, http.StatusOK, `{
		"data": {
			"getAppointmentById": {
				"id": "appt-1",
				"patientName": "Jane Roe",
				"patientPhone": "555-0101",
				"date": "2026-03-11",
				"time": "09:00",
				"status": "approved",
				"rescheduleHistory": [
					{"oldDate": "2026-03-09", "newDate": "2026-03-11", "reason": "conflict"}
				]
			}
		}
	}`)
	client := NewClient(srv.URL, "token", nil)

	detail, err := client.AppointmentByID(context.Background(), "appt-1", "doc-1")
	if err != nil {
		t.Fatalf("AppointmentByID: %v", err)
	}
	if detail.ID != "appt-1" {
		t.Errorf("unexpected detail: %+v", detail)
	}
	if detail.PatientPhone == nil || *detail.PatientPhone != "555-0101" {
		t.Error("expected patient phone")
	}
	if len(detail.RescheduleHistory) != 1 || detail.RescheduleHistory[0].Reason == nil {
		t.Errorf("expected reschedule history, got %+v", detail.RescheduleHistory)
	}
}

func TestUpdateStatus(t *testing.T) {
	srv, requests := fakeUpstream(t, http.StatusOK, `{
		"data": {"updateAppointmentStatus": {"success": true, "message": "Appointment approved"}}
	}`)
	client := NewClient(srv.URL, "token", nil)

	result, err := client.UpdateStatus(context.Background(), "appt-1", "doc-1", "approved", "")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if !result.Success || result.Message != "Appointment approved" {
		t.Errorf("unexpected result: %+v", result)
	}

	vars := (*requests)[0].Body.Variables.(map[string]interface{})
	if _, present := vars["notes"]; present {
		t.Error("empty notes must be omitted")
	}
}

func TestUpdateDecision(t *testing.T) {
	srv, requests := fakeUpstream(t, http.StatusOK, `{
		"data": {"updateAppointmentDecision": {"success": true, "message": "Attendance recorded"}}
	}`)
	client := NewClient(srv.URL, "token", nil)

	result, err := client.UpdateDecision(context.Background(), "appt-1", "doc-1", "not_shown", "patient unreachable")
	if err != nil {
		t.Fatalf("UpdateDecision: %v", err)
	}
	if !result.Success {
		t.Errorf("unexpected result: %+v", result)
	}

	body := (*requests)[0].Body
	if body.OperationName != "UpdateAppointmentDecision" {
		t.Errorf("unexpected operation %q", body.OperationName)
	}
	vars := body.Variables.(map[string]interface{})
	if vars["decision"] != "not_shown" || vars["notes"] != "patient unreachable" {
		t.Errorf("unexpected variables: %v", vars)
	}
}

func TestGraphQLErrorEnvelope(t *testing.T) {
	srv, _ := fakeUpstream(t, http.StatusOK, `{
		"errors": [{"message": "doctor not found"}, {"message": "access denied"}]
	}`)
	client := NewClient(srv.URL, "token", nil)

	_, err := client.ListAppointments(context.Background(), appointments.ListQuery{DoctorID: "doc-1"})
	if err == nil {
		t.Fatal("expected envelope errors to surface")
	}
	if got := err.Error(); got != "mapleime: graphql error: doctor not found, access denied" {
		t.Errorf("unexpected error %q", got)
	}
}

func TestHTTPStatusError(t *testing.T) {
	srv, _ := fakeUpstream(t, http.StatusBadGateway, `upstream down`)
	client := NewClient(srv.URL, "token", nil)

	if _, err := client.ListAppointments(context.Background(), appointments.ListQuery{DoctorID: "doc-1"}); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestDoctorSettingsRoundTrip(t *testing.T) {
	srv, _ := fakeUpstream(t, http.StatusOK, `{
		"data": {
			"getDoctorSettings": {
				"slotIntervalMinutes": 30,
				"timeZone": "America/Toronto",
				"availability": [
					{"day": "monday", "enabled": true, "start": "09:00", "end": "17:00"}
				]
			}
		}
	}`)
	client := NewClient(srv.URL, "token", nil)

	settings, err := client.DoctorSettings(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("DoctorSettings: %v", err)
	}
	if settings.SlotIntervalMinutes != 30 || settings.TimeZone != "America/Toronto" {
		t.Errorf("unexpected settings: %+v", settings)
	}
	if len(settings.Availability) != 1 || !settings.Availability[0].Enabled {
		t.Errorf("unexpected availability: %+v", settings.Availability)
	}
}

func TestEndpointNotConfigured(t *testing.T) {
	client := NewClient("", "token", nil)
	if _, err := client.ListAppointments(context.Background(), appointments.ListQuery{DoctorID: "doc-1"}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}
