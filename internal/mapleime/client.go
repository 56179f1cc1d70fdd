package mapleime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mapleime/doctor-portal/internal/appointments"
	"github.com/mapleime/doctor-portal/internal/observability/metrics"
	"github.com/mapleime/doctor-portal/pkg/logging"
)

const defaultTimeout = 20 * time.Second

const (
	queryDoctorAppointments = `query GetDoctorAppointments($doctorId: ID!, $startDate: String, $endDate: String, $status: String, $page: Int, $limit: Int) {
  getDoctorAppointments(doctorId: $doctorId, startDate: $startDate, endDate: $endDate, status: $status, page: $page, limit: $limit) {
    hasNextPage
    appointments {
      id
      trackingId
      patientName
      patientEmail
      date
      time
      status
      appointmentType
      fee
      attendance
      doctorTimeZone
    }
  }
}`

	queryAppointmentByID = `query GetAppointmentById($id: ID!, $doctorId: ID!) {
  getAppointmentById(id: $id, doctorId: $doctorId) {
    id
    trackingId
    patientName
    patientEmail
    patientPhone
    patientAddress
    patientPostalCode
    patientDateOfBirth
    patientGender
    familyMembers {
      name
      dateOfBirth
      gender
    }
    date
    time
    status
    appointmentType
    fee
    notes
    statusNotes
    doctorId
    doctorTimeZone
    attendance
    attendanceNotes
    attendanceUpdatedAt
    attendanceUpdatedByName
    rescheduleAttemptUsed
    rescheduleRequestStatus
    rescheduleHistory {
      oldDate
      oldTime
      newDate
      newTime
      rescheduledAt
      rescheduledByName
      reason
    }
    cancellationStatus
    cancellationReason
    createdAt
    updatedAt
  }
}`

	mutationUpdateStatus = `mutation UpdateAppointmentStatus($id: ID!, $doctorId: ID!, $status: String!, $notes: String) {
  updateAppointmentStatus(id: $id, doctorId: $doctorId, status: $status, notes: $notes) {
    success
    message
  }
}`

	mutationUpdateDecision = `mutation UpdateAppointmentDecision($id: ID!, $doctorId: ID!, $decision: String!, $notes: String) {
  updateAppointmentDecision(id: $id, doctorId: $doctorId, decision: $decision, notes: $notes) {
    success
    message
  }
}`

	queryDoctorSettings = `query GetDoctorSettings($doctorId: ID!) {
  getDoctorSettings(doctorId: $doctorId) {
    slotIntervalMinutes
    timeZone
    availability {
      day
      enabled
      start
      end
    }
  }
}`

	mutationUpdateSettings = `mutation UpdateDoctorSettings($doctorId: ID!, $settings: UpdateDoctorSettingsInput!) {
  updateDoctorSettings(doctorId: $doctorId, settings: $settings) {
    success
    message
  }
}`
)

// Client speaks the Mapleime GraphQL API. It owns every remote call this
// service makes: appointment list/detail queries, the status and decision
// mutations, and the doctor settings pair.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.UpstreamMetrics
	tracer     trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics attaches upstream call metrics.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Mapleime API client.
func NewClient(endpoint, token string, logger *logging.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		endpoint: endpoint,
		token:    token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
		tracer: otel.Tracer("mapleime.client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAppointments runs the GetDoctorAppointments query.
func (c *Client) ListAppointments(ctx context.Context, q appointments.ListQuery) (*appointments.Page, error) {
	if strings.TrimSpace(q.DoctorID) == "" {
		return nil, fmt.Errorf("mapleime: doctor id required")
	}

	vars := map[string]interface{}{"doctorId": q.DoctorID}
	if q.StartDate != "" {
		vars["startDate"] = q.StartDate
	}
	if q.EndDate != "" {
		vars["endDate"] = q.EndDate
	}
	if q.Status != "" {
		vars["status"] = q.Status
	}
	if q.Page > 0 {
		vars["page"] = q.Page
	}
	if q.Limit > 0 {
		vars["limit"] = q.Limit
	}

	out, err := execute[doctorAppointmentsData](ctx, c, "GetDoctorAppointments", queryDoctorAppointments, vars)
	if err != nil {
		return nil, err
	}
	if out.GetDoctorAppointments == nil {
		return &appointments.Page{}, nil
	}
	return &appointments.Page{
		HasNextPage:  out.GetDoctorAppointments.HasNextPage,
		Appointments: out.GetDoctorAppointments.Appointments,
	}, nil
}

// AppointmentByID runs the GetAppointmentById query. A null record maps to
// appointments.ErrNotFound.
func (c *Client) AppointmentByID(ctx context.Context, id, doctorID string) (*appointments.Detail, error) {
	out, err := execute[appointmentByIDData](ctx, c, "GetAppointmentById", queryAppointmentByID, map[string]interface{}{
		"id":       id,
		"doctorId": doctorID,
	})
	if err != nil {
		return nil, err
	}
	if out.GetAppointmentByID == nil {
		return nil, appointments.ErrNotFound
	}
	return out.GetAppointmentByID, nil
}

// UpdateStatus runs the status mutation (approve/cancel).
func (c *Client) UpdateStatus(ctx context.Context, id, doctorID, status, notes string) (appointments.ActionResult, error) {
	vars := map[string]interface{}{"id": id, "doctorId": doctorID, "status": status}
	if notes != "" {
		vars["notes"] = notes
	}
	out, err := execute[updateStatusData](ctx, c, "UpdateAppointmentStatus", mutationUpdateStatus, vars)
	if err != nil {
		return appointments.ActionResult{}, err
	}
	if out.UpdateAppointmentStatus == nil {
		return appointments.ActionResult{}, fmt.Errorf("mapleime: status mutation returned no payload")
	}
	return appointments.ActionResult{
		Success: out.UpdateAppointmentStatus.Success,
		Message: out.UpdateAppointmentStatus.Message,
	}, nil
}

// UpdateDecision runs the attendance decision mutation (shown/not_shown).
func (c *Client) UpdateDecision(ctx context.Context, id, doctorID, decision, notes string) (appointments.ActionResult, error) {
	vars := map[string]interface{}{"id": id, "doctorId": doctorID, "decision": decision}
	if notes != "" {
		vars["notes"] = notes
	}
	out, err := execute[updateDecisionData](ctx, c, "UpdateAppointmentDecision", mutationUpdateDecision, vars)
	if err != nil {
		return appointments.ActionResult{}, err
	}
	if out.UpdateAppointmentDecision == nil {
		return appointments.ActionResult{}, fmt.Errorf("mapleime: decision mutation returned no payload")
	}
	return appointments.ActionResult{
		Success: out.UpdateAppointmentDecision.Success,
		Message: out.UpdateAppointmentDecision.Message,
	}, nil
}

// DoctorSettings fetches the doctor's scheduling settings.
func (c *Client) DoctorSettings(ctx context.Context, doctorID string) (*DoctorSettings, error) {
	out, err := execute[doctorSettingsData](ctx, c, "GetDoctorSettings", queryDoctorSettings, map[string]interface{}{
		"doctorId": doctorID,
	})
	if err != nil {
		return nil, err
	}
	if out.GetDoctorSettings == nil {
		return nil, fmt.Errorf("mapleime: settings query returned no payload")
	}
	return out.GetDoctorSettings, nil
}

// UpdateDoctorSettings writes the doctor's scheduling settings.
func (c *Client) UpdateDoctorSettings(ctx context.Context, doctorID string, settings DoctorSettings) (appointments.ActionResult, error) {
	out, err := execute[updateSettingsData](ctx, c, "UpdateDoctorSettings", mutationUpdateSettings, map[string]interface{}{
		"doctorId": doctorID,
		"settings": settings,
	})
	if err != nil {
		return appointments.ActionResult{}, err
	}
	if out.UpdateDoctorSettings == nil {
		return appointments.ActionResult{}, fmt.Errorf("mapleime: settings mutation returned no payload")
	}
	return appointments.ActionResult{
		Success: out.UpdateDoctorSettings.Success,
		Message: out.UpdateDoctorSettings.Message,
	}, nil
}

// execute posts one GraphQL operation and decodes its envelope. Transport
// failures, non-200 statuses, envelope errors, and missing data all come
// back as errors so callers never see a half-decoded payload.
func execute[T any](ctx context.Context, c *Client, operationName, query string, variables interface{}) (*T, error) {
	if strings.TrimSpace(c.endpoint) == "" {
		return nil, fmt.Errorf("mapleime: endpoint not configured")
	}

	ctx, span := c.tracer.Start(ctx, "mapleime."+operationName)
	defer span.End()

	start := time.Now()
	out, err := post[T](ctx, c, operationName, query, variables)
	c.metrics.ObserveCall(operationName, err == nil, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}

func post[T any](ctx context.Context, c *Client, operationName, query string, variables interface{}) (*T, error) {
	body, err := json.Marshal(graphQLRequest{OperationName: operationName, Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("mapleime: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("mapleime: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapleime: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mapleime: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Error("upstream graphql error payload", "operation", operationName, "status", resp.StatusCode, "body", msg)
		return nil, fmt.Errorf("mapleime: status %d: %s", resp.StatusCode, msg)
	}

	var envelope graphQLResponse[T]
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("mapleime: unmarshal response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("mapleime: graphql error: %s", strings.Join(msgs, ", "))
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("mapleime: response contained no data")
	}
	return envelope.Data, nil
}
