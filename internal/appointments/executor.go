package appointments

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mapleime/doctor-portal/internal/observability/metrics"
	"github.com/mapleime/doctor-portal/pkg/logging"
)

// ErrActionInFlight is returned when an action is attempted on an
// appointment that already has one outstanding. The caller never reaches
// the server in that case.
var ErrActionInFlight = errors.New("appointments: action already in flight")

// ErrUnknownAction is returned for action codes this service cannot route.
var ErrUnknownAction = errors.New("appointments: unknown action")

// ActionRequest describes one action to execute.
type ActionRequest struct {
	AppointmentID string `json:"appointmentId"`
	DoctorID      string `json:"doctorId"`
	Action        string `json:"action"`
	Note          string `json:"note"`
}

// Executor routes actions to the right remote mutation and enforces the
// single-in-flight rule per appointment. Attendance actions go to the
// decision mutation, status actions to the status mutation.
type Executor struct {
	mutator Mutator
	notices *NoticeStore
	urgent  *UrgentCountCache
	metrics *metrics.ActionMetrics
	logger  *logging.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewExecutor(mutator Mutator, notices *NoticeStore, urgent *UrgentCountCache, m *metrics.ActionMetrics, logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Executor{
		mutator:  mutator,
		notices:  notices,
		urgent:   urgent,
		metrics:  m,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Execute runs one action. Both remote mutations are idempotent, so a
// retry after failure is safe, but while one call is outstanding every
// further attempt on the same appointment is rejected locally with
// ErrActionInFlight.
func (e *Executor) Execute(ctx context.Context, req ActionRequest) (ActionResult, error) {
	if req.AppointmentID == "" || req.DoctorID == "" {
		return ActionResult{}, fmt.Errorf("appointments: appointment and doctor ids required")
	}
	if !KnownAction(req.Action) {
		return ActionResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	if !e.acquire(req.AppointmentID) {
		e.metrics.ObserveRejected()
		return ActionResult{}, ErrActionInFlight
	}
	defer e.release(req.AppointmentID)

	var (
		result ActionResult
		err    error
	)
	if IsAttendanceAction(req.Action) {
		result, err = e.mutator.UpdateDecision(ctx, req.AppointmentID, req.DoctorID, req.Action, req.Note)
	} else {
		result, err = e.mutator.UpdateStatus(ctx, req.AppointmentID, req.DoctorID, req.Action, req.Note)
	}
	if err != nil {
		e.logger.Error("appointment action failed",
			"appointment_id", req.AppointmentID,
			"action", req.Action,
			"error", err,
		)
		e.metrics.ObserveAction(req.Action, false)
		e.publishNotice(ctx, req.DoctorID, Notice{Kind: "error", Message: err.Error()})
		return ActionResult{Success: false, Message: err.Error()}, nil
	}

	e.metrics.ObserveAction(req.Action, result.Success)
	if result.Success {
		e.logger.Info("appointment action applied",
			"appointment_id", req.AppointmentID,
			"action", req.Action,
		)
		e.publishNotice(ctx, req.DoctorID, Notice{Kind: "success", Message: result.Message})
		// A status change can move the record between the live and
		// history views; drop the cached badge so both refetch.
		if e.urgent != nil {
			if err := e.urgent.Invalidate(ctx, req.DoctorID); err != nil {
				e.logger.Warn("urgent count invalidation failed", "doctor_id", req.DoctorID, "error", err)
			}
		}
	} else {
		e.publishNotice(ctx, req.DoctorID, Notice{Kind: "error", Message: result.Message})
	}
	return result, nil
}

func (e *Executor) acquire(appointmentID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[appointmentID]; busy {
		return false
	}
	e.inFlight[appointmentID] = struct{}{}
	return true
}

func (e *Executor) release(appointmentID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, appointmentID)
}

func (e *Executor) publishNotice(ctx context.Context, doctorID string, n Notice) {
	if e.notices == nil {
		return
	}
	if err := e.notices.Publish(ctx, doctorID, n); err != nil {
		e.logger.Warn("notice publish failed", "doctor_id", doctorID, "error", err)
	}
}
