package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mapleime/doctor-portal/internal/http/middleware"
	"github.com/mapleime/doctor-portal/pkg/logging"
)

const defaultPageSize = 20

// sessionErrorMessage matches the dashboard's dedicated session panel.
const sessionErrorMessage = "Your doctor account is missing an internal mapping ID. Please sign out and sign back in to refresh your session."

// Handler serves the dashboard's appointment views and actions.
type Handler struct {
	source             Source
	executor           *Executor
	notices            *NoticeStore
	urgent             *UrgentCountCache
	globalPendingLimit int
	logger             *logging.Logger
	now                func() time.Time
}

func NewHandler(source Source, executor *Executor, notices *NoticeStore, urgent *UrgentCountCache, globalPendingLimit int, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if globalPendingLimit <= 0 {
		globalPendingLimit = 250
	}
	return &Handler{
		source:             source,
		executor:           executor,
		notices:            notices,
		urgent:             urgent,
		globalPendingLimit: globalPendingLimit,
		logger:             logger,
		now:                time.Now,
	}
}

// Routes returns the appointment routes, mounted under the session
// middleware by the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListLive)
	r.Get("/history", h.History)
	r.Get("/urgent-count", h.UrgentCount)
	r.Get("/notice", h.CurrentNotice)
	r.Get("/{appointmentID}", h.Detail)
	r.Post("/{appointmentID}/actions", h.ExecuteAction)
	return r
}

// AppointmentRow is one rendered list entry: the raw record plus its
// per-row classification and decision menu.
type AppointmentRow struct {
	Appointment
	Urgent  bool     `json:"urgent"`
	Past    bool     `json:"past"`
	Actions []Action `json:"actions"`
}

// ListResponse is the payload for both the live and history views.
type ListResponse struct {
	Appointments []AppointmentRow `json:"appointments"`
	Summary      Summary          `json:"summary"`
	UrgentCount  int              `json:"urgentCount,omitempty"`
	UrgentOnly   bool             `json:"urgentOnly,omitempty"`
	Filters      FilterState      `json:"filters"`
	Links        Links            `json:"links"`
	Error        string           `json:"error,omitempty"`
}

// ListLive renders the live working list: the filtered page merged with
// the global pending set. Both remote fetches run concurrently and both
// settle before anything is classified; a failed fetch contributes an
// empty set and an error banner instead of failing the page.
// GET /api/appointments
func (h *Handler) ListLive(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.doctorRef(w, r)
	if !ok {
		return
	}

	now := h.now()
	today := civilToday(now)
	filters := ParseFilterState(r.URL.Query())

	pageQuery := ListQuery{
		DoctorID:  doctorID,
		StartDate: liveStartDate(filters, today),
		Status:    filters.StatusFilter(),
		Page:      filters.Page,
		Limit:     defaultPageSize,
	}
	pendingQuery := ListQuery{
		DoctorID:  doctorID,
		StartDate: today.Format(civilDateLayout),
		Status:    StatusPending,
		Limit:     h.globalPendingLimit,
	}

	var (
		wg         sync.WaitGroup
		page       *Page
		pending    *Page
		pageErr    error
		pendingErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		page, pageErr = h.source.ListAppointments(r.Context(), pageQuery)
	}()
	go func() {
		defer wg.Done()
		pending, pendingErr = h.source.ListAppointments(r.Context(), pendingQuery)
	}()
	wg.Wait()

	var banner string
	if pageErr != nil {
		h.logger.Error("live appointments fetch failed", "doctor_id", doctorID, "error", pageErr)
		banner = "Failed to load appointments: " + pageErr.Error()
		page = &Page{}
	}
	if pendingErr != nil {
		h.logger.Error("global pending fetch failed", "doctor_id", doctorID, "error", pendingErr)
		if banner == "" {
			banner = "Failed to load pending appointments: " + pendingErr.Error()
		}
		pending = &Page{}
	}

	view := BuildLiveView(page.Appointments, pending.Appointments, filters.UrgentOnly, now)

	if h.urgent != nil && pendingErr == nil {
		if err := h.urgent.Set(r.Context(), doctorID, view.UrgentCount); err != nil {
			h.logger.Warn("urgent count cache write failed", "doctor_id", doctorID, "error", err)
		}
	}

	// Urgent-only mode shows the whole urgent set, so paging is moot.
	hasNext := page.HasNextPage && !filters.UrgentOnly

	resp := ListResponse{
		Appointments: h.rows(view.Appointments, now),
		Summary:      view.Summary,
		UrgentCount:  view.UrgentCount,
		UrgentOnly:   view.UrgentOnly,
		Filters:      filters,
		Links:        BuildLinks(r.URL.Path, filters, hasNext),
		Error:        banner,
	}
	writeJSON(w, http.StatusOK, resp)
}

// History renders appointments older than the 15-day boundary in
// status-priority order.
// GET /api/appointments/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.doctorRef(w, r)
	if !ok {
		return
	}

	now := h.now()
	today := civilToday(now)
	filters := ParseFilterState(r.URL.Query())

	query := ListQuery{
		DoctorID: doctorID,
		EndDate:  BoundaryDate(today),
		Status:   filters.StatusFilter(),
		Page:     filters.Page,
		Limit:    defaultPageSize,
	}
	if start, hasStart := filters.StartDate(today); hasStart {
		query.StartDate = start
	}

	var banner string
	page, err := h.source.ListAppointments(r.Context(), query)
	if err != nil {
		h.logger.Error("history fetch failed", "doctor_id", doctorID, "error", err)
		banner = "Failed to load history: " + err.Error()
		page = &Page{}
	}

	view := BuildHistoryView(page.Appointments)

	resp := ListResponse{
		Appointments: h.rows(view.Appointments, now),
		Summary:      view.Summary,
		Filters:      filters,
		Links:        BuildLinks(r.URL.Path, filters, page.HasNextPage),
		Error:        banner,
	}
	writeJSON(w, http.StatusOK, resp)
}

// DetailResponse wraps the full appointment record with its classification.
type DetailResponse struct {
	Detail
	Urgent  bool     `json:"urgent"`
	Past    bool     `json:"past"`
	Actions []Action `json:"actions"`
}

// Detail returns the full record for one appointment.
// GET /api/appointments/{appointmentID}
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.doctorRef(w, r)
	if !ok {
		return
	}
	appointmentID := chi.URLParam(r, "appointmentID")

	detail, err := h.source.AppointmentByID(r.Context(), appointmentID, doctorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "appointment not found"})
			return
		}
		h.logger.Error("appointment detail fetch failed", "appointment_id", appointmentID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load appointment"})
		return
	}

	now := h.now()
	writeJSON(w, http.StatusOK, DetailResponse{
		Detail:  *detail,
		Urgent:  IsUrgentPending(detail.Appointment, now),
		Past:    IsPastDue(detail.Appointment, now, h.logger),
		Actions: AvailableActions(detail.Appointment, now, h.logger),
	})
}

type actionBody struct {
	Action string `json:"action"`
	Note   string `json:"note"`
}

// ExecuteAction applies one decision-menu action. A second attempt while
// one is outstanding for the same appointment gets 409 without any
// upstream call.
// POST /api/appointments/{appointmentID}/actions
func (h *Handler) ExecuteAction(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.doctorRef(w, r)
	if !ok {
		return
	}
	appointmentID := chi.URLParam(r, "appointmentID")

	var body actionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	result, err := h.executor.Execute(r.Context(), ActionRequest{
		AppointmentID: appointmentID,
		DoctorID:      doctorID,
		Action:        body.Action,
		Note:          body.Note,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrActionInFlight):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "action already in progress"})
		case errors.Is(err, ErrUnknownAction):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UrgentCount serves the sidebar badge. Cache-first; a miss recomputes
// from the global pending query and warms the cache.
// GET /api/appointments/urgent-count
func (h *Handler) UrgentCount(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.doctorRef(w, r)
	if !ok {
		return
	}

	if h.urgent != nil {
		if count, hit, err := h.urgent.Get(r.Context(), doctorID); err == nil && hit {
			writeJSON(w, http.StatusOK, map[string]int{"urgentCount": count})
			return
		}
	}

	now := h.now()
	today := civilToday(now)
	pending, err := h.source.ListAppointments(r.Context(), ListQuery{
		DoctorID:  doctorID,
		StartDate: today.Format(civilDateLayout),
		Status:    StatusPending,
		Limit:     h.globalPendingLimit,
	})
	if err != nil {
		h.logger.Error("urgent count fetch failed", "doctor_id", doctorID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load urgent count"})
		return
	}
	count := CountUrgent(pending.Appointments, now)
	if h.urgent != nil {
		if err := h.urgent.Set(r.Context(), doctorID, count); err != nil {
			h.logger.Warn("urgent count cache write failed", "doctor_id", doctorID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"urgentCount": count})
}

// CurrentNotice returns the doctor's live transient notice, or 204.
// GET /api/appointments/notice
func (h *Handler) CurrentNotice(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.doctorRef(w, r)
	if !ok {
		return
	}
	if h.notices == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	notice, err := h.notices.Current(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("notice fetch failed", "doctor_id", doctorID, "error", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if notice == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

func (h *Handler) rows(list []Appointment, now time.Time) []AppointmentRow {
	rows := make([]AppointmentRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, AppointmentRow{
			Appointment: a,
			Urgent:      IsUrgentPending(a, now),
			Past:        IsPastDue(a, now, h.logger),
			Actions:     AvailableActions(a, now, h.logger),
		})
	}
	return rows
}

// doctorRef resolves the doctor's internal reference id from the session.
// A signed-in user without one gets the dedicated session panel payload
// rather than an auth failure: the session is valid, the mapping is not.
func (h *Handler) doctorRef(w http.ResponseWriter, r *http.Request) (string, bool) {
	doctorID, ok := middleware.DoctorRefFromContext(r.Context())
	if !ok || doctorID == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"sessionError": true,
			"message":      sessionErrorMessage,
		})
		return "", false
	}
	return doctorID, true
}

// liveStartDate applies the live view's rolling lower bound. The range
// filter can only tighten it, never reach past the 15-day boundary, so
// live and history stay complementary.
func liveStartDate(f FilterState, today time.Time) string {
	start := BoundaryDate(today)
	if rangeStart, ok := f.StartDate(today); ok && rangeStart > start {
		start = rangeStart
	}
	return start
}

func civilToday(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
