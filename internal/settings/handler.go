package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mapleime/doctor-portal/internal/appointments"
	"github.com/mapleime/doctor-portal/internal/http/middleware"
	"github.com/mapleime/doctor-portal/internal/mapleime"
	"github.com/mapleime/doctor-portal/pkg/logging"
)

// Slot interval bounds in minutes.
const (
	minSlotInterval = 5
	maxSlotInterval = 180
)

var weekdays = map[string]struct{}{
	"monday":    {},
	"tuesday":   {},
	"wednesday": {},
	"thursday":  {},
	"friday":    {},
	"saturday":  {},
	"sunday":    {},
}

// API is the slice of the upstream client this handler needs.
type API interface {
	DoctorSettings(ctx context.Context, doctorID string) (*mapleime.DoctorSettings, error)
	UpdateDoctorSettings(ctx context.Context, doctorID string, settings mapleime.DoctorSettings) (appointments.ActionResult, error)
}

// Handler serves the doctor's scheduling settings. The settings live on
// the main server; this layer validates before forwarding so obviously
// broken availability never reaches it.
type Handler struct {
	api    API
	logger *logging.Logger
}

func NewHandler(api API, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{api: api, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	return r
}

// Get returns the doctor's scheduling settings.
// GET /api/settings
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.DoctorRefFromContext(r.Context())
	if !ok {
		http.Error(w, "session missing doctor reference", http.StatusUnauthorized)
		return
	}

	settings, err := h.api.DoctorSettings(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("settings fetch failed", "doctor_id", doctorID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Update validates and forwards new scheduling settings.
// PUT /api/settings
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.DoctorRefFromContext(r.Context())
	if !ok {
		http.Error(w, "session missing doctor reference", http.StatusUnauthorized)
		return
	}

	var settings mapleime.DoctorSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := Validate(settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.api.UpdateDoctorSettings(r.Context(), doctorID, settings)
	if err != nil {
		h.logger.Error("settings update failed", "doctor_id", doctorID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to save settings"})
		return
	}
	if !result.Success {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	h.logger.Info("settings updated", "doctor_id", doctorID)
	writeJSON(w, http.StatusOK, result)
}

// Validate checks scheduling settings before they are forwarded upstream.
func Validate(s mapleime.DoctorSettings) error {
	if s.SlotIntervalMinutes < minSlotInterval || s.SlotIntervalMinutes > maxSlotInterval {
		return fmt.Errorf("settings: slot interval must be between %d and %d minutes", minSlotInterval, maxSlotInterval)
	}
	if s.TimeZone != "" {
		if _, err := time.LoadLocation(s.TimeZone); err != nil {
			return fmt.Errorf("settings: unknown time zone %q", s.TimeZone)
		}
	}

	seen := map[string]struct{}{}
	for _, slot := range s.Availability {
		day := strings.ToLower(strings.TrimSpace(slot.Day))
		if _, ok := weekdays[day]; !ok {
			return fmt.Errorf("settings: unknown weekday %q", slot.Day)
		}
		if _, dup := seen[day]; dup {
			return fmt.Errorf("settings: duplicate weekday %q", slot.Day)
		}
		seen[day] = struct{}{}

		if !slot.Enabled {
			continue
		}
		start, err := parseClock(slot.Start)
		if err != nil {
			return fmt.Errorf("settings: %s start: %w", day, err)
		}
		end, err := parseClock(slot.End)
		if err != nil {
			return fmt.Errorf("settings: %s end: %w", day, err)
		}
		if !start.Before(end) {
			return fmt.Errorf("settings: %s window must start before it ends", day)
		}
	}
	return nil
}

func parseClock(raw string) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock time %q", raw)
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
