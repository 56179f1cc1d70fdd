package prefs

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mapleime/doctor-portal/internal/http/middleware"
	"github.com/mapleime/doctor-portal/pkg/logging"
)

// Handler serves the doctor's display preferences.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/wallpaper", h.GetWallpaper)
	r.Put("/wallpaper", h.SetWallpaper)
	return r
}

type wallpaperResponse struct {
	Theme  string   `json:"theme"`
	Themes []string `json:"themes"`
}

// GetWallpaper returns the saved theme and the selectable set.
// GET /api/prefs/wallpaper
func (h *Handler) GetWallpaper(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.DoctorRefFromContext(r.Context())
	if !ok {
		http.Error(w, "session missing doctor reference", http.StatusUnauthorized)
		return
	}

	theme, err := h.store.Wallpaper(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("wallpaper load failed", "doctor_id", doctorID, "error", err)
		// Degrade to the default theme rather than blanking the page.
		theme = DefaultTheme
	}
	writeJSON(w, http.StatusOK, wallpaperResponse{Theme: theme, Themes: Themes()})
}

type wallpaperRequest struct {
	Theme string `json:"theme"`
}

// SetWallpaper saves a theme choice.
// PUT /api/prefs/wallpaper
func (h *Handler) SetWallpaper(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := middleware.DoctorRefFromContext(r.Context())
	if !ok {
		http.Error(w, "session missing doctor reference", http.StatusUnauthorized)
		return
	}

	var req wallpaperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if !KnownTheme(req.Theme) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown theme"})
		return
	}
	if err := h.store.SetWallpaper(r.Context(), doctorID, req.Theme); err != nil {
		h.logger.Error("wallpaper save failed", "doctor_id", doctorID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save preference"})
		return
	}
	writeJSON(w, http.StatusOK, wallpaperResponse{Theme: req.Theme, Themes: Themes()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
