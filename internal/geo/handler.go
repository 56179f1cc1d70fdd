package geo

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mapleime/doctor-portal/internal/http/middleware"
	"github.com/mapleime/doctor-portal/pkg/logging"
)

// Handler serves address lookups for the appointment detail map.
type Handler struct {
	client *Client
	logger *logging.Logger
}

func NewHandler(client *Client, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/locate", h.Locate)
	return r
}

type locateResponse struct {
	Found    bool      `json:"found"`
	Location *Location `json:"location,omitempty"`
}

// Locate resolves ?address= and ?postalCode= to a map position. An
// unresolvable address is a normal outcome, not an error.
// GET /api/geo/locate
func (h *Handler) Locate(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.DoctorRefFromContext(r.Context()); !ok {
		http.Error(w, "session missing doctor reference", http.StatusUnauthorized)
		return
	}

	address := r.URL.Query().Get("address")
	postalCode := r.URL.Query().Get("postalCode")
	if address == "" && postalCode == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "address or postalCode required"})
		return
	}

	loc, err := h.client.Locate(r.Context(), address, postalCode)
	if err != nil {
		h.logger.Warn("geocoding failed", "error", err)
		writeJSON(w, http.StatusOK, locateResponse{Found: false})
		return
	}
	writeJSON(w, http.StatusOK, locateResponse{Found: loc != nil, Location: loc})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
