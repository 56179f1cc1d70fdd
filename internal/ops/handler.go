package ops

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Handler serves the ops panel endpoints.
type Handler struct {
	gatherer prometheus.Gatherer
}

func NewHandler(gatherer prometheus.Gatherer) *Handler {
	return &Handler{gatherer: gatherer}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/upstream-latency", h.UpstreamLatency)
	return r
}

// UpstreamLatency returns a latency snapshot of Mapleime GraphQL calls,
// optionally filtered to ?operation=.
// GET /api/ops/upstream-latency
func (h *Handler) UpstreamLatency(w http.ResponseWriter, r *http.Request) {
	snapshot := SnapshotUpstreamLatency(h.gatherer, r.URL.Query().Get("operation"))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
