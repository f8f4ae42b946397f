package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yndnr/rehashkv/internal/telemetry/logger"
	"github.com/yndnr/rehashkv/pkg/dict"
)

// StatsSource is anything that can report dictionary statistics, such as
// *memory.Store.
type StatsSource interface {
	Stats() dict.Stats
}

// Handler routes admin requests.
type Handler struct {
	stats  StatsSource
	logger logger.Logger
	mux    *http.ServeMux
}

// New creates a new Handler.
func New(stats StatsSource, log logger.Logger) *Handler {
	h := &Handler{
		stats:  stats,
		logger: log,
		mux:    http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.HandleFunc("GET /debug/dict", h.handleDictStats)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := r.Header.Get("X-Request-ID")
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	response := NewErrorResponse(r.Header.Get("X-Request-ID"), code, message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
