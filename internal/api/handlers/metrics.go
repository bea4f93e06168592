package handlers

import (
	"net/http"

	"github.com/bytedent/assistant/internal/domain/chat"
)

// MetricsSource provides a point-in-time copy of the engine counters.
type MetricsSource interface {
	MetricsSnapshot() chat.MetricsSnapshot
}

// MetricsHandler serves GET /api/v1/metrics.
type MetricsHandler struct {
	source MetricsSource
}

func NewMetricsHandler(source MetricsSource) *MetricsHandler {
	return &MetricsHandler{source: source}
}

// Metrics returns the snapshot as JSON.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.source.MetricsSnapshot())
}
