package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedent/assistant/internal/infra/llm"
)

// Health statuses.
const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// IndexInfo reports chunk-index occupancy.
type IndexInfo interface {
	IndexSize() int
}

// HealthHandler serves the health and probe endpoints.
type HealthHandler struct {
	provider  llm.LLMProvider
	index     IndexInfo
	version   string
	startedAt time.Time
}

func NewHealthHandler(provider llm.LLMProvider, index IndexInfo, version string) *HealthHandler {
	return &HealthHandler{
		provider:  provider,
		index:     index,
		version:   version,
		startedAt: time.Now(),
	}
}

type componentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version"`
	Components    map[string]componentHealth `json:"components"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
}

// Health reports per-component status for monitoring dashboards.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]componentHealth{
		"llm_provider": h.providerHealth(r.Context()),
		"vector_store": h.indexHealth(),
	}

	overall := statusHealthy
	code := http.StatusOK
	for _, c := range components {
		if c.Status != statusHealthy {
			overall = statusUnhealthy
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeJSON(w, code, healthResponse{
		Status:        overall,
		Version:       h.version,
		Components:    components,
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
	})
}

// Live is the liveness probe: 200 whenever the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Ready is the readiness probe: 200 only when the index is loaded and
// the model backend answers.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.index.IndexSize() == 0 || h.provider.HealthCheck(r.Context()) != nil {
		writeError(w, http.StatusServiceUnavailable, "service not ready")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) providerHealth(ctx context.Context) componentHealth {
	if err := h.provider.HealthCheck(ctx); err != nil {
		return componentHealth{Status: statusUnhealthy, Message: err.Error()}
	}
	meta := h.provider.ModelInfo()
	return componentHealth{
		Status:  statusHealthy,
		Message: fmt.Sprintf("loaded: %s / %s", meta.ID, meta.EmbedID),
	}
}

func (h *HealthHandler) indexHealth() componentHealth {
	n := h.index.IndexSize()
	if n == 0 {
		return componentHealth{Status: statusUnhealthy, Message: "index is empty"}
	}
	return componentHealth{
		Status:  statusHealthy,
		Message: fmt.Sprintf("index size: %d", n),
	}
}
