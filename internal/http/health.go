package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/lifecycle"
	"github.com/kjstillabower/health-advisory-service/internal/traffic"
)

// HealthConfig holds thresholds and dependency probes for the health handler.
type HealthConfig struct {
	Service string
	// Upstream errors: degraded when at least DegradedMinSamples calls in
	// DegradedWindow failed at DegradedErrorPct percent or more.
	DegradedWindow     time.Duration
	DegradedErrorPct   int
	DegradedMinSamples int
	// Overloaded when rate-limit denials reach OverloadPct percent of inbound requests.
	OverloadPct int
	// Checks are reported by name as healthy or unhealthy. They do not change status.
	Checks map[string]func(context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	cfg    HealthConfig
	logger *zap.Logger

	mu   sync.Mutex
	prev string
}

// NewHealthHandler returns a handler using cfg.
func NewHealthHandler(cfg HealthConfig, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{cfg: cfg, logger: logger}
}

type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// evaluate decides status in priority order:
// shutting-down > starting > overloaded > degraded > healthy.
func (h *HealthHandler) evaluate() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if ready, _ := lifecycle.Readiness(); !ready {
		return healthResult{"starting", http.StatusServiceUnavailable, "components_not_ready"}
	}
	window := h.cfg.DegradedWindow
	if window <= 0 {
		window = time.Minute
	}
	if h.cfg.OverloadPct > 0 && traffic.Inbound.Overloaded(window, h.cfg.OverloadPct, h.cfg.DegradedMinSamples) {
		return healthResult{"overloaded", http.StatusServiceUnavailable, "rate_limit_denials"}
	}
	if h.cfg.DegradedErrorPct > 0 && traffic.Upstream.Degraded(window, h.cfg.DegradedErrorPct, h.cfg.DegradedMinSamples) {
		return healthResult{"degraded", http.StatusServiceUnavailable, "upstream_error_rate"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result := h.evaluate()

	h.mu.Lock()
	if h.prev != "" && h.prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", h.prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.prev = result.status
	h.mu.Unlock()

	checks := make(map[string]string)
	_, components := lifecycle.Readiness()
	for name, ok := range components {
		checks[name] = healthWord(ok)
	}
	for name, probe := range h.cfg.Checks {
		checks[name] = healthWord(probe(r.Context()) == nil)
	}
	if result.status == "degraded" {
		checks["upstream"] = "unhealthy"
	}

	writeJSON(w, result.statusCode, healthResponse{
		Status:    result.status,
		Service:   h.cfg.Service,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func healthWord(ok bool) string {
	if ok {
		return "healthy"
	}
	return "unhealthy"
}
