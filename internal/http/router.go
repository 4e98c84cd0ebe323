package http

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/health-advisory-service/internal/observability"
	"github.com/kjstillabower/health-advisory-service/internal/triage"
)

// RouterConfig carries the cross-cutting settings shared by both servers.
type RouterConfig struct {
	RequestTimeout time.Duration
	// Limiter guards the business routes; nil disables rate limiting.
	Limiter *rate.Limiter
	// AllowedOrigins enables CORS on the triage API. Empty disables it.
	AllowedOrigins []string
}

// NewLimiter returns a token bucket for rps with burst, or nil when rps <= 0.
func NewLimiter(rps, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = rps
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func baseRouter(logger *zap.Logger, health http.Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware(logger))
	router.Use(MetricsMiddleware)
	router.Use(RecoverMiddleware)
	router.Handle("/health", health).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)
	return router
}

// rateLimitedCode is the error code the advisory site reports for throttled requests.
const rateLimitedCode = "rate_limited"

// guarded applies rate limiting and the request deadline to a business route.
// denyCode is the error code written when the limiter rejects a request.
func guarded(cfg RouterConfig, denyCode string, h http.Handler) http.Handler {
	return RateLimitMiddleware(cfg.Limiter, denyCode)(TimeoutMiddleware(cfg.RequestTimeout)(h))
}

// NewAdvisorRouter wires the weather advisory site.
func NewAdvisorRouter(h *AdvisoryHandler, health *HealthHandler, cfg RouterConfig, logger *zap.Logger) http.Handler {
	router := baseRouter(logger, health)

	router.HandleFunc("/", h.Index).Methods(http.MethodGet)
	router.Handle("/", guarded(cfg, rateLimitedCode, http.HandlerFunc(h.Submit))).Methods(http.MethodPost)
	return router
}

// NewTriageRouter wires the symptom triage API, wrapped in CORS when origins are configured.
func NewTriageRouter(h *TriageHandler, health *HealthHandler, cfg RouterConfig, logger *zap.Logger) http.Handler {
	router := baseRouter(logger, health)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	api.HandleFunc("/diseases", h.Diseases).Methods(http.MethodGet)

	// the triage API keeps to its fixed error taxonomy
	api.Handle("/predict", guarded(cfg, string(triage.CodeServerError), http.HandlerFunc(h.Predict))).Methods(http.MethodPost)

	if len(cfg.AllowedOrigins) == 0 {
		return router
	}
	return handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", CorrelationIDHeader}),
		handlers.ExposedHeaders([]string{CorrelationIDHeader}),
	)(router)
}
