package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/advisory"
	"github.com/kjstillabower/health-advisory-service/internal/cache"
	"github.com/kjstillabower/health-advisory-service/internal/client"
	"github.com/kjstillabower/health-advisory-service/internal/models"
	"github.com/kjstillabower/health-advisory-service/internal/service"
)

type labelClassifier struct{}

func (labelClassifier) Classify(s models.WeatherSample) models.Condition {
	return advisory.LabelFor(s.Temperature)
}

// fakeProviders serves Nominatim and OpenWeatherMap look-alike endpoints.
func fakeProviders(t *testing.T, weatherCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Atlantis" {
			writeJSON(w, http.StatusOK, []interface{}{})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]string{{"lat": "28.61", "lon": "77.21", "display_name": "New Delhi, India"}})
	})
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(weatherCalls, 1)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"main": map[string]float64{"temp": 42, "humidity": 25},
			"wind": map[string]float64{"speed": 4},
		})
	})
	mux.HandleFunc("/data/2.5/uvi", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]float64{"value": 10})
	})
	mux.HandleFunc("/data/2.5/forecast", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "forecast down"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAdvisorStack(t *testing.T, weatherCalls *int32) http.Handler {
	t.Helper()
	srv := fakeProviders(t, weatherCalls)
	opts := client.Options{Timeout: time.Second, RetryAttempts: 1, UserAgent: "health_safety_app_test"}

	geo, err := client.NewNominatimGeocoder(srv.URL+"/search", opts)
	if err != nil {
		t.Fatalf("NewNominatimGeocoder() error = %v", err)
	}
	weather, err := client.NewOpenWeatherClient("0123456789abcdef", srv.URL+"/data/2.5", opts)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	svc := service.NewAdvisoryService(geo, weather, labelClassifier{}, cache.NewInMemoryCache(), time.Minute)

	return NewAdvisorRouter(NewAdvisoryHandler(svc), NewHealthHandler(testHealthConfig(), nil),
		RouterConfig{RequestTimeout: 5 * time.Second}, zap.NewNop())
}

func submit(router http.Handler, location string) *httptest.ResponseRecorder {
	form := url.Values{"location": {location}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAdvisorRouter_EndToEnd(t *testing.T) {
	resetHealthState(t)
	var weatherCalls int32
	router := newAdvisorStack(t, &weatherCalls)

	w := submit(router, "Delhi")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"heat_wave", "High UV index!", "Low humidity!"} {
		if !strings.Contains(body, want) {
			t.Errorf("result page missing %q", want)
		}
	}
	if strings.Contains(body, "new Chart") {
		t.Error("chart rendered although the forecast failed")
	}
	if w.Header().Get(CorrelationIDHeader) == "" {
		t.Error("correlation ID header missing")
	}

	if w := submit(router, "delhi "); w.Code != http.StatusOK {
		t.Fatalf("second status = %d", w.Code)
	}
	if n := atomic.LoadInt32(&weatherCalls); n != 1 {
		t.Errorf("weather calls = %d, want 1 (second lookup cached)", n)
	}
}

func TestAdvisorRouter_LocationNotFound(t *testing.T) {
	resetHealthState(t)
	var weatherCalls int32
	router := newAdvisorStack(t, &weatherCalls)

	w := submit(router, "Atlantis")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Location not found.") {
		t.Error("missing not-found message")
	}
}

func TestAdvisorRouter_IndexHealthMetrics(t *testing.T) {
	resetHealthState(t)
	var weatherCalls int32
	router := newAdvisorStack(t, &weatherCalls)

	for _, path := range []string{"/", "/health", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, w.Code)
		}
	}
}
