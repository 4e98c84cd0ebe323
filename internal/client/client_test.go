package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kjstillabower/health-advisory-service/internal/circuitbreaker"
	"github.com/kjstillabower/health-advisory-service/internal/models"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
)

const testKey = "valid-api-key-12345"

var seattle = models.Coordinates{Latitude: 47.6062, Longitude: -122.3321}

func fastOptions() Options {
	return Options{
		Timeout:        time.Second,
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *OpenWeatherClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewOpenWeatherClient(testKey, srv.URL+"/data/2.5/", opts)
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewOpenWeatherClient_InvalidAPIKey(t *testing.T) {
	for _, key := range []string{"", "short"} {
		c, err := NewOpenWeatherClient(key, "https://api.test.com", Options{})
		if !errors.Is(err, ErrInvalidAPIKey) {
			t.Errorf("key %q: error = %v, want ErrInvalidAPIKey", key, err)
		}
		if c != nil {
			t.Errorf("key %q: expected nil client", key)
		}
	}
}

func TestOpenWeatherClient_CurrentWeather(t *testing.T) {
	var gotQuery, gotPath, gotCorrID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotCorrID = r.Header.Get("X-Correlation-ID")
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"main": map[string]interface{}{"temp": 15.5, "humidity": 65},
			"wind": map[string]interface{}{"speed": 3.2},
		})
	}, fastOptions())

	ctx := observability.WithCorrelationID(context.Background(), "corr-123")
	got, err := c.CurrentWeather(ctx, seattle)
	if err != nil {
		t.Fatalf("CurrentWeather() error = %v", err)
	}
	want := models.WeatherSample{Temperature: 15.5, Humidity: 65, WindSpeed: 3.2}
	if got != want {
		t.Errorf("CurrentWeather() = %+v, want %+v", got, want)
	}
	if gotPath != "/data/2.5/weather" {
		t.Errorf("path = %q", gotPath)
	}
	for _, part := range []string{"lat=47.6062", "lon=-122.3321", "appid=" + testKey, "units=metric"} {
		if !strings.Contains(gotQuery, part) {
			t.Errorf("query %q missing %q", gotQuery, part)
		}
	}
	if gotCorrID != "corr-123" {
		t.Errorf("X-Correlation-ID = %q", gotCorrID)
	}
}

func TestOpenWeatherClient_CurrentWeather_ProviderMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"cod": 401, "message": "Invalid API key. Please see https://openweathermap.org/faq#error401 for more info."})
	}, fastOptions())

	_, err := c.CurrentWeather(context.Background(), seattle)
	if !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("error = %v, want ErrInvalidAPIKey", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Fatalf("error = %v, want *APIError 401", err)
	}
	if UpstreamMessage(err) != "Invalid API key. Please see https://openweathermap.org/faq#error401 for more info." {
		t.Errorf("UpstreamMessage() = %q", UpstreamMessage(err))
	}
}

func TestOpenWeatherClient_CurrentWeather_MissingMain(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"cod": 200})
	}, fastOptions())

	_, err := c.CurrentWeather(context.Background(), seattle)
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("error = %v, want ErrBadResponse", err)
	}
}

func TestOpenWeatherClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]float64{"value": 6.5})
	}, fastOptions())

	uvi, err := c.UVIndex(context.Background(), seattle)
	if err != nil {
		t.Fatalf("UVIndex() error = %v", err)
	}
	if uvi != 6.5 {
		t.Errorf("UVIndex() = %v, want 6.5", uvi)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestOpenWeatherClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "city not found"})
	}, fastOptions())

	_, err := c.CurrentWeather(context.Background(), seattle)
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("error = %v, want ErrLocationNotFound", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestOpenWeatherClient_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}, fastOptions())

	_, err := c.UVIndex(context.Background(), seattle)
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Errorf("error = %v, want ErrUpstreamFailure", err)
	}
	if UpstreamMessage(err) != "Bad Gateway" {
		t.Errorf("UpstreamMessage() = %q, want status text fallback", UpstreamMessage(err))
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestOpenWeatherClient_Timeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, Options{Timeout: 20 * time.Millisecond, RetryAttempts: 1})

	_, err := c.CurrentWeather(context.Background(), seattle)
	if CategorizeError(err) != ErrorCategoryTimeout {
		t.Errorf("error = %v, want timeout category", err)
	}
}

func TestOpenWeatherClient_CircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	opts := fastOptions()
	opts.RetryAttempts = 1
	opts.Breaker = NewBreaker("test_weather", 2, time.Minute)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}, opts)

	for i := 0; i < 2; i++ {
		_, _ = c.CurrentWeather(context.Background(), seattle)
	}
	_, err := c.CurrentWeather(context.Background(), seattle)
	if !errors.Is(err, circuitbreaker.ErrOpen) {
		t.Errorf("error = %v, want circuitbreaker.ErrOpen", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2 (third short-circuited)", calls.Load())
	}
}

func TestOpenWeatherClient_Forecast(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	list := make([]map[string]interface{}, 10)
	for i := range list {
		list[i] = map[string]interface{}{
			"dt":   base.Add(time.Duration(i*3) * time.Hour).Unix(),
			"main": map[string]float64{"temp": float64(20 + i)},
		}
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/2.5/forecast" {
			t.Errorf("path = %q", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"list": list})
	}, fastOptions())

	points, err := c.Forecast(context.Background(), seattle, 8)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(points) != 8 {
		t.Fatalf("len = %d, want 8", len(points))
	}

	times, temps := HourlySeries(points, time.UTC)
	wantTimes := []string{"00:00", "03:00", "06:00", "09:00", "12:00", "15:00", "18:00", "21:00"}
	for i := range wantTimes {
		if times[i] != wantTimes[i] {
			t.Errorf("times[%d] = %q, want %q", i, times[i], wantTimes[i])
		}
		if temps[i] != float64(20+i) {
			t.Errorf("temps[%d] = %v", i, temps[i])
		}
	}
}

func TestNominatimGeocoder(t *testing.T) {
	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		if gotQuery == "Atlantis" {
			writeJSON(w, http.StatusOK, []interface{}{})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]string{{"lat": "47.6062", "lon": "-122.3321", "display_name": "Seattle, King County, Washington"}})
	}))
	defer srv.Close()

	opts := fastOptions()
	opts.UserAgent = "health_safety_app"
	g, err := NewNominatimGeocoder(srv.URL+"/search", opts)
	if err != nil {
		t.Fatalf("NewNominatimGeocoder() error = %v", err)
	}

	got, err := g.Geocode(context.Background(), "Seattle")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if got.Latitude != 47.6062 || got.Longitude != -122.3321 || got.DisplayName == "" {
		t.Errorf("Geocode() = %+v", got)
	}
	if gotUA != "health_safety_app" || gotQuery != "Seattle" {
		t.Errorf("UA = %q, q = %q", gotUA, gotQuery)
	}

	_, err = g.Geocode(context.Background(), "Atlantis")
	if !errors.Is(err, ErrLocationNotFound) {
		t.Errorf("Geocode(Atlantis) error = %v, want ErrLocationNotFound", err)
	}
}

func TestNewNominatimGeocoder_RequiresUserAgent(t *testing.T) {
	if _, err := NewNominatimGeocoder("https://nominatim.example/search", Options{}); err == nil {
		t.Error("expected error without user agent")
	}
}
