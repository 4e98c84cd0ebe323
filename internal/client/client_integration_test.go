//go:build integration
// +build integration

package client

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestOpenWeatherClient_Integration(t *testing.T) {
	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		t.Skip("WEATHER_API_KEY not set, skipping integration test")
	}

	geo, err := NewNominatimGeocoder("https://nominatim.openstreetmap.org/search", Options{
		Timeout:   10 * time.Second,
		UserAgent: "health_safety_app",
	})
	if err != nil {
		t.Fatalf("NewNominatimGeocoder() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	at, err := geo.Geocode(ctx, "London")
	if err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}

	c, err := NewOpenWeatherClient(apiKey, "https://api.openweathermap.org/data/2.5", Options{Timeout: 10 * time.Second, RetryAttempts: 2})
	if err != nil {
		t.Fatalf("NewOpenWeatherClient() error = %v", err)
	}
	sample, err := c.CurrentWeather(ctx, at)
	if err != nil {
		t.Fatalf("CurrentWeather() error = %v", err)
	}
	if sample.Humidity < 0 || sample.Humidity > 100 {
		t.Errorf("humidity = %v out of range", sample.Humidity)
	}
	points, err := c.Forecast(ctx, at, 8)
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if len(points) != 8 {
		t.Errorf("forecast points = %d, want 8", len(points))
	}
}
