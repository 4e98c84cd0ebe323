package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kjstillabower/health-advisory-service/internal/models"
)

// WeatherClient fetches the readings an advisory needs for a coordinate.
type WeatherClient interface {
	CurrentWeather(ctx context.Context, at models.Coordinates) (models.WeatherSample, error)
	UVIndex(ctx context.Context, at models.Coordinates) (float64, error)
	Forecast(ctx context.Context, at models.Coordinates, points int) ([]models.ForecastPoint, error)
}

// OpenWeatherClient calls the OpenWeatherMap 2.5 REST API.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	up      *upstream
}

// NewOpenWeatherClient validates the key shape and returns a client rooted at baseURL,
// e.g. https://api.openweathermap.org/data/2.5.
func NewOpenWeatherClient(apiKey, baseURL string, opts Options) (*OpenWeatherClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidAPIKey)
	}
	if len(apiKey) < 10 {
		return nil, fmt.Errorf("%w: API key appears invalid (too short)", ErrInvalidAPIKey)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid weather API URL: %w", err)
	}
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		up:      &upstream{opts: opts.withDefaults()},
	}, nil
}

type currentResponse struct {
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type uviResponse struct {
	Value float64 `json:"value"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
	} `json:"list"`
}

func (c *OpenWeatherClient) endpoint(path string, at models.Coordinates, metric bool) string {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	if metric {
		q.Set("units", "metric")
	}
	return c.baseURL + path + "?" + q.Encode()
}

// CurrentWeather returns temperature (°C), humidity and wind speed at a point.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, at models.Coordinates) (models.WeatherSample, error) {
	var resp currentResponse
	if err := c.up.getJSON(ctx, "weather", c.endpoint("/weather", at, true), &resp); err != nil {
		return models.WeatherSample{}, err
	}
	if resp.Main == nil {
		return models.WeatherSample{}, fmt.Errorf("weather: %w: missing main block", ErrBadResponse)
	}
	return models.WeatherSample{
		Temperature: resp.Main.Temp,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
	}, nil
}

// UVIndex returns the current UV index at a point.
func (c *OpenWeatherClient) UVIndex(ctx context.Context, at models.Coordinates) (float64, error) {
	var resp uviResponse
	if err := c.up.getJSON(ctx, "uvi", c.endpoint("/uvi", at, false), &resp); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

// Forecast returns up to points 3-hourly temperatures starting now.
func (c *OpenWeatherClient) Forecast(ctx context.Context, at models.Coordinates, points int) ([]models.ForecastPoint, error) {
	var resp forecastResponse
	if err := c.up.getJSON(ctx, "forecast", c.endpoint("/forecast", at, true), &resp); err != nil {
		return nil, err
	}
	list := resp.List
	if points > 0 && len(list) > points {
		list = list[:points]
	}
	out := make([]models.ForecastPoint, len(list))
	for i, e := range list {
		out[i] = models.ForecastPoint{Time: time.Unix(e.Dt, 0), Temperature: e.Main.Temp}
	}
	return out, nil
}

// HourlySeries splits forecast points into "HH:00" labels in loc and temperatures.
func HourlySeries(points []models.ForecastPoint, loc *time.Location) (times []string, temps []float64) {
	if loc == nil {
		loc = time.Local
	}
	times = make([]string, len(points))
	temps = make([]float64, len(points))
	for i, p := range points {
		times[i] = p.Time.In(loc).Format("15") + ":00"
		temps[i] = p.Temperature
	}
	return times, temps
}
