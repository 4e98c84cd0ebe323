package models

import "time"

// Condition is the label produced by the weather condition classifier.
type Condition string

const (
	ConditionHeatWave Condition = "heat_wave"
	ConditionColdWave Condition = "cold_wave"
	ConditionNormal   Condition = "normal"
)

// Coordinates is a geocoded location.
type Coordinates struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"displayName,omitempty"`
}

// WeatherSample is the current-weather reading fed to the condition classifier.
type WeatherSample struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	WindSpeed   float64 `json:"windSpeed"`   // m/s
}

// Features returns the classifier feature vector in training column order.
func (s WeatherSample) Features() []float64 {
	return []float64{s.Temperature, s.Humidity, s.WindSpeed}
}

// ForecastPoint is one 3-hour forecast entry.
type ForecastPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
}

type Advisory struct {
	Location        string        `json:"location"`
	Coordinates     Coordinates   `json:"coordinates"`
	Sample          WeatherSample `json:"sample"`
	UVIndex         float64       `json:"uvIndex"`
	Condition       Condition     `json:"condition"`
	Recommendations []string      `json:"recommendations"`
	HourlyTimes     []string      `json:"hourlyTimes"`
	HourlyTemps     []float64     `json:"hourlyTemps"`
	Timestamp       time.Time     `json:"timestamp"`
}
