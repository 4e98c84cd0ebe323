package advisory

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/kjstillabower/health-advisory-service/internal/models"
)

// Labeled is one synthetic weather reading with its condition.
type Labeled struct {
	Sample    models.WeatherSample
	Condition models.Condition
}

const (
	heatWaveAbove = 35.0
	coldWaveBelow = 5.0
)

// LabelFor applies the temperature thresholds the synthetic data is labeled with.
func LabelFor(temperature float64) models.Condition {
	switch {
	case temperature > heatWaveAbove:
		return models.ConditionHeatWave
	case temperature < coldWaveBelow:
		return models.ConditionColdWave
	default:
		return models.ConditionNormal
	}
}

// GenerateDataset draws n readings with temperature in [-20, 50) °C, humidity in
// [0, 100) % and wind speed in [0, 50) m/s.
func GenerateDataset(n int, rng *rand.Rand) []Labeled {
	temps := make([]float64, n)
	for i := range temps {
		temps[i] = -20 + rng.Float64()*70
	}
	humidity := make([]float64, n)
	for i := range humidity {
		humidity[i] = rng.Float64() * 100
	}
	wind := make([]float64, n)
	for i := range wind {
		wind[i] = rng.Float64() * 50
	}

	out := make([]Labeled, n)
	for i := range out {
		out[i] = Labeled{
			Sample:    models.WeatherSample{Temperature: temps[i], Humidity: humidity[i], WindSpeed: wind[i]},
			Condition: LabelFor(temps[i]),
		}
	}
	return out
}

// WriteCSV writes rows with a temperature,humidity,wind_speed,condition header.
func WriteCSV(w io.Writer, rows []Labeled) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"temperature", "humidity", "wind_speed", "condition"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			strconv.FormatFloat(r.Sample.Temperature, 'f', -1, 64),
			strconv.FormatFloat(r.Sample.Humidity, 'f', -1, 64),
			strconv.FormatFloat(r.Sample.WindSpeed, 'f', -1, 64),
			string(r.Condition),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
