package advisory

import "github.com/kjstillabower/health-advisory-service/internal/models"

const (
	highUVAbove       = 3.0
	highHumidityAbove = 80.0
	lowHumidityBelow  = 30.0
)

// Recommendation texts, one per threshold band.
const (
	HeatWaveAdvice     = "Heat wave detected! Stay hydrated, avoid outdoor activities during peak heat, wear light clothing, and seek air-conditioned spaces."
	ColdWaveAdvice     = "Cold wave detected! Dress in layers, stay indoors, keep warm with heaters, and avoid prolonged exposure to cold."
	NormalAdvice       = "Normal conditions. Maintain general safety: stay aware of weather changes and follow routine precautions."
	HighUVAdvice       = "High UV index! Apply sunscreen (SPF 30+), wear protective clothing, and avoid direct sun between 10 AM and 4 PM."
	ModerateUVAdvice   = "Moderate UV index. Use sunscreen if outdoors for extended periods."
	HighHumidityAdvice = "High humidity! Stay hydrated, watch for mold or heat exhaustion, and use dehumidifiers indoors."
	LowHumidityAdvice  = "Low humidity! Use moisturizer to prevent dry skin, and consider a humidifier indoors."
)

// Recommend returns the condition advice followed by any UV and humidity advice.
// Unknown conditions get the normal advice.
func Recommend(condition models.Condition, uvIndex, humidity float64) []string {
	recs := make([]string, 0, 3)
	switch condition {
	case models.ConditionHeatWave:
		recs = append(recs, HeatWaveAdvice)
	case models.ConditionColdWave:
		recs = append(recs, ColdWaveAdvice)
	default:
		recs = append(recs, NormalAdvice)
	}

	switch {
	case uvIndex > highUVAbove:
		recs = append(recs, HighUVAdvice)
	case uvIndex > 0:
		recs = append(recs, ModerateUVAdvice)
	}

	switch {
	case humidity > highHumidityAbove:
		recs = append(recs, HighHumidityAdvice)
	case humidity < lowHumidityBelow:
		recs = append(recs, LowHumidityAdvice)
	}
	return recs
}
