package triage

import (
	"strings"

	"github.com/kjstillabower/health-advisory-service/internal/models"
)

type patternRule struct {
	matches    func(text string) bool
	prediction models.DiseasePrediction
}

// countHits counts keywords occurring anywhere in text, substrings included.
func countHits(text string, keywords ...string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

func containsAll(text string, words ...string) bool {
	return countHits(text, words...) == len(words)
}

// patternRules are evaluated in order; the first match wins.
var patternRules = []patternRule{
	{
		matches: func(t string) bool {
			return countHits(t, "cold", "runny", "nose", "sneez", "congestion", "stuffy") >= 2
		},
		prediction: models.DiseasePrediction{Disease: "Common Cold", Confidence: 0.75, Specialty: "General Physician"},
	},
	{
		matches: func(t string) bool {
			return countHits(t, "fever", "headache", "body", "pain", "ache", "fatigue", "chills") >= 2
		},
		prediction: models.DiseasePrediction{Disease: "Influenza (Flu)", Confidence: 0.70, Specialty: "General Physician"},
	},
	{
		matches: func(t string) bool {
			return containsAll(t, "chest", "pain") ||
				containsAll(t, "shortness", "breath") ||
				containsAll(t, "breathing", "difficulty")
		},
		prediction: models.DiseasePrediction{Disease: "Respiratory Infection", Confidence: 0.65, Specialty: "Pulmonologist"},
	},
	{
		matches: func(t string) bool {
			return countHits(t, "stomach", "nausea", "vomit", "diarrhea", "abdominal") >= 2
		},
		prediction: models.DiseasePrediction{Disease: "Gastroenteritis", Confidence: 0.70, Specialty: "Gastroenterologist"},
	},
}

// MatchPattern runs the keyword rules over preprocessed text.
func MatchPattern(text string) (models.DiseasePrediction, bool) {
	text = strings.ToLower(text)
	for _, r := range patternRules {
		if r.matches(text) {
			p := r.prediction
			p.Source = models.SourceManual
			return p, true
		}
	}
	return models.DiseasePrediction{}, false
}
