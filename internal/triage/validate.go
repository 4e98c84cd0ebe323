package triage

import (
	"strings"

	"github.com/kjstillabower/health-advisory-service/internal/models"
)

// CheckQuery rejects a query with no symptom text or an incomplete location.
func CheckQuery(q models.SymptomQuery) error {
	if strings.TrimSpace(q.Symptoms) == "" {
		return errNoInput()
	}
	if strings.TrimSpace(q.State) == "" || strings.TrimSpace(q.City) == "" {
		return errNoLocation()
	}
	return nil
}

// Validator decides whether preprocessed text mentions anything symptom-like.
type Validator struct {
	vocabulary map[string]struct{}
}

// NewValidator builds a validator over the known symptom keywords.
func NewValidator(keywords []string) *Validator {
	v := &Validator{vocabulary: make(map[string]struct{}, len(keywords))}
	for _, k := range keywords {
		v.vocabulary[strings.ToLower(k)] = struct{}{}
	}
	return v
}

// Valid reports whether text has a content word found in the vocabulary.
// With an empty vocabulary any content word is enough.
func (v *Validator) Valid(text string) bool {
	words := ContentWords(text)
	if len(v.vocabulary) == 0 {
		return len(words) > 0
	}
	for _, w := range words {
		if _, ok := v.vocabulary[w]; ok {
			return true
		}
	}
	return false
}
