package triage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kjstillabower/health-advisory-service/internal/ml"
)

func smallCatalog() []Disease {
	pick := map[string]bool{
		"Common Cold": true, "Gastroenteritis": true, "Migraine": true,
		"Conjunctivitis": true, "Urinary Tract Infection": true,
	}
	var out []Disease
	for _, d := range Catalog {
		if pick[d.Name] {
			out = append(out, d)
		}
	}
	return out
}

func smallTrainConfig() TrainConfig {
	cfg := DefaultTrainConfig()
	cfg.SamplesPerDisease = 60
	cfg.Forest.NumTrees = 30
	return cfg
}

func trainSmall(t *testing.T) *SymptomModel {
	t.Helper()
	m, err := TrainModel(context.Background(), smallCatalog(), smallTrainConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return m
}

func TestTrainModel(t *testing.T) {
	m := trainSmall(t)

	assert.Equal(t, []string{"Common Cold", "Conjunctivitis", "Gastroenteritis", "Migraine", "Urinary Tract Infection"}, m.Diseases())
	assert.Greater(t, m.Accuracy, 0.7)
	assert.Contains(t, m.Vocabulary(), "sneezing")
	assert.Contains(t, m.Vocabulary(), "urine")
	assert.Equal(t, "Urologist", m.SpecialtyFor("Urinary Tract Infection"))
	assert.Equal(t, DefaultSpecialty, m.SpecialtyFor("Unknown Disease"))
	assert.LessOrEqual(t, m.Vectorizer.NumFeatures(), 1000)
}

func TestSymptomModel_Classify(t *testing.T) {
	m := trainSmall(t)

	c := m.Classify(Preprocess("burning urination, cloudy urine and pelvic pain"))

	assert.Equal(t, "Urinary Tract Infection", c.Disease)
	require.Len(t, c.Top, 3)
	assert.Equal(t, c.Disease, c.Top[0].Disease)
	assert.Equal(t, c.Confidence, c.Top[0].Probability)
	assert.GreaterOrEqual(t, c.Top[0].Probability, c.Top[1].Probability)
	assert.GreaterOrEqual(t, c.Top[1].Probability, c.Top[2].Probability)
}

func TestSymptomModel_SaveLoad(t *testing.T) {
	m := trainSmall(t)
	path := filepath.Join(t.TempDir(), "symptom_model.gob.gz")
	require.NoError(t, m.Save(path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)

	text := Preprocess("red eyes, itchy eyes and watery eyes")
	assert.Equal(t, m.Classify(text), loaded.Classify(text))
	assert.Equal(t, m.Diseases(), loaded.Diseases())
	assert.Equal(t, m.Keywords, loaded.Keywords)
}

func TestLoadOrTrain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "symptom_model.gob.gz")
	cfg := smallTrainConfig()
	cfg.SamplesPerDisease = 10
	cfg.Forest.NumTrees = 5

	m, trained, err := LoadOrTrain(context.Background(), path, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, trained)
	assert.Len(t, m.Diseases(), len(Catalog))
	_, err = os.Stat(path)
	require.NoError(t, err)

	again, trained, err := LoadOrTrain(context.Background(), path, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, trained)
	assert.Equal(t, m.Diseases(), again.Diseases())
}

func TestLoadModel_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gob.gz")
	require.NoError(t, os.WriteFile(path, []byte("not a model"), 0o644))

	_, err := LoadModel(path)
	assert.Error(t, err)

	_, _, err = LoadOrTrain(context.Background(), path, smallTrainConfig(), nil)
	assert.Error(t, err, "a corrupt artifact is not silently replaced")
}

func TestTrainModel_EmptyCatalog(t *testing.T) {
	_, err := TrainModel(context.Background(), nil, smallTrainConfig(), nil)
	assert.ErrorIs(t, err, ml.ErrNoSamples)
}

func TestPredictor_WithTrainedModel(t *testing.T) {
	m := trainSmall(t)
	p := NewPredictor(m, NewValidator(m.Vocabulary()), NewMockDirectory(3))

	res, err := p.Predict(context.Background(), validQuery("I have sneezing and runny nose since yesterday"))
	require.NoError(t, err)
	assert.Equal(t, "Common Cold", res.Prediction.Disease)
	assert.Equal(t, "General Physician", res.Prediction.Specialty)
	assert.GreaterOrEqual(t, res.Prediction.Confidence, 0.75)
}
