package triage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/ml"
)

// TrainConfig controls dataset generation and model fitting.
type TrainConfig struct {
	SamplesPerDisease int
	TestFraction      float64
	Seed              int64
	Tfidf             ml.TfidfConfig
	Forest            ml.ForestConfig
}

// DefaultTrainConfig returns the settings used when no model artifact exists.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		SamplesPerDisease: 200,
		TestFraction:      0.2,
		Seed:              42,
		Tfidf:             ml.DefaultTfidfConfig(),
		Forest:            ml.DefaultForestConfig(),
	}
}

// SymptomModel bundles everything needed to classify a symptom description.
// It is read-only after training or loading.
type SymptomModel struct {
	Vectorizer  *ml.TfidfVectorizer
	Forest      *ml.RandomForest
	Labels      *ml.LabelEncoder
	Specialties map[string]string
	Keywords    []string
	Accuracy    float64
	TrainedAt   time.Time
}

// Candidate is one disease with its predicted probability.
type Candidate struct {
	Disease     string
	Probability float64
}

// Classification is the model's view of one text: its top-1 label and the top-3 pool.
type Classification struct {
	Disease    string
	Confidence float64
	Top        []Candidate
}

const fallbackPoolSize = 3

// TrainModel generates the synthetic dataset for catalog and fits a model on it.
func TrainModel(ctx context.Context, catalog []Disease, cfg TrainConfig, logger *zap.Logger) (*SymptomModel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	samples := GenerateDataset(catalog, cfg.SamplesPerDisease, rng)
	if len(samples) == 0 {
		return nil, ml.ErrNoSamples
	}
	texts := make([]string, len(samples))
	diseases := make([]string, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
		diseases[i] = s.Disease
	}

	vectorizer := ml.NewTfidfVectorizer(cfg.Tfidf)
	x, err := vectorizer.FitTransform(texts)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	labels := ml.FitLabelEncoder(diseases)
	y, err := labels.EncodeAll(diseases)
	if err != nil {
		return nil, fmt.Errorf("encode labels: %w", err)
	}

	trainIdx, testIdx := ml.TrainTestSplit(len(samples), cfg.TestFraction, cfg.Seed)
	start := time.Now()
	forest, err := ml.TrainForest(ctx, ml.Select(x, trainIdx), ml.Select(y, trainIdx), labels.Len(), cfg.Forest)
	if err != nil {
		return nil, err
	}
	accuracy := 1.0
	if len(testIdx) > 0 {
		accuracy = forest.Score(ml.Select(x, testIdx), ml.Select(y, testIdx))
	}

	logger.Info("symptom model trained",
		zap.Int("samples", len(samples)),
		zap.Int("diseases", labels.Len()),
		zap.Int("features", vectorizer.NumFeatures()),
		zap.Int("trees", len(forest.Trees)),
		zap.Float64("accuracy", accuracy),
		zap.Duration("duration", time.Since(start)),
	)

	return &SymptomModel{
		Vectorizer:  vectorizer,
		Forest:      forest,
		Labels:      labels,
		Specialties: SpecialtyMap(catalog),
		Keywords:    KeywordVocabulary(texts),
		Accuracy:    accuracy,
		TrainedAt:   time.Now().UTC(),
	}, nil
}

// Save writes the model artifact to path.
func (m *SymptomModel) Save(path string) error {
	return ml.SaveArtifact(path, m)
}

// LoadModel reads a model artifact written by Save.
func LoadModel(path string) (*SymptomModel, error) {
	var m SymptomModel
	if err := ml.LoadArtifact(path, &m); err != nil {
		return nil, err
	}
	if m.Vectorizer == nil || m.Forest == nil || m.Labels == nil {
		return nil, fmt.Errorf("load symptom model %s: incomplete artifact", path)
	}
	m.Labels.Prepare()
	return &m, nil
}

// LoadOrTrain loads the artifact at path, training and saving a new model when the
// file does not exist. trained reports whether training happened.
func LoadOrTrain(ctx context.Context, path string, cfg TrainConfig, logger *zap.Logger) (m *SymptomModel, trained bool, err error) {
	m, err = LoadModel(path)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	if logger != nil {
		logger.Info("symptom model artifact not found, training", zap.String("path", path))
	}
	m, err = TrainModel(ctx, Catalog, cfg, logger)
	if err != nil {
		return nil, false, fmt.Errorf("train symptom model: %w", err)
	}
	if err := m.Save(path); err != nil {
		return nil, true, fmt.Errorf("save symptom model: %w", err)
	}
	return m, true, nil
}

// Classify runs the forest on preprocessed text.
func (m *SymptomModel) Classify(text string) Classification {
	probs := m.Forest.PredictProba(m.Vectorizer.Transform(text))
	var out Classification
	for _, cs := range ml.TopK(probs, fallbackPoolSize) {
		name, err := m.Labels.Decode(cs.Class)
		if err != nil {
			continue
		}
		out.Top = append(out.Top, Candidate{Disease: name, Probability: cs.Probability})
	}
	if len(out.Top) > 0 {
		out.Disease = out.Top[0].Disease
		out.Confidence = out.Top[0].Probability
	}
	return out
}

// SpecialtyFor maps a disease to its specialty.
func (m *SymptomModel) SpecialtyFor(disease string) string {
	if s, ok := m.Specialties[disease]; ok {
		return s
	}
	return DefaultSpecialty
}

// Diseases lists every label the model can predict, sorted.
func (m *SymptomModel) Diseases() []string {
	if m == nil || m.Labels == nil {
		return []string{}
	}
	return append([]string(nil), m.Labels.Classes...)
}

// Vocabulary returns the symptom keywords seen in training.
func (m *SymptomModel) Vocabulary() []string { return m.Keywords }
