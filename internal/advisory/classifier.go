package advisory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/ml"
	"github.com/kjstillabower/health-advisory-service/internal/models"
)

// TrainConfig controls the synthetic dataset and the forest.
type TrainConfig struct {
	Samples      int
	TestFraction float64
	Seed         int64
	Forest       ml.ForestConfig
}

// DefaultTrainConfig returns 1000 samples, a 20% hold-out and a 100-tree forest.
func DefaultTrainConfig() TrainConfig {
	forest := ml.DefaultForestConfig()
	forest.MaxDepth = 0
	return TrainConfig{
		Samples:      1000,
		TestFraction: 0.2,
		Seed:         42,
		Forest:       forest,
	}
}

// ConditionModel labels a WeatherSample as heat wave, cold wave or normal.
// It is read-only once trained or loaded.
type ConditionModel struct {
	Forest    *ml.RandomForest
	Labels    *ml.LabelEncoder
	Accuracy  float64
	TrainedAt time.Time
}

// Train fits a condition model on freshly generated synthetic data.
func Train(ctx context.Context, cfg TrainConfig, logger *zap.Logger) (*ConditionModel, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rows := GenerateDataset(cfg.Samples, rand.New(rand.NewSource(cfg.Seed)))
	if len(rows) == 0 {
		return nil, ml.ErrNoSamples
	}
	x := make([]ml.Vector, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		x[i] = ml.DenseVector(r.Sample.Features())
		names[i] = string(r.Condition)
	}
	labels := ml.FitLabelEncoder(names)
	y, err := labels.EncodeAll(names)
	if err != nil {
		return nil, fmt.Errorf("encode labels: %w", err)
	}

	trainIdx, testIdx := ml.TrainTestSplit(len(rows), cfg.TestFraction, cfg.Seed)
	forest, err := ml.TrainForest(ctx, ml.Select(x, trainIdx), ml.Select(y, trainIdx), labels.Len(), cfg.Forest)
	if err != nil {
		return nil, err
	}
	accuracy := 1.0
	if len(testIdx) > 0 {
		accuracy = forest.Score(ml.Select(x, testIdx), ml.Select(y, testIdx))
	}
	logger.Info("condition model trained",
		zap.Int("samples", len(rows)),
		zap.Int("trees", len(forest.Trees)),
		zap.Float64("accuracy", accuracy),
	)
	return &ConditionModel{Forest: forest, Labels: labels, Accuracy: accuracy, TrainedAt: time.Now().UTC()}, nil
}

// Save writes the model artifact to path.
func (m *ConditionModel) Save(path string) error {
	return ml.SaveArtifact(path, m)
}

// Load reads a model artifact written by Save.
func Load(path string) (*ConditionModel, error) {
	var m ConditionModel
	if err := ml.LoadArtifact(path, &m); err != nil {
		return nil, err
	}
	if m.Forest == nil || m.Labels == nil {
		return nil, fmt.Errorf("load condition model %s: incomplete artifact", path)
	}
	m.Labels.Prepare()
	return &m, nil
}

// LoadOrTrain loads path or, when it does not exist, trains and saves a new model.
func LoadOrTrain(ctx context.Context, path string, cfg TrainConfig, logger *zap.Logger) (*ConditionModel, bool, error) {
	m, err := Load(path)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}
	if logger != nil {
		logger.Info("condition model artifact not found, training", zap.String("path", path))
	}
	m, err = Train(ctx, cfg, logger)
	if err != nil {
		return nil, false, fmt.Errorf("train condition model: %w", err)
	}
	if err := m.Save(path); err != nil {
		return nil, true, fmt.Errorf("save condition model: %w", err)
	}
	return m, true, nil
}

// Classify predicts the condition of s.
func (m *ConditionModel) Classify(s models.WeatherSample) models.Condition {
	class, _ := m.Forest.Predict(ml.DenseVector(s.Features()))
	label, err := m.Labels.Decode(class)
	if err != nil {
		return models.ConditionNormal
	}
	return models.Condition(label)
}
