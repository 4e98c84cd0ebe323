// Package bootstrap holds the start-up wiring shared by the binaries: model loading
// from configuration and graceful HTTP shutdown.
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/advisory"
	"github.com/kjstillabower/health-advisory-service/internal/config"
	httphandler "github.com/kjstillabower/health-advisory-service/internal/http"
	"github.com/kjstillabower/health-advisory-service/internal/lifecycle"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
	"github.com/kjstillabower/health-advisory-service/internal/triage"
)

// Component names used for readiness and the model-loaded gauge.
const (
	SymptomModel   = "symptom_model"
	ConditionModel = "condition_model"
)

// SymptomTrainConfig maps training settings from cfg.
func SymptomTrainConfig(cfg *config.Config) triage.TrainConfig {
	tc := triage.DefaultTrainConfig()
	tc.SamplesPerDisease = cfg.SymptomSamplesPerDisease
	tc.Seed = cfg.TrainSeed
	tc.Forest.NumTrees = cfg.SymptomTrees
	tc.Forest.MaxDepth = cfg.SymptomMaxDepth
	tc.Forest.Seed = cfg.TrainSeed
	tc.Forest.Workers = cfg.TrainWorkers
	return tc
}

// WeatherTrainConfig maps training settings from cfg.
func WeatherTrainConfig(cfg *config.Config) advisory.TrainConfig {
	tc := advisory.DefaultTrainConfig()
	tc.Samples = cfg.WeatherSamples
	tc.Seed = cfg.TrainSeed
	tc.Forest.NumTrees = cfg.WeatherTrees
	tc.Forest.Seed = cfg.TrainSeed
	tc.Forest.Workers = cfg.TrainWorkers
	return tc
}

// LoadSymptomModel loads the symptom model artifact, training it when missing or when
// RetrainOnStart is set, and reports readiness.
func LoadSymptomModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*triage.SymptomModel, error) {
	lifecycle.SetReady(SymptomModel, false)
	var (
		m       *triage.SymptomModel
		trained bool
		err     error
	)
	start := time.Now()
	if cfg.RetrainOnStart {
		m, err = triage.TrainModel(ctx, triage.Catalog, SymptomTrainConfig(cfg), logger)
		if err == nil {
			trained = true
			err = m.Save(cfg.SymptomModelPath)
		}
	} else {
		m, trained, err = triage.LoadOrTrain(ctx, cfg.SymptomModelPath, SymptomTrainConfig(cfg), logger)
	}
	if err != nil {
		observability.SetModelLoaded(SymptomModel, false)
		return nil, err
	}
	observability.SetModelLoaded(SymptomModel, true)
	lifecycle.SetReady(SymptomModel, true)
	logger.Info("symptom model ready",
		zap.String("path", cfg.SymptomModelPath),
		zap.Bool("trained", trained),
		zap.Int("diseases", len(m.Diseases())),
		zap.Float64("accuracy", m.Accuracy),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// LoadConditionModel is LoadSymptomModel for the weather condition classifier.
func LoadConditionModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*advisory.ConditionModel, error) {
	lifecycle.SetReady(ConditionModel, false)
	var (
		m       *advisory.ConditionModel
		trained bool
		err     error
	)
	start := time.Now()
	if cfg.RetrainOnStart {
		m, err = advisory.Train(ctx, WeatherTrainConfig(cfg), logger)
		if err == nil {
			trained = true
			err = m.Save(cfg.WeatherModelPath)
		}
	} else {
		m, trained, err = advisory.LoadOrTrain(ctx, cfg.WeatherModelPath, WeatherTrainConfig(cfg), logger)
	}
	if err != nil {
		observability.SetModelLoaded(ConditionModel, false)
		return nil, err
	}
	observability.SetModelLoaded(ConditionModel, true)
	lifecycle.SetReady(ConditionModel, true)
	logger.Info("condition model ready",
		zap.String("path", cfg.WeatherModelPath),
		zap.Bool("trained", trained),
		zap.Float64("accuracy", m.Accuracy),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// Serve runs srv until ctx is done, then flips the shutting-down flag, stops accepting
// connections and waits up to shutdownTimeout for in-flight requests.
func Serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if n := httphandler.InFlightCount(); n > 0 {
		logger.Info("waiting for in-flight requests", zap.Int64("count", n))
		if err := httphandler.WaitForInFlight(shutdownCtx, 50*time.Millisecond); err != nil {
			logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
		}
	}
	return nil
}
