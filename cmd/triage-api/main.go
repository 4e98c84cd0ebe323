package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/bootstrap"
	"github.com/kjstillabower/health-advisory-service/internal/config"
	httphandler "github.com/kjstillabower/health-advisory-service/internal/http"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
	"github.com/kjstillabower/health-advisory-service/internal/triage"
)

func main() {
	_ = godotenv.Load()

	logger, err := observability.NewLogger("triage-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := bootstrap.LoadSymptomModel(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("symptom model", zap.Error(err))
	}

	var doctorSeed int64
	if cfg.TestingMode {
		doctorSeed = cfg.TrainSeed
		logger.Warn("testing mode enabled; doctor directory is deterministic")
	}
	predictor := triage.NewPredictor(model, triage.NewValidator(model.Vocabulary()), triage.NewMockDirectory(doctorSeed))

	health := httphandler.NewHealthHandler(httphandler.HealthConfig{
		Service:            "triage-api",
		DegradedWindow:     cfg.DegradedWindow,
		DegradedMinSamples: cfg.DegradedMinSamples,
		OverloadPct:        50,
	}, logger)

	router := httphandler.NewTriageRouter(httphandler.NewTriageHandler(predictor, model.Diseases()), health, httphandler.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		Limiter:        httphandler.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.TriagePort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}
	logger.Info("triage model serving", zap.Int("diseases", len(model.Diseases())))
	if err := bootstrap.Serve(ctx, srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server", zap.Error(err))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
