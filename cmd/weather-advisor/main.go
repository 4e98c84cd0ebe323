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
	"github.com/kjstillabower/health-advisory-service/internal/cache"
	"github.com/kjstillabower/health-advisory-service/internal/client"
	"github.com/kjstillabower/health-advisory-service/internal/config"
	httphandler "github.com/kjstillabower/health-advisory-service/internal/http"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
	"github.com/kjstillabower/health-advisory-service/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger, err := observability.NewLogger("weather-advisor")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}
	if err := cfg.RequireWeatherAPIKey(); err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model, err := bootstrap.LoadConditionModel(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("condition model", zap.Error(err))
	}

	weatherClient, err := client.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, client.Options{
		Timeout:        cfg.WeatherAPITimeout,
		RetryAttempts:  cfg.RetryAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
		RetryMaxDelay:  cfg.RetryMaxDelay,
		Breaker:        client.NewBreaker("weather_api", cfg.CircuitFailureThreshold, cfg.CircuitOpenTimeout),
	})
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}
	geocoder, err := client.NewNominatimGeocoder(cfg.GeocoderURL, client.Options{
		Timeout:        cfg.GeocoderTimeout,
		RetryAttempts:  cfg.RetryAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
		RetryMaxDelay:  cfg.RetryMaxDelay,
		Breaker:        client.NewBreaker("geocoder", cfg.CircuitFailureThreshold, cfg.CircuitOpenTimeout),
		UserAgent:      cfg.GeocoderUserAgent,
	})
	if err != nil {
		logger.Fatal("geocoder", zap.Error(err))
	}

	advisoryCache, err := cache.New(cfg)
	if err != nil {
		logger.Fatal("cache", zap.Error(err))
	}
	defer func() {
		if err := advisoryCache.Close(); err != nil {
			logger.Error("cache close", zap.Error(err))
		}
	}()
	logger.Info("cache backend", zap.String("backend", advisoryCache.Backend()))

	svc := service.NewAdvisoryService(geocoder, weatherClient, model, advisoryCache, cfg.CacheTTL)

	health := httphandler.NewHealthHandler(httphandler.HealthConfig{
		Service:            "weather-advisor",
		DegradedWindow:     cfg.DegradedWindow,
		DegradedErrorPct:   cfg.DegradedErrorPct,
		DegradedMinSamples: cfg.DegradedMinSamples,
		OverloadPct:        50,
		Checks: map[string]func(context.Context) error{
			"cache": svc.CheckCache,
		},
	}, logger)

	router := httphandler.NewAdvisorRouter(httphandler.NewAdvisoryHandler(svc), health, httphandler.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		Limiter:        httphandler.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.AdvisorPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}
	if err := bootstrap.Serve(ctx, srv, cfg.ShutdownTimeout, logger); err != nil {
		logger.Fatal("server", zap.Error(err))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
