// Package service builds health advisories for a location.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/advisory"
	"github.com/kjstillabower/health-advisory-service/internal/cache"
	"github.com/kjstillabower/health-advisory-service/internal/client"
	"github.com/kjstillabower/health-advisory-service/internal/models"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
)

// ForecastPoints is the number of 3-hour forecast entries shown (24 hours).
const ForecastPoints = 8

var (
	// ErrGeocode wraps geocoder failures other than an unknown place.
	ErrGeocode = errors.New("geocoding failed")
	// ErrCurrentWeather wraps any failure of the current-weather call.
	ErrCurrentWeather = errors.New("current weather unavailable")
)

// ConditionClassifier labels a weather sample.
type ConditionClassifier interface {
	Classify(s models.WeatherSample) models.Condition
}

// AdvisoryService orchestrates geocoding, weather lookups, classification and
// recommendations with a cache-aside layer keyed by normalized location.
type AdvisoryService struct {
	geocoder   client.Geocoder
	weather    client.WeatherClient
	classifier ConditionClassifier
	cache      cache.Cache
	ttl        time.Duration
	tz         *time.Location
	now        func() time.Time
}

// NewAdvisoryService wires the dependencies. A nil cache disables caching.
func NewAdvisoryService(geocoder client.Geocoder, weather client.WeatherClient, classifier ConditionClassifier, c cache.Cache, ttl time.Duration) *AdvisoryService {
	return &AdvisoryService{
		geocoder:   geocoder,
		weather:    weather,
		classifier: classifier,
		cache:      c,
		ttl:        ttl,
		tz:         time.Local,
		now:        time.Now,
	}
}

// GetAdvisory returns the advisory for location, serving from cache when possible.
// Errors wrap client.ErrLocationNotFound, ErrGeocode or ErrCurrentWeather.
func (s *AdvisoryService) GetAdvisory(ctx context.Context, location string) (models.Advisory, error) {
	key := cache.Key(location)
	logger := observability.LoggerFromContext(ctx)
	start := s.now()
	observability.AdvisoryQueriesTotal.Inc()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			observability.CacheErrorsTotal.WithLabelValues("get", categorizeCacheError(err)).Inc()
			logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		case ok:
			observability.CacheHitsTotal.WithLabelValues("advisory").Inc()
			logger.Debug("advisory served", zap.String("key", key), zap.Bool("cached", true))
			// entries are shared across spellings of the same place
			cached.Location = location
			return cached, nil
		}
	}

	coords, err := s.geocoder.Geocode(ctx, location)
	if err != nil {
		if errors.Is(err, client.ErrLocationNotFound) {
			return models.Advisory{}, fmt.Errorf("geocode %q: %w", location, err)
		}
		return models.Advisory{}, fmt.Errorf("%w: %w", ErrGeocode, err)
	}

	sample, err := s.weather.CurrentWeather(ctx, coords)
	if err != nil {
		return models.Advisory{}, fmt.Errorf("%w: %w", ErrCurrentWeather, err)
	}

	uvi, err := s.weather.UVIndex(ctx, coords)
	if err != nil {
		logger.Warn("uv index unavailable, using 0", zap.Error(err))
		uvi = 0
	}

	points, err := s.weather.Forecast(ctx, coords, ForecastPoints)
	if err != nil {
		logger.Warn("forecast unavailable", zap.Error(err))
		points = nil
	}
	times, temps := client.HourlySeries(points, s.tz)

	condition := s.classifier.Classify(sample)
	observability.RecordConditionPrediction(string(condition))

	adv := models.Advisory{
		Location:        location,
		Coordinates:     coords,
		Sample:          sample,
		UVIndex:         uvi,
		Condition:       condition,
		Recommendations: advisory.Recommend(condition, uvi, sample.Humidity),
		HourlyTimes:     times,
		HourlyTemps:     temps,
		Timestamp:       s.now(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, adv, s.ttl); err != nil {
			observability.CacheErrorsTotal.WithLabelValues("set", categorizeCacheError(err)).Inc()
			logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	logger.Info("advisory built",
		zap.String("location", location),
		zap.String("condition", string(condition)),
		zap.Float64("temperature", sample.Temperature),
		zap.Float64("uvi", uvi),
		zap.Duration("duration", s.now().Sub(start)),
	)
	return adv, nil
}

// CheckCache pings the cache backend; nil when caching is disabled.
func (s *AdvisoryService) CheckCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Ping(ctx)
}

// categorizeCacheError returns a stable label for cache error metrics.
func categorizeCacheError(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &netErr):
		return "connection"
	default:
		return "unknown"
	}
}
