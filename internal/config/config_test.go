package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

const minimalEnvYAML = `
server:
  advisor_port: "8080"
weather_api:
  url: "https://api.example.com/data/2.5/"
  timeout: "2s"
request:
  timeout: "5s"
cache:
  ttl: "5m"
`

// clearEnv unsets every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ENV_NAME", "WEATHER_API_KEY", "CACHE_BACKEND", "MEMCACHED_ADDRS", "REDIS_ADDR",
		"REDIS_PASSWORD", "ADVISOR_PORT", "TRIAGE_PORT", "MODELS_DIR", "RETRAIN_ON_START",
	} {
		t.Setenv(k, "")
	}
}

func writeConfigDir(t *testing.T, envYAML, secretsYAML string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dev.yaml"), []byte(envYAML), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	if secretsYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), []byte(secretsYAML), 0o644); err != nil {
			t.Fatalf("write secrets file: %v", err)
		}
	}
	return dir
}

func TestLoadDir_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadDir(writeConfigDir(t, minimalEnvYAML, ""))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}

	if cfg.AdvisorPort != "8080" || cfg.TriagePort != "5000" {
		t.Errorf("ports = %s/%s", cfg.AdvisorPort, cfg.TriagePort)
	}
	if cfg.WeatherAPIURL != "https://api.example.com/data/2.5" {
		t.Errorf("WeatherAPIURL = %q, want trailing slash trimmed", cfg.WeatherAPIURL)
	}
	if cfg.GeocoderUserAgent != "health_safety_app" {
		t.Errorf("GeocoderUserAgent = %q", cfg.GeocoderUserAgent)
	}
	if cfg.CacheBackend != CacheInMemory {
		t.Errorf("CacheBackend = %q", cfg.CacheBackend)
	}
	if cfg.SymptomModelPath != filepath.Join("models", "symptom_model.gob.gz") {
		t.Errorf("SymptomModelPath = %q", cfg.SymptomModelPath)
	}
	if cfg.SymptomTrees != 100 || cfg.SymptomMaxDepth != 30 || cfg.TrainSeed != 42 {
		t.Errorf("training defaults = %d trees, depth %d, seed %d", cfg.SymptomTrees, cfg.SymptomMaxDepth, cfg.TrainSeed)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	// request timeout is raised above the geocoder default of 5s
	if cfg.RequestTimeout != 6*time.Second {
		t.Errorf("RequestTimeout = %v, want 6s", cfg.RequestTimeout)
	}
}

func TestLoadDir_APIKeyOptionalUntilRequired(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadDir(writeConfigDir(t, minimalEnvYAML, ""))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if err := cfg.RequireWeatherAPIKey(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("RequireWeatherAPIKey() = %v, want ErrMissingAPIKey", err)
	}
	if !strings.Contains(ErrMissingAPIKey.Error(), "WEATHER_API_KEY") {
		t.Errorf("error message %q should name WEATHER_API_KEY", ErrMissingAPIKey)
	}
}

func TestLoadDir_SecretsFile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadDir(writeConfigDir(t, minimalEnvYAML, "weather_api_key: key-from-secrets-file\nredis_password: hunter2\n"))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if cfg.WeatherAPIKey != "key-from-secrets-file" {
		t.Errorf("WeatherAPIKey = %q", cfg.WeatherAPIKey)
	}
	if cfg.RedisPassword != "hunter2" {
		t.Errorf("RedisPassword = %q", cfg.RedisPassword)
	}
	if err := cfg.RequireWeatherAPIKey(); err != nil {
		t.Errorf("RequireWeatherAPIKey() = %v", err)
	}
}

func TestLoadDir_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_API_KEY", "env-key")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("TRIAGE_PORT", "9000")
	t.Setenv("RETRAIN_ON_START", "true")
	t.Setenv("MODELS_DIR", "/var/lib/models")

	cfg, err := LoadDir(writeConfigDir(t, minimalEnvYAML, "weather_api_key: file-key\n"))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if cfg.WeatherAPIKey != "env-key" {
		t.Errorf("WeatherAPIKey = %q, env should win over secrets file", cfg.WeatherAPIKey)
	}
	if cfg.CacheBackend != CacheRedis || cfg.RedisAddr != "redis:6380" {
		t.Errorf("cache = %s at %s", cfg.CacheBackend, cfg.RedisAddr)
	}
	if cfg.TriagePort != "9000" {
		t.Errorf("TriagePort = %q", cfg.TriagePort)
	}
	if !cfg.RetrainOnStart {
		t.Error("RetrainOnStart = false")
	}
	if cfg.WeatherModelPath != "/var/lib/models/weather_model.gob.gz" {
		t.Errorf("WeatherModelPath = %q", cfg.WeatherModelPath)
	}
}

func TestLoadDir_InvalidDurationFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	yml := minimalEnvYAML + `
reliability:
  circuit_open_timeout: "soon"
`
	cfg, err := LoadDir(writeConfigDir(t, strings.Replace(yml, `ttl: "5m"`, `ttl: "invalid"`, 1), ""))
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if cfg.CacheTTL != 10*time.Minute {
		t.Errorf("CacheTTL = %v, want default 10m", cfg.CacheTTL)
	}
	if cfg.CircuitOpenTimeout != 30*time.Second {
		t.Errorf("CircuitOpenTimeout = %v, want default 30s", cfg.CircuitOpenTimeout)
	}
}

func TestLoadDir_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero weather timeout", strings.Replace(minimalEnvYAML, `timeout: "2s"`, `timeout: "0s"`, 1), "WEATHER_API_TIMEOUT"},
		{"retry delays inverted", minimalEnvYAML + `
reliability:
  retry_base_delay: "5s"
  retry_max_delay: "1s"
`, "retry_base_delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := LoadDir(writeConfigDir(t, tt.yaml, ""))
			if err == nil {
				t.Fatalf("LoadDir() = %+v, want error", cfg)
			}
			if cfg != nil {
				t.Errorf("expected nil config on error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoadDir_UnknownCacheBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_BACKEND", "etcd")
	_, err := LoadDir(writeConfigDir(t, minimalEnvYAML, ""))
	if err == nil || !strings.Contains(err.Error(), "cache.backend") {
		t.Errorf("LoadDir() error = %v, want cache.backend validation error", err)
	}
}

func TestLoadDir_FileErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing env file", func(t *testing.T) {
		t.Setenv("ENV_NAME", "nonexistent")
		_, err := LoadDir(writeConfigDir(t, minimalEnvYAML, ""))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("error = %v, want not found", err)
		}
	})
	t.Run("invalid config yaml", func(t *testing.T) {
		_, err := LoadDir(writeConfigDir(t, "not: valid: yaml: [[[", ""))
		if err == nil || !strings.Contains(err.Error(), "parse config") {
			t.Errorf("error = %v, want parse config error", err)
		}
	})
	t.Run("invalid secrets yaml", func(t *testing.T) {
		_, err := LoadDir(writeConfigDir(t, minimalEnvYAML, "not valid: yaml: [[["))
		if err == nil || !strings.Contains(err.Error(), "secrets") {
			t.Errorf("error = %v, want secrets error", err)
		}
	})
}

func TestLoad_ProjectDevConfig(t *testing.T) {
	clearEnv(t)
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(findProjectRoot(t)); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer func() { _ = os.Chdir(origWd) }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.WeatherAPIURL == "" || cfg.GeocoderURL == "" || cfg.AdvisorPort == "" {
		t.Errorf("Load() did not populate config from config/dev.yaml: %+v", cfg)
	}
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	return filepath.Join(filepath.Dir(file), "..", "..")
}
