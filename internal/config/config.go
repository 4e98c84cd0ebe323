package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheInMemory  = "in_memory"
	CacheMemcached = "memcached"
	CacheRedis     = "redis"
)

// ErrMissingAPIKey is returned by RequireWeatherAPIKey when no key is configured.
var ErrMissingAPIKey = errors.New("WEATHER_API_KEY required (set env or config/secrets.yaml weather_api_key)")

// Config holds configuration for every binary in the module, loaded from YAML and env.
type Config struct {
	TestingMode bool

	AdvisorPort string
	TriagePort  string

	WeatherAPIKey     string
	WeatherAPIURL     string
	WeatherAPITimeout time.Duration

	GeocoderURL       string
	GeocoderUserAgent string
	GeocoderTimeout   time.Duration

	RequestTimeout time.Duration

	CacheBackend          string
	CacheTTL              time.Duration
	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	RedisTimeout          time.Duration

	RetryAttempts           int
	RetryBaseDelay          time.Duration
	RetryMaxDelay           time.Duration
	RateLimitRPS            int
	RateLimitBurst          int
	CircuitFailureThreshold int
	CircuitOpenTimeout      time.Duration

	ShutdownTimeout time.Duration

	DegradedWindow     time.Duration
	DegradedErrorPct   int
	DegradedMinSamples int

	ModelsDir        string
	SymptomModelPath string
	WeatherModelPath string
	RetrainOnStart   bool

	SymptomSamplesPerDisease int
	SymptomTrees             int
	SymptomMaxDepth          int
	WeatherSamples           int
	WeatherTrees             int
	TrainSeed                int64
	TrainWorkers             int

	CORSAllowedOrigins []string
}

type fileConfig struct {
	TestingMode *bool `yaml:"testing_mode"`

	Server struct {
		AdvisorPort string `yaml:"advisor_port"`
		TriagePort  string `yaml:"triage_port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Geocoder struct {
		URL       string `yaml:"url"`
		UserAgent string `yaml:"user_agent"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"geocoder"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend   string `yaml:"backend"`
		TTL       string `yaml:"ttl"`
		Memcached struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
		Redis struct {
			Addr    string `yaml:"addr"`
			DB      int    `yaml:"db"`
			Timeout string `yaml:"timeout"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Reliability struct {
		RetryMaxAttempts        int    `yaml:"retry_max_attempts"`
		RetryBaseDelay          string `yaml:"retry_base_delay"`
		RetryMaxDelay           string `yaml:"retry_max_delay"`
		RateLimitRPS            int    `yaml:"rate_limit_rps"`
		RateLimitBurst          int    `yaml:"rate_limit_burst"`
		CircuitFailureThreshold int    `yaml:"circuit_failure_threshold"`
		CircuitOpenTimeout      string `yaml:"circuit_open_timeout"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`

	Health struct {
		DegradedWindow     string `yaml:"degraded_window"`
		DegradedErrorPct   int    `yaml:"degraded_error_pct"`
		DegradedMinSamples int    `yaml:"degraded_min_samples"`
	} `yaml:"health"`

	Models struct {
		Dir            string `yaml:"dir"`
		SymptomModel   string `yaml:"symptom_model"`
		WeatherModel   string `yaml:"weather_model"`
		RetrainOnStart bool   `yaml:"retrain_on_start"`
	} `yaml:"models"`

	Training struct {
		SymptomSamplesPerDisease int   `yaml:"symptom_samples_per_disease"`
		SymptomTrees             int   `yaml:"symptom_trees"`
		SymptomMaxDepth          int   `yaml:"symptom_max_depth"`
		WeatherSamples           int   `yaml:"weather_samples"`
		WeatherTrees             int   `yaml:"weather_trees"`
		Seed                     int64 `yaml:"seed"`
		Workers                  int   `yaml:"workers"`
	} `yaml:"training"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
	RedisPassword string `yaml:"redis_password"`
}

// Load reads config/{ENV_NAME}.yaml (default dev) and config/secrets.yaml relative to
// the working directory. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	return LoadDir(filepath.Join(cwd, "config"))
}

// LoadDir is Load with an explicit config directory.
func LoadDir(dir string) (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}
	configPath := filepath.Join(dir, env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	sec, err := loadSecrets(filepath.Join(dir, "secrets.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if fc.TestingMode != nil {
		cfg.TestingMode = *fc.TestingMode
	}

	cfg.AdvisorPort = firstNonEmpty(os.Getenv("ADVISOR_PORT"), fc.Server.AdvisorPort, "8080")
	cfg.TriagePort = firstNonEmpty(os.Getenv("TRIAGE_PORT"), fc.Server.TriagePort, "5000")

	cfg.WeatherAPIKey = firstNonEmpty(os.Getenv("WEATHER_API_KEY"), sec.WeatherAPIKey)
	cfg.WeatherAPIURL = strings.TrimRight(firstNonEmpty(fc.WeatherAPI.URL, "https://api.openweathermap.org/data/2.5"), "/")
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, 5*time.Second)

	cfg.GeocoderURL = firstNonEmpty(fc.Geocoder.URL, "https://nominatim.openstreetmap.org/search")
	cfg.GeocoderUserAgent = firstNonEmpty(fc.Geocoder.UserAgent, "health_safety_app")
	cfg.GeocoderTimeout = parseDuration(fc.Geocoder.Timeout, 5*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 15*time.Second)

	cfg.CacheBackend = strings.ToLower(firstNonEmpty(os.Getenv("CACHE_BACKEND"), fc.Cache.Backend, CacheInMemory))
	cfg.CacheTTL = parseDuration(fc.Cache.TTL, 10*time.Minute)
	cfg.MemcachedAddrs = firstNonEmpty(os.Getenv("MEMCACHED_ADDRS"), fc.Cache.Memcached.Addrs, "localhost:11211")
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = positiveOr(fc.Cache.Memcached.MaxIdleConns, 2)
	cfg.RedisAddr = firstNonEmpty(os.Getenv("REDIS_ADDR"), fc.Cache.Redis.Addr, "localhost:6379")
	cfg.RedisPassword = firstNonEmpty(os.Getenv("REDIS_PASSWORD"), sec.RedisPassword)
	cfg.RedisDB = fc.Cache.Redis.DB
	cfg.RedisTimeout = parseDuration(fc.Cache.Redis.Timeout, 500*time.Millisecond)

	cfg.RetryAttempts = positiveOr(fc.Reliability.RetryMaxAttempts, 3)
	cfg.RetryBaseDelay = parseDuration(fc.Reliability.RetryBaseDelay, 100*time.Millisecond)
	cfg.RetryMaxDelay = parseDuration(fc.Reliability.RetryMaxDelay, 2*time.Second)
	cfg.RateLimitRPS = positiveOr(fc.Reliability.RateLimitRPS, 20)
	cfg.RateLimitBurst = positiveOr(fc.Reliability.RateLimitBurst, 40)
	cfg.CircuitFailureThreshold = positiveOr(fc.Reliability.CircuitFailureThreshold, 5)
	cfg.CircuitOpenTimeout = parseDuration(fc.Reliability.CircuitOpenTimeout, 30*time.Second)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	cfg.DegradedWindow = parseDuration(fc.Health.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = positiveOr(fc.Health.DegradedErrorPct, 50)
	cfg.DegradedMinSamples = positiveOr(fc.Health.DegradedMinSamples, 5)

	cfg.ModelsDir = firstNonEmpty(os.Getenv("MODELS_DIR"), fc.Models.Dir, "models")
	cfg.SymptomModelPath = resolve(cfg.ModelsDir, firstNonEmpty(fc.Models.SymptomModel, "symptom_model.gob.gz"))
	cfg.WeatherModelPath = resolve(cfg.ModelsDir, firstNonEmpty(fc.Models.WeatherModel, "weather_model.gob.gz"))
	cfg.RetrainOnStart = fc.Models.RetrainOnStart
	if v, err := strconv.ParseBool(os.Getenv("RETRAIN_ON_START")); err == nil {
		cfg.RetrainOnStart = v
	}

	cfg.SymptomSamplesPerDisease = positiveOr(fc.Training.SymptomSamplesPerDisease, 200)
	cfg.SymptomTrees = positiveOr(fc.Training.SymptomTrees, 100)
	cfg.SymptomMaxDepth = positiveOr(fc.Training.SymptomMaxDepth, 30)
	cfg.WeatherSamples = positiveOr(fc.Training.WeatherSamples, 1000)
	cfg.WeatherTrees = positiveOr(fc.Training.WeatherTrees, 100)
	cfg.TrainSeed = fc.Training.Seed
	if cfg.TrainSeed == 0 {
		cfg.TrainSeed = 42
	}
	cfg.TrainWorkers = fc.Training.Workers

	cfg.CORSAllowedOrigins = fc.CORS.AllowedOrigins
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireWeatherAPIKey fails when the weather API key is missing. Only the advisory
// app needs it.
func (c *Config) RequireWeatherAPIKey() error {
	if strings.TrimSpace(c.WeatherAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func loadSecrets(path string) (secretsFile, error) {
	var sec secretsFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sec, nil
		}
		return sec, fmt.Errorf("read secrets file: %w", err)
	}
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return sec, fmt.Errorf("parse secrets file: %w", err)
	}
	return sec, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// parseDuration parses s, falling back to defaultVal when s is empty, invalid or not positive.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses s, falling back to defaultVal only when s is empty or
// invalid. Zero and negative values are returned as-is for validate to reject.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate rejects impossible values and raises RequestTimeout above the
// upstream timeouts.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("WEATHER_API_TIMEOUT must be positive")
	}
	floor := cfg.WeatherAPITimeout
	if cfg.GeocoderTimeout > floor {
		floor = cfg.GeocoderTimeout
	}
	if cfg.RequestTimeout <= floor {
		cfg.RequestTimeout = floor + time.Second
	}
	switch cfg.CacheBackend {
	case CacheInMemory, CacheMemcached, CacheRedis:
	default:
		return fmt.Errorf("cache.backend must be in_memory, memcached or redis, got %q", cfg.CacheBackend)
	}
	if cfg.RetryBaseDelay > cfg.RetryMaxDelay {
		return fmt.Errorf("reliability.retry_base_delay %s exceeds retry_max_delay %s", cfg.RetryBaseDelay, cfg.RetryMaxDelay)
	}
	return nil
}
