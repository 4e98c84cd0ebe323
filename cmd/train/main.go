package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/advisory"
	"github.com/kjstillabower/health-advisory-service/internal/bootstrap"
	"github.com/kjstillabower/health-advisory-service/internal/config"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
	"github.com/kjstillabower/health-advisory-service/internal/triage"
)

func main() {
	_ = godotenv.Load()

	logger, err := observability.NewLogger("train")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logger); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		logger.Fatal("train", zap.Error(err))
	}
}

var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, `Usage: train <command> [flags]

Commands:
  all       train the symptom and weather models
  symptoms  train the symptom triage model
  weather   train the weather condition model
  dataset   export a synthetic dataset as CSV

Run "train <command> -h" for flags.`)
}

// settings are the defaults for every subcommand, taken from config when available.
type settings struct {
	symptom     triage.TrainConfig
	weather     advisory.TrainConfig
	symptomPath string
	weatherPath string
}

func loadSettings(configDir string, logger *zap.Logger) settings {
	s := settings{
		symptom:     triage.DefaultTrainConfig(),
		weather:     advisory.DefaultTrainConfig(),
		symptomPath: filepath.Join("models", "symptom_model.gob.gz"),
		weatherPath: filepath.Join("models", "weather_model.gob.gz"),
	}
	cfg, err := config.LoadDir(configDir)
	if err != nil {
		logger.Info("config not loaded, using built-in defaults", zap.Error(err))
		return s
	}
	s.symptom = bootstrap.SymptomTrainConfig(cfg)
	s.weather = bootstrap.WeatherTrainConfig(cfg)
	s.symptomPath = cfg.SymptomModelPath
	s.weatherPath = cfg.WeatherModelPath
	return s
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *zap.Logger) error {
	if len(args) < 1 {
		usage(stdout)
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stdout)
	configDir := fs.String("config", "config", "directory holding {ENV_NAME}.yaml")
	seed := fs.Int64("seed", 0, "random seed (0 = config value)")
	workers := fs.Int("workers", -1, "parallel tree builders (-1 = config value, 0 = GOMAXPROCS)")

	switch cmd {
	case "all", "symptoms", "weather":
		symptomOut := fs.String("symptom-out", "", "symptom model artifact path")
		weatherOut := fs.String("weather-out", "", "weather model artifact path")
		perDisease := fs.Int("samples-per-disease", 0, "symptom samples per disease (0 = config value)")
		weatherSamples := fs.Int("weather-samples", 0, "weather samples (0 = config value)")
		trees := fs.Int("trees", 0, "trees per forest (0 = config value)")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		s := loadSettings(*configDir, logger)
		applyCommon(&s, *seed, *workers, *trees)
		if *perDisease > 0 {
			s.symptom.SamplesPerDisease = *perDisease
		}
		if *weatherSamples > 0 {
			s.weather.Samples = *weatherSamples
		}
		if *symptomOut != "" {
			s.symptomPath = *symptomOut
		}
		if *weatherOut != "" {
			s.weatherPath = *weatherOut
		}
		if cmd != "weather" {
			if err := trainSymptoms(ctx, s, stdout, logger); err != nil {
				return err
			}
		}
		if cmd != "symptoms" {
			if err := trainWeather(ctx, s, stdout, logger); err != nil {
				return err
			}
		}
		return nil

	case "dataset":
		kind := fs.String("kind", "symptoms", "dataset to export: symptoms or weather")
		out := fs.String("out", "", "CSV output path (default stdout)")
		samples := fs.Int("samples", 0, "rows (weather) or rows per disease (symptoms); 0 = config value")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		s := loadSettings(*configDir, logger)
		applyCommon(&s, *seed, *workers, 0)
		return exportDataset(*kind, *out, *samples, s, stdout)

	case "help", "-h", "--help":
		usage(stdout)
		return nil

	default:
		fmt.Fprintf(stdout, "unknown command %q\n\n", cmd)
		usage(stdout)
		return errUsage
	}
}

func applyCommon(s *settings, seed int64, workers, trees int) {
	if seed != 0 {
		s.symptom.Seed, s.symptom.Forest.Seed = seed, seed
		s.weather.Seed, s.weather.Forest.Seed = seed, seed
	}
	if workers >= 0 {
		s.symptom.Forest.Workers = workers
		s.weather.Forest.Workers = workers
	}
	if trees > 0 {
		s.symptom.Forest.NumTrees = trees
		s.weather.Forest.NumTrees = trees
	}
}

func trainSymptoms(ctx context.Context, s settings, stdout io.Writer, logger *zap.Logger) error {
	m, err := triage.TrainModel(ctx, triage.Catalog, s.symptom, logger)
	if err != nil {
		return fmt.Errorf("train symptom model: %w", err)
	}
	if err := m.Save(s.symptomPath); err != nil {
		return fmt.Errorf("save symptom model: %w", err)
	}
	fmt.Fprintf(stdout, "symptom model: %d diseases, accuracy %.2f%%, saved to %s\n",
		len(m.Diseases()), m.Accuracy*100, s.symptomPath)
	return nil
}

func trainWeather(ctx context.Context, s settings, stdout io.Writer, logger *zap.Logger) error {
	m, err := advisory.Train(ctx, s.weather, logger)
	if err != nil {
		return fmt.Errorf("train weather model: %w", err)
	}
	if err := m.Save(s.weatherPath); err != nil {
		return fmt.Errorf("save weather model: %w", err)
	}
	fmt.Fprintf(stdout, "weather model: accuracy %.2f%%, saved to %s\n", m.Accuracy*100, s.weatherPath)
	return nil
}

func exportDataset(kind, out string, samples int, s settings, stdout io.Writer) (err error) {
	w := stdout
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("create dataset dir: %w", err)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create dataset: %w", err)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
	}

	switch kind {
	case "symptoms":
		if samples <= 0 {
			samples = s.symptom.SamplesPerDisease
		}
		rows := triage.GenerateDataset(triage.Catalog, samples, rand.New(rand.NewSource(s.symptom.Seed)))
		return triage.WriteCSV(w, rows)
	case "weather":
		if samples <= 0 {
			samples = s.weather.Samples
		}
		rows := advisory.GenerateDataset(samples, rand.New(rand.NewSource(s.weather.Seed)))
		return advisory.WriteCSV(w, rows)
	default:
		return fmt.Errorf("%w: unknown dataset kind %q", errUsage, kind)
	}
}
