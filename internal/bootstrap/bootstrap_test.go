package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/config"
	"github.com/kjstillabower/health-advisory-service/internal/lifecycle"
)

func smallConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		SymptomModelPath:         filepath.Join(dir, "symptom.gob.gz"),
		WeatherModelPath:         filepath.Join(dir, "weather.gob.gz"),
		SymptomSamplesPerDisease: 5,
		SymptomTrees:             3,
		SymptomMaxDepth:          10,
		WeatherSamples:           200,
		WeatherTrees:             5,
		TrainSeed:                7,
		TrainWorkers:             2,
	}
}

func TestTrainConfigs(t *testing.T) {
	cfg := smallConfig(t)

	st := SymptomTrainConfig(cfg)
	assert.Equal(t, 5, st.SamplesPerDisease)
	assert.Equal(t, 3, st.Forest.NumTrees)
	assert.Equal(t, 10, st.Forest.MaxDepth)
	assert.Equal(t, int64(7), st.Seed)
	assert.Equal(t, 2, st.Forest.Workers)

	wt := WeatherTrainConfig(cfg)
	assert.Equal(t, 200, wt.Samples)
	assert.Equal(t, 5, wt.Forest.NumTrees)
	assert.Equal(t, 0, wt.Forest.MaxDepth)
	assert.Equal(t, int64(7), wt.Forest.Seed)
}

func TestLoadConditionModel_TrainsThenLoads(t *testing.T) {
	lifecycle.Reset()
	t.Cleanup(lifecycle.Reset)
	cfg := smallConfig(t)
	ctx := context.Background()

	m, err := LoadConditionModel(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.True(t, lifecycle.IsReady(ConditionModel))
	_, err = os.Stat(cfg.WeatherModelPath)
	require.NoError(t, err)

	again, err := LoadConditionModel(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, m.TrainedAt.Equal(again.TrainedAt), "second call should load the saved artifact")
}

func TestLoadConditionModel_RetrainOnStart(t *testing.T) {
	lifecycle.Reset()
	t.Cleanup(lifecycle.Reset)
	cfg := smallConfig(t)
	ctx := context.Background()

	first, err := LoadConditionModel(ctx, cfg, zap.NewNop())
	require.NoError(t, err)

	cfg.RetrainOnStart = true
	second, err := LoadConditionModel(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, second.TrainedAt.After(first.TrainedAt), "retrain should replace the artifact")
}

func TestLoadSymptomModel_CorruptArtifact(t *testing.T) {
	lifecycle.Reset()
	t.Cleanup(lifecycle.Reset)
	cfg := smallConfig(t)
	require.NoError(t, os.WriteFile(cfg.SymptomModelPath, []byte("not a model"), 0o644))

	_, err := LoadSymptomModel(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
	assert.False(t, lifecycle.IsReady(SymptomModel))
}

func TestServe_GracefulShutdown(t *testing.T) {
	lifecycle.Reset()
	t.Cleanup(lifecycle.Reset)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := &http.Server{Addr: addr, Handler: http.NewServeMux()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, srv, time.Second, zap.NewNop()) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.True(t, lifecycle.IsShuttingDown())
}
