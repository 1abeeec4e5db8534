package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghjez/ba-backend/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 640, cfg.Tiler.Size)
	assert.Equal(t, 0, cfg.Tiler.Overlap)
	assert.InDelta(t, 0.5, cfg.Merger.MinConfidence, 1e-9)
	assert.InDelta(t, 2.0, cfg.Cluster.HeightFactor, 1e-9)
	assert.Equal(t, 2, cfg.Cluster.MinSamples)
	assert.Equal(t, 2, cfg.Field.MinLines)
	assert.Equal(t, DetectorLabels, cfg.Detector.Mode)
	assert.Equal(t, 30*time.Second, cfg.Detector.Timeout)
	assert.Equal(t, "deu", cfg.Recognizer.Language)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `
paths:
  output: /tmp/roomstamp
tiler:
  size: 512
  overlap: 64
detector:
  mode: http
  url: http://localhost:5000/predict
  timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("ROOMSTAMP_CLUSTER_HEIGHT_FACTOR", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.Tiler.Size)
	assert.Equal(t, 64, cfg.Tiler.Overlap)
	assert.Equal(t, DetectorHTTP, cfg.Detector.Mode)
	assert.Equal(t, 5*time.Second, cfg.Detector.Timeout)
	assert.InDelta(t, 3.0, cfg.Cluster.HeightFactor, 1e-9)
	assert.Equal(t, "/tmp/roomstamp/visual", cfg.VisualDir())
	assert.Equal(t, "/tmp/roomstamp/original", cfg.OriginalDir())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tile size", func(c *Config) { c.Tiler.Size = 0 }},
		{"overlap equals size", func(c *Config) { c.Tiler.Overlap = c.Tiler.Size }},
		{"negative overlap", func(c *Config) { c.Tiler.Overlap = -1 }},
		{"confidence above one", func(c *Config) { c.Merger.MinConfidence = 1.5 }},
		{"zero height factor", func(c *Config) { c.Cluster.HeightFactor = 0 }},
		{"zero min samples", func(c *Config) { c.Cluster.MinSamples = 0 }},
		{"http without url", func(c *Config) { c.Detector.Mode = DetectorHTTP }},
		{"unknown detector", func(c *Config) { c.Detector.Mode = "subprocess" }},
		{"unknown recognizer", func(c *Config) { c.Recognizer.Mode = "parseq" }},
		{"no output", func(c *Config) { c.Paths.Output = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsInputError(err))
		})
	}
}

func TestSetupAndCleanDirs(t *testing.T) {
	cfg := Default()
	cfg.Paths.Output = filepath.Join(t.TempDir(), "out")

	require.NoError(t, cfg.SetupDirs())
	for _, d := range []string{cfg.Paths.Output, cfg.VisualDir(), cfg.OriginalDir()} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	stale := filepath.Join(cfg.VisualDir(), "old.png")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o600))
	require.NoError(t, cfg.CleanDirs())

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cfg.VisualDir())
	assert.NoError(t, err, "directories survive cleaning")
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Tiler.Size = 1024
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, loaded.Tiler.Size)
}
