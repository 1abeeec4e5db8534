// Package conf holds the typed configuration of a room stamp extraction run.
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ghjez/ba-backend/internal/errors"
)

// EnvPrefix is the prefix of environment overrides, e.g. ROOMSTAMP_TILER_SIZE.
const EnvPrefix = "ROOMSTAMP"

// Config is constructed once per run and passed to every stage.
type Config struct {
	Paths      PathsConfig      `mapstructure:"paths" yaml:"paths"`
	Tiler      TilerConfig      `mapstructure:"tiler" yaml:"tiler"`
	Merger     MergerConfig     `mapstructure:"merger" yaml:"merger"`
	Cluster    ClusterConfig    `mapstructure:"cluster" yaml:"cluster"`
	Field      FieldConfig      `mapstructure:"field" yaml:"field"`
	Detector   DetectorConfig   `mapstructure:"detector" yaml:"detector"`
	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline" yaml:"pipeline"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

// PathsConfig enumerates the directories and files a run reads and writes.
// Relative directory names are resolved against Output.
type PathsConfig struct {
	Output      string `mapstructure:"output" yaml:"output"`
	Visual      string `mapstructure:"visual" yaml:"visual"`
	Original    string `mapstructure:"original" yaml:"original"`
	Labels      string `mapstructure:"labels" yaml:"labels"`
	ResultsFile string `mapstructure:"results_file" yaml:"results_file"`
	FloorFile   string `mapstructure:"floor_file" yaml:"floor_file"`
}

type TilerConfig struct {
	Size    int `mapstructure:"size" yaml:"size"`
	Overlap int `mapstructure:"overlap" yaml:"overlap"`
}

type MergerConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	DedupIoU      float64 `mapstructure:"dedup_iou" yaml:"dedup_iou"`
}

type ClusterConfig struct {
	HeightFactor float64 `mapstructure:"height_factor" yaml:"height_factor"`
	MinSamples   int     `mapstructure:"min_samples" yaml:"min_samples"`
}

type FieldConfig struct {
	MinLines int `mapstructure:"min_lines" yaml:"min_lines"`
}

// DetectorConfig selects the external text detector.
type DetectorConfig struct {
	Mode    string        `mapstructure:"mode" yaml:"mode"` // http, labels or edges
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Workers int           `mapstructure:"workers" yaml:"workers"`
}

// RecognizerConfig selects the external text recognizer.
type RecognizerConfig struct {
	Mode       string `mapstructure:"mode" yaml:"mode"` // tesseract or none
	Language   string `mapstructure:"language" yaml:"language"`
	Tessdata   string `mapstructure:"tessdata" yaml:"tessdata"` // empty: system default
	Preprocess bool   `mapstructure:"preprocess" yaml:"preprocess"`
	MinHeight  int    `mapstructure:"min_height" yaml:"min_height"`
}

type PipelineConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`
	FilePath string `mapstructure:"file" yaml:"file"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

const (
	DetectorHTTP   = "http"
	DetectorLabels = "labels"
	DetectorEdges  = "edges"

	RecognizerTesseract = "tesseract"
	RecognizerNone      = "none"
)

// Load reads configuration from path (optional), .env, and environment
// variables, in increasing order of precedence over the defaults.
func Load(path string) (*Config, error) {
	// Missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no stage can work with.
func (c *Config) Validate() error {
	var problems []string
	if c.Tiler.Size <= 0 {
		problems = append(problems, "tiler.size must be positive")
	}
	if c.Tiler.Overlap < 0 || c.Tiler.Overlap >= c.Tiler.Size {
		problems = append(problems, "tiler.overlap must be in [0, tiler.size)")
	}
	if c.Merger.MinConfidence < 0 || c.Merger.MinConfidence > 1 {
		problems = append(problems, "merger.min_confidence must be in [0, 1]")
	}
	if c.Merger.DedupIoU < 0 || c.Merger.DedupIoU > 1 {
		problems = append(problems, "merger.dedup_iou must be in [0, 1]")
	}
	if c.Cluster.HeightFactor <= 0 {
		problems = append(problems, "cluster.height_factor must be positive")
	}
	if c.Cluster.MinSamples < 1 {
		problems = append(problems, "cluster.min_samples must be at least 1")
	}
	if c.Field.MinLines < 1 {
		problems = append(problems, "field.min_lines must be at least 1")
	}
	switch c.Detector.Mode {
	case DetectorHTTP:
		if c.Detector.URL == "" {
			problems = append(problems, "detector.url is required in http mode")
		}
	case DetectorLabels, DetectorEdges:
	default:
		problems = append(problems, fmt.Sprintf("unknown detector.mode %q", c.Detector.Mode))
	}
	switch c.Recognizer.Mode {
	case RecognizerTesseract, RecognizerNone:
	default:
		problems = append(problems, fmt.Sprintf("unknown recognizer.mode %q", c.Recognizer.Mode))
	}
	if c.Paths.Output == "" {
		problems = append(problems, "paths.output is required")
	}

	if len(problems) > 0 {
		return errors.NewInputError("validate config", strings.Join(problems, "; "), nil)
	}
	return nil
}

// Dir resolves a configured directory against the output root.
func (c *Config) Dir(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Output, p)
}

// VisualDir is where merged visual results are written.
func (c *Config) VisualDir() string { return c.Dir(c.Paths.Visual) }

// OriginalDir is where copies of the input images are written.
func (c *Config) OriginalDir() string { return c.Dir(c.Paths.Original) }

// LabelsDir is where an out-of-process detector leaves its label files.
func (c *Config) LabelsDir() string { return c.Dir(c.Paths.Labels) }

// WriteYAML writes the configuration as YAML, e.g. to seed a config file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
