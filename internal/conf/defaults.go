package conf

import (
	"time"

	"github.com/spf13/viper"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.output", "output")
	v.SetDefault("paths.visual", "visual")
	v.SetDefault("paths.original", "original")
	v.SetDefault("paths.labels", "labels")
	v.SetDefault("paths.results_file", "results.json")
	v.SetDefault("paths.floor_file", "floor.json")

	v.SetDefault("tiler.size", 640)
	v.SetDefault("tiler.overlap", 0)

	v.SetDefault("merger.min_confidence", 0.5)
	v.SetDefault("merger.dedup_iou", 0.0)

	v.SetDefault("cluster.height_factor", 2.0)
	v.SetDefault("cluster.min_samples", 2)

	v.SetDefault("field.min_lines", 2)

	v.SetDefault("detector.mode", DetectorLabels)
	v.SetDefault("detector.url", "")
	v.SetDefault("detector.timeout", 30*time.Second)
	v.SetDefault("detector.workers", 1)

	v.SetDefault("recognizer.mode", RecognizerTesseract)
	v.SetDefault("recognizer.language", "deu")
	v.SetDefault("recognizer.tessdata", "")
	v.SetDefault("recognizer.preprocess", true)
	v.SetDefault("recognizer.min_height", 32)

	v.SetDefault("pipeline.workers", 1)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetDefault("metrics.textfile", "")
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Defaults always decode.
	_ = v.Unmarshal(cfg)
	return cfg
}
