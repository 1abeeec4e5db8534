// Package pipeline runs room stamp extraction for whole drawings.
//
// One drawing moves through the stages load, tile, detect, merge,
// recognize, cluster, assemble, parse and export in order, synchronously.
// Every stage returns fresh values; nothing is shared between drawings, so
// RunBatch processes several drawings at once without locking.
//
// A failed stage moves the drawing to StateFailed and the run returns the
// stage's error; nothing of that drawing is exported. Retrying is left to the
// caller.
package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ghjez/ba-backend/internal/cluster"
	"github.com/ghjez/ba-backend/internal/conf"
	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/errors"
	"github.com/ghjez/ba-backend/internal/export"
	"github.com/ghjez/ba-backend/internal/field"
	"github.com/ghjez/ba-backend/internal/imaging"
	"github.com/ghjez/ba-backend/internal/interpret"
	"github.com/ghjez/ba-backend/internal/logger"
	"github.com/ghjez/ba-backend/internal/metrics"
	"github.com/ghjez/ba-backend/internal/ocr"
	"github.com/ghjez/ba-backend/internal/visual"
)

// ErrNoDetections fails a drawing on which the detector found nothing above
// the confidence threshold.
var ErrNoDetections = errors.New("no detections above confidence threshold")

// ImageResult is everything one run produced for a drawing.
type ImageResult struct {
	Image  string // file name of the drawing
	Path   string
	Width  int
	Height int

	Tiles    []imaging.Tile
	Elements []detection.TextElement
	Clusters []cluster.Cluster
	Fields   []field.Field
	Floor    interpret.Floor

	MergeStats   detection.MergeStats
	ClusterStats cluster.Stats
	ParseStats   interpret.Stats

	// Output files, set once the drawing is exported.
	VisualPath      string
	FloorVisualPath string
	OriginalPath    string
	CSVPath         string

	State   State
	History []Transition
	Err     error
}

// Record converts the result into its results.json entry.
func (r *ImageResult) Record(cfg *conf.Config) export.ImageRecord {
	rel := filepath.Join(cfg.Paths.Visual, visual.FileName(r.Image))
	return export.NewImageRecord(rel, r.Elements, r.Fields)
}

// Pipeline holds the stages configured for a run.
type Pipeline struct {
	cfg        *conf.Config
	tiler      *imaging.Tiler
	detector   detection.Detector
	merger     *detection.Merger
	recognizer ocr.Recognizer
	ocrOpts    ocr.Options
	clusterer  *cluster.Clusterer
	assembler  *field.Assembler
	parser     *interpret.Parser
	metrics    *metrics.PipelineMetrics
	style      visual.DetectionStyle
	log        *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithDetector replaces the detector selected by detector.mode.
func WithDetector(d detection.Detector) Option {
	return func(p *Pipeline) { p.detector = d }
}

// WithRecognizer replaces the recognizer selected by recognizer.mode.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(p *Pipeline) { p.recognizer = r }
}

// WithMetrics records stage metrics.
func WithMetrics(m *metrics.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithIDs replaces the random element identifiers, e.g. with
// detection.SequentialIDs for reproducible output.
func WithIDs(newID detection.IDFunc) Option {
	return func(p *Pipeline) { p.merger.NewID = newID }
}

// WithParser replaces the room info parser.
func WithParser(parser *interpret.Parser) Option {
	return func(p *Pipeline) { p.parser = parser }
}

// New builds a pipeline from cfg. Detector and recognizer are created from
// their configured modes unless given as options.
func New(cfg *conf.Config, opts ...Option) (*Pipeline, error) {
	tiler, err := imaging.NewTiler(cfg.Tiler.Size, cfg.Tiler.Overlap)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:       cfg,
		tiler:     tiler,
		merger:    detection.NewMerger(cfg.Merger.MinConfidence, cfg.Merger.DedupIoU),
		ocrOpts:   ocr.Options{Preprocess: cfg.Recognizer.Preprocess, MinHeight: cfg.Recognizer.MinHeight},
		clusterer: cluster.NewClusterer(cfg.Cluster.HeightFactor, cfg.Cluster.MinSamples),
		assembler: field.NewAssembler(cfg.Field.MinLines),
		parser:    interpret.NewParser(),
		style:     visual.DefaultDetectionStyle(),
		log:       logger.Module("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.detector == nil {
		p.detector = newDetector(cfg.Detector, cfg.LabelsDir())
	}
	if p.recognizer == nil {
		rec, err := newRecognizer(cfg.Recognizer)
		if err != nil {
			return nil, err
		}
		p.recognizer = rec
	}
	return p, nil
}

func newDetector(c conf.DetectorConfig, labelsDir string) detection.Detector {
	switch c.Mode {
	case conf.DetectorHTTP:
		return detection.NewHTTPDetector(c.URL, c.Timeout)
	case conf.DetectorEdges:
		return &detection.EdgeDetector{}
	default:
		return &detection.LabelDirDetector{Dir: labelsDir}
	}
}

func newRecognizer(c conf.RecognizerConfig) (ocr.Recognizer, error) {
	if c.Mode == conf.RecognizerNone {
		return ocr.StaticRecognizer{}, nil
	}
	rec, err := ocr.NewTesseract(c.Language, c.Tessdata)
	if err != nil {
		return nil, fmt.Errorf("failed to start recognizer: %w", err)
	}
	return rec, nil
}

// Detector returns the configured detector.
func (p *Pipeline) Detector() detection.Detector { return p.detector }

// Tiler returns the configured tiler.
func (p *Pipeline) Tiler() *imaging.Tiler { return p.tiler }

// Merger returns the configured detection merger.
func (p *Pipeline) Merger() *detection.Merger { return p.merger }

// Parser returns the configured room info parser.
func (p *Pipeline) Parser() *interpret.Parser { return p.parser }

// Close releases the recognizer.
func (p *Pipeline) Close() error {
	if c, ok := p.recognizer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// stage runs fn as stage, timing it and failing res on error.
func (p *Pipeline) stage(res *ImageResult, stage errors.Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	took := time.Since(start)
	p.metrics.ObserveStage(string(stage), took.Seconds())
	if err != nil {
		res.fail(stage, err, took)
		p.metrics.RecordFailure(string(stage))
		p.log.Error("stage failed",
			"image", res.Image,
			"stage", stage,
			"category", errors.CategoryOf(err),
			"error", err)
		return err
	}
	return nil
}

// Run processes one drawing and exports its visual results, the copy of the
// original and its floor table. On failure the returned result carries only
// the state history and the error.
func (p *Pipeline) Run(ctx context.Context, path string) (*ImageResult, error) {
	res := &ImageResult{Image: filepath.Base(path), Path: path}
	start := time.Now()
	p.log.Info("processing drawing", "image", res.Image)

	var img image.Image
	if err := p.stage(res, errors.StageLoad, func() error {
		var err error
		img, err = imaging.Load(path)
		return err
	}); err != nil {
		return res, err
	}
	b := img.Bounds()
	res.Width, res.Height = b.Dx(), b.Dy()

	tileStart := time.Now()
	if err := p.stage(res, errors.StageTile, func() error {
		tiles, err := p.tiler.Tiles(res.Width, res.Height)
		if err != nil {
			return err
		}
		if len(tiles) == 0 {
			return errors.NewInputError("tile image", "empty tile set", nil)
		}
		res.Tiles = tiles
		return nil
	}); err != nil {
		return res, err
	}
	res.advance(StateTiled, time.Since(tileStart))

	steps := []struct {
		stage errors.Stage
		state State
		run   func() error
	}{
		{errors.StageDetect, StateDetected, nil},
		{errors.StageMerge, StateMerged, nil},
		{errors.StageRecognize, StateRecognized, nil},
		{errors.StageCluster, StateClustered, nil},
		{errors.StageAssemble, StateAssembled, nil},
		{errors.StageParse, StateParsed, nil},
		{errors.StageExport, StateExported, nil},
	}

	var (
		tileResults []detection.TileResult
		dets        []detection.GlobalDetection
	)
	steps[0].run = func() error {
		var err error
		tileResults, err = detection.DetectTiles(ctx, p.detector, res.Image, img, p.tiler, res.Tiles, p.cfg.Detector.Workers)
		return err
	}
	steps[1].run = func() error {
		var err error
		dets, res.MergeStats, err = p.merger.Merge(tileResults)
		if err != nil {
			return err
		}
		p.metrics.RecordMerge(res.MergeStats.Kept, res.MergeStats.LowConfidence, res.MergeStats.Duplicates)
		if len(dets) == 0 {
			return errors.NewStageFailure(errors.StageMerge, ErrNoDetections)
		}
		return nil
	}
	steps[2].run = func() error {
		var err error
		res.Elements, err = ocr.RecognizeElements(ctx, p.recognizer, img, dets, p.ocrOpts)
		return err
	}
	steps[3].run = func() error {
		res.Clusters, res.ClusterStats = p.clusterer.Cluster(res.Elements)
		p.metrics.RecordClusters(res.ClusterStats.Clusters, res.ClusterStats.Noise)
		return nil
	}
	steps[4].run = func() error {
		var err error
		res.Fields, err = p.assembler.Assemble(res.Clusters, res.Elements)
		return err
	}
	steps[5].run = func() error {
		res.Floor, res.ParseStats = p.parser.ParseFields(res.Fields, p.cfg.Field.MinLines)
		return nil
	}
	steps[6].run = func() error {
		return p.export(res, img, tileResults)
	}

	for _, s := range steps {
		stepStart := time.Now()
		if err := p.stage(res, s.stage, s.run); err != nil {
			res.Floor = nil
			return res, err
		}
		res.advance(s.state, time.Since(stepStart))
	}

	p.metrics.RecordFloor(len(res.Fields), len(res.Floor))
	p.metrics.RecordSuccess()
	p.log.Info("processed drawing",
		"image", res.Image,
		"tiles", len(res.Tiles),
		"elements", len(res.Elements),
		"fields", len(res.Fields),
		"rooms", len(res.Floor),
		"took", time.Since(start))
	return res, nil
}

// export writes the per-drawing outputs: the detection mosaic, the floor
// overlay, the copy of the original and the floor table.
// export writes the per-drawing outputs. On failure the files written so far
// are removed again, so a failed drawing leaves nothing behind.
func (p *Pipeline) export(res *ImageResult, img image.Image, tileResults []detection.TileResult) (err error) {
	if err := p.cfg.SetupDirs(); err != nil {
		return errors.NewStageFailure(errors.StageExport, err)
	}
	name := visual.FileName(res.Image)

	var written []string
	defer func() {
		if err == nil {
			return
		}
		for _, path := range written {
			if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
				p.log.Warn("failed to remove partial export", "path", path, "error", rmErr)
			}
		}
	}()

	mosaic, err := visual.Mosaic(p.tiler, tileResults, res.Width, res.Height, p.cfg.Merger.MinConfidence, p.style)
	if err != nil {
		return errors.NewStageFailure(errors.StageExport, err)
	}
	visualPath := filepath.Join(p.cfg.VisualDir(), name)
	written = append(written, visualPath)
	if err := visual.Save(visualPath, mosaic); err != nil {
		return errors.NewStageFailure(errors.StageExport, err)
	}

	floorPath := filepath.Join(p.cfg.VisualDir(), "floor_"+name)
	written = append(written, floorPath)
	if err := visual.Save(floorPath, visual.DrawFloor(img, res.Floor)); err != nil {
		return errors.NewStageFailure(errors.StageExport, err)
	}

	originalPath := filepath.Join(p.cfg.OriginalDir(), res.Image)
	if filepath.Clean(res.Path) != filepath.Clean(originalPath) {
		written = append(written, originalPath)
	}
	if err := copyFile(res.Path, originalPath); err != nil {
		return errors.NewStageFailure(errors.StageExport, err)
	}

	csvPath, err := export.WriteFloorCSV(p.cfg.Paths.Output, res.Image, res.Floor)
	if err != nil {
		return err
	}

	res.VisualPath = visualPath
	res.FloorVisualPath = floorPath
	res.OriginalPath = originalPath
	res.CSVPath = csvPath
	return nil
}

func copyFile(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(dst), err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", filepath.Base(src), err)
	}
	return out.Close()
}
