package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ghjez/ba-backend/internal/errors"
	"github.com/ghjez/ba-backend/internal/export"
	"github.com/ghjez/ba-backend/internal/imaging"
	"github.com/ghjez/ba-backend/internal/interpret"
	"github.com/ghjez/ba-backend/internal/visual"
)

// BatchResult is the outcome of a batch run, in input order.
type BatchResult struct {
	Images      []*ImageResult
	Failed      int
	ResultsPath string
	FloorPath   string
}

// Succeeded returns the drawings that reached StateExported.
func (b *BatchResult) Succeeded() []*ImageResult {
	var out []*ImageResult
	for _, r := range b.Images {
		if r.State == StateExported {
			out = append(out, r)
		}
	}
	return out
}

// RunBatch processes drawings with up to pipeline.workers in parallel, then
// writes results.json and floor.json for every drawing that succeeded.
//
// A failing drawing does not stop the others; it is reported in the result
// and left out of both files. Cancelling ctx stops the batch and returns the
// context error without writing the aggregate files.
func (p *Pipeline) RunBatch(ctx context.Context, paths []string) (*BatchResult, error) {
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		if prev, ok := seen[name]; ok {
			return nil, errors.NewInputError("run batch", fmt.Sprintf("%s and %s share the file name %s", prev, path, name), nil)
		}
		seen[name] = path
	}
	if err := p.cfg.SetupDirs(); err != nil {
		return nil, errors.NewStageFailure(errors.StageExport, err)
	}

	start := time.Now()
	batch := &BatchResult{Images: make([]*ImageResult, len(paths))}

	var g errgroup.Group
	g.SetLimit(max(p.cfg.Pipeline.Workers, 1))
	for i, path := range paths {
		i, path := i, path
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := p.Run(ctx, path)
			if err != nil {
				p.log.Warn("drawing failed", "image", res.Image, "error", err)
			}
			batch.Images[i] = res
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return batch, fmt.Errorf("%w: %w", errors.ErrCancelled, err)
	}

	results := export.Results{}
	floors := export.Floors{}
	for _, res := range batch.Images {
		if res.State != StateExported {
			batch.Failed++
			continue
		}
		results[res.Image] = res.Record(p.cfg)
		floors[res.Image] = res.Floor
	}

	batch.ResultsPath = filepath.Join(p.cfg.Paths.Output, p.cfg.Paths.ResultsFile)
	if err := export.WriteJSON(batch.ResultsPath, results); err != nil {
		return batch, err
	}
	batch.FloorPath = filepath.Join(p.cfg.Paths.Output, p.cfg.Paths.FloorFile)
	if err := export.WriteJSON(batch.FloorPath, floors); err != nil {
		return batch, err
	}
	if err := p.metrics.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
		p.log.Warn("failed to write metrics", "error", err)
	}

	p.log.Info("batch finished",
		"images", len(paths),
		"failed", batch.Failed,
		"took", time.Since(start))
	return batch, nil
}

// Reinterpret reads a results.json written by an earlier run and parses its
// fields again, writing floor.json and the floor tables. When the copy of a
// drawing is present in the original directory its floor overlay is redrawn
// as well.
func (p *Pipeline) Reinterpret(ctx context.Context, resultsPath string) (export.Floors, error) {
	results, err := export.ReadResults(resultsPath)
	if err != nil {
		return nil, err
	}
	if err := p.cfg.SetupDirs(); err != nil {
		return nil, errors.NewStageFailure(errors.StageExport, err)
	}

	floors := make(export.Floors, len(results))
	for name, rec := range results {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrCancelled, err)
		}
		floor, stats := p.parser.ParseFields(rec.Fields, p.cfg.Field.MinLines)
		floors[name] = floor
		p.metrics.RecordFloor(stats.Fields, stats.Rooms)

		if _, err := export.WriteFloorCSV(p.cfg.Paths.Output, name, floor); err != nil {
			return nil, err
		}
		if err := p.redrawFloor(name, floor); err != nil {
			p.log.Warn("failed to draw floor", "image", name, "error", err)
		}
	}

	if err := export.WriteJSON(filepath.Join(p.cfg.Paths.Output, p.cfg.Paths.FloorFile), floors); err != nil {
		return nil, err
	}
	return floors, nil
}

func (p *Pipeline) redrawFloor(name string, floor interpret.Floor) error {
	original := filepath.Join(p.cfg.OriginalDir(), name)
	if _, err := os.Stat(original); os.IsNotExist(err) {
		return nil
	}
	img, err := imaging.Load(original)
	if err != nil {
		return err
	}
	return visual.Save(filepath.Join(p.cfg.VisualDir(), "floor_"+visual.FileName(name)), visual.DrawFloor(img, floor))
}
