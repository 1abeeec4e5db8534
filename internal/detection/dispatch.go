package detection

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/ghjez/ba-backend/internal/errors"
	"github.com/ghjez/ba-backend/internal/imaging"
	"github.com/ghjez/ba-backend/internal/logger"
)

// DetectTiles extracts every tile of img and runs the detector on it.
//
// With workers > 1 tiles are dispatched concurrently; results are stored by
// tile position, so the returned slice is in tile order regardless of
// completion order. The first detector error cancels the remaining calls and
// is returned as a detect StageFailure.
func DetectTiles(ctx context.Context, d Detector, name string, img image.Image, tiler *imaging.Tiler, tiles []imaging.Tile, workers int) ([]TileResult, error) {
	log := logger.Module("detector")
	if workers < 1 {
		workers = 1
	}

	results := make([]TileResult, len(tiles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, tile := range tiles {
		i, tile := i, tile
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("%w: %w", errors.ErrCancelled, err)
			}
			raster := tiler.Extract(img, tile)
			dets, err := d.Detect(gctx, TileRequest{Image: name, Tile: tile, Raster: raster})
			if err != nil {
				return fmt.Errorf("tile %d: %w", tile.ID, err)
			}
			results[i] = TileResult{Tile: tile, Raster: raster, Detections: dets}
			log.Debug("detected tile", "image", name, "tile", tile.ID, "detections", len(dets))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.NewStageFailure(errors.StageDetect, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStageFailure(errors.StageDetect, fmt.Errorf("%w: %w", errors.ErrCancelled, err))
	}
	return results, nil
}
