package detection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghjez/ba-backend/internal/imaging"
)

// LabelDirDetector reads detections written by an out-of-process detector.
//
// The detector is expected to have processed the tile rasters written by
// imaging.WriteTiles and to have left one label file per tile named
// <stem>_tile_<id>.txt in Dir. A tile without a label file has no
// detections.
type LabelDirDetector struct {
	Dir string
}

// Detect implements Detector.
func (d *LabelDirDetector) Detect(ctx context.Context, req TileRequest) ([]RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(req.Image), filepath.Ext(req.Image))
	path := filepath.Join(d.Dir, imaging.TileFileName(stem, req.Tile.ID, ".txt"))

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open label file: %w", err)
	}
	defer f.Close()

	dets, err := ParseLabels(f, req.Tile.Size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return dets, nil
}
