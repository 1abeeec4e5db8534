package imaging

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// TileFileName is the file name of a tile raster or label file for the
// drawing stem, e.g. "EG_tile_3.png" or "EG_tile_3.txt".
func TileFileName(stem string, tileID int, ext string) string {
	return fmt.Sprintf("%s_tile_%d%s", stem, tileID, ext)
}

// WriteTiles saves the tile rasters of a drawing as PNG files into dir so an
// out-of-process detector can pick them up.
func WriteTiles(dir, stem string, tiles []Tile, rasters []image.Image) ([]string, error) {
	if len(tiles) != len(rasters) {
		return nil, fmt.Errorf("%d tiles but %d rasters", len(tiles), len(rasters))
	}
	paths := make([]string, 0, len(tiles))
	for i, tile := range tiles {
		p := filepath.Join(dir, TileFileName(stem, tile.ID, ".png"))
		if err := imaging.Save(rasters[i], p); err != nil {
			return paths, fmt.Errorf("failed to save tile %d: %w", tile.ID, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
