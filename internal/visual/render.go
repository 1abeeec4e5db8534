package visual

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/imgio"

	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/imaging"
	"github.com/ghjez/ba-backend/internal/interpret"
)

// DetectionStyle controls detection outlines.
type DetectionStyle struct {
	Palette     []color.Color
	StrokeWidth int
	// ShowConfidence writes the confidence above each box.
	ShowConfidence bool
}

// DefaultDetectionStyle outlines boxes 2px wide with confidences.
func DefaultDetectionStyle() DetectionStyle {
	return DetectionStyle{Palette: Palette(8), StrokeWidth: 2, ShowConfidence: true}
}

// AnnotateTile returns a copy of a tile raster with every detection at or
// above minConfidence outlined in its class color.
func AnnotateTile(raster image.Image, dets []detection.RawDetection, minConfidence float64, style DetectionStyle) *image.NRGBA {
	out := toNRGBA(raster)
	for _, d := range dets {
		if d.Confidence < minConfidence {
			continue
		}
		c := ClassColor(d.ClassID, style.Palette)
		outline(out, d.Box, c, max(style.StrokeWidth, 1))
		if style.ShowConfidence {
			label(out, d.Box.X1, d.Box.Y1-3, []string{strconv.FormatFloat(d.Confidence, 'f', 2, 64)}, c)
		}
	}
	return out
}

// Mosaic annotates every tile of a drawing and merges the tiles back into a
// w x h image, so the result shows exactly what each tile's detector saw.
func Mosaic(tiler *imaging.Tiler, results []detection.TileResult, w, h int, minConfidence float64, style DetectionStyle) (*image.NRGBA, error) {
	tiles := make([]imaging.Tile, len(results))
	rasters := make([]image.Image, len(results))
	for i, res := range results {
		if res.Raster == nil {
			return nil, fmt.Errorf("tile %d has no raster", res.Tile.ID)
		}
		tiles[i] = res.Tile
		rasters[i] = AnnotateTile(res.Raster, res.Detections, minConfidence, style)
	}
	return tiler.Merge(tiles, rasters, w, h)
}

var (
	roomOutline = color.NRGBA{255, 0, 0, 255}
	roomBoxFill = color.NRGBA{0, 0, 255, 128}
	roomText    = color.NRGBA{255, 255, 255, 255}
)

// RoomLines lists the set attributes of a room as "key: value" lines in
// export column order.
func RoomLines(r interpret.Room) []string {
	rec := r.Record()
	var lines []string
	for i, col := range interpret.Columns {
		if col == "position_on_drawing" || rec[i] == "" {
			continue
		}
		lines = append(lines, col+": "+rec[i])
	}
	return lines
}

// DrawFloor returns a copy of img with each room's position outlined and
// its attributes in a box below, joined by a connector line.
func DrawFloor(img image.Image, floor interpret.Floor) *image.NRGBA {
	out := toNRGBA(img)
	for _, room := range floor {
		if room.Position == nil {
			continue
		}
		p := *room.Position
		outline(out, p, roomOutline, 2)

		lines := RoomLines(room)
		top := p.Y2 + 18
		box := image.Rect(p.X1, top, p.X1+textWidth(lines)+20, top+len(lines)*lineHeight+16)
		fill(out, box, roomBoxFill)
		outline(out, imaging.Box{X1: box.Min.X, Y1: box.Min.Y, X2: box.Max.X, Y2: box.Max.Y}, color.Black, 1)
		label(out, box.Min.X+10, box.Min.Y+lineHeight, lines, roomText)

		cx := (p.X1 + p.X2) / 2
		fill(out, image.Rect(cx-1, p.Y2, cx+1, top), roomOutline)
	}
	return out
}

// FileName returns the file name an inspection image of drawing is saved
// under: the drawing's own name when its format can be written, otherwise
// the name with a .png extension.
func FileName(drawing string) string {
	base := filepath.Base(drawing)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".png", ".jpg", ".jpeg", ".bmp":
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}

// Save writes img to path, encoding by extension.
func Save(path string, img image.Image) error {
	var enc imgio.Encoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		enc = imgio.JPEGEncoder(95)
	case ".bmp":
		enc = imgio.BMPEncoder()
	default:
		enc = imgio.PNGEncoder()
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}
