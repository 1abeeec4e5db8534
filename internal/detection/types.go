package detection

import (
	"context"
	"image"
	"strconv"

	"github.com/ghjez/ba-backend/internal/imaging"
)

// RawDetection is one detector output in the local frame of its tile.
type RawDetection struct {
	ClassID    string
	Confidence float64
	Box        imaging.Box
}

// GlobalDetection is a RawDetection remapped into drawing coordinates.
// It is immutable once produced by the Merger.
type GlobalDetection struct {
	GUID       string
	ClassID    string
	Confidence float64
	Box        imaging.Box
}

// ConfidenceString formats the confidence the way the export expects it.
func (d GlobalDetection) ConfidenceString() string {
	return strconv.FormatFloat(d.Confidence, 'f', -1, 64)
}

// TextElement is a GlobalDetection with the text the recognizer read in it.
type TextElement struct {
	GlobalDetection
	Text string
}

// TileRequest is what the external detector receives for one tile.
type TileRequest struct {
	Image  string // file name of the drawing
	Tile   imaging.Tile
	Raster image.Image // Size x Size, padded
}

// TileResult associates detector output with its originating tile.
type TileResult struct {
	Tile       imaging.Tile
	Raster     image.Image
	Detections []RawDetection
}

// Detector finds text elements in one tile. Implementations wrap the
// external model; the core makes no assumption about how it is invoked.
type Detector interface {
	Detect(ctx context.Context, req TileRequest) ([]RawDetection, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, req TileRequest) ([]RawDetection, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, req TileRequest) ([]RawDetection, error) {
	return f(ctx, req)
}
