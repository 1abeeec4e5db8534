package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/ghjez/ba-backend/internal/errors"
)

// Limits on the images Tiles accepts. Scans of A0 sheets at 600 dpi stay
// well below MaxImageSide.
const (
	MaxImageSide = 1 << 16
	MaxTiles     = 1 << 16
)

// PadColor fills the part of an edge tile that lies outside the image.
var PadColor = color.NRGBA{0, 0, 0, 255}

// Tile is one fixed-size patch of a larger image.
//
// Every tile is Size x Size pixels. Tiles on the right and bottom border may
// reach past the image; that part is padded, flagged by PadRight/PadBottom,
// and excluded from Width/Height, which give the in-image content extent.
type Tile struct {
	ID        int  `json:"id"`
	Row       int  `json:"row"`
	Col       int  `json:"col"`
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Size      int  `json:"size"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	PadRight  bool `json:"pad_right"`
	PadBottom bool `json:"pad_bottom"`
}

// Bounds returns the tile's full extent in image coordinates
// (x_min, y_min, x_max, y_max), padding included.
func (t Tile) Bounds() Box {
	return Box{X1: t.X, Y1: t.Y, X2: t.X + t.Size, Y2: t.Y + t.Size}
}

// Content returns the part of the tile that lies inside the image.
func (t Tile) Content() image.Rectangle {
	return image.Rect(t.X, t.Y, t.X+t.Width, t.Y+t.Height)
}

// ToGlobalPoint converts a tile-local point to image coordinates.
func (t Tile) ToGlobalPoint(p image.Point) image.Point {
	return p.Add(image.Pt(t.X, t.Y))
}

// ToGlobal converts a tile-local box to image coordinates.
func (t Tile) ToGlobal(b Box) Box {
	return b.Translate(t.X, t.Y)
}

// Tiler splits images into overlapping fixed-size tiles.
//
// Consecutive tiles start Size-Overlap pixels apart. With the default
// overlap of zero the tiles form a plain grid; a positive overlap lets
// objects straddling a seam appear whole in at least one tile as long as
// they are smaller than the overlap.
type Tiler struct {
	Size    int
	Overlap int
}

// NewTiler validates the tile geometry.
func NewTiler(size, overlap int) (*Tiler, error) {
	if size <= 0 {
		return nil, errors.NewInputError("new tiler", fmt.Sprintf("tile size must be positive, got %d", size), nil)
	}
	if overlap < 0 || overlap >= size {
		return nil, errors.NewInputError("new tiler", fmt.Sprintf("overlap must be in [0, %d), got %d", size, overlap), nil)
	}
	return &Tiler{Size: size, Overlap: overlap}, nil
}

func (t *Tiler) stride() int { return t.Size - t.Overlap }

// count returns the number of tiles needed along an axis of length n.
func (t *Tiler) count(n int) int {
	if n <= t.Size {
		return 1
	}
	s := t.stride()
	return 1 + (n-t.Size+s-1)/s
}

// Grid returns the number of tile columns and rows for a w x h image.
func (t *Tiler) Grid(w, h int) (cols, rows int) {
	return t.count(w), t.count(h)
}

// Tiles returns the row-major tile sequence covering a w x h image.
// The result depends only on w, h and the tiler parameters.
func (t *Tiler) Tiles(w, h int) ([]Tile, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.NewInputError("tile image", fmt.Sprintf("invalid image size %dx%d", w, h), nil)
	}
	if w > MaxImageSide || h > MaxImageSide {
		return nil, errors.NewInputError("tile image", fmt.Sprintf("image size %dx%d exceeds %d px per side", w, h, MaxImageSide), nil)
	}

	cols, rows := t.Grid(w, h)
	if cols*rows > MaxTiles {
		return nil, errors.NewInputError("tile image", fmt.Sprintf("%dx%d grid exceeds %d tiles", cols, rows, MaxTiles), nil)
	}
	s := t.stride()
	tiles := make([]Tile, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x, y := c*s, r*s
			tiles = append(tiles, Tile{
				ID:        r*cols + c,
				Row:       r,
				Col:       c,
				X:         x,
				Y:         y,
				Size:      t.Size,
				Width:     min(t.Size, w-x),
				Height:    min(t.Size, h-y),
				PadRight:  x+t.Size > w,
				PadBottom: y+t.Size > h,
			})
		}
	}
	return tiles, nil
}

// Extract returns the Size x Size raster of tile, padded with PadColor where
// the tile reaches past the image.
func (t *Tiler) Extract(img image.Image, tile Tile) *image.NRGBA {
	origin := img.Bounds().Min
	canvas := imaging.New(tile.Size, tile.Size, PadColor)
	content := imaging.Crop(img, tile.Content().Add(origin))
	return imaging.Paste(canvas, content, image.Pt(0, 0))
}

// Merge reassembles tile rasters into a w x h image. Padding is dropped and
// in overlap zones the later tile wins. Merging the unmodified output of
// Extract reproduces the source image pixel for pixel.
func (t *Tiler) Merge(tiles []Tile, rasters []image.Image, w, h int) (*image.NRGBA, error) {
	if len(tiles) != len(rasters) {
		return nil, errors.NewInputError("merge tiles", fmt.Sprintf("%d tiles but %d rasters", len(tiles), len(rasters)), nil)
	}
	if err := ValidateGrid(tiles, w, h, t.Size); err != nil {
		return nil, err
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, tile := range tiles {
		r := rasters[i]
		if r == nil {
			return nil, errors.NewInputError("merge tiles", fmt.Sprintf("tile %d has no raster", tile.ID), nil)
		}
		rb := r.Bounds()
		if rb.Dx() < tile.Width || rb.Dy() < tile.Height {
			return nil, errors.NewInputError("merge tiles",
				fmt.Sprintf("tile %d raster %dx%d smaller than content %dx%d", tile.ID, rb.Dx(), rb.Dy(), tile.Width, tile.Height), nil)
		}
		draw.Draw(out, tile.Content(), r, rb.Min, draw.Src)
	}
	return out, nil
}

// ValidateGrid checks that tiles form the grid a Tiler of the given size
// would produce for a w x h image, failing fast on inconsistent geometry.
func ValidateGrid(tiles []Tile, w, h, size int) error {
	if len(tiles) == 0 {
		return errors.NewInputError("validate grid", "empty tile set", nil)
	}
	for i, tile := range tiles {
		switch {
		case tile.ID != i:
			return errors.NewInputError("validate grid", fmt.Sprintf("tile at position %d has id %d", i, tile.ID), nil)
		case tile.Size != size:
			return errors.NewInputError("validate grid", fmt.Sprintf("tile %d has size %d, want %d", tile.ID, tile.Size, size), nil)
		case tile.X < 0 || tile.Y < 0 || tile.X >= w || tile.Y >= h:
			return errors.NewInputError("validate grid", fmt.Sprintf("tile %d origin (%d,%d) outside %dx%d image", tile.ID, tile.X, tile.Y, w, h), nil)
		case tile.Width != min(size, w-tile.X) || tile.Height != min(size, h-tile.Y):
			return errors.NewInputError("validate grid", fmt.Sprintf("tile %d content %dx%d inconsistent with image", tile.ID, tile.Width, tile.Height), nil)
		}
	}
	return nil
}
