package imaging

import (
	"encoding/json"
	"fmt"
	"image"
)

// Box is an axis-aligned bounding box in pixel coordinates.
//
// (X1,Y1) is the top-left corner and (X2,Y2) the bottom-right corner.
// It serializes as the four-element array [x1, y1, x2, y2] used by the
// export formats.
type Box struct {
	X1 int
	Y1 int
	X2 int
	Y2 int
}

// Translate returns the box shifted by (dx, dy).
func (b Box) Translate(dx, dy int) Box {
	return Box{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// Width returns X2-X1.
func (b Box) Width() int { return b.X2 - b.X1 }

// Height returns the absolute vertical extent |Y2-Y1|.
func (b Box) Height() int {
	if b.Y2 < b.Y1 {
		return b.Y1 - b.Y2
	}
	return b.Y2 - b.Y1
}

// Area returns the box area, zero for degenerate boxes.
func (b Box) Area() int {
	w, h := b.X2-b.X1, b.Y2-b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Rect converts the box to an image.Rectangle (canonicalized).
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// IoU returns the intersection over union of two boxes.
func (b Box) IoU(o Box) float64 {
	inter := b.Rect().Intersect(o.Rect())
	if inter.Empty() {
		return 0
	}
	ia := inter.Dx() * inter.Dy()
	union := b.Area() + o.Area() - ia
	if union <= 0 {
		return 0
	}
	return float64(ia) / float64(union)
}

// MarshalJSON encodes the box as [x1, y1, x2, y2].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]int{b.X1, b.Y1, b.X2, b.Y2})
}

// UnmarshalJSON decodes [x1, y1, x2, y2].
func (b *Box) UnmarshalJSON(data []byte) error {
	var v []int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("box: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("box: want 4 coordinates, got %d", len(v))
	}
	b.X1, b.Y1, b.X2, b.Y2 = v[0], v[1], v[2], v[3]
	return nil
}

func (b Box) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", b.X1, b.Y1, b.X2, b.Y2)
}
