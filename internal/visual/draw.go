// Package visual renders the inspection images of a run: the drawing with
// every kept detection outlined, and the drawing with the recovered rooms
// and their attributes.
package visual

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ghjez/ba-backend/internal/imaging"
)

// Palette returns n visually distinct, fully opaque colors. The result is
// deterministic so the same class keeps its color across runs.
func Palette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		// Golden-angle hue steps keep neighbors apart for any n.
		h := math.Mod(float64(i)*137.508, 360)
		out[i] = colorful.Hsv(h, 0.85, 0.9).Clamped()
	}
	return out
}

// ClassColor picks the palette color of a detector class id. Numeric ids
// index the palette; anything else hashes into it.
func ClassColor(classID string, palette []color.Color) color.Color {
	if len(palette) == 0 {
		return color.NRGBA{255, 0, 0, 255}
	}
	n, err := strconv.Atoi(classID)
	if err != nil || n < 0 {
		n = 0
		for _, r := range classID {
			n = n*31 + int(r)
			if n < 0 {
				n = -n
			}
		}
	}
	return palette[n%len(palette)]
}

// toNRGBA returns a drawable copy of img with bounds starting at (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// outline draws the border of box with the given stroke width, clipped to
// the image.
func outline(img draw.Image, box imaging.Box, c color.Color, width int) {
	r := box.Rect().Canon()
	u := image.NewUniform(c)
	for i := 0; i < width; i++ {
		inner := r.Inset(i)
		if inner.Empty() {
			return
		}
		edges := []image.Rectangle{
			image.Rect(inner.Min.X, inner.Min.Y, inner.Max.X, inner.Min.Y+1),
			image.Rect(inner.Min.X, inner.Max.Y-1, inner.Max.X, inner.Max.Y),
			image.Rect(inner.Min.X, inner.Min.Y, inner.Min.X+1, inner.Max.Y),
			image.Rect(inner.Max.X-1, inner.Min.Y, inner.Max.X, inner.Max.Y),
		}
		for _, e := range edges {
			draw.Draw(img, e.Intersect(img.Bounds()), u, image.Point{}, draw.Over)
		}
	}
}

// fill paints r with c, blending when c is translucent.
func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

const (
	lineHeight = 15
	charWidth  = 7
)

// label draws lines of text with basicfont, the first baseline at (x, y).
func label(img draw.Image, x, y int, lines []string, fg color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		d.Dot = fixed.P(x, y+i*lineHeight)
		d.DrawString(line)
	}
}

// textWidth is the pixel width of the widest line in basicfont.
func textWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, len([]rune(l))*charWidth)
	}
	return w
}
