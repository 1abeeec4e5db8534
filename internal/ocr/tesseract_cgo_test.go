//go:build cgo && linux

package ocr

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// renderLine draws text with basicfont and scales it up by an integer factor
// so Tesseract has a chance with the tiny bitmap font.
func renderLine(text string, scale int) *image.RGBA {
	w, h := len(text)*7+40, 40
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(20), Y: fixed.I(25)},
	}
	d.DrawString(text)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := small.At(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.Set(x*scale+dx, y*scale+dy, c)
				}
			}
		}
	}
	return img
}

func TestTesseractRecognizer(t *testing.T) {
	rec, err := NewTesseract("eng", "")
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer rec.Close()

	text, err := rec.Recognize(context.Background(), Snippet{Image: renderLine("ROOM 12", 4)})
	if err != nil {
		// Missing language data only surfaces on first use.
		t.Skipf("Tesseract not usable: %v", err)
	}
	require.Equal(t, strings.TrimSpace(text), text, "output is trimmed")
	t.Logf("recognized %q", text)
}

func TestTesseractRecognizer_Cancelled(t *testing.T) {
	rec, err := NewTesseract("eng", "")
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer rec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rec.Recognize(ctx, Snippet{Image: renderLine("X", 2)})
	require.ErrorIs(t, err, context.Canceled)
}
