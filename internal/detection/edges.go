package detection

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"

	rsimaging "github.com/ghjez/ba-backend/internal/imaging"
)

// EdgeDetector is a model-free Detector that looks for text-like areas of
// medium edge density with predominantly horizontal structure. It is much
// less accurate than a trained model and is meant for smoke runs and
// drawings where no detector service is available.
type EdgeDetector struct {
	// MinScore drops windows scoring lower; scores are in [0, 1].
	MinScore float64
	// ClassID labels every detection.
	ClassID string
}

// edgeWindows are the sliding window sizes in tile pixels, roughly one text
// line of stamp lettering at typical scan resolutions.
var edgeWindows = []struct{ w, h int }{
	{80, 25},
	{100, 30},
	{150, 40},
	{200, 50},
}

const edgeThreshold = 30

// Detect implements Detector.
func (d *EdgeDetector) Detect(ctx context.Context, req TileRequest) ([]RawDetection, error) {
	gray := imaging.Grayscale(req.Raster)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	edges := edgeMap(gray)

	var cands []RawDetection
	for _, win := range edgeWindows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stepX, stepY := win.w/2, win.h/2
		for y := 0; y <= h-win.h; y += stepY {
			for x := 0; x <= w-win.w; x += stepX {
				n := 0
				for wy := 0; wy < win.h; wy++ {
					for wx := 0; wx < win.w; wx++ {
						if edges[y+wy][x+wx] {
							n++
						}
					}
				}
				density := float64(n) / float64(win.w*win.h)
				if density < 0.05 || density > 0.4 {
					continue
				}
				score := horizontalScore(edges, x, y, win.w, win.h) * (1 - math.Abs(density-0.2)/0.2)
				if score < d.MinScore {
					continue
				}
				cands = append(cands, RawDetection{
					ClassID:    d.classID(),
					Confidence: math.Round(score*1000) / 1000,
					Box:        rsimaging.Box{X1: x, Y1: y, X2: x + win.w, Y2: y + win.h},
				})
			}
		}
	}
	return unionOverlapping(cands), nil
}

func (d *EdgeDetector) classID() string {
	if d.ClassID == "" {
		return "0"
	}
	return d.ClassID
}

// edgeMap marks pixels whose gray value differs from the right or lower
// neighbor by more than edgeThreshold. Border pixels are never edges.
func edgeMap(gray *image.NRGBA) [][]bool {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	at := func(x, y int) int { return int(gray.Pix[y*gray.Stride+x*4]) }

	edges := make([][]bool, h)
	for y := 0; y < h; y++ {
		edges[y] = make([]bool, w)
		if y == 0 || y == h-1 {
			continue
		}
		for x := 1; x < w-1; x++ {
			c := at(x, y)
			if absInt(c-at(x+1, y)) > edgeThreshold || absInt(c-at(x, y+1)) > edgeThreshold {
				edges[y][x] = true
			}
		}
	}
	return edges
}

// horizontalScore is the share of horizontal edge runs among all runs in the
// window.
func horizontalScore(edges [][]bool, x, y, w, h int) float64 {
	hr, vr := 0, 0
	for row := y; row < y+h; row++ {
		in := false
		for col := x; col < x+w; col++ {
			if edges[row][col] && !in {
				hr++
			}
			in = edges[row][col]
		}
	}
	for col := x; col < x+w; col++ {
		in := false
		for row := y; row < y+h; row++ {
			if edges[row][col] && !in {
				vr++
			}
			in = edges[row][col]
		}
	}
	if hr+vr == 0 {
		return 0
	}
	return float64(hr) / float64(hr+vr)
}

// unionOverlapping folds overlapping windows into their bounding union and
// keeps the best score.
func unionOverlapping(cands []RawDetection) []RawDetection {
	var out []RawDetection
	for _, c := range cands {
		merged := false
		for i := range out {
			if c.Box.Rect().Overlaps(out[i].Box.Rect()) {
				out[i].Box = rsimaging.Box{
					X1: min(out[i].Box.X1, c.Box.X1),
					Y1: min(out[i].Box.Y1, c.Box.Y1),
					X2: max(out[i].Box.X2, c.Box.X2),
					Y2: max(out[i].Box.Y2, c.Box.Y2),
				}
				out[i].Confidence = math.Max(out[i].Confidence, c.Confidence)
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, c)
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
