package detection

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ghjez/ba-backend/internal/imaging"
)

// RelativeToLocal converts a normalized center/size box to tile pixels.
// Coordinates are truncated toward zero.
func RelativeToLocal(xc, yc, w, h float64, tileSize int) imaging.Box {
	s := float64(tileSize)
	return imaging.Box{
		X1: int((xc - w/2) * s),
		Y1: int((yc - h/2) * s),
		X2: int((xc + w/2) * s),
		Y2: int((yc + h/2) * s),
	}
}

// ParseLabelLine parses one detector output line of the form
//
//	class_id x_center y_center width height confidence
//
// with coordinates normalized to the tile edge length.
func ParseLabelLine(line string, tileSize int) (RawDetection, error) {
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return RawDetection{}, fmt.Errorf("label line has %d fields, want 6", len(fields))
	}

	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return RawDetection{}, fmt.Errorf("label field %d: %w", i+1, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return RawDetection{}, fmt.Errorf("label field %d is not finite", i+1)
		}
		vals[i] = v
	}
	if vals[4] < 0 || vals[4] > 1 {
		return RawDetection{}, fmt.Errorf("confidence %v outside [0, 1]", vals[4])
	}
	if vals[2] < 0 || vals[3] < 0 {
		return RawDetection{}, fmt.Errorf("negative box size %vx%v", vals[2], vals[3])
	}

	return RawDetection{
		ClassID:    fields[0],
		Confidence: vals[4],
		Box:        RelativeToLocal(vals[0], vals[1], vals[2], vals[3], tileSize),
	}, nil
}

// ParseLabels parses a detector label file. Blank lines are skipped; any
// malformed line fails the whole file.
func ParseLabels(r io.Reader, tileSize int) ([]RawDetection, error) {
	var out []RawDetection
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		det, err := ParseLabelLine(line, tileSize)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, det)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return out, nil
}
