// Package field turns element clusters into fields: the ordered text lines
// of one candidate room stamp together with its position on the drawing.
package field

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/ghjez/ba-backend/internal/cluster"
	"github.com/ghjez/ba-backend/internal/detection"
	"github.com/ghjez/ba-backend/internal/errors"
	"github.com/ghjez/ba-backend/internal/imaging"
	"github.com/ghjez/ba-backend/internal/logger"
)

// DefaultMinLines is the smallest number of lines that can make a stamp.
const DefaultMinLines = 2

// Field is one candidate room stamp. SnippetIDs and Snippets are parallel
// and in cluster member order.
type Field struct {
	SnippetIDs []string    `json:"text_snippet_guids"`
	Snippets   []string    `json:"text_snippets"`
	Class      *string     `json:"class"`
	Position   imaging.Box `json:"position"`

	boxes []imaging.Box
}

// Extent returns the bounding box of all member boxes. Unlike Position it
// covers every line of the stamp.
func (f Field) Extent() imaging.Box {
	if len(f.boxes) == 0 {
		return f.Position
	}
	var b orb.Bound
	for i, mb := range f.boxes {
		r := orb.Bound{
			Min: orb.Point{float64(mb.X1), float64(mb.Y1)},
			Max: orb.Point{float64(mb.X2), float64(mb.Y2)},
		}
		if i == 0 {
			b = r
			continue
		}
		b = b.Union(r)
	}
	return imaging.Box{
		X1: int(b.Min.X()),
		Y1: int(b.Min.Y()),
		X2: int(b.Max.X()),
		Y2: int(b.Max.Y()),
	}
}

// Assembler builds fields from clusters.
type Assembler struct {
	MinLines int
}

// NewAssembler returns an Assembler dropping clusters with fewer than
// minLines members.
func NewAssembler(minLines int) *Assembler {
	return &Assembler{MinLines: minLines}
}

// Assemble builds one Field per cluster with at least MinLines members, in
// cluster order.
//
// The position takes its top-left corner from the first member's box and its
// bottom-right corner from the last member's box. For stamps whose lines are
// not in reading order this is not the bounding box; see Extent.
func (a *Assembler) Assemble(clusters []cluster.Cluster, elems []detection.TextElement) ([]Field, error) {
	byID := make(map[string]detection.TextElement, len(elems))
	for _, e := range elems {
		byID[e.GUID] = e
	}

	fields := make([]Field, 0, len(clusters))
	dropped := 0
	for _, c := range clusters {
		if len(c.Members) < a.MinLines {
			dropped++
			continue
		}
		f := Field{
			SnippetIDs: make([]string, 0, len(c.Members)),
			Snippets:   make([]string, 0, len(c.Members)),
			boxes:      make([]imaging.Box, 0, len(c.Members)),
		}
		for _, id := range c.Members {
			e, ok := byID[id]
			if !ok {
				return nil, errors.NewStageFailure(errors.StageAssemble,
					fmt.Errorf("cluster %d references unknown element %s", c.Label, id))
			}
			f.SnippetIDs = append(f.SnippetIDs, id)
			f.Snippets = append(f.Snippets, e.Text)
			f.boxes = append(f.boxes, e.Box)
		}
		first, last := f.boxes[0], f.boxes[len(f.boxes)-1]
		f.Position = imaging.Box{X1: first.X1, Y1: first.Y1, X2: last.X2, Y2: last.Y2}
		fields = append(fields, f)
	}

	logger.Module("field").Debug("assembled fields", "fields", len(fields), "dropped", dropped)
	return fields, nil
}
