// Package interpret reads room stamps: it classifies the text lines of each
// field, folds them into a Room and collects the identified rooms of a
// drawing into a Floor.
package interpret

import (
	"github.com/ghjez/ba-backend/internal/field"
	"github.com/ghjez/ba-backend/internal/logger"
)

// Parser classifies stamp lines with an ordered list of matchers.
type Parser struct {
	matchers []Matcher
}

// NewParser returns a Parser using DefaultMatchers.
func NewParser() *Parser {
	return &Parser{matchers: DefaultMatchers()}
}

// NewParserWith returns a Parser using matchers in the given priority order.
func NewParserWith(matchers ...Matcher) *Parser {
	return &Parser{matchers: matchers}
}

// Classify returns the first matcher's capture for line, after
// normalization. Lines no matcher accepts yield CategoryNone.
func (p *Parser) Classify(line string) Match {
	line = NormalizeLine(line)
	for _, m := range p.matchers {
		if match, ok := m.Match(line); ok {
			return match
		}
	}
	return Match{}
}

// ParseLines folds the lines of one stamp into a Room. Every line is
// classified on its own; when several lines fall into the same category
// the last one wins.
func (p *Parser) ParseLines(lines []string) Room {
	var r Room
	for _, line := range lines {
		m := p.Classify(line)
		switch m.Category {
		case CategoryCode:
			r.Code = ptr(m.Text)
		case CategoryName:
			r.Name = ptr(m.Text)
		case CategoryArea:
			r.Flaeche = ptr(m.Value)
			r.EinheitFlaeche = ptr(m.Unit)
		case CategoryHeight:
			r.Hoehe = ptr(m.Value)
			r.EinheitLaenge = ptr(m.Unit)
		}
	}
	return r
}

// Stats counts what ParseFields kept and dropped.
type Stats struct {
	Fields      int
	ShortFields int
	Groups      int
	Rooms       int
	Unnamed     int
}

// ParseFields interprets every field with at least minLines snippets and
// returns the identified rooms, each positioned at its field.
func (p *Parser) ParseFields(fields []field.Field, minLines int) (Floor, Stats) {
	stats := Stats{Fields: len(fields)}

	kept := make([]field.Field, 0, len(fields))
	for _, f := range fields {
		if len(f.Snippets) < minLines {
			stats.ShortFields++
			continue
		}
		kept = append(kept, f)
	}

	groups := GroupRows(FieldTable(kept))
	stats.Groups = len(groups)

	floor := Floor{}
	for _, g := range groups {
		room := p.ParseLines(g.Lines)
		if !room.Identified() {
			stats.Unnamed++
			continue
		}
		position := kept[g.FieldIndex].Position
		room.Position = &position
		floor = append(floor, room)
	}
	stats.Rooms = len(floor)

	logger.Module("interpret").Debug("parsed fields",
		"fields", stats.Fields,
		"short", stats.ShortFields,
		"groups", stats.Groups,
		"rooms", stats.Rooms,
		"unnamed", stats.Unnamed)
	return floor, stats
}

func ptr[T any](v T) *T { return &v }
