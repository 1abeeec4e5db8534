package interpret

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ghjez/ba-backend/internal/imaging"
)

// Room is the structured reading of one room stamp. Unset attributes are
// nil and export as null.
type Room struct {
	// Nummer is part of the room model but no stamp line fills it.
	Nummer *int `json:"-"`

	Name *string `json:"name"`
	Code *string `json:"code"`

	WandMaterial   *string `json:"wand_material"`
	BodenMaterial  *string `json:"boden_material"`
	DeckenMaterial *string `json:"decken_material"`

	Umfang         *float64 `json:"umfang"`
	Flaeche        *float64 `json:"flaeche"`
	Hoehe          *float64 `json:"hoehe"`
	FensterFlaeche *float64 `json:"fenster_flaeche"`

	EinheitLaenge  *string `json:"einheit_laenge"`
	EinheitFlaeche *string `json:"einheit_flaeche"`

	Position *imaging.Box `json:"position_on_drawing"`
}

// Identified reports whether the room has a name or a code. Rooms without
// either are not kept on the floor.
func (r Room) Identified() bool {
	return r.Name != nil || r.Code != nil
}

// Columns are the exported room attributes, in export order.
var Columns = []string{
	"name", "code",
	"wand_material", "boden_material", "decken_material",
	"umfang", "flaeche", "hoehe", "fenster_flaeche",
	"einheit_laenge", "einheit_flaeche",
	"position_on_drawing",
}

// Record renders the room as one CSV row matching Columns. Unset values are
// empty cells.
func (r Room) Record() []string {
	return []string{
		str(r.Name), str(r.Code),
		str(r.WandMaterial), str(r.BodenMaterial), str(r.DeckenMaterial),
		num(r.Umfang), num(r.Flaeche), num(r.Hoehe), num(r.FensterFlaeche),
		str(r.EinheitLaenge), str(r.EinheitFlaeche),
		pos(r.Position),
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func num(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func pos(b *imaging.Box) string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("[%d, %d, %d, %d]", b.X1, b.Y1, b.X2, b.Y2)
}

// Floor is every room recovered from one drawing, in field order.
type Floor []Room

// WriteCSV writes a header row and one row per room.
func (f Floor) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i, r := range f {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("failed to write room %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
