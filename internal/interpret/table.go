package interpret

import "github.com/ghjez/ba-backend/internal/field"

// NoField marks a row that continues the current field.
const NoField = -1

// Row is one snippet of the flat stamp table. The first row of every field
// carries the field's index; the following rows carry NoField.
type Row struct {
	FieldIndex int
	Text       string
}

// Group is the run of non-empty lines that belongs to one field.
type Group struct {
	FieldIndex int
	Lines      []string
}

// FieldTable flattens fields into rows, marking the first snippet of each.
func FieldTable(fields []field.Field) []Row {
	var rows []Row
	for i, f := range fields {
		for j, s := range f.Snippets {
			idx := NoField
			if j == 0 {
				idx = i
			}
			rows = append(rows, Row{FieldIndex: idx, Text: s})
		}
	}
	return rows
}

// GroupRows splits rows into groups: a marked row starts a new group and
// unmarked rows join the current one. Empty texts are skipped, groups left
// without lines are dropped, and rows before the first marker are ignored.
func GroupRows(rows []Row) []Group {
	var groups []Group
	var cur *Group
	flush := func() {
		if cur != nil && len(cur.Lines) > 0 {
			groups = append(groups, *cur)
		}
	}
	for _, r := range rows {
		if r.FieldIndex != NoField {
			flush()
			cur = &Group{FieldIndex: r.FieldIndex}
		}
		if r.Text != "" && cur != nil {
			cur.Lines = append(cur.Lines, r.Text)
		}
	}
	flush()
	return groups
}
