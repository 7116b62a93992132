package score

import (
	"github.com/google/uuid"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Config configures a new document.
type Config struct {
	Title string
	// Lines is a preset name (see [PresetTreble] and friends). Empty means
	// treble.
	Lines string
	// Groups are registered before Lines is resolved, so Lines may name one.
	Groups map[string][]Line
}

// Document is the root of a score. It owns every object in flat arenas and
// keeps rows and measures in document order.
//
// A Document is not safe for concurrent use.
type Document struct {
	ID    uuid.UUID
	Title string

	// Notes memoizes note-name lookups for this document only.
	Notes *theory.NoteTable

	groups map[string][]Line
	lines  []Line

	rows        []*Row
	measures    []*Measure
	columns     []*Column
	symbols     []*Symbol
	connectives []*Connective
	floats      []*Float

	rowClosed bool
	dirty     bool
	rev       uint64
}

// Row is a horizontal run of measures drawn with one set of lines.
type Row struct {
	ID       RowID
	Index    int
	Measures []MeasureID
	Lines    []Line
	Prev     RowID
	Next     RowID

	dirty bool
	rev   uint64
}

// Revision increases each time a flush reports the row as changed.
func (r *Row) Revision() uint64 { return r.rev }

// NewDocument returns an empty document with one open row.
func NewDocument(cfg Config) (*Document, error) {
	d := &Document{
		ID:     uuid.New(),
		Title:  cfg.Title,
		Notes:  theory.NewNoteTable(),
		groups: make(map[string][]Line),
	}
	for name, lines := range cfg.Groups {
		if err := d.RegisterGroup(name, lines...); err != nil {
			return nil, err
		}
	}
	lines, err := d.resolveLines(cfg.Lines)
	if err != nil {
		return nil, err
	}
	d.lines = lines
	d.newRow()
	return d, nil
}

// MustNew is like [NewDocument] but panics on error. It is intended for
// tests and examples.
func MustNew(cfg Config) *Document {
	d, err := NewDocument(cfg)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Document) newRow() *Row {
	r := &Row{
		ID:    RowID(len(d.rows)),
		Index: len(d.rows),
		Lines: append([]Line(nil), d.lines...),
		Prev:  NoID,
		Next:  NoID,
	}
	if n := len(d.rows); n > 0 {
		prev := d.rows[n-1]
		prev.Next = r.ID
		r.Prev = prev.ID
	}
	d.rows = append(d.rows, r)
	d.rowClosed = false
	d.touchRow(r.ID)
	return r
}

func (d *Document) currentRow() *Row {
	if len(d.rows) == 0 {
		return nil
	}
	return d.rows[len(d.rows)-1]
}

// EndRow closes the current row; the next measure starts a new one. Ending
// a row that has no measures is a no-op.
func (d *Document) EndRow() {
	if r := d.currentRow(); r != nil && len(r.Measures) > 0 {
		d.rowClosed = true
	}
}

// Rows returns the rows in document order. Rows without measures are
// included.
func (d *Document) Rows() []*Row { return d.rows }

// Row returns the row with the given id, or nil.
func (d *Document) Row(id RowID) *Row {
	if id < 0 || int(id) >= len(d.rows) {
		return nil
	}
	return d.rows[id]
}

// Measures returns all measures in document order.
func (d *Document) Measures() []*Measure { return d.measures }

// Measure returns the measure with the given id, or nil.
func (d *Document) Measure(id MeasureID) *Measure {
	if id < 0 || int(id) >= len(d.measures) {
		return nil
	}
	return d.measures[id]
}

// Column returns the column with the given id, or nil.
func (d *Document) Column(id ColumnID) *Column {
	if id < 0 || int(id) >= len(d.columns) {
		return nil
	}
	return d.columns[id]
}

// Symbol returns the symbol with the given id, or nil.
func (d *Document) Symbol(id SymbolID) *Symbol {
	if id < 0 || int(id) >= len(d.symbols) {
		return nil
	}
	return d.symbols[id]
}

// Connective returns the connective with the given id, or nil.
func (d *Document) Connective(id ConnectiveID) *Connective {
	if id < 0 || int(id) >= len(d.connectives) {
		return nil
	}
	return d.connectives[id]
}

// Connectives returns every connective in creation order.
func (d *Document) Connectives() []*Connective { return d.connectives }

// Float returns the floating object with the given id, or nil.
func (d *Document) Float(id FloatID) *Float {
	if id < 0 || int(id) >= len(d.floats) {
		return nil
	}
	return d.floats[id]
}

// Floats returns every floating object in creation order.
func (d *Document) Floats() []*Float { return d.floats }

// RowOf returns the row a measure belongs to.
func (d *Document) RowOf(m MeasureID) *Row {
	if ms := d.Measure(m); ms != nil {
		return d.Row(ms.Row)
	}
	return nil
}

// LinesOf returns the notation lines the measure is drawn on.
func (d *Document) LinesOf(m MeasureID) []Line {
	if r := d.RowOf(m); r != nil {
		return r.Lines
	}
	return nil
}

func (d *Document) measureOrErr(id MeasureID) (*Measure, error) {
	m := d.Measure(id)
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown measure %d", id)
	}
	return m, nil
}

// Dirty reports whether anything changed since the last [Document.Flush].
func (d *Document) Dirty() bool { return d.dirty }

func (d *Document) touchRow(id RowID) {
	if r := d.Row(id); r != nil {
		r.dirty = true
	}
	d.dirty = true
}

func (d *Document) touchMeasure(id MeasureID) {
	m := d.Measure(id)
	if m == nil {
		return
	}
	m.dirty = true
	d.touchRow(m.Row)
}

func (d *Document) touchColumn(id ColumnID) {
	c := d.Column(id)
	if c == nil {
		return
	}
	c.dirty = true
	d.touchMeasure(c.Measure)
}
