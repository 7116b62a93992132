package layout

import (
	"github.com/google/uuid"

	"github.com/matzehuels/staffline/pkg/score"
)

// Layout is the positioned form of a document.
type Layout struct {
	Title   string      `json:"title,omitempty"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Metrics Metrics     `json:"metrics"`
	Rows    []RowLayout `json:"rows"`
	Shapes  []Shape     `json:"shapes"`
	Hits    []Hit       `json:"-"`
}

// RowLayout is one positioned row.
type RowLayout struct {
	Row      score.RowID     `json:"row"`
	Box      Rect            `json:"box"`
	Scale    float64         `json:"scale"`
	Lines    []LineGeom      `json:"lines"`
	Measures []MeasureLayout `json:"measures"`
}

// MeasureLayout is one positioned measure. Box spans from the left to the
// right barline and from the top to the bottom notation line.
type MeasureLayout struct {
	Measure      score.MeasureID `json:"measure"`
	Box          Rect            `json:"box"`
	ContentLeft  float64         `json:"content_left"`
	ContentRight float64         `json:"content_right"`
	Columns      []ColumnLayout  `json:"columns"`
}

// ColumnLayout is one positioned rhythm column. X is the notehead center of
// unshifted heads; Left and Right are the scaled half-widths.
type ColumnLayout struct {
	Column   score.ColumnID `json:"column"`
	Position int            `json:"position"`
	X        float64        `json:"x"`
	Left     float64        `json:"left"`
	Right    float64        `json:"right"`
}

// Option configures an [Engine].
type Option func(*Engine)

// WithMetrics sets the engraving constants.
func WithMetrics(m Metrics) Option { return func(e *Engine) { e.metrics = m } }

// WithMeasurer sets the text measurer used for labels and annotations.
func WithMeasurer(t TextMeasurer) Option {
	return func(e *Engine) {
		if t != nil {
			e.measurer = t
		}
	}
}

// Engine lays out documents. It keeps the size pass results of every
// measure and recomputes a measure once its revision, its predecessor's or
// (for a row start) its row's has moved on, whoever flushed the document.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	metrics  Metrics
	measurer TextMeasurer

	doc   uuid.UUID
	sizes map[score.MeasureID]sizeEntry
	sized int
}

// NewEngine returns an engine with default metrics.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		metrics:  DefaultMetrics(),
		measurer: ApproxMeasurer{},
		sizes:    make(map[score.MeasureID]sizeEntry),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics returns the engine's engraving constants.
func (e *Engine) Metrics() Metrics { return e.metrics }

// Sized returns how many measures the last call to [Engine.Layout] had to
// size from scratch.
func (e *Engine) Sized() int { return e.sized }

// Layout flushes d and lays it out for the given page width.
func (e *Engine) Layout(d *score.Document, width float64) (*Layout, error) {
	if _, err := d.Flush(); err != nil {
		return nil, err
	}
	if d.ID != e.doc {
		e.doc = d.ID
		clear(e.sizes)
	}

	m := e.metrics
	lay := &Layout{Title: d.Title, Width: width, Metrics: m}
	y := m.Margin
	if d.Title != "" {
		b := &rowBuilder{e: e}
		lay.Shapes = append(lay.Shapes, b.text("title", d.Title, width/2, y+2*m.FontSize, 2*m.FontSize, AnchorMiddle))
		y += 3 * m.FontSize
	}

	inner := width - 2*m.Margin
	e.sized = 0
	for _, r := range d.Rows() {
		if len(r.Measures) == 0 {
			continue
		}
		sizes := make([]measureSize, len(r.Measures))
		for i, mid := range r.Measures {
			sizes[i] = e.size(d, mid)
		}
		scale := fitRow(sizes, m, inner)
		measures := placeRow(sizes, m, scale, m.Margin)
		for i := range measures {
			measures[i].Measure = r.Measures[i]
		}

		b := newRowBuilder(e, d, r, measures, sizes)
		rl := b.build()
		rl.Scale = scale

		dy := y - rl.Box.Top
		rl = rl.translate(dy)
		for _, s := range b.shapes {
			lay.Shapes = append(lay.Shapes, s.Translate(0, dy))
		}
		for _, h := range b.hits {
			h.Box = h.Box.Translate(0, dy)
			lay.Hits = append(lay.Hits, h)
		}
		lay.Rows = append(lay.Rows, rl)
		lay.Width = max(lay.Width, rl.Box.Right+m.Margin)
		y = rl.Box.Bottom + m.RowGap
	}
	lay.Height = y - m.RowGap + m.Margin
	return lay, nil
}

// sizeEntry is a cached size pass result with the revisions it was
// computed from.
type sizeEntry struct {
	size  measureSize
	stamp revStamp
}

type revStamp struct {
	own, prev, row uint64
}

func stampOf(d *score.Document, m *score.Measure) revStamp {
	st := revStamp{own: m.Revision()}
	// The time signature is drawn only where it changes.
	if p := d.Measure(m.Prev); p != nil {
		st.prev = p.Revision()
	}
	if r := d.Row(m.Row); r != nil && len(r.Measures) > 0 && r.Measures[0] == m.ID {
		st.row = r.Revision()
	}
	return st
}

func (e *Engine) size(d *score.Document, id score.MeasureID) measureSize {
	m := d.Measure(id)
	st := stampOf(d, m)
	if c, ok := e.sizes[id]; ok && c.stamp == st {
		return c.size
	}
	s := e.sizeMeasure(d, m)
	e.sizes[id] = sizeEntry{size: s, stamp: st}
	e.sized++
	return s
}

func (r RowLayout) translate(dy float64) RowLayout {
	r.Box = r.Box.Translate(0, dy)
	lines := make([]LineGeom, len(r.Lines))
	for i, l := range r.Lines {
		l.Top += dy
		l.Bottom += dy
		lines[i] = l
	}
	r.Lines = lines
	for i := range r.Measures {
		r.Measures[i].Box = r.Measures[i].Box.Translate(0, dy)
	}
	return r
}
