package sink

import (
	"encoding/json"

	"github.com/matzehuels/staffline/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	shapes bool
	hits   bool
	source string
}

// WithJSONShapes includes the full display list.
func WithJSONShapes() JSONOption { return func(r *jsonRenderer) { r.shapes = true } }

// WithJSONHits includes the pickable boxes.
func WithJSONHits() JSONOption { return func(r *jsonRenderer) { r.hits = true } }

// WithJSONSource records the score file the layout was computed from.
func WithJSONSource(path string) JSONOption { return func(r *jsonRenderer) { r.source = path } }

type jsonOutput struct {
	Title  string         `json:"title,omitempty"`
	Source string         `json:"source,omitempty"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Unit   float64        `json:"unit"`
	Rows   []jsonRow      `json:"rows"`
	Shapes []layout.Shape `json:"shapes,omitempty"`
	Hits   []jsonHit      `json:"hits,omitempty"`
}

type jsonRow struct {
	Index    int           `json:"index"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Scale    float64       `json:"scale"`
	Lines    []jsonLine    `json:"lines"`
	Measures []jsonMeasure `json:"measures"`
}

type jsonLine struct {
	Name string  `json:"name"`
	Kind string  `json:"kind"`
	Top  float64 `json:"top"`
	Bot  float64 `json:"bottom"`
}

type jsonMeasure struct {
	ID      int          `json:"id"`
	X       float64      `json:"x"`
	Width   float64      `json:"width"`
	Columns []jsonColumn `json:"columns,omitempty"`
}

type jsonColumn struct {
	ID       int     `json:"id"`
	Position int     `json:"position"`
	X        float64 `json:"x"`
}

type jsonHit struct {
	Kind    string  `json:"kind"`
	Measure int     `json:"measure"`
	Symbol  int     `json:"symbol"`
	Note    int     `json:"note"`
	Float   int     `json:"float"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// RenderJSON exports the layout as a pretty-printed JSON document: row,
// line, measure and column geometry, and optionally the display list and
// hit boxes.
//
// RenderJSON returns an error only if JSON marshaling fails. It does not
// modify l and is safe to call concurrently.
func RenderJSON(l *layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Title:  l.Title,
		Source: r.source,
		Width:  l.Width,
		Height: l.Height,
		Unit:   l.Metrics.Unit,
		Rows:   buildJSONRows(l),
	}
	if r.shapes {
		out.Shapes = l.Shapes
	}
	if r.hits {
		out.Hits = buildJSONHits(l)
	}
	return json.MarshalIndent(out, "", "  ")
}

func buildJSONRows(l *layout.Layout) []jsonRow {
	rows := make([]jsonRow, 0, len(l.Rows))
	for i, r := range l.Rows {
		jr := jsonRow{
			Index:  i,
			X:      r.Box.Left,
			Y:      r.Box.Top,
			Width:  r.Box.Width(),
			Height: r.Box.Height(),
			Scale:  r.Scale,
		}
		for _, g := range r.Lines {
			jr.Lines = append(jr.Lines, jsonLine{Name: g.Line.Name, Kind: g.Line.Kind.String(), Top: g.Top, Bot: g.Bottom})
		}
		for _, m := range r.Measures {
			jm := jsonMeasure{ID: int(m.Measure), X: m.Box.Left, Width: m.Box.Width()}
			for _, c := range m.Columns {
				jm.Columns = append(jm.Columns, jsonColumn{ID: int(c.Column), Position: c.Position, X: c.X})
			}
			jr.Measures = append(jr.Measures, jm)
		}
		rows = append(rows, jr)
	}
	return rows
}

func buildJSONHits(l *layout.Layout) []jsonHit {
	hits := make([]jsonHit, 0, len(l.Hits))
	for _, h := range l.Hits {
		hits = append(hits, jsonHit{
			Kind:    h.Object.Kind.String(),
			Measure: int(h.Object.Measure),
			Symbol:  int(h.Object.Symbol),
			Note:    h.Object.Note,
			Float:   int(h.Object.Float),
			X:       h.Box.Left,
			Y:       h.Box.Top,
			Width:   h.Box.Width(),
			Height:  h.Box.Height(),
		})
	}
	return hits
}
