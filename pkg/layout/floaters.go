package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/staffline/pkg/score"
)

// piece is one horizontal extent of a floating unit.
type piece struct {
	Left, Right float64
	Height      float64
}

// unit is a floating object, or the part of one inside this row, that moves
// vertically as a whole. near is the edge facing the lines.
type unit struct {
	f      *score.Float
	above  bool
	pieces []piece
	draw   func(near float64) []Shape
}

func (u *unit) rects(near float64) []Rect {
	out := make([]Rect, len(u.pieces))
	for i, p := range u.pieces {
		if u.above {
			out[i] = Rect{Left: p.Left, Top: near - p.Height, Right: p.Right, Bottom: near}
		} else {
			out[i] = Rect{Left: p.Left, Top: near, Right: p.Right, Bottom: near + p.Height}
		}
	}
	return out
}

// skyline tracks occupied space around the lines of a row.
type skyline struct {
	top, bottom float64
	occupied    []Rect
}

// near returns the closest free edge over [l, r] on one side.
func (s *skyline) near(l, r float64, above bool) float64 {
	y := s.bottom
	if above {
		y = s.top
	}
	q := Rect{Left: l, Right: r}
	for _, o := range s.occupied {
		if !o.OverlapsX(q) {
			continue
		}
		if above {
			y = math.Min(y, o.Top)
		} else {
			y = math.Max(y, o.Bottom)
		}
	}
	return y
}

// floaters places every floating object of the row, group by group.
func (b *rowBuilder) floaters() {
	sky := &skyline{top: b.top(), bottom: b.bottom()}
	for _, s := range b.shapes {
		if s.Class == "staff-line" {
			continue
		}
		sky.occupied = append(sky.occupied, s.Bounds())
	}

	units := b.units()
	for _, grp := range score.LayoutGroups() {
		var members []*unit
		for _, u := range units {
			if u.f.Group == grp {
				members = append(members, u)
			}
		}
		slices.SortStableFunc(members, func(a, c *unit) int {
			switch {
			case a.pieces[0].Left < c.pieces[0].Left:
				return -1
			case a.pieces[0].Left > c.pieces[0].Left:
				return 1
			}
			return 0
		})
		if !grp.RowAligned() {
			for _, u := range members {
				b.placeUnit(sky, u, b.nearFor(sky, u))
			}
			continue
		}
		for _, above := range []bool{true, false} {
			var side []*unit
			extreme := math.NaN()
			for _, u := range members {
				if u.above != above {
					continue
				}
				side = append(side, u)
				y := b.nearFor(sky, u)
				switch {
				case math.IsNaN(extreme):
					extreme = y
				case above:
					extreme = math.Min(extreme, y)
				default:
					extreme = math.Max(extreme, y)
				}
			}
			for _, u := range side {
				b.placeUnit(sky, u, extreme)
			}
		}
	}
}

func (b *rowBuilder) nearFor(sky *skyline, u *unit) float64 {
	pad := b.m.FloatPadding
	y := math.NaN()
	for _, p := range u.pieces {
		v := sky.near(p.Left, p.Right, u.above)
		switch {
		case math.IsNaN(y):
			y = v
		case u.above:
			y = math.Min(y, v)
		default:
			y = math.Max(y, v)
		}
	}
	if u.above {
		return y - pad
	}
	return y + pad
}

func (b *rowBuilder) placeUnit(sky *skyline, u *unit, near float64) {
	rs := u.rects(near)
	sky.occupied = append(sky.occupied, rs...)
	b.emit(u.draw(near)...)
	for _, r := range rs {
		b.hits = append(b.hits, Hit{Box: r, Object: Object{
			Kind: FloatObject, Measure: u.f.Measure, Column: u.f.Anchor.Column, Symbol: score.NoID, Note: -1,
			Float: u.f.ID, Connective: score.NoID,
		}})
	}
}

// baseline returns the text baseline for a text of size whose near edge is
// at near.
func baseline(near, size float64, above bool) float64 {
	if above {
		return near - 0.2*size
	}
	return near + 0.8*size
}

// units collects the floating units of the row: every float anchored in
// one of its measures, plus the continuation of extensions started in an
// earlier row.
func (b *rowBuilder) units() []*unit {
	var out []*unit
	inRow := make(map[score.MeasureID]int, len(b.measures))
	for i, ml := range b.measures {
		inRow[ml.Measure] = i
	}
	for i := range b.measures {
		ml := &b.measures[i]
		for _, fid := range b.d.Measure(ml.Measure).Floats {
			if u := b.unitFor(ml, b.d.Float(fid)); u != nil {
				out = append(out, u)
			}
		}
	}
	for _, f := range b.d.Floats() {
		if !f.HasExtension() || f.Range.Empty() {
			continue
		}
		if _, own := inRow[f.Measure]; own {
			continue
		}
		if u := b.tail(f); u != nil {
			out = append(out, u)
		}
	}
	return out
}

func (b *rowBuilder) unitFor(ml *MeasureLayout, f *score.Float) *unit {
	m := b.m
	above := f.Side != score.Below
	u := &unit{f: f, above: above}

	x := ml.Box.Right
	switch {
	case f.Anchor.Barline == score.LeftBarline:
		x = ml.Box.Left
	case f.Anchor.Barline == score.RightBarline:
		x = ml.Box.Right
	default:
		cx, ok := b.columnX[f.Anchor.Column]
		if !ok {
			return nil
		}
		x = cx
	}

	switch f.Kind {
	case score.FermataFloat:
		w, h := 1.6*m.Unit, 2*m.Unit
		u.pieces = []piece{{x - w, x + w, h}}
		u.draw = func(near float64) []Shape {
			dir := -1.0
			if !above {
				dir = 1
			}
			r := 0.35 * m.Unit
			dotY := near + dir*0.5*m.Unit
			return []Shape{
				bezier("fermata", Point{x - w, near}, Point{x - w, near + dir*2.6*m.Unit}, Point{x + w, near + dir*2.6*m.Unit}, Point{x + w, near}, m.LineWidth*2),
				ellipse("fermata", Rect{Left: x - r, Top: dotY - r, Right: x + r, Bottom: dotY + r}, true, 0),
			}
		}
		return u

	case score.EndingFloat:
		prev := b.d.Measure(b.d.Measure(ml.Measure).Prev)
		continued := prev != nil && prev.Row == b.row.ID && slices.Equal(prev.Nav.Ending, b.d.Measure(ml.Measure).Nav.Ending)
		left, right := ml.Box.Left, ml.Box.Right-m.Unit
		h := m.FontSize + m.Unit
		u.pieces = []piece{{left, right, h}}
		u.draw = func(near float64) []Shape {
			top := near - h
			out := []Shape{line("ending", left, top, right, top, m.LineWidth)}
			if !continued {
				out = append(out,
					line("ending", left, near, left, top, m.LineWidth),
					b.text("ending", f.Text, left+m.Unit, top+m.FontSize, m.SmallFontSize, AnchorStart))
			}
			return out
		}
		return u
	}

	// Text objects: labels, annotations and navigation marks.
	text := f.Text
	anchor := AnchorMiddle
	switch {
	case f.Kind == score.NavigationFloat && text == "Segno":
		text = "𝄋"
	case f.Kind == score.NavigationFloat && text == "Coda":
		text = "𝄌"
	}
	switch {
	case f.Anchor.Barline == score.LeftBarline:
		anchor = AnchorStart
		x += m.BarPadding
	case f.Anchor.Barline == score.RightBarline:
		anchor = AnchorEnd
	case f.Kind == score.AnnotationFloat && f.Context != score.Dynamics:
		anchor = AnchorStart
		x -= m.HeadWidth / 2
	}
	size := m.FontSize
	probe := b.text("float", text, x, 0, size, anchor)
	u.pieces = []piece{{probe.Box.Left, probe.Box.Right, size}}

	var dashes []piece
	if f.HasExtension() && !f.Range.Empty() {
		dashes = b.dashes(f, probe.Box.Right+m.Unit)
		u.pieces = append(u.pieces, dashes...)
	}
	class := "label"
	switch f.Kind {
	case score.AnnotationFloat:
		class = "annotation"
	case score.NavigationFloat:
		class = "navigation"
	}
	u.draw = func(near float64) []Shape {
		out := []Shape{b.text(class, text, x, baseline(near, size, above), size, anchor)}
		return append(out, dashLines(dashes, near, size, above, m)...)
	}
	return u
}

// tail is the continuation line of an extension whose annotation sits in
// an earlier row.
func (b *rowBuilder) tail(f *score.Float) *unit {
	dashes := b.dashes(f, math.Inf(-1))
	if len(dashes) == 0 {
		return nil
	}
	m := b.m
	above := f.Side != score.Below
	return &unit{
		f:      f,
		above:  above,
		pieces: dashes,
		draw: func(near float64) []Shape {
			return dashLines(dashes, near, m.FontSize, above, m)
		},
	}
}

// dashes returns one piece per measure of this row the extension of f
// passes through, starting no further left than from.
func (b *rowBuilder) dashes(f *score.Float, from float64) []piece {
	m := b.m
	last := f.Range.Columns[len(f.Range.Columns)-1]
	var out []piece
	for _, ml := range b.measures {
		var x0, x1 float64
		covered := false
		for _, cl := range ml.Columns {
			if !slices.Contains(f.Range.Columns, cl.Column) {
				continue
			}
			if !covered {
				x0, covered = cl.X-m.HeadWidth/2, true
			}
			x1 = cl.X + m.HeadWidth/2
			if cl.Column != last {
				// The line runs on toward the next covered column.
				x1 = cl.X + cl.Right
			}
		}
		if !covered {
			continue
		}
		x0 = math.Max(x0, from)
		if x1-x0 < m.Unit {
			continue
		}
		out = append(out, piece{x0, x1, m.FontSize})
	}
	return out
}

func dashLines(ps []piece, near, size float64, above bool, m Metrics) []Shape {
	y := near + size/2
	if above {
		y = near - size/2
	}
	out := make([]Shape, len(ps))
	for i, p := range ps {
		s := line("extension", p.Left, y, p.Right, y, m.LineWidth*1.5)
		s.Dash = true
		out[i] = s
	}
	return out
}
