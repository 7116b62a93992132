package layout

import (
	"math"

	"github.com/matzehuels/staffline/pkg/score"
)

// connectives draws the ties, slurs and slides whose pieces fall in this
// row.
func (b *rowBuilder) connectives() {
	for _, c := range b.d.Connectives() {
		for _, seg := range b.d.Segments(c.ID) {
			if seg.Row == b.row.ID {
				b.connective(c, seg)
			}
		}
	}
}

func (b *rowBuilder) connective(c *score.Connective, seg score.Segment) {
	m := b.m
	if seg.Line >= len(b.lines) {
		return
	}
	g := b.lines[seg.Line]
	dir := 1.0
	if seg.Above {
		dir = -1
	}
	tab := g.Line.Kind == score.Tab

	var p0, p1 Point
	var ok bool
	if seg.FromKind == score.EndNote {
		if p0, ok = b.endPoint(c, seg.From, seg.Line, seg.FromNote, seg.Above); !ok {
			return
		}
		p0.X += m.HeadWidth/2 + 0.3*m.Unit
	}
	if seg.ToKind == score.EndNote {
		if p1, ok = b.endPoint(c, seg.To, seg.Line, seg.ToNote, seg.Above); !ok {
			return
		}
		p1.X -= m.HeadWidth/2 + 0.3*m.Unit
	}

	switch seg.FromKind {
	case score.StartRow:
		p0 = Point{b.measures[0].ContentLeft - m.Unit, p1.Y}
	}
	switch seg.ToKind {
	case score.EndRow:
		p1 = Point{b.measures[len(b.measures)-1].Box.Right, p0.Y}
	case score.EndStub:
		p1 = Point{p0.X + 4*m.Unit, p0.Y}
	case score.EndMeasure:
		x := p0.X + 4*m.Unit
		for _, ml := range b.measures {
			if ml.Measure == seg.Owner {
				x = ml.Box.Right - m.Unit
			}
		}
		p1 = Point{x, p0.Y}
	}

	var s Shape
	if c.Kind == score.Slide {
		if seg.ToKind == score.EndStub || seg.ToKind == score.EndMeasure {
			p1.Y = p0.Y - 2*m.Unit
		}
		s = line("slide", p0.X, p0.Y, p1.X, p1.Y, m.LineWidth*1.5)
	} else {
		off := dir * 1.2 * m.Unit
		if tab {
			off = dir * m.Unit
		}
		p0.Y += off
		p1.Y += off
		h := math.Min(1.5*m.Unit+0.08*math.Abs(p1.X-p0.X), 4*m.Unit) * dir
		dx := (p1.X - p0.X) / 4
		class := "tie"
		if c.Kind == score.Slur {
			class = "slur"
		}
		s = bezier(class, p0, Point{p0.X + dx, p0.Y + h}, Point{p1.X - dx, p1.Y + h}, p1, m.LineWidth*2)
	}
	b.emit(s)
	b.hits = append(b.hits, Hit{Box: s.Bounds().Inflate(m.Unit / 2), Object: Object{
		Kind: ConnectiveObject, Measure: seg.Owner, Column: score.NoID, Symbol: score.NoID, Note: -1,
		Float: score.NoID, Connective: c.ID, Line: seg.Line,
	}})
}

// endPoint returns where a connective meets a note group. A whole-group end
// (note -1) uses the outermost head on the arc side, or the stem tip when
// the arc sits there.
func (b *rowBuilder) endPoint(c *score.Connective, sid score.SymbolID, li, ni int, above bool) (Point, bool) {
	s := b.d.Symbol(sid)
	if s == nil || s.Kind != score.NoteGroup {
		return Point{}, false
	}
	if ni >= 0 {
		p, ok := b.heads[noteKey{sid, li, ni}]
		return p, ok
	}
	var best Point
	found := false
	for i := range s.Notes {
		p, ok := b.heads[noteKey{sid, li, i}]
		if !ok {
			continue
		}
		if !found || (above && p.Y < best.Y) || (!above && p.Y > best.Y) {
			best, found = p, true
		}
	}
	if st := b.stems[symKey{sid, li}]; found && c.AtTip && st != nil && st.Up == above {
		best = Point{st.X, st.Tip}
	}
	return best, found
}
