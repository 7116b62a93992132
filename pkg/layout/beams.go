package layout

import (
	"math"
	"strconv"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/score/beam"
)

// beams fits the beam lines of every group in the measure and draws beams,
// tuplet numbers and brackets. Stem tips of beamed members are moved onto
// the beam line.
func (b *rowBuilder) beams(ml *MeasureLayout) {
	ms := b.d.Measure(ml.Measure)
	for _, bg := range ms.Beams {
		for li, g := range b.lines {
			if g.Line.Kind != score.Staff || !g.Line.Shows(bg.Voice) {
				continue
			}
			if bg.Kind == beam.TupletBracket {
				b.bracket(li, g, bg)
				continue
			}
			b.beamGroup(li, bg)
		}
	}
}

func (b *rowBuilder) beamGroup(li int, bg score.BeamGroup) {
	m := b.m
	infos := make([]*stemInfo, 0, len(bg.Symbols))
	for _, sid := range bg.Symbols {
		st := b.stems[symKey{sid, li}]
		if st == nil {
			return
		}
		infos = append(infos, st)
	}
	up := infos[0].Up
	stems := make([]beam.Stem, len(infos))
	xs := make([]float64, len(infos))
	for i, st := range infos {
		if st.Up != up {
			flip(st, m)
		}
		stems[i] = beam.Stem{X: st.X, Head: st.Near}
		xs[i] = st.X
	}

	l := beam.FitLine(stems, beam.LineParams{
		Up:        up,
		Length:    m.StemLength,
		MinLength: m.MinStemLength,
		MaxRise:   m.MaxBeamRise,
	})
	for _, st := range infos {
		st.Tip = l.YAt(st.X)
		st.Beamed = true
	}

	dir := 1.0 // deeper levels move toward the heads
	if !up {
		dir = -1
	}
	step := m.BeamThickness + m.BeamGap
	for _, seg := range beam.Segments(bg.Group(), xs, m.HookLength) {
		off := dir * (float64(seg.Level)*step + m.BeamThickness/2)
		x0, x1 := seg.X0-m.StemWidth/2, seg.X1+m.StemWidth/2
		b.emit(line("beam", x0, l.YAt(x0)+off, x1, l.YAt(x1)+off, m.BeamThickness))
	}

	if bg.Kind == beam.TupletBeam {
		mid := (xs[0] + xs[len(xs)-1]) / 2
		y := l.YAt(mid) - 1.2*m.Unit
		if !up {
			y = l.YAt(mid) + 1.2*m.Unit + m.SmallFontSize
		}
		b.emit(b.text("tuplet", strconv.Itoa(bg.Tuplet.Parts), mid, y, m.SmallFontSize, AnchorMiddle))
	}
}

// flip turns a stem to the other side of its heads.
func flip(st *stemInfo, m Metrics) {
	d := m.HeadWidth - m.StemWidth
	if st.Up {
		st.X -= d
	} else {
		st.X += d
	}
	st.Up = !st.Up
	st.Near, st.Far = st.Far, st.Near
}

// bracket draws a tuplet bracket with its ratio number on the stem side of
// the first member, clearing every head and stem tip of the group.
func (b *rowBuilder) bracket(li int, g LineGeom, bg score.BeamGroup) {
	m := b.m
	above := true
	first := b.d.Symbol(bg.Symbols[0])
	if st := b.stems[symKey{first.ID, li}]; st != nil {
		above = st.Up
	}

	left, right := math.Inf(1), math.Inf(-1)
	edge := g.Top - 2*m.Unit
	if !above {
		edge = g.Bottom + 2*m.Unit
	}
	for _, sid := range bg.Symbols {
		s := b.d.Symbol(sid)
		x := b.columnX[s.Column]
		left, right = math.Min(left, x-m.HeadWidth/2), math.Max(right, x+m.HeadWidth/2)
		ys := b.extentYs(sid, li)
		for _, y := range ys {
			if above {
				edge = math.Min(edge, y-2*m.Unit)
			} else {
				edge = math.Max(edge, y+2*m.Unit)
			}
		}
	}

	hook := m.Unit
	if !above {
		hook = -m.Unit
	}
	mid := (left + right) / 2
	num := b.text("tuplet", strconv.Itoa(bg.Tuplet.Parts), mid, edge+m.SmallFontSize*0.35, m.SmallFontSize, AnchorMiddle)
	gapL, gapR := num.Box.Left-m.Unit/2, num.Box.Right+m.Unit/2
	b.emit(
		line("tuplet-bracket", left, edge+hook, left, edge, m.LineWidth),
		line("tuplet-bracket", left, edge, gapL, edge, m.LineWidth),
		line("tuplet-bracket", gapR, edge, right, edge, m.LineWidth),
		line("tuplet-bracket", right, edge, right, edge+hook, m.LineWidth),
		num,
	)
}

// extentYs returns the head and stem tip Ys of a symbol on a line.
func (b *rowBuilder) extentYs(sid score.SymbolID, li int) []float64 {
	var out []float64
	s := b.d.Symbol(sid)
	for ni := range s.Notes {
		if p, ok := b.heads[noteKey{sid, li, ni}]; ok {
			out = append(out, p.Y)
		}
	}
	if st := b.stems[symKey{sid, li}]; st != nil {
		out = append(out, st.Tip)
	}
	return out
}

// drawStems emits stems and the flags of unbeamed stems.
func (b *rowBuilder) drawStems() {
	m := b.m
	for _, k := range b.order {
		st := b.stems[k]
		b.emit(line("stem", st.X, st.Far, st.X, st.Tip, m.StemWidth))
		if st.Beamed {
			continue
		}
		dir := 1.0
		if !st.Up {
			dir = -1
		}
		for i := 0; i < st.Flags; i++ {
			y := st.Tip + dir*float64(i)*1.5*m.Unit
			b.emit(bezier("flag",
				Point{st.X, y},
				Point{st.X + 0.3*m.Unit, y + dir*2*m.Unit},
				Point{st.X + m.FlagWidth, y + dir*3*m.Unit},
				Point{st.X + 0.8*m.FlagWidth, y + dir*5*m.Unit},
				m.StemWidth*1.6))
		}
	}
}
