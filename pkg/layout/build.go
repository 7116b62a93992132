package layout

import (
	"math"
	"strconv"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

type symKey struct {
	sym  score.SymbolID
	line int
}

type noteKey struct {
	sym  score.SymbolID
	line int
	note int
}

// stemInfo is the stem of one symbol on one staff line. Near is the head
// closest to the tip, Far the head the stem grows from.
type stemInfo struct {
	X         float64
	Up        bool
	Near, Far float64
	Tip       float64
	Flags     int
	Beamed    bool
}

// rowBuilder emits the display list of one row in row coordinates: the top
// line of the first notation line sits at y=0.
type rowBuilder struct {
	e        *Engine
	m        Metrics
	d        *score.Document
	row      *score.Row
	lines    []LineGeom
	measures []MeasureLayout
	sizes    []measureSize

	columnX map[score.ColumnID]float64
	heads   map[noteKey]Point
	stems   map[symKey]*stemInfo
	order   []symKey

	shapes []Shape
	hits   []Hit
}

func newRowBuilder(e *Engine, d *score.Document, r *score.Row, measures []MeasureLayout, sizes []measureSize) *rowBuilder {
	return &rowBuilder{
		e:        e,
		m:        e.metrics,
		d:        d,
		row:      r,
		lines:    stackLines(r.Lines, e.metrics),
		measures: measures,
		sizes:    sizes,
		columnX:  make(map[score.ColumnID]float64),
		heads:    make(map[noteKey]Point),
		stems:    make(map[symKey]*stemInfo),
	}
}

func (b *rowBuilder) emit(s ...Shape) { b.shapes = append(b.shapes, s...) }

func (b *rowBuilder) top() float64    { return b.lines[0].Top }
func (b *rowBuilder) bottom() float64 { return b.lines[len(b.lines)-1].Bottom }

func (b *rowBuilder) build() RowLayout {
	for i := range b.measures {
		ml := &b.measures[i]
		ml.Box.Top, ml.Box.Bottom = b.top(), b.bottom()
		for _, c := range ml.Columns {
			b.columnX[c.Column] = c.X
		}
	}
	for i := range b.measures {
		b.frame(&b.measures[i])
	}
	for i := range b.measures {
		b.symbols(&b.measures[i], b.sizes[i])
	}
	for i := range b.measures {
		b.beams(&b.measures[i])
	}
	b.drawStems()
	b.connectives()
	b.floaters()

	box := Rect{Left: b.measures[0].Box.Left, Top: b.top(), Right: b.measures[len(b.measures)-1].Box.Right, Bottom: b.bottom()}
	for _, s := range b.shapes {
		box = box.Union(s.Bounds())
	}
	return RowLayout{Row: b.row.ID, Box: box, Lines: b.lines, Measures: b.measures}
}

// frame draws lines, barlines, clefs, key and time signatures and repeat
// signs of one measure.
func (b *rowBuilder) frame(ml *MeasureLayout) {
	m := b.m
	ms := b.d.Measure(ml.Measure)
	left, right := ml.Box.Left, ml.Box.Right

	for _, g := range b.lines {
		for i := 0; i < g.Count(); i++ {
			y := g.LineY(i)
			b.emit(line("staff-line", left, y, right, y, m.LineWidth))
		}
	}

	x := left + m.BarPadding
	if b.d.StartsRow(ms.ID) {
		b.emit(line("barline", left, b.top(), left, b.bottom(), m.LineWidth))
		for _, g := range b.lines {
			b.clef(g, x)
			b.keySignature(g, ms.Key, x+m.ClefWidth)
		}
		x += m.ClefWidth + float64(ms.Key.Count())*keyStep(m)
	}
	if b.d.ShowsTime(ms.ID) {
		for _, g := range b.lines {
			mid := (g.Top + g.Bottom) / 2
			cx := x + m.TimeWidth/2
			b.emit(
				b.text("time", strconv.Itoa(ms.Time.Beats), cx, mid-m.Unit*0.2, 4*m.Unit, AnchorMiddle),
				b.text("time", strconv.Itoa(ms.Time.BeatType), cx, mid+3.6*m.Unit, 4*m.Unit, AnchorMiddle),
			)
		}
		x += m.TimeWidth
	}
	if ms.Nav.StartRepeat {
		b.repeat(x, true)
	}

	switch {
	case ms.EndsSong:
		b.emit(
			line("barline", right-1.4*m.Unit, b.top(), right-1.4*m.Unit, b.bottom(), m.LineWidth),
			line("barline", right-0.4*m.Unit, b.top(), right-0.4*m.Unit, b.bottom(), 0.8*m.Unit),
		)
	case ms.EndsSection:
		b.emit(
			line("barline", right-m.Unit, b.top(), right-m.Unit, b.bottom(), m.LineWidth),
			line("barline", right, b.top(), right, b.bottom(), m.LineWidth),
		)
	default:
		b.emit(line("barline", right, b.top(), right, b.bottom(), m.LineWidth))
	}
	if ms.Nav.EndRepeat > 0 {
		b.repeat(right-m.BarPadding-m.RepeatWidth, false)
		if ms.Nav.EndRepeat > 2 {
			b.emit(b.text("repeat-count", "x"+strconv.Itoa(ms.Nav.EndRepeat), right, b.top()-m.Unit, m.SmallFontSize, AnchorEnd))
		}
	}

	b.hits = append(b.hits, Hit{Box: Rect{Left: left, Top: b.top() - 2*m.Unit, Right: right, Bottom: b.bottom() + 2*m.Unit},
		Object: Object{Kind: MeasureObject, Measure: ms.ID, Column: score.NoID, Symbol: score.NoID, Note: -1, Float: score.NoID, Connective: score.NoID}})
}

func (b *rowBuilder) clef(g LineGeom, x float64) {
	m := b.m
	switch {
	case g.Line.Kind == score.Tab:
		b.emit(b.text("clef", "TAB", x+m.ClefWidth/2-m.Unit, (g.Top+g.Bottom)/2+m.Unit, m.SmallFontSize, AnchorMiddle))
	case g.Line.Clef == score.BassClef:
		b.emit(glyph("clef", GlyphBassClef, Rect{Left: x, Top: g.Top, Right: x + m.ClefWidth - 2*m.Unit, Bottom: g.Top + 6*m.Unit}))
	default:
		b.emit(glyph("clef", GlyphTrebleClef, Rect{Left: x, Top: g.Top - 3*m.Unit, Right: x + m.ClefWidth - 2*m.Unit, Bottom: g.Bottom + 3*m.Unit}))
	}
}

// Staff positions of key signature accidentals on a treble staff; the bass
// staff uses the same shape two octaves lower.
var (
	sharpPositions = [...]int{38, 35, 39, 36, 33, 37, 34}
	flatPositions  = [...]int{34, 37, 33, 36, 32, 35, 31}
)

func (b *rowBuilder) keySignature(g LineGeom, k theory.KeySignature, x float64) {
	if g.Line.Kind != score.Staff || k.Count() == 0 {
		return
	}
	pos, sign := sharpPositions[:], "♯"
	if k.Fifths < 0 {
		pos, sign = flatPositions[:], "♭"
	}
	off := 0
	if g.Line.Clef == score.BassClef {
		off = -14
	}
	for i := 0; i < k.Count(); i++ {
		y := g.Y(pos[i] + off)
		b.emit(b.text("key", sign, x+float64(i)*keyStep(b.m), y+b.m.Unit, 3*b.m.Unit, AnchorStart))
	}
}

// repeat draws a thick and a thin line with two dots; open faces right.
func (b *rowBuilder) repeat(x float64, open bool) {
	m := b.m
	thick, thin, dots := x+0.4*m.Unit, x+1.4*m.Unit, x+2.4*m.Unit
	if !open {
		dots, thin, thick = x+0.6*m.Unit, x+1.6*m.Unit, x+2.6*m.Unit
	}
	b.emit(
		line("repeat", thick, b.top(), thick, b.bottom(), 0.8*m.Unit),
		line("repeat", thin, b.top(), thin, b.bottom(), m.LineWidth),
	)
	for _, g := range b.lines {
		mid := (g.Top + g.Bottom) / 2
		for _, dy := range []float64{-g.Spacing / 2, g.Spacing / 2} {
			r := 0.4 * m.Unit
			b.emit(ellipse("repeat", Rect{Left: dots - r, Top: mid + dy - r, Right: dots + r, Bottom: mid + dy + r}, true, 0))
		}
	}
}

// symbols draws heads, rests, frets, accidentals, dots, ledger lines and
// articulations, and records stems for the beam and stem passes.
func (b *rowBuilder) symbols(ml *MeasureLayout, sz measureSize) {
	for _, cl := range ml.Columns {
		col := b.d.Column(cl.Column)
		col.Each(b.d, func(s *score.Symbol) {
			for li, g := range b.lines {
				if !g.Line.Shows(s.Voice) {
					continue
				}
				switch {
				case g.Line.Kind == score.Tab:
					b.frets(li, g, cl, s)
				case s.Kind == score.Rest:
					b.rest(li, g, cl, s)
				default:
					b.noteGroup(li, g, cl, col, s, sz.Accidentals[s.ID])
				}
			}
		})
	}
}

func (b *rowBuilder) noteGroup(li int, g LineGeom, cl ColumnLayout, col *score.Column, s *score.Symbol, accs []int) {
	m := b.m
	hw, hh := m.HeadWidth, m.HeadHeight
	x := cl.X
	if col.Shift[s.Voice] {
		x += hw
	}
	filled := s.Duration.Length >= theory.Quarter

	minY, maxY := math.Inf(1), math.Inf(-1)
	accCol, lastAcc, haveAcc := 0, 0, false
	for ni := len(s.Notes) - 1; ni >= 0; ni-- {
		n := s.Notes[ni]
		y := g.Y(n.Pitch.DiatonicID())
		hx := x + float64(n.Shift)*hw
		box := Rect{Left: hx - hw/2, Top: y - hh/2, Right: hx + hw/2, Bottom: y + hh/2}
		b.emit(ellipse("notehead", box, filled, 1.5*m.LineWidth))
		b.heads[noteKey{s.ID, li, ni}] = Point{hx, y}
		b.hits = append(b.hits, Hit{Box: box, Object: Object{
			Kind: NoteObject, Measure: s.Measure, Column: s.Column, Symbol: s.ID, Note: ni, Float: score.NoID, Connective: score.NoID, Line: li,
		}})
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)

		b.ledgers(g, n.Pitch.DiatonicID(), hx)
		if ni < len(accs) && accs[ni] != noAccidental {
			// Accidentals closer than a sixth alternate between two columns.
			if haveAcc && lastAcc-n.Pitch.DiatonicID() < 6 {
				accCol = 1 - accCol
			} else {
				accCol = 0
			}
			lastAcc, haveAcc = n.Pitch.DiatonicID(), true
			ax := x - hw/2 - m.Unit/2 - float64(accCol)*m.AccidentalW
			if n.Shift < 0 {
				ax -= hw
			}
			b.emit(b.text("accidental", accidentalText(accs[ni]), ax, y+m.Unit, 3*m.Unit, AnchorEnd))
		}
		b.dots(g, s.Duration.Dots, n.Pitch.DiatonicID(), x+hw/2+m.DotGap)
	}

	if s.Arpeggio {
		ax := x - hw/2 - m.ArpeggioWidth/2 - accidentalColumns(s, accs)*m.AccidentalW
		top, bot := minY-m.Unit, maxY+m.Unit
		b.emit(bezier("arpeggio", Point{ax, top}, Point{ax - m.Unit, (2*top + bot) / 3}, Point{ax + m.Unit, (top + 2*bot) / 3}, Point{ax, bot}, m.LineWidth*1.5))
	}

	if s.Duration.Length == theory.Whole {
		b.articulations(g, s, x, minY, maxY, s.Stem != score.StemDown)
		return
	}
	up := s.Stem != score.StemDown
	st := &stemInfo{Up: up, Flags: s.Duration.FlagCount()}
	if up {
		st.X = x + hw/2 - m.StemWidth/2
		st.Near, st.Far = minY, maxY
		st.Tip = math.Min(minY-m.StemLength, g.Y(g.Line.MiddleDiatonic()))
	} else {
		st.X = x - hw/2 + m.StemWidth/2
		st.Near, st.Far = maxY, minY
		st.Tip = math.Max(maxY+m.StemLength, g.Y(g.Line.MiddleDiatonic()))
	}
	b.stems[symKey{s.ID, li}] = st
	b.order = append(b.order, symKey{s.ID, li})
	b.articulations(g, s, x, minY, maxY, up)
}

// ledgers draws the ledger lines a head at diatonic d needs.
func (b *rowBuilder) ledgers(g LineGeom, d int, x float64) {
	m := b.m
	top, bot := g.Line.TopDiatonic(), g.Line.TopDiatonic()-8
	half := m.HeadWidth*0.5 + m.Unit*0.6
	for l := top + 2; l <= d; l += 2 {
		y := g.Y(l)
		b.emit(line("ledger", x-half, y, x+half, y, m.LineWidth))
	}
	for l := bot - 2; l >= d; l -= 2 {
		y := g.Y(l)
		b.emit(line("ledger", x-half, y, x+half, y, m.LineWidth))
	}
}

// dots draws augmentation dots in the space at or above diatonic d.
func (b *rowBuilder) dots(g LineGeom, n, d int, x float64) {
	if n == 0 {
		return
	}
	m := b.m
	if (g.Line.TopDiatonic()-d)%2 == 0 {
		d++
	}
	y := g.Y(d)
	r := 0.35 * m.Unit
	for i := 0; i < n; i++ {
		cx := x + float64(i)*m.DotGap
		b.emit(ellipse("dot", Rect{Left: cx - r, Top: y - r, Right: cx + r, Bottom: y + r}, true, 0))
	}
}

// articulations places staccato and accent marks on the head side.
func (b *rowBuilder) articulations(g LineGeom, s *score.Symbol, x, minY, maxY float64, up bool) {
	m := b.m
	y, dir := maxY+2*m.Unit, 1.0
	if !up {
		y, dir = minY-2*m.Unit, -1
	}
	if s.Staccato {
		r := 0.4 * m.Unit
		b.emit(ellipse("staccato", Rect{Left: x - r, Top: y - r, Right: x + r, Bottom: y + r}, true, 0))
		y += dir * 1.5 * m.Unit
	}
	if s.Accent {
		w, h := m.HeadWidth*0.6, m.Unit*0.7
		b.emit(
			line("accent", x-w, y-h, x+w, y, m.LineWidth*1.5),
			line("accent", x+w, y, x-w, y+h, m.LineWidth*1.5),
		)
	}
}

var restGlyphs = map[theory.NoteLength]string{
	theory.Quarter:      "𝄽",
	theory.Eighth:       "𝄾",
	theory.Sixteenth:    "𝄿",
	theory.ThirtySecond: "𝅀",
	theory.SixtyFourth:  "𝅁",
}

func (b *rowBuilder) rest(li int, g LineGeom, cl ColumnLayout, s *score.Symbol) {
	m := b.m
	x := cl.X
	y := g.Y(s.Anchor.DiatonicID())
	var box Rect
	switch s.Duration.Length {
	case theory.Whole:
		// Hangs from the line above the anchor.
		box = Rect{Left: x - m.HeadWidth/2, Top: y - m.Unit*2, Right: x + m.HeadWidth/2, Bottom: y - m.Unit}
		b.emit(rect("rest", box))
	case theory.Half:
		box = Rect{Left: x - m.HeadWidth/2, Top: y - m.Unit, Right: x + m.HeadWidth/2, Bottom: y}
		b.emit(rect("rest", box))
	default:
		t := b.text("rest", restGlyphs[s.Duration.Length], x, y+2*m.Unit, 6*m.Unit, AnchorMiddle)
		box = t.Box
		b.emit(t)
	}
	b.dots(g, s.Duration.Dots, s.Anchor.DiatonicID(), x+m.HeadWidth/2+m.DotGap)
	b.hits = append(b.hits, Hit{Box: box, Object: Object{
		Kind: SymbolObject, Measure: s.Measure, Column: s.Column, Symbol: s.ID, Note: -1, Float: score.NoID, Connective: score.NoID, Line: li,
	}})
}

// frets draws tab fret numbers over a masked line.
func (b *rowBuilder) frets(li int, g LineGeom, cl ColumnLayout, s *score.Symbol) {
	if s.Kind != score.NoteGroup {
		return
	}
	m := b.m
	for ni, n := range s.Notes {
		f := g.Line.Fret(n.Pitch, n.String)
		if n.String == 0 || f < 0 {
			continue
		}
		y := g.StringY(n.String)
		t := b.text("fret", strconv.Itoa(f), cl.X, y+m.SmallFontSize*0.35, m.SmallFontSize, AnchorMiddle)
		mask := Rect{Left: t.Box.Left - m.Unit*0.3, Top: y - m.Unit, Right: t.Box.Right + m.Unit*0.3, Bottom: y + m.Unit}
		b.emit(Shape{Kind: RectShape, Class: "fret-mask", Box: mask, Fill: true, Erase: true}, t)
		b.heads[noteKey{s.ID, li, ni}] = Point{cl.X, y}
		b.hits = append(b.hits, Hit{Box: mask, Object: Object{
			Kind: NoteObject, Measure: s.Measure, Column: s.Column, Symbol: s.ID, Note: ni, Float: score.NoID, Connective: score.NoID, Line: li,
		}})
	}
}
