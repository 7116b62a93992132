package layout

import (
	"math"
	"strconv"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

// columnSize is the unscaled extent of a column around its anchor X.
type columnSize struct {
	ID       score.ColumnID
	Position int
	Left     float64
	Right    float64
}

// measureSize is the result of the size pass for one measure.
type measureSize struct {
	LeftSolid  float64
	RightSolid float64
	Columns    []columnSize
	// Accidentals holds the accidental drawn before each note, keyed by
	// symbol; noAccidental where none is drawn.
	Accidentals map[score.SymbolID][]int
}

// Content is the minimum width of the columns.
func (s measureSize) Content(m Metrics) float64 {
	var w float64
	for _, c := range s.Columns {
		w += c.Left + c.Right
	}
	if w == 0 {
		return m.EmptyMeasure
	}
	return w
}

// Min is the minimum width of the whole measure.
func (s measureSize) Min(m Metrics) float64 { return s.LeftSolid + s.Content(m) + s.RightSolid }

const noAccidental = math.MinInt

// keyStep is the horizontal advance of one key signature accidental.
func keyStep(m Metrics) float64 { return 1.2 * m.Unit }

func (e *Engine) sizeMeasure(d *score.Document, ms *score.Measure) measureSize {
	m := e.metrics
	lines := d.LinesOf(ms.ID)
	out := measureSize{Accidentals: accidentals(d, ms)}

	out.LeftSolid = m.BarPadding
	if d.StartsRow(ms.ID) {
		out.LeftSolid += m.ClefWidth + float64(ms.Key.Count())*keyStep(m)
	}
	if d.ShowsTime(ms.ID) {
		out.LeftSolid += m.TimeWidth
	}
	if ms.Nav.StartRepeat {
		out.LeftSolid += m.RepeatWidth
	}
	out.RightSolid = m.BarPadding
	if ms.Nav.EndRepeat > 0 {
		out.RightSolid += m.RepeatWidth
	}
	if ms.EndsSection || ms.EndsSong {
		out.RightSolid += m.Unit
	}

	for _, cid := range ms.Columns {
		col := d.Column(cid)
		cs := columnSize{ID: cid, Position: col.Position, Left: m.HeadWidth / 2, Right: m.HeadWidth / 2}
		col.Each(d, func(s *score.Symbol) {
			for _, l := range lines {
				if !l.Shows(s.Voice) {
					continue
				}
				lw, rw := e.symbolExtent(l, col, s, out.Accidentals[s.ID])
				cs.Left = math.Max(cs.Left, lw)
				cs.Right = math.Max(cs.Right, rw)
			}
		})
		for _, fid := range col.Floats {
			f := d.Float(fid)
			if !f.Group.WidensColumn() {
				continue
			}
			half := e.measurer.MeasureText(f.Text, m.FontSize) / 2
			cs.Left = math.Max(cs.Left, half)
			cs.Right = math.Max(cs.Right, half)
		}
		cs.Left += m.ColumnPadding
		cs.Right += m.ColumnPadding
		out.Columns = append(out.Columns, cs)
	}
	return out
}

// symbolExtent returns how far s reaches left and right of the column X on
// line l.
func (e *Engine) symbolExtent(l score.Line, col *score.Column, s *score.Symbol, accs []int) (float64, float64) {
	m := e.metrics
	hw := m.HeadWidth
	if l.Kind == score.Tab {
		if s.Kind == score.Rest {
			return 0, 0
		}
		var w float64
		for _, n := range s.Notes {
			if f := l.Fret(n.Pitch, n.String); f >= 0 && n.String > 0 {
				w = math.Max(w, e.measurer.MeasureText(strconv.Itoa(f), m.SmallFontSize))
			}
		}
		return w/2 + m.Unit/2, w/2 + m.Unit/2
	}

	left, right := hw/2, hw/2
	if s.Kind == score.Rest {
		right += dotsWidth(m, s.Duration)
		return left, right
	}
	shift := 0.0
	if col.Shift[s.Voice] {
		shift = hw
	}
	for _, n := range s.Notes {
		switch {
		case n.Shift < 0:
			left = math.Max(left, hw*1.5)
		case n.Shift > 0:
			right = math.Max(right, hw*1.5)
		}
	}
	left += accidentalColumns(s, accs) * m.AccidentalW
	if s.Arpeggio {
		left += m.ArpeggioWidth
	}
	right += dotsWidth(m, s.Duration)
	if s.Beam == score.NoID && s.Stem == score.StemUp && s.Duration.FlagCount() > 0 {
		right += m.FlagWidth
	}
	return left - shift, right + shift
}

func dotsWidth(m Metrics, d theory.Duration) float64 {
	if d.Dots == 0 {
		return 0
	}
	return m.DotGap * float64(d.Dots+1)
}

// accidentalColumns returns how many accidental columns s needs: two when
// two accidentals are closer than a sixth and would collide.
func accidentalColumns(s *score.Symbol, accs []int) float64 {
	cols, last := 0.0, math.MinInt
	for i, n := range s.Notes {
		if i >= len(accs) || accs[i] == noAccidental {
			continue
		}
		if cols == 0 {
			cols = 1
		} else if n.Pitch.DiatonicID()-last < 6 {
			cols = 2
		}
		last = n.Pitch.DiatonicID()
	}
	return cols
}

// accidentals decides which notes of ms draw an accidental. An accidental
// holds for the rest of the measure on its staff position; the key
// signature applies otherwise.
func accidentals(d *score.Document, ms *score.Measure) map[score.SymbolID][]int {
	out := make(map[score.SymbolID][]int)
	state := make(map[int]int) // diatonic id -> accidental in effect
	for _, cid := range ms.Columns {
		d.Column(cid).Each(d, func(s *score.Symbol) {
			if s.Kind != score.NoteGroup {
				return
			}
			accs := make([]int, len(s.Notes))
			for i, n := range s.Notes {
				id := n.Pitch.DiatonicID()
				cur, ok := state[id]
				if !ok {
					cur = ms.Key.AccidentalFor(n.Pitch.Letter)
				}
				if n.Pitch.Accidental == cur {
					accs[i] = noAccidental
					continue
				}
				accs[i] = n.Pitch.Accidental
				state[id] = n.Pitch.Accidental
			}
			out[s.ID] = accs
		})
	}
	return out
}

// accidentalText returns the sign for an accidental.
func accidentalText(a int) string {
	switch a {
	case -2:
		return "𝄫"
	case -1:
		return "♭"
	case 1:
		return "♯"
	case 2:
		return "𝄪"
	}
	return "♮"
}
