package playback

import (
	"slices"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/score"
)

// stepsPerMeasure bounds the walk: a well-formed score visits no measure
// anywhere near this often.
const stepsPerMeasure = 64

// Step is one stop of the playback cursor: a rhythm column, a fermata over
// a right barline, or an empty measure.
type Step struct {
	Measure score.MeasureID
	// Column is NoID for barline holds and empty measures.
	Column score.ColumnID
	// Pass counts the visits of Measure so far, starting at 1.
	Pass int
	// Ticks is the distance to the next column of the measure, or to the
	// measure end for the last column.
	Ticks int
	// Barline marks the hold of a fermata over the right barline.
	Barline bool

	// Filled in by the envelope and timing passes.
	Speed   float64
	Volume  float64
	Start   float64 // seconds from the start of the performance
	Seconds float64 // delay until the next step
}

// walker holds the cursor state of one linearization.
type walker struct {
	d      *score.Document
	passes map[score.MeasureID]int
	jumped map[score.MeasureID]bool

	repeatStart score.MeasureID
	segno       score.MeasureID
	afterJump   bool
	alFine      bool
	alCoda      bool
}

// Sequence linearizes the navigation of d into playback order. It flushes
// d first, so a document with invalid connectives fails here.
//
// Each measure visit increments the measure's pass counter. An ending
// measure is played only when the pass of the enclosing repeat is among its
// passages. An end repeat jumps back to the latest start repeat (or the
// first measure) while the pass is below the repeat count, or while the
// next measure opens an ending that is still to be played. Jump marks are
// taken once; after a jump, repeats are not taken again and only the
// final ending is played. Playback ends after the last measure, at the end
// of the song, or at Fine when the jump asked for it.
//
// A walk that exceeds 64 visits per measure returns a NAVIGATION_LOOP error.
func Sequence(d *score.Document) ([]Step, error) {
	if _, err := d.Flush(); err != nil {
		return nil, err
	}
	measures := d.Measures()
	if len(measures) == 0 {
		return nil, nil
	}

	w := &walker{
		d:           d,
		passes:      make(map[score.MeasureID]int),
		jumped:      make(map[score.MeasureID]bool),
		repeatStart: measures[0].ID,
		segno:       score.NoID,
	}

	var steps []Step
	limit := stepsPerMeasure * len(measures)
	visits := 0
	for cur := measures[0].ID; cur != score.NoID; {
		if visits++; visits > limit {
			return nil, errors.New(errors.ErrCodeNavigationLoop,
				"navigation did not terminate after %d measure visits", limit)
		}
		m := d.Measure(cur)
		if m.Nav.StartRepeat {
			w.repeatStart = m.ID
		}
		if !w.plays(m) {
			cur = m.Next
			continue
		}
		w.passes[m.ID]++
		if m.Nav.Segno {
			w.segno = m.ID
		}
		steps = append(steps, w.columns(m)...)

		next, err := w.advance(m)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return steps, nil
}

// plays reports whether m is played on the current pass.
func (w *walker) plays(m *score.Measure) bool {
	if len(m.Nav.Ending) == 0 {
		return true
	}
	if w.afterJump {
		return !w.endingRepeats(m)
	}
	return slices.Contains(m.Nav.Ending, w.sectionPass())
}

// sectionPass is the pass number of the enclosing repeat.
func (w *walker) sectionPass() int {
	return max(w.passes[w.repeatStart], 1)
}

// endingRepeats reports whether the ending bracket containing m closes with
// an end repeat, i.e. whether it is not the final ending.
func (w *walker) endingRepeats(m *score.Measure) bool {
	for cur := m; cur != nil; cur = w.d.Measure(cur.Next) {
		if !slices.Equal(cur.Nav.Ending, m.Nav.Ending) {
			return false
		}
		if cur.Nav.EndRepeat > 0 {
			return true
		}
	}
	return false
}

// advance picks the measure played after m, or NoID to stop.
func (w *walker) advance(m *score.Measure) (score.MeasureID, error) {
	nav := m.Nav
	if w.alFine && nav.Fine {
		return score.NoID, nil
	}
	if w.alCoda && nav.ToCoda {
		w.alCoda = false
		if coda := w.coda(m); coda != score.NoID {
			return coda, nil
		}
	}
	if nav.EndRepeat > 0 && !w.afterJump {
		pass := w.sectionPass()
		if pass <= nav.EndRepeat-1 || w.endingAhead(m, pass) {
			return w.repeatStart, nil
		}
		w.closeSection(m)
	}
	if len(nav.Ending) > 0 && nav.EndRepeat == 0 {
		w.closeSection(m)
	}
	if nav.Jump != score.NoJump && !w.jumped[m.ID] {
		w.jumped[m.ID] = true
		w.afterJump = true
		w.alFine = nav.Jump.AlFine()
		w.alCoda = nav.Jump.AlCoda()
		if !nav.Jump.ToSegno() {
			return w.d.Measures()[0].ID, nil
		}
		if w.segno == score.NoID {
			return score.NoID, errors.New(errors.ErrCodeInvalidInput,
				"%s in measure %d without a segno", nav.Jump, m.Index+1)
		}
		return w.segno, nil
	}
	if m.EndsSong {
		return score.NoID, nil
	}
	return m.Next, nil
}

// closeSection moves the repeat start past m once m finishes a repeated
// section, so a later end repeat without a start repeat returns to the
// measure after it. Inside an ending bracket nothing moves.
func (w *walker) closeSection(m *score.Measure) {
	if next := w.d.Measure(m.Next); next != nil && len(next.Nav.Ending) == 0 {
		w.repeatStart = next.ID
	}
}

// endingAhead reports whether the measure after m opens an ending that a
// later pass still plays.
func (w *walker) endingAhead(m *score.Measure, pass int) bool {
	next := w.d.Measure(m.Next)
	if next == nil || len(next.Nav.Ending) == 0 {
		return false
	}
	return slices.Max(next.Nav.Ending) > pass
}

// coda returns the first coda measure after m, falling back to the first
// one anywhere.
func (w *walker) coda(m *score.Measure) score.MeasureID {
	first := score.MeasureID(score.NoID)
	for _, c := range w.d.Measures() {
		if !c.Nav.Coda {
			continue
		}
		if c.Index > m.Index {
			return c.ID
		}
		if first == score.NoID {
			first = c.ID
		}
	}
	return first
}

// columns expands one visit of m into steps.
func (w *walker) columns(m *score.Measure) []Step {
	pass := w.passes[m.ID]
	if len(m.Columns) == 0 {
		return []Step{{Measure: m.ID, Column: score.NoID, Pass: pass, Ticks: m.Capacity()}}
	}
	steps := make([]Step, 0, len(m.Columns)+1)
	for i, cid := range m.Columns {
		c := w.d.Column(cid)
		end := m.Capacity()
		if i+1 < len(m.Columns) {
			end = w.d.Column(m.Columns[i+1]).Position
		}
		steps = append(steps, Step{Measure: m.ID, Column: cid, Pass: pass, Ticks: end - c.Position})
	}
	if w.d.BarlineFermata(m.ID) {
		steps = append(steps, Step{Measure: m.ID, Column: score.NoID, Pass: pass, Ticks: m.Capacity() / 2, Barline: true})
	}
	return steps
}
