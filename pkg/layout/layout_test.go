package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/staffline/pkg/playback"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

// fill adds one note per pair of entries to voice 0 of m; "r" adds a rest.
func fill(t *testing.T, d *score.Document, m score.MeasureID, spec ...string) []score.SymbolID {
	t.Helper()
	var ids []score.SymbolID
	for i := 0; i < len(spec); i += 2 {
		dur, err := theory.ParseDuration(spec[i+1])
		require.NoError(t, err)
		var id score.SymbolID
		if spec[i] == "r" {
			id, err = d.AddRest(m, 0, dur, score.RestOptions{})
		} else {
			id, err = d.AddNote(m, 0, d.Notes.MustLookup(spec[i]), dur, score.NoteOptions{})
		}
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func quarters(t *testing.T, d *score.Document, m score.MeasureID) {
	t.Helper()
	fill(t, d, m, "C5", "4", "D5", "4", "E5", "4", "F5", "4")
}

func shapesOf(l *Layout, class string) []Shape {
	var out []Shape
	for _, s := range l.Shapes {
		if s.Class == class {
			out = append(out, s)
		}
	}
	return out
}

func TestStackLines(t *testing.T) {
	m := DefaultMetrics()
	lines := stackLines([]score.Line{
		{Name: "treble", Kind: score.Staff, Clef: score.TrebleClef},
		{Name: "tab", Kind: score.Tab, Tuning: score.StandardTuning},
	}, m)
	require.Len(t, lines, 2)

	staff, tab := lines[0], lines[1]
	assert.Equal(t, 0.0, staff.Top)
	assert.Equal(t, m.StaffHeight(), staff.Bottom)
	assert.Equal(t, 0.0, staff.Y(38), "F5 on the top line")
	assert.Equal(t, staff.Bottom, staff.Y(30), "E4 on the bottom line")
	assert.Equal(t, 30, staff.Diatonic(staff.Bottom+0.4*m.Unit))
	assert.Equal(t, 40, staff.Diatonic(-2*m.Unit))

	assert.Equal(t, staff.Bottom+m.LineGap, tab.Top)
	assert.Equal(t, tab.Top, tab.StringY(1))
	assert.Equal(t, tab.Top+5*m.TabSpacing, tab.StringY(6))
	assert.Equal(t, tab.Bottom, tab.StringY(6))
	assert.Equal(t, 2, tab.String(tab.Top+0.7*m.TabSpacing))
	assert.Equal(t, 6, tab.String(tab.Bottom+100))
}

func TestLayoutFitsWidth(t *testing.T) {
	d := score.MustNew(score.Config{Title: "Etude"})
	for i := 0; i < 4; i++ {
		if i == 2 {
			d.EndRow()
		}
		quarters(t, d, d.AddMeasure())
	}

	e := NewEngine()
	m := e.Metrics()
	lay, err := e.Layout(d, 800)
	require.NoError(t, err)
	require.Len(t, lay.Rows, 2)
	assert.NotEmpty(t, shapesOf(lay, "title"))

	for _, r := range lay.Rows {
		require.Len(t, r.Measures, 2)
		assert.InDelta(t, m.Margin, r.Measures[0].Box.Left, 1e-9)
		assert.InDelta(t, 800-m.Margin, r.Measures[1].Box.Right, 1e-6)
		assert.Greater(t, r.Scale, 1.0)
		assert.Equal(t, r.Measures[0].Box.Right, r.Measures[1].Box.Left)
	}
	assert.InDelta(t, lay.Rows[0].Box.Bottom+m.RowGap, lay.Rows[1].Box.Top, 1e-9)
	assert.Greater(t, lay.Height, lay.Rows[1].Box.Bottom)

	t.Run("narrow width is clamped to the row minimum", func(t *testing.T) {
		narrow, err := e.Layout(d, 50)
		require.NoError(t, err)
		assert.Greater(t, narrow.Width, 50.0)
		for _, r := range narrow.Rows {
			assert.InDelta(t, 1.0, r.Scale, 1e-9)
		}
	})
}

func TestEngineCachesSizes(t *testing.T) {
	d := score.MustNew(score.Config{})
	var ids []score.MeasureID
	for i := 0; i < 4; i++ {
		if i == 2 {
			d.EndRow()
		}
		ids = append(ids, d.AddMeasure())
	}
	for _, id := range ids[:3] {
		quarters(t, d, id)
	}
	fill(t, d, ids[3], "C5", "4")

	e := NewEngine()
	_, err := e.Layout(d, 600)
	require.NoError(t, err)
	assert.Equal(t, 4, e.Sized())

	_, err = e.Layout(d, 900)
	require.NoError(t, err)
	assert.Equal(t, 0, e.Sized(), "width changes reuse sizes")

	fill(t, d, ids[3], "D5", "4")
	_, err = e.Layout(d, 900)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Sized(), "changed measure and its row start")

	other := score.MustNew(score.Config{})
	quarters(t, other, other.AddMeasure())
	_, err = e.Layout(other, 900)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Sized(), "a new document starts from scratch")
}

func TestEngineSeesForeignFlush(t *testing.T) {
	d := score.MustNew(score.Config{})
	m := d.AddMeasure()
	fill(t, d, m, "C5", "4")

	e := NewEngine()
	lay, err := e.Layout(d, 600)
	require.NoError(t, err)
	require.Len(t, lay.Rows[0].Measures[0].Columns, 1)

	fill(t, d, m, "D5", "4", "E5", "4", "F5", "4")
	_, err = playback.Perform(d)
	require.NoError(t, err)
	require.False(t, d.Dirty(), "playback flushed the edit")

	lay, err = e.Layout(d, 600)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Sized())
	assert.Len(t, lay.Rows[0].Measures[0].Columns, 4)

	fresh, err := NewEngine().Layout(d, 600)
	require.NoError(t, err)
	assert.Equal(t, fresh.Rows[0].Measures[0].Columns, lay.Rows[0].Measures[0].Columns)
}

func TestLayoutBeamsAndFlags(t *testing.T) {
	d := score.MustNew(score.Config{})
	m1 := d.AddMeasure()
	fill(t, d, m1, "C5", "8", "D5", "8", "E5", "8", "F5", "8", "G4", "8", "A4", "8", "B4", "8", "C5", "8")
	m2 := d.AddMeasure()
	fill(t, d, m2, "C5", "8", "r", "8", "r", "4", "r", "2")

	lay, err := NewEngine().Layout(d, 800)
	require.NoError(t, err)

	assert.Len(t, shapesOf(lay, "beam"), 4, "eight eighths beam in pairs")
	assert.Len(t, shapesOf(lay, "stem"), 9)
	assert.Len(t, shapesOf(lay, "flag"), 1, "the lone eighth keeps its flag")
	assert.Len(t, shapesOf(lay, "notehead"), 9)
	assert.Len(t, shapesOf(lay, "rest"), 3)
}

func TestLayoutTupletBracket(t *testing.T) {
	d := score.MustNew(score.Config{})
	m := d.AddMeasure()
	fill(t, d, m, "C5", "4t", "D5", "4t", "E5", "4t", "r", "2")

	lay, err := NewEngine().Layout(d, 600)
	require.NoError(t, err)
	assert.Len(t, shapesOf(lay, "tuplet-bracket"), 4)
	nums := shapesOf(lay, "tuplet")
	require.Len(t, nums, 1)
	assert.Equal(t, "3", nums[0].Text)
}

func TestLayoutRowAlignedFloats(t *testing.T) {
	d := score.MustNew(score.Config{})
	m1 := d.AddMeasure()
	fill(t, d, m1, "C7", "1")
	m2 := d.AddMeasure()
	fill(t, d, m2, "C5", "1")

	_, err := d.AddLabel(m1, score.LabelOptions{Kind: score.ChordLabel, Text: "C"})
	require.NoError(t, err)
	_, err = d.AddLabel(m2, score.LabelOptions{Kind: score.ChordLabel, Text: "G"})
	require.NoError(t, err)
	_, err = d.AddLabel(m2, score.LabelOptions{Text: "do"})
	require.NoError(t, err)
	_, err = d.AddFermata(m1, score.FermataOptions{})
	require.NoError(t, err)

	lay, err := NewEngine().Layout(d, 600)
	require.NoError(t, err)

	labels := shapesOf(lay, "label")
	require.Len(t, labels, 3)
	byText := make(map[string]Shape)
	for _, s := range labels {
		byText[s.Text] = s
	}
	assert.Equal(t, byText["C"].Points[0].Y, byText["G"].Points[0].Y, "chord labels share one row-wide Y")
	staff := lay.Rows[0].Lines[0]
	assert.Greater(t, byText["do"].Box.Top, staff.Bottom, "note labels sit below")

	var fermataTop float64
	for i, s := range shapesOf(lay, "fermata") {
		if i == 0 || s.Bounds().Top < fermataTop {
			fermataTop = s.Bounds().Top
		}
	}
	assert.Less(t, byText["C"].Box.Bottom, fermataTop, "later groups stack outside earlier ones")
}

func TestLayoutExtension(t *testing.T) {
	d := score.MustNew(score.Config{})
	m1 := d.AddMeasure()
	quarters(t, d, m1)
	m2 := d.AddMeasure()
	quarters(t, d, m2)
	_, err := d.AddAnnotation(m1, score.AnnotationOptions{
		Context: score.Dynamics, Text: "cresc.", Extension: score.Unbounded,
	})
	require.NoError(t, err)

	lay, err := NewEngine().Layout(d, 800)
	require.NoError(t, err)

	dashes := shapesOf(lay, "extension")
	require.Len(t, dashes, 2, "one dashed segment per measure")
	for _, s := range dashes {
		assert.True(t, s.Dash)
		assert.Equal(t, dashes[0].Points[0].Y, s.Points[0].Y)
	}
	text := shapesOf(lay, "annotation")
	require.Len(t, text, 1)
	assert.Greater(t, text[0].Box.Top, lay.Rows[0].Lines[0].Bottom, "dynamics default below")
	assert.Greater(t, dashes[0].Points[0].X, text[0].Box.Right)
}

func TestPick(t *testing.T) {
	d := score.MustNew(score.Config{})
	m := d.AddMeasure()
	e5 := d.Notes.MustLookup("E5")
	quarter := theory.NewDuration(theory.Quarter)
	upper, err := d.AddNote(m, 0, e5, quarter, score.NoteOptions{})
	require.NoError(t, err)
	lower, err := d.AddNote(m, 1, e5, quarter, score.NoteOptions{})
	require.NoError(t, err)

	lay, err := NewEngine().Layout(d, 600)
	require.NoError(t, err)

	var head Rect
	for _, h := range lay.Hits {
		if h.Object.Kind == NoteObject && h.Object.Symbol == upper {
			head = h.Box
		}
	}
	require.False(t, head.Empty())
	x, y := head.CenterX(), head.CenterY()

	objs := lay.Pick(x, y)
	require.NotEmpty(t, objs)
	assert.Equal(t, NoteObject, objs[0].Kind)
	assert.Equal(t, MeasureObject, objs[len(objs)-1].Kind)

	first, ok := lay.PickObject(x, y, nil)
	require.True(t, ok)
	assert.Equal(t, upper, first.Symbol)

	last, ok := lay.PickObject(x, y, func(c []Object) Object { return c[len(c)-1] })
	require.True(t, ok)
	assert.Equal(t, lower, last.Symbol)

	pos, ok := lay.PickStaffPosition(x, y)
	require.True(t, ok)
	assert.Equal(t, m, pos.Measure)
	assert.Equal(t, e5.DiatonicID(), pos.Diatonic)
	assert.Equal(t, theory.E, pos.Note.Letter)
	assert.Equal(t, d.Symbol(upper).Column, pos.Column)

	_, ok = lay.PickObject(-100, -100, nil)
	assert.False(t, ok)
}

func TestLayoutTabFrets(t *testing.T) {
	d := score.MustNew(score.Config{Lines: score.PresetTrebleTab})
	m := d.AddMeasure()
	fill(t, d, m, "E4", "2", "A4", "2")

	lay, err := NewEngine().Layout(d, 600)
	require.NoError(t, err)
	frets := shapesOf(lay, "fret")
	require.Len(t, frets, 2)
	assert.Equal(t, "0", frets[0].Text)
	assert.Equal(t, "5", frets[1].Text)
	require.Len(t, lay.Rows[0].Lines, 2)
}
