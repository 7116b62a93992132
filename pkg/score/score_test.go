package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

func dur(t *testing.T, s string) theory.Duration {
	t.Helper()
	d, err := theory.ParseDuration(s)
	require.NoError(t, err)
	return d
}

// fill adds one note per entry to voice 0 of m; "r" adds a rest.
func fill(t *testing.T, d *Document, m MeasureID, spec ...string) []SymbolID {
	t.Helper()
	var ids []SymbolID
	for i := 0; i < len(spec); i += 2 {
		var (
			id  SymbolID
			err error
		)
		if spec[i] == "r" {
			id, err = d.AddRest(m, 0, dur(t, spec[i+1]), RestOptions{})
		} else {
			id, err = d.AddNote(m, 0, d.Notes.MustLookup(spec[i]), dur(t, spec[i+1]), NoteOptions{})
		}
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func flush(t *testing.T, d *Document) Changes {
	t.Helper()
	ch, err := d.Flush()
	require.NoError(t, err)
	return ch
}

func TestCompleteRests(t *testing.T) {
	tests := []struct {
		name  string
		time  theory.TimeSignature
		notes []string
		rests []string
	}{
		{name: "empty 4/4", time: theory.CommonTime, rests: []string{"1"}},
		{name: "empty 3/4", time: theory.TimeSignature{Beats: 3, BeatType: 4}, rests: []string{"2."}},
		{name: "after quarter", time: theory.CommonTime, notes: []string{"C4", "4"}, rests: []string{"2."}},
		{name: "after eighth", time: theory.CommonTime, notes: []string{"C4", "8"}, rests: []string{"2", "4."}},
		{name: "full", time: theory.CommonTime, notes: []string{"C4", "1"}},
		{name: "6/8 after eighth", time: theory.TimeSignature{Beats: 6, BeatType: 8}, notes: []string{"C4", "8"}, rests: []string{"2", "8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MustNew(Config{})
			m := d.AddMeasure()
			require.NoError(t, d.SetTimeSignature(m, tt.time))
			fill(t, d, m, tt.notes...)

			ids, err := d.CompleteRests(m, 0)
			require.NoError(t, err)
			var got []string
			for _, id := range ids {
				got = append(got, d.Symbol(id).Duration.String())
			}
			assert.Equal(t, tt.rests, got)

			ms := d.Measure(m)
			assert.Equal(t, ms.Capacity(), ms.VoiceTicks(0))

			again, err := d.CompleteRests(m, 0)
			require.NoError(t, err)
			assert.Empty(t, again, "completion is idempotent")
			assert.Equal(t, ms.Capacity(), ms.VoiceTicks(0))
		})
	}
}

func TestAddValidation(t *testing.T) {
	d := MustNew(Config{})
	m := d.AddMeasure()
	c4 := d.Notes.MustLookup("C4")

	_, err := d.AddNote(m, MaxVoices, c4, dur(t, "4"), NoteOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidVoice))

	_, err = d.AddNote(m, -1, c4, dur(t, "4"), NoteOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidVoice))

	_, err = d.AddNote(m, 0, theory.Note{Letter: 9, Octave: 4}, dur(t, "4"), NoteOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidNote))

	_, err = d.AddNote(m, 0, c4, theory.Duration{Length: 5}, NoteOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidDuration))

	fill(t, d, m, "C4", "1")
	_, err = d.AddNote(m, 0, c4, dur(t, "4"), NoteOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeMeasureOverflow))

	_, err = d.AddNote(MeasureID(42), 0, c4, dur(t, "4"), NoteOptions{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestChordIsSortedAndDeduplicated(t *testing.T) {
	d := MustNew(Config{})
	m := d.AddMeasure()
	n := d.Notes.MustLookup
	id, err := d.AddChord(m, 0, []theory.Note{n("G4"), n("C4"), n("E4"), n("C4")}, dur(t, "1"), NoteOptions{})
	require.NoError(t, err)

	var got []string
	for _, x := range d.Symbol(id).Notes {
		got = append(got, x.Pitch.String())
	}
	assert.Equal(t, []string{"C4", "E4", "G4"}, got)
}

func TestColumnsAreSharedAcrossVoices(t *testing.T) {
	d := MustNew(Config{})
	m := d.AddMeasure()
	fill(t, d, m, "C5", "2", "C5", "2")
	_, err := d.AddNote(m, 1, d.Notes.MustLookup("C4"), dur(t, "4"), NoteOptions{})
	require.NoError(t, err)

	ms := d.Measure(m)
	require.Len(t, ms.Columns, 2)
	first := d.Column(ms.Columns[0])
	assert.Equal(t, 0, first.Position)
	assert.NotEqual(t, NoID, first.Symbols[0])
	assert.NotEqual(t, NoID, first.Symbols[1])

	_, err = d.AddNote(m, 1, d.Notes.MustLookup("C4"), dur(t, "4"), NoteOptions{})
	require.NoError(t, err)
	require.Len(t, ms.Columns, 3)
	assert.Equal(t, []int{0, 192, 384}, []int{
		d.Column(ms.Columns[0]).Position,
		d.Column(ms.Columns[1]).Position,
		d.Column(ms.Columns[2]).Position,
	})
}

func TestSignatureInheritance(t *testing.T) {
	d := MustNew(Config{})
	m1, m2, m3 := d.AddMeasure(), d.AddMeasure(), d.AddMeasure()

	threeFour := theory.TimeSignature{Beats: 3, BeatType: 4}
	require.NoError(t, d.SetTimeSignature(m1, threeFour))
	assert.Equal(t, threeFour, d.Measure(m2).Time)
	assert.Equal(t, threeFour, d.Measure(m3).Time)

	twoFour := theory.TimeSignature{Beats: 2, BeatType: 4}
	require.NoError(t, d.SetTimeSignature(m3, twoFour))
	sixEight := theory.TimeSignature{Beats: 6, BeatType: 8}
	require.NoError(t, d.SetTimeSignature(m1, sixEight))

	assert.Equal(t, sixEight, d.Measure(m2).Time)
	assert.Equal(t, twoFour, d.Measure(m3).Time, "explicit override stops propagation")

	assert.True(t, d.ShowsTime(m1))
	assert.False(t, d.ShowsTime(m2))
	assert.True(t, d.ShowsTime(m3))

	m4 := d.AddMeasure()
	assert.Equal(t, twoFour, d.Measure(m4).Time, "new measures inherit")

	require.NoError(t, d.SetKeySignature(m2, theory.KeySignature{Fifths: -3}))
	assert.Equal(t, 0, d.Measure(m1).Key.Fifths)
	assert.Equal(t, -3, d.Measure(m4).Key.Fifths)

	assert.Error(t, d.SetTimeSignature(m1, theory.TimeSignature{Beats: 3, BeatType: 6}))
	assert.Error(t, d.SetTempo(m1, theory.Tempo{BPM: 0}))
}

func TestTimeSignatureOverflow(t *testing.T) {
	d := MustNew(Config{})
	m1, m2, m3 := d.AddMeasure(), d.AddMeasure(), d.AddMeasure()
	fill(t, d, m2, "C4", "4", "D4", "4", "E4", "4", "F4", "4")
	twoFour := theory.TimeSignature{Beats: 2, BeatType: 4}

	err := d.SetTimeSignature(m1, twoFour)
	assert.True(t, errors.Is(err, errors.ErrCodeMeasureOverflow), "m2 inherits the shorter meter")
	for _, id := range []MeasureID{m1, m2, m3} {
		assert.Equal(t, theory.CommonTime, d.Measure(id).Time)
		assert.False(t, d.Measure(id).TimeSet)
	}

	err = d.SetTimeSignature(m2, twoFour)
	assert.True(t, errors.Is(err, errors.ErrCodeMeasureOverflow))
	assert.Equal(t, 768, d.Measure(m2).VoiceTicks(0))
	assert.Equal(t, 768, d.Measure(m2).Capacity())

	require.NoError(t, d.SetTimeSignature(m2, theory.CommonTime))
	require.NoError(t, d.SetTimeSignature(m1, twoFour), "an explicit meter on m2 shields it")
	assert.Equal(t, 384, d.Measure(m1).Capacity())
	require.NoError(t, d.SetTimeSignature(m3, twoFour), "empty measures accept any meter")
}

func TestRows(t *testing.T) {
	d := MustNew(Config{})
	m1 := d.AddMeasure()
	d.EndRow()
	d.EndRow()
	m2 := d.AddMeasure()
	m3 := d.AddMeasure()

	require.Len(t, d.Rows(), 2)
	assert.Equal(t, []MeasureID{m1}, d.Rows()[0].Measures)
	assert.Equal(t, []MeasureID{m2, m3}, d.Rows()[1].Measures)
	assert.True(t, d.StartsRow(m2))
	assert.False(t, d.StartsRow(m3))
	assert.Equal(t, RowID(1), d.Rows()[0].Next)
	assert.Equal(t, RowID(0), d.Rows()[1].Prev)
}

func TestBeamsFromDocument(t *testing.T) {
	t.Run("four quarters", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		fill(t, d, m, "C4", "4", "D4", "4", "E4", "4", "F4", "4")
		flush(t, d)
		assert.Empty(t, d.Measure(m).Beams)
	})

	t.Run("four eighths", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		ids := fill(t, d, m, "C4", "8", "D4", "8", "E4", "8", "F4", "8")
		_, err := d.CompleteRests(m, 0)
		require.NoError(t, err)
		flush(t, d)

		beams := d.Measure(m).Beams
		require.Len(t, beams, 2)
		assert.Equal(t, ids[:2], beams[0].Symbols)
		assert.Equal(t, ids[2:], beams[1].Symbols)
		assert.Equal(t, 0, d.Symbol(ids[0]).Beam)
		assert.Equal(t, 1, d.Symbol(ids[3]).Beam)
	})

	t.Run("beamed stems agree", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		ids := fill(t, d, m, "G5", "8", "C4", "8")
		flush(t, d)
		require.Len(t, d.Measure(m).Beams, 1)
		assert.Equal(t, StemUp, d.Symbol(ids[0]).Stem)
		assert.Equal(t, StemUp, d.Symbol(ids[1]).Stem)
	})

	t.Run("malformed tuplet", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		fill(t, d, m, "C4", "8/3:2", "C4", "8/3:2", "C4", "4")
		_, err := d.Flush()
		assert.True(t, errors.Is(err, errors.ErrCodeMalformedBeam))
		assert.True(t, d.Dirty())
	})
}

func TestStems(t *testing.T) {
	d := MustNew(Config{})
	m := d.AddMeasure()
	high := fill(t, d, m, "G5", "2", "C4", "2")
	m2 := d.AddMeasure()
	up, err := d.AddNote(m2, 0, d.Notes.MustLookup("C5"), dur(t, "1"), NoteOptions{})
	require.NoError(t, err)
	down, err := d.AddNote(m2, 1, d.Notes.MustLookup("F4"), dur(t, "1"), NoteOptions{})
	require.NoError(t, err)
	m3 := d.AddMeasure()
	forced, err := d.AddNote(m3, 0, d.Notes.MustLookup("C4"), dur(t, "1"), NoteOptions{Stem: StemDown})
	require.NoError(t, err)

	flush(t, d)
	assert.Equal(t, StemDown, d.Symbol(high[0]).Stem)
	assert.Equal(t, StemUp, d.Symbol(high[1]).Stem)
	assert.Equal(t, StemUp, d.Symbol(up).Stem, "voice rule when voices share a staff")
	assert.Equal(t, StemDown, d.Symbol(down).Stem)
	assert.Equal(t, StemDown, d.Symbol(forced).Stem)
}

func TestDisplacement(t *testing.T) {
	d := MustNew(Config{})
	m := d.AddMeasure()
	n := d.Notes.MustLookup
	chord, err := d.AddChord(m, 0, []theory.Note{n("C4"), n("D4"), n("E4")}, dur(t, "2"), NoteOptions{Stem: StemUp})
	require.NoError(t, err)
	_, err = d.AddNote(m, 0, n("C5"), dur(t, "2"), NoteOptions{})
	require.NoError(t, err)
	_, err = d.AddNote(m, 1, n("A4"), dur(t, "2"), NoteOptions{})
	require.NoError(t, err)
	_, err = d.AddNote(m, 1, n("B4"), dur(t, "2"), NoteOptions{})
	require.NoError(t, err)
	flush(t, d)

	shifts := []int{}
	for _, x := range d.Symbol(chord).Notes {
		shifts = append(shifts, x.Shift)
	}
	assert.Equal(t, []int{0, 1, 0}, shifts)

	ms := d.Measure(m)
	assert.False(t, d.Column(ms.Columns[0]).Shift[1])
	second := d.Column(ms.Columns[1])
	assert.True(t, second.Shift[1], "lower voice head of the second shifts right")
	assert.False(t, second.Shift[0])
}

func TestTabStrings(t *testing.T) {
	d := MustNew(Config{Lines: PresetTab})
	m := d.AddMeasure()
	n := d.Notes.MustLookup

	id, err := d.AddChord(m, 0, []theory.Note{n("B3"), n("E4")}, dur(t, "2"), NoteOptions{})
	require.NoError(t, err)
	notes := d.Symbol(id).Notes
	assert.Equal(t, 2, notes[0].String)
	assert.Equal(t, 1, notes[1].String)

	id, err = d.AddNote(m, 0, n("C4"), dur(t, "4"), NoteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Symbol(id).Notes[0].String)

	_, err = d.AddNote(m, 0, n("C4"), dur(t, "4"), NoteOptions{Strings: []int{1}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidNote), "C4 is below the open high E")
}

func TestConnectiveGrowth(t *testing.T) {
	tests := []struct {
		name  string
		notes []string
		opts  ConnectiveOptions
		want  int
	}{
		{"stub tie never grows", []string{"C4", "4", "C4", "4", "C4", "4", "C4", "4"}, ConnectiveOptions{Kind: Tie, Span: SpanStub}, 1},
		{"to measure end", []string{"C4", "4", "C4", "4", "C4", "4", "C4", "4"}, ConnectiveOptions{Kind: Tie, Span: SpanToMeasureEnd}, 1},
		{"tie default count", []string{"C4", "4", "C4", "4", "C4", "4", "C4", "4"}, ConnectiveOptions{Kind: Tie}, 2},
		{"tie long count", []string{"C4", "4", "C4", "4", "C4", "4", "C4", "4"}, ConnectiveOptions{Kind: Tie, Count: 4}, 4},
		{"tie stops at new pitch", []string{"C4", "4", "C4", "4", "D4", "4", "D4", "4"}, ConnectiveOptions{Kind: Tie, Count: 4}, 2},
		{"slur ignores pitch", []string{"C4", "4", "D4", "4", "E4", "4", "F4", "4"}, ConnectiveOptions{Kind: Slur, Count: 3}, 3},
		{"rest stops growth", []string{"C4", "4", "r", "4", "C4", "4", "C4", "4"}, ConnectiveOptions{Kind: Slur, Count: 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MustNew(Config{})
			m := d.AddMeasure()
			ids := fill(t, d, m, tt.notes...)
			cid, err := d.AddConnective(ids[0], tt.opts)
			require.NoError(t, err)
			flush(t, d)
			assert.Len(t, d.Connective(cid).Groups, tt.want)
		})
	}
}

func TestConnectiveSpan(t *testing.T) {
	build := func(t *testing.T, rowBreak bool) *Document {
		d := MustNew(Config{})
		var first SymbolID
		for i, p := range []string{"C4", "D4", "E4"} {
			if i == 2 && rowBreak {
				d.EndRow()
			}
			m := d.AddMeasure()
			ids := fill(t, d, m, p, "1")
			if i == 0 {
				first = ids[0]
			}
		}
		_, err := d.AddConnective(first, ConnectiveOptions{Kind: Slur, Count: 3})
		require.NoError(t, err)
		return d
	}

	t.Run("two barlines in one row", func(t *testing.T) {
		_, err := build(t, false).Flush()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeConnectiveSpan))
	})

	t.Run("row break in between", func(t *testing.T) {
		d := build(t, true)
		flush(t, d)
		assert.Len(t, d.Connective(0).Groups, 3)
	})

	t.Run("one barline", func(t *testing.T) {
		d := MustNew(Config{})
		m1 := d.AddMeasure()
		ids := fill(t, d, m1, "C4", "2", "C4", "2")
		m2 := d.AddMeasure()
		fill(t, d, m2, "C4", "1")
		_, err := d.AddConnective(ids[1], ConnectiveOptions{Kind: Tie})
		require.NoError(t, err)
		flush(t, d)
	})

	t.Run("rest start rejected", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		ids := fill(t, d, m, "r", "1")
		_, err := d.AddConnective(ids[0], ConnectiveOptions{})
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	})
}

func TestConnectiveSegments(t *testing.T) {
	t.Run("tie across a row break splits", func(t *testing.T) {
		d := MustNew(Config{})
		m1 := d.AddMeasure()
		ids := fill(t, d, m1, "C4", "1")
		d.EndRow()
		m2 := d.AddMeasure()
		fill(t, d, m2, "C4", "1")
		cid, err := d.AddConnective(ids[0], ConnectiveOptions{Kind: Tie})
		require.NoError(t, err)
		flush(t, d)

		segs := d.Segments(cid)
		require.Len(t, segs, 2)
		assert.Equal(t, EndRow, segs[0].ToKind)
		assert.Equal(t, m1, segs[0].Owner)
		assert.Equal(t, StartRow, segs[1].FromKind)
		assert.Equal(t, m2, segs[1].Owner)
		assert.Equal(t, RowID(1), segs[1].Row)
	})

	t.Run("tie without a shared string is omitted on tab", func(t *testing.T) {
		d := MustNew(Config{Lines: PresetTrebleTab})
		m := d.AddMeasure()
		c4 := d.Notes.MustLookup("C4")
		a, err := d.AddNote(m, 0, c4, dur(t, "2"), NoteOptions{Strings: []int{2}})
		require.NoError(t, err)
		_, err = d.AddNote(m, 0, c4, dur(t, "2"), NoteOptions{Strings: []int{3}})
		require.NoError(t, err)
		cid, err := d.AddConnective(a, ConnectiveOptions{Kind: Tie})
		require.NoError(t, err)
		flush(t, d)

		segs := d.Segments(cid)
		require.Len(t, segs, 1)
		assert.Equal(t, 0, segs[0].Line)
	})

	t.Run("chord tie splits sides", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		n := d.Notes.MustLookup
		chord := []theory.Note{n("C4"), n("E4"), n("G4")}
		a, err := d.AddChord(m, 0, chord, dur(t, "2"), NoteOptions{})
		require.NoError(t, err)
		_, err = d.AddChord(m, 0, chord[:2], dur(t, "2"), NoteOptions{})
		require.NoError(t, err)
		cid, err := d.AddConnective(a, ConnectiveOptions{Kind: Tie})
		require.NoError(t, err)
		flush(t, d)

		segs := d.Segments(cid)
		require.Len(t, segs, 2, "only shared pitches are tied")
		assert.False(t, segs[0].Above)
		assert.True(t, segs[1].Above)
	})

	t.Run("stub", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		ids := fill(t, d, m, "C4", "1")
		cid, err := d.AddConnective(ids[0], ConnectiveOptions{Kind: Tie, Span: SpanStub})
		require.NoError(t, err)
		flush(t, d)
		segs := d.Segments(cid)
		require.Len(t, segs, 1)
		assert.Equal(t, EndStub, segs[0].ToKind)
	})
}

func TestConnectivePlacement(t *testing.T) {
	tests := []struct {
		name      string
		pitch     string
		placement Placement
		above     bool
		tip       bool
	}{
		{"auto stem up goes below", "C4", PlaceAuto, false, false},
		{"auto stem down goes above", "A5", PlaceAuto, true, false},
		{"explicit above", "C4", PlaceAbove, true, false},
		{"stem tip", "C4", PlaceStemTip, true, true},
		{"center high", "D5", PlaceCenter, true, false},
		{"center low", "E4", PlaceCenter, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := MustNew(Config{})
			m := d.AddMeasure()
			ids := fill(t, d, m, tt.pitch, "2", tt.pitch, "2")
			cid, err := d.AddConnective(ids[0], ConnectiveOptions{Kind: Slur, Placement: tt.placement})
			require.NoError(t, err)
			flush(t, d)
			c := d.Connective(cid)
			assert.Equal(t, tt.above, c.Above)
			assert.Equal(t, tt.tip, c.AtTip)
		})
	}
}

func TestExtension(t *testing.T) {
	quarters := []string{"C4", "4", "D4", "4", "E4", "4", "F4", "4"}

	t.Run("open extension stops at section end", func(t *testing.T) {
		d := MustNew(Config{})
		m1 := d.AddMeasure()
		fill(t, d, m1, quarters...)
		require.NoError(t, d.EndSection(m1))
		m2 := d.AddMeasure()
		fill(t, d, m2, quarters...)

		fid, err := d.AddAnnotation(m1, AnnotationOptions{Context: Dynamics, Text: "cresc.", Extension: Unbounded})
		require.NoError(t, err)
		flush(t, d)

		r := d.Float(fid).Range
		assert.Equal(t, d.Measure(m1).LastColumn(), r.End)
		assert.Len(t, r.Columns, 4)
		assert.Equal(t, ColumnID(NoID), r.Break)
	})

	t.Run("open extension crosses plain barlines", func(t *testing.T) {
		d := MustNew(Config{})
		m1 := d.AddMeasure()
		fill(t, d, m1, quarters...)
		m2 := d.AddMeasure()
		fill(t, d, m2, quarters...)

		fid, err := d.AddAnnotation(m1, AnnotationOptions{Position: 384, Context: TempoContext, Text: "rit.", Extension: Unbounded})
		require.NoError(t, err)
		flush(t, d)

		r := d.Float(fid).Range
		assert.Equal(t, d.Measure(m2).LastColumn(), r.End)
		assert.Equal(t, []MeasureID{m1, m2}, r.Measures(d))
	})

	t.Run("skipped empty measure ending a section breaks", func(t *testing.T) {
		d := MustNew(Config{})
		m1 := d.AddMeasure()
		fill(t, d, m1, quarters...)
		empty := d.AddMeasure()
		require.NoError(t, d.EndSection(empty))
		d.AddMeasure()
		m4 := d.AddMeasure()
		fill(t, d, m4, quarters...)

		fid, err := d.AddAnnotation(m1, AnnotationOptions{Context: Dynamics, Text: "cresc.", Extension: Unbounded})
		require.NoError(t, err)
		flush(t, d)

		r := d.Float(fid).Range
		assert.Equal(t, d.Measure(m1).LastColumn(), r.End)
		assert.Equal(t, []MeasureID{m1}, r.Measures(d))
	})

	t.Run("finite budget", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		ids := fill(t, d, m, quarters...)
		fid, err := d.AddAnnotation(m, AnnotationOptions{Context: Dynamics, Text: "dim.", Extension: 384})
		require.NoError(t, err)
		flush(t, d)

		r := d.Float(fid).Range
		assert.Equal(t, []ColumnID{d.Symbol(ids[0]).Column, d.Symbol(ids[1]).Column}, r.Columns)
	})

	t.Run("same context annotation breaks", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		ids := fill(t, d, m, quarters...)
		fid, err := d.AddAnnotation(m, AnnotationOptions{Context: Dynamics, Text: "cresc.", Extension: Unbounded})
		require.NoError(t, err)
		_, err = d.AddAnnotation(m, AnnotationOptions{Position: 384, Context: TempoContext, Text: "rit."})
		require.NoError(t, err)
		_, err = d.AddAnnotation(m, AnnotationOptions{Position: 576, Context: Dynamics, Text: "f"})
		require.NoError(t, err)
		flush(t, d)

		r := d.Float(fid).Range
		assert.Len(t, r.Columns, 3)
		assert.Equal(t, d.Symbol(ids[3]).Column, r.Break)
		assert.Equal(t, "f", r.BreakText)
	})

	t.Run("no anchor", func(t *testing.T) {
		d := MustNew(Config{})
		m := d.AddMeasure()
		fill(t, d, m, "C4", "1")

		_, err := d.AddAnnotation(m, AnnotationOptions{Barline: RightBarline, Context: Dynamics, Text: "cresc.", Extension: Unbounded})
		assert.True(t, errors.Is(err, errors.ErrCodeNoExtensionAnchor))

		_, err = d.AddAnnotation(m, AnnotationOptions{Position: 96, Context: Dynamics, Text: "cresc.", Extension: 192})
		assert.True(t, errors.Is(err, errors.ErrCodeNoExtensionAnchor))

		_, err = d.AddAnnotation(m, AnnotationOptions{Text: "legato", Extension: 192})
		assert.True(t, errors.Is(err, errors.ErrCodeNoExtensionAnchor))
	})
}

func TestFloats(t *testing.T) {
	d := MustNew(Config{})
	m := d.AddMeasure()
	ids := fill(t, d, m, "C4", "2", "E4", "2")

	lbl, err := d.AddLabel(m, LabelOptions{Kind: ChordLabel, Text: "Cmaj7", Position: 384})
	require.NoError(t, err)
	f := d.Float(lbl)
	assert.Equal(t, GroupChordLabel, f.Group)
	assert.Equal(t, Above, f.Side)
	assert.Equal(t, d.Symbol(ids[1]).Column, f.Anchor.Column)
	assert.True(t, f.Group.WidensColumn())
	assert.True(t, f.Group.RowAligned())

	_, err = d.AddFermata(m, FermataOptions{Position: 384})
	require.NoError(t, err)
	assert.True(t, d.ColumnFermata(d.Symbol(ids[1]).Column))
	assert.False(t, d.BarlineFermata(m))

	_, err = d.AddFermata(m, FermataOptions{Barline: true})
	require.NoError(t, err)
	assert.True(t, d.BarlineFermata(m))

	_, err = d.AddLabel(m, LabelOptions{Text: ""})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	dyn, err := d.AddAnnotation(m, AnnotationOptions{Context: Dynamics, Text: "p"})
	require.NoError(t, err)
	assert.Equal(t, Below, d.Float(dyn).Side)
	assert.Len(t, d.Annotations(d.Symbol(ids[0]).Column), 1)
}

func TestNavigation(t *testing.T) {
	d := MustNew(Config{})
	m := d.AddMeasure()

	require.NoError(t, d.AddNavigation(m, NavigationOptions{Kind: NavStartRepeat}))
	require.NoError(t, d.AddNavigation(m, NavigationOptions{Kind: NavEndRepeat}))
	require.NoError(t, d.AddNavigation(m, NavigationOptions{Kind: NavEnding, Passages: []int{2, 1}}))
	require.NoError(t, d.AddNavigation(m, NavigationOptions{Kind: NavJump, Jump: DalSegnoAlCoda}))

	nav := d.Measure(m).Nav
	assert.True(t, nav.StartRepeat)
	assert.Equal(t, 2, nav.EndRepeat)
	assert.Equal(t, []int{1, 2}, nav.Ending)
	assert.True(t, nav.Jump.ToSegno())
	assert.True(t, nav.Jump.AlCoda())

	var texts []string
	for _, fid := range d.Measure(m).Floats {
		texts = append(texts, d.Float(fid).Text)
	}
	assert.Equal(t, []string{"1. 2.", "D.S. al Coda"}, texts)

	assert.Error(t, d.AddNavigation(m, NavigationOptions{Kind: NavEndRepeat, Count: 1}))
	assert.Error(t, d.AddNavigation(m, NavigationOptions{Kind: NavEnding}))
	assert.Error(t, d.AddNavigation(m, NavigationOptions{Kind: NavJump}))
}

func TestFlushReportsDirtyMeasures(t *testing.T) {
	d := MustNew(Config{})
	m1 := d.AddMeasure()
	fill(t, d, m1, "C4", "1")
	d.EndRow()
	m2 := d.AddMeasure()
	fill(t, d, m2, "C4", "2")

	ch := flush(t, d)
	assert.Equal(t, []MeasureID{m1, m2}, ch.Measures)
	assert.False(t, d.Dirty())

	ch = flush(t, d)
	assert.True(t, ch.Empty())

	fill(t, d, m2, "D4", "2")
	ch = flush(t, d)
	assert.Equal(t, []MeasureID{m2}, ch.Measures)
	assert.Equal(t, []RowID{1}, ch.Rows)
}

func TestLineGroups(t *testing.T) {
	d := MustNew(Config{Lines: PresetGrand})
	lines := d.Rows()[0].Lines
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Shows(1))
	assert.False(t, lines[0].Shows(2))
	assert.Equal(t, BassClef, lines[1].Clef)

	require.NoError(t, d.RegisterGroup("bass+tab",
		Line{Name: "bass", Kind: Staff, Clef: BassClef},
		Line{Name: "tab", Kind: Tab, Tuning: StandardTuning[2:]},
	))
	assert.Error(t, d.RegisterGroup(PresetTab, Line{Name: "x"}))
	assert.Error(t, d.RegisterGroup("bad", Line{Name: "tab", Kind: Tab}))

	require.NoError(t, d.UseLines("bass+tab"))
	assert.Equal(t, "bass", d.Rows()[0].Lines[0].Name, "empty current row switches")
	assert.Equal(t, []string{"bass+tab"}, d.Groups())
	assert.Error(t, d.UseLines("nope"))

	_, err := NewDocument(Config{Lines: "nope"})
	assert.Error(t, err)
}

func TestNoteTablesAreIndependent(t *testing.T) {
	a, b := MustNew(Config{}), MustNew(Config{})
	a.Notes.MustLookup("C4")
	assert.Equal(t, 1, a.Notes.Len())
	assert.Equal(t, 0, b.Notes.Len())
	assert.NotEqual(t, a.ID, b.ID)
}
