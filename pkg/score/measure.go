package score

import (
	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Measure owns its rhythm columns and carries signature, navigation and
// section state.
type Measure struct {
	ID    MeasureID
	Index int // position in the document, 0-based
	Row   RowID
	Prev  MeasureID
	Next  MeasureID

	// Columns are ordered by position; positions are unique.
	Columns []ColumnID

	// Resolved signatures. The *Set flags mark explicit overrides; all other
	// values are inherited from the predecessor.
	Key      theory.KeySignature
	Time     theory.TimeSignature
	Tempo    theory.Tempo
	KeySet   bool
	TimeSet  bool
	TempoSet bool

	Nav         Navigation
	EndsSection bool
	EndsSong    bool

	// Derived by Flush.
	Beams []BeamGroup

	Connectives []ConnectiveID // connectives starting in this measure
	Floats      []FloatID

	voiceEnd [MaxVoices]int
	dirty    bool
	rev      uint64
}

// Revision increases each time a flush reports the measure as changed.
func (m *Measure) Revision() uint64 { return m.rev }

// Capacity is the number of ticks the measure holds per voice.
func (m *Measure) Capacity() int { return m.Time.MeasureTicks() }

// VoiceTicks returns the ticks already consumed by voice.
func (m *Measure) VoiceTicks(voice int) int {
	if voice < 0 || voice >= MaxVoices {
		return 0
	}
	return m.voiceEnd[voice]
}

// FirstColumn returns the first column or NoID for an empty measure.
func (m *Measure) FirstColumn() ColumnID {
	if len(m.Columns) == 0 {
		return NoID
	}
	return m.Columns[0]
}

// LastColumn returns the last column or NoID for an empty measure.
func (m *Measure) LastColumn() ColumnID {
	if len(m.Columns) == 0 {
		return NoID
	}
	return m.Columns[len(m.Columns)-1]
}

// ShowsTime reports whether the time signature is drawn at the start of
// the measure: on the first measure and wherever it changes.
func (d *Document) ShowsTime(id MeasureID) bool {
	m := d.Measure(id)
	if m == nil {
		return false
	}
	p := d.Measure(m.Prev)
	return p == nil || p.Time != m.Time
}

// StartsRow reports whether the measure is the first of its row. Clef and
// key signature are drawn there.
func (d *Document) StartsRow(id MeasureID) bool {
	r := d.RowOf(id)
	return r != nil && len(r.Measures) > 0 && r.Measures[0] == id
}

// AddMeasure appends a measure, inheriting signatures from its predecessor.
// It starts a new row if the previous one was ended with [Document.EndRow].
func (d *Document) AddMeasure() MeasureID {
	r := d.currentRow()
	if d.rowClosed {
		r = d.newRow()
	}
	m := &Measure{
		ID:    MeasureID(len(d.measures)),
		Index: len(d.measures),
		Row:   r.ID,
		Prev:  NoID,
		Next:  NoID,
		Time:  theory.CommonTime,
		Tempo: theory.DefaultTempo,
	}
	if n := len(d.measures); n > 0 {
		prev := d.measures[n-1]
		prev.Next = m.ID
		m.Prev = prev.ID
		m.Key, m.Time, m.Tempo = prev.Key, prev.Time, prev.Tempo
	}
	d.measures = append(d.measures, m)
	r.Measures = append(r.Measures, m.ID)
	d.touchMeasure(m.ID)
	return m.ID
}

// SetKeySignature overrides the key of measure id and every following
// measure that inherits it.
func (d *Document) SetKeySignature(id MeasureID, k theory.KeySignature) error {
	m, err := d.measureOrErr(id)
	if err != nil {
		return err
	}
	if k.Fifths < -7 || k.Fifths > 7 {
		return errors.New(errors.ErrCodeInvalidSignature, "key with %d fifths", k.Fifths)
	}
	m.Key, m.KeySet = k, true
	d.touchMeasure(id)
	d.propagate(m, func(n *Measure) bool {
		if n.KeySet {
			return false
		}
		n.Key = k
		return true
	})
	return nil
}

// SetTimeSignature overrides the meter of measure id and every following
// measure that inherits it. It fails with MEASURE_OVERFLOW, changing
// nothing, when a voice in any of those measures would no longer fit.
func (d *Document) SetTimeSignature(id MeasureID, t theory.TimeSignature) error {
	m, err := d.measureOrErr(id)
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	capacity := t.MeasureTicks()
	for n := m; n != nil; n = d.Measure(n.Next) {
		if n != m && n.TimeSet {
			break
		}
		for v, end := range n.voiceEnd {
			if end > capacity {
				return errors.New(errors.ErrCodeMeasureOverflow,
					"measure %d voice %d holds %d ticks, %s holds %d", n.Index+1, v, end, t, capacity)
			}
		}
	}
	m.Time, m.TimeSet = t, true
	d.touchMeasure(id)
	d.propagate(m, func(n *Measure) bool {
		if n.TimeSet {
			return false
		}
		n.Time = t
		return true
	})
	return nil
}

// SetTempo overrides the tempo of measure id and every following measure
// that inherits it.
func (d *Document) SetTempo(id MeasureID, t theory.Tempo) error {
	m, err := d.measureOrErr(id)
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	m.Tempo, m.TempoSet = t, true
	d.touchMeasure(id)
	d.propagate(m, func(n *Measure) bool {
		if n.TempoSet {
			return false
		}
		n.Tempo = t
		return true
	})
	return nil
}

// propagate walks forward from m, applying fn and marking measures dirty
// until fn reports an explicit override.
func (d *Document) propagate(m *Measure, fn func(*Measure) bool) {
	for n := d.Measure(m.Next); n != nil; n = d.Measure(n.Next) {
		if !fn(n) {
			return
		}
		d.touchMeasure(n.ID)
	}
}

// EndSection marks the end of a section after measure id.
func (d *Document) EndSection(id MeasureID) error {
	m, err := d.measureOrErr(id)
	if err != nil {
		return err
	}
	m.EndsSection = true
	d.touchMeasure(id)
	return nil
}

// EndSong marks the end of the piece after measure id. Playback stops
// there.
func (d *Document) EndSong(id MeasureID) error {
	m, err := d.measureOrErr(id)
	if err != nil {
		return err
	}
	m.EndsSong = true
	d.touchMeasure(id)
	return nil
}
