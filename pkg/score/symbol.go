package score

import (
	"slices"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// SymbolKind is the closed set of rhythm symbol variants.
type SymbolKind int

const (
	NoteGroup SymbolKind = iota
	Rest
)

func (k SymbolKind) String() string {
	if k == Rest {
		return "rest"
	}
	return "notes"
}

// StemDirection is a requested or resolved stem direction.
type StemDirection int

const (
	StemAuto StemDirection = iota
	StemUp
	StemDown
)

// Note is one pitch of a note group.
type Note struct {
	Pitch theory.Note
	// String is the tab string (1 = highest), 0 when the note has no
	// string on the document's tab line.
	String int
	// Shift is the notehead offset inside a chord: -1 left of the stem,
	// +1 right of it, 0 on the regular side.
	Shift int
}

// Symbol is a note group or a rest. Fields that only apply to one variant
// are zero for the other.
type Symbol struct {
	ID       SymbolID
	Kind     SymbolKind
	Measure  MeasureID
	Column   ColumnID
	Voice    int
	Duration theory.Duration

	// StemRequest is what the caller asked for; Stem is resolved by Flush.
	StemRequest StemDirection
	Stem        StemDirection

	// NoteGroup: ordered by pitch, lowest first, no duplicates.
	Notes    []Note
	Staccato bool
	Accent   bool
	Arpeggio bool

	// Rest: vertical placement.
	Anchor     theory.Note
	anchorAuto bool

	// Beam indexes the measure's Beams, or NoID.
	Beam int
}

// Ticks returns the sounding length.
func (s *Symbol) Ticks() int { return s.Duration.Ticks() }

// HasPitch reports whether the group contains an identically spelled note.
func (s *Symbol) HasPitch(n theory.Note) bool {
	return s.noteIndex(n) >= 0
}

func (s *Symbol) noteIndex(n theory.Note) int {
	for i, x := range s.Notes {
		if x.Pitch.Equal(n) {
			return i
		}
	}
	return -1
}

// NoteOptions configures [Document.AddNote] and [Document.AddChord].
type NoteOptions struct {
	Stem StemDirection
	// Strings holds explicit tab strings per pitch (0 = auto). It is
	// matched to the pitches in the order they were passed.
	Strings  []int
	Staccato bool
	Accent   bool
	Arpeggio bool
}

// RestOptions configures [Document.AddRest].
type RestOptions struct {
	// Anchor places the rest at the given pitch. Nil means the staff middle,
	// moved up or down when voices share a staff.
	Anchor *theory.Note
}

// AddNote appends a single note to voice at the end of what the voice
// already holds in measure m.
func (d *Document) AddNote(m MeasureID, voice int, pitch theory.Note, dur theory.Duration, opts NoteOptions) (SymbolID, error) {
	return d.AddChord(m, voice, []theory.Note{pitch}, dur, opts)
}

// AddChord appends a note group. Pitches are sorted low to high and
// duplicates dropped.
func (d *Document) AddChord(m MeasureID, voice int, pitches []theory.Note, dur theory.Duration, opts NoteOptions) (SymbolID, error) {
	if len(pitches) == 0 {
		return NoID, errors.New(errors.ErrCodeInvalidNote, "chord without notes")
	}
	for _, p := range pitches {
		if _, err := theory.NewNote(p.Letter, p.Accidental, p.Octave); err != nil {
			return NoID, err
		}
	}

	notes := make([]Note, 0, len(pitches))
	for i, p := range pitches {
		n := Note{Pitch: p}
		if i < len(opts.Strings) {
			n.String = opts.Strings[i]
		}
		notes = append(notes, n)
	}
	slices.SortStableFunc(notes, func(a, b Note) int {
		if c := a.Pitch.DiatonicID() - b.Pitch.DiatonicID(); c != 0 {
			return c
		}
		return a.Pitch.MIDI() - b.Pitch.MIDI()
	})
	notes = slices.CompactFunc(notes, func(a, b Note) bool { return a.Pitch.Equal(b.Pitch) })

	if err := d.assignStrings(m, notes); err != nil {
		return NoID, err
	}

	s := &Symbol{
		Kind:        NoteGroup,
		Duration:    dur,
		StemRequest: opts.Stem,
		Notes:       notes,
		Staccato:    opts.Staccato,
		Accent:      opts.Accent,
		Arpeggio:    opts.Arpeggio,
	}
	return d.place(m, voice, s)
}

// AddRest appends a rest to voice.
func (d *Document) AddRest(m MeasureID, voice int, dur theory.Duration, opts RestOptions) (SymbolID, error) {
	s := &Symbol{Kind: Rest, Duration: dur, anchorAuto: opts.Anchor == nil}
	if opts.Anchor != nil {
		s.Anchor = *opts.Anchor
	}
	return d.place(m, voice, s)
}

func (d *Document) assignStrings(m MeasureID, notes []Note) error {
	tab, ok := tabLine(d.LinesOf(m))
	if !ok {
		return nil
	}
	pitches := make([]theory.Note, len(notes))
	strs := make([]int, len(notes))
	for i, n := range notes {
		if n.String < 0 || n.String > tab.Strings() {
			return errors.New(errors.ErrCodeInvalidNote, "string %d out of range for %s", n.String, n.Pitch)
		}
		if n.String > 0 && tab.Fret(n.Pitch, n.String) < 0 {
			return errors.New(errors.ErrCodeInvalidNote, "%s cannot be played on string %d", n.Pitch, n.String)
		}
		pitches[i], strs[i] = n.Pitch, n.String
	}
	for i, s := range tab.AssignStrings(pitches, strs) {
		notes[i].String = s
	}
	return nil
}

// place validates and positions s at the end of voice in measure m.
func (d *Document) place(mid MeasureID, voice int, s *Symbol) (SymbolID, error) {
	m, err := d.measureOrErr(mid)
	if err != nil {
		return NoID, err
	}
	if err := errors.ValidateVoice(voice, MaxVoices); err != nil {
		return NoID, err
	}
	if err := s.Duration.Validate(); err != nil {
		return NoID, err
	}
	pos := m.voiceEnd[voice]
	if pos+s.Ticks() > m.Capacity() {
		return NoID, errors.New(errors.ErrCodeMeasureOverflow,
			"voice %d of measure %d: %d + %d ticks exceed %d", voice, m.Index+1, pos, s.Ticks(), m.Capacity())
	}

	col := d.columnAt(m, pos, true)
	s.ID = SymbolID(len(d.symbols))
	s.Measure = mid
	s.Column = col.ID
	s.Voice = voice
	s.Beam = NoID
	d.symbols = append(d.symbols, s)

	col.Symbols[voice] = s.ID
	m.voiceEnd[voice] = pos + s.Ticks()
	d.touchColumn(col.ID)
	return s.ID, nil
}

// CompleteRests fills the rest of voice in measure m with rests, largest
// value first and preferring a dotted value that fits evenly. A complete
// voice is left untouched.
func (d *Document) CompleteRests(mid MeasureID, voice int) ([]SymbolID, error) {
	m, err := d.measureOrErr(mid)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateVoice(voice, MaxVoices); err != nil {
		return nil, err
	}
	var ids []SymbolID
	for _, dur := range theory.SplitTicks(m.Capacity() - m.voiceEnd[voice]) {
		id, err := d.AddRest(mid, voice, dur, RestOptions{})
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// VoiceSymbols returns the symbols of voice in measure m in position order.
func (d *Document) VoiceSymbols(mid MeasureID, voice int) []*Symbol {
	m := d.Measure(mid)
	if m == nil || voice < 0 || voice >= MaxVoices {
		return nil
	}
	var out []*Symbol
	for _, cid := range m.Columns {
		if sid := d.columns[cid].Symbols[voice]; sid != NoID {
			out = append(out, d.symbols[sid])
		}
	}
	return out
}

// NextInVoice returns the symbol following s in the same voice, crossing
// measure and row boundaries, or nil.
func (d *Document) NextInVoice(s *Symbol) *Symbol {
	m := d.Measure(s.Measure)
	c := d.Column(s.Column)
	idx := slices.Index(m.Columns, c.ID)
	for _, cid := range m.Columns[idx+1:] {
		if sid := d.columns[cid].Symbols[s.Voice]; sid != NoID {
			return d.symbols[sid]
		}
	}
	// Only the directly following measure is searched; a voice that is
	// silent for a whole measure ends the walk.
	if n := d.Measure(m.Next); n != nil {
		for _, cid := range n.Columns {
			if sid := d.columns[cid].Symbols[s.Voice]; sid != NoID {
				return d.symbols[sid]
			}
		}
	}
	return nil
}
