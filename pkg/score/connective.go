package score

import (
	"slices"

	"github.com/matzehuels/staffline/pkg/errors"
)

// ConnectiveKind is the closed set of connective variants.
type ConnectiveKind int

const (
	Tie ConnectiveKind = iota
	Slur
	Slide
)

func (k ConnectiveKind) String() string {
	switch k {
	case Tie:
		return "tie"
	case Slur:
		return "slur"
	case Slide:
		return "slide"
	}
	return "unknown"
}

// SpanKind says how far a connective reaches.
type SpanKind int

const (
	// SpanCount grows over Count note groups, including the first.
	SpanCount SpanKind = iota
	// SpanStub is a single dangling connective on one note group.
	SpanStub
	// SpanToMeasureEnd runs from one note group to the end of its measure.
	SpanToMeasureEnd
)

// Placement is where a connective is drawn relative to its notes.
type Placement int

const (
	PlaceAuto Placement = iota
	PlaceAbove
	PlaceBelow
	PlaceStemTip
	PlaceCenter
)

// ConnectiveOptions configures [Document.AddConnective].
type ConnectiveOptions struct {
	Kind      ConnectiveKind
	Span      SpanKind
	Count     int // SpanCount only; 0 means 2
	Placement Placement
}

// Connective is a tie, slur or slide over consecutive note groups of one
// voice.
type Connective struct {
	ID        ConnectiveID
	Kind      ConnectiveKind
	Span      SpanKind
	Count     int
	Placement Placement

	// Resolved by Flush.
	Groups []SymbolID
	Above  bool // arc side
	AtTip  bool // arc starts at the stem tip instead of the head
	Split  bool // chord ties: upper half above, lower half below
}

// AddConnective attaches a connective to the note group start. It grows
// over following note groups of the same voice during [Document.Flush].
func (d *Document) AddConnective(start SymbolID, opts ConnectiveOptions) (ConnectiveID, error) {
	s := d.Symbol(start)
	if s == nil || s.Kind != NoteGroup {
		return NoID, errors.New(errors.ErrCodeInvalidInput, "connective must start on a note group")
	}
	count := opts.Count
	switch opts.Span {
	case SpanCount:
		if count == 0 {
			count = 2
		}
		if count < 2 {
			return NoID, errors.New(errors.ErrCodeInvalidInput, "connective count %d below 2", count)
		}
	case SpanStub, SpanToMeasureEnd:
		count = 1
	default:
		return NoID, errors.New(errors.ErrCodeInvalidInput, "unknown span kind %d", opts.Span)
	}

	c := &Connective{
		ID:        ConnectiveID(len(d.connectives)),
		Kind:      opts.Kind,
		Span:      opts.Span,
		Count:     count,
		Placement: opts.Placement,
		Groups:    []SymbolID{start},
	}
	d.connectives = append(d.connectives, c)
	m := d.Measure(s.Measure)
	m.Connectives = append(m.Connectives, c.ID)
	d.touchColumn(s.Column)
	return c.ID, nil
}

// grow rebuilds the note group list of c by walking forward from its first
// group. It reports whether the list changed.
func (d *Document) grow(c *Connective) bool {
	first := d.symbols[c.Groups[0]]
	groups := []SymbolID{first.ID}
	if c.Span == SpanCount {
		prev := first
		for len(groups) < c.Count {
			next := d.NextInVoice(prev)
			if next == nil || next.Kind != NoteGroup {
				break
			}
			if c.Kind == Tie && !sharesPitch(prev, next) {
				break
			}
			groups = append(groups, next.ID)
			prev = next
		}
	}
	changed := !slices.Equal(groups, c.Groups)
	c.Groups = groups
	return changed
}

func sharesPitch(a, b *Symbol) bool {
	for _, n := range a.Notes {
		if b.HasPitch(n.Pitch) {
			return true
		}
	}
	return false
}

// checkSpan rejects connectives whose ends lie more than one measure apart
// within a single row.
func (d *Document) checkSpan(c *Connective) error {
	first := d.symbols[c.Groups[0]]
	last := d.symbols[c.Groups[len(c.Groups)-1]]
	a, b := d.Measure(first.Measure), d.Measure(last.Measure)
	if b.Index-a.Index > 1 && a.Row == b.Row {
		return errors.New(errors.ErrCodeConnectiveSpan,
			"%s from measure %d to %d crosses %d barlines without a row break",
			c.Kind, a.Index+1, b.Index+1, b.Index-a.Index)
	}
	return nil
}

// resolveSide fixes the arc side from the first note group.
func (d *Document) resolveSide(c *Connective) {
	first := d.symbols[c.Groups[0]]
	c.AtTip, c.Split = false, false
	switch c.Placement {
	case PlaceAbove:
		c.Above = true
	case PlaceBelow:
		c.Above = false
	case PlaceStemTip:
		c.Above = first.Stem != StemDown
		c.AtTip = true
	case PlaceCenter:
		c.Above = true
		if staff, ok := staffFor(d.LinesOf(first.Measure), first.Voice); ok && len(first.Notes) > 0 {
			c.Above = first.Notes[0].Pitch.DiatonicID() >= staff.MiddleDiatonic()
		}
	default:
		c.Above = first.Stem == StemDown
		c.Split = c.Kind == Tie && len(first.Notes) > 1
	}
}

// EndKind describes one end of a drawn connective segment.
type EndKind int

const (
	// EndNote attaches to a note group.
	EndNote EndKind = iota
	// EndStub is a short dangling end.
	EndStub
	// EndMeasure runs to the end of the owning measure.
	EndMeasure
	// EndRow runs to the end of the row (cross-row first half).
	EndRow
	// StartRow starts at the beginning of the row (cross-row second half).
	StartRow
)

// Segment is one drawn arc or line of a connective on one notation line.
type Segment struct {
	Connective ConnectiveID
	Row        RowID
	Line       int // index into the row's lines
	Owner      MeasureID

	From, To         SymbolID // NoID for open ends
	FromKind, ToKind EndKind
	// Note indexes into the From and To groups; -1 means the whole group.
	FromNote, ToNote int
	Above            bool
}

// Segments returns the drawable pieces of connective id. A piece is only
// produced on lines where both ends remain valid: ties need the same pitch
// (and the same string on tab), slides need the same string on tab, slurs
// accept anything. Pieces crossing a row break are split in two, each owned
// by the measure holding its note end.
func (d *Document) Segments(id ConnectiveID) []Segment {
	c := d.Connective(id)
	if c == nil || len(c.Groups) == 0 {
		return nil
	}

	var out []Segment
	if len(c.Groups) == 1 {
		s := d.symbols[c.Groups[0]]
		end := EndStub
		if c.Span == SpanToMeasureEnd {
			end = EndMeasure
		}
		for li, line := range d.LinesOf(s.Measure) {
			if !line.Shows(s.Voice) {
				continue
			}
			notes := d.connectedNotes(c, s, nil)
			for _, ni := range notes {
				out = append(out, Segment{
					Connective: c.ID, Row: d.Measure(s.Measure).Row, Line: li, Owner: s.Measure,
					From: s.ID, To: NoID, FromKind: EndNote, ToKind: end,
					FromNote: ni, ToNote: -1, Above: d.noteSide(c, s, ni),
				})
			}
		}
		return out
	}

	pairs := make([][2]*Symbol, 0, len(c.Groups)-1)
	if c.Kind == Slur {
		pairs = append(pairs, [2]*Symbol{d.symbols[c.Groups[0]], d.symbols[c.Groups[len(c.Groups)-1]]})
	} else {
		for i := 1; i < len(c.Groups); i++ {
			pairs = append(pairs, [2]*Symbol{d.symbols[c.Groups[i-1]], d.symbols[c.Groups[i]]})
		}
	}

	for _, p := range pairs {
		a, b := p[0], p[1]
		rowA, rowB := d.RowOf(a.Measure), d.RowOf(b.Measure)
		for li, line := range rowA.Lines {
			if !line.Shows(a.Voice) {
				continue
			}
			for _, ni := range d.connectedNotes(c, a, b) {
				nj := -1
				if ni >= 0 && c.Kind == Tie {
					nj = b.noteIndex(a.Notes[ni].Pitch)
				}
				if !validOn(line, c.Kind, a, b, ni, nj) {
					continue
				}
				above := d.noteSide(c, a, ni)
				if rowA.ID == rowB.ID {
					out = append(out, Segment{
						Connective: c.ID, Row: rowA.ID, Line: li, Owner: a.Measure,
						From: a.ID, To: b.ID, FromKind: EndNote, ToKind: EndNote,
						FromNote: ni, ToNote: nj, Above: above,
					})
					continue
				}
				out = append(out, Segment{
					Connective: c.ID, Row: rowA.ID, Line: li, Owner: a.Measure,
					From: a.ID, To: NoID, FromKind: EndNote, ToKind: EndRow,
					FromNote: ni, ToNote: -1, Above: above,
				})
				if lj := lineIndex(rowB.Lines, line.Name); lj >= 0 {
					out = append(out, Segment{
						Connective: c.ID, Row: rowB.ID, Line: lj, Owner: b.Measure,
						From: NoID, To: b.ID, FromKind: StartRow, ToKind: EndNote,
						FromNote: -1, ToNote: nj, Above: above,
					})
				}
			}
		}
	}
	return out
}

// connectedNotes lists the note indices of a that carry a piece. Ties
// connect every pitch shared with b (or every note for a single group);
// slurs and slides are drawn once per group.
func (d *Document) connectedNotes(c *Connective, a, b *Symbol) []int {
	if c.Kind != Tie {
		return []int{-1}
	}
	var out []int
	for i, n := range a.Notes {
		if b == nil || b.HasPitch(n.Pitch) {
			out = append(out, i)
		}
	}
	return out
}

// noteSide returns the arc side for note ni of s.
func (d *Document) noteSide(c *Connective, s *Symbol, ni int) bool {
	if !c.Split || ni < 0 {
		return c.Above
	}
	return ni >= len(s.Notes)/2
}

func validOn(line Line, kind ConnectiveKind, a, b *Symbol, ni, nj int) bool {
	if line.Kind != Tab {
		return true
	}
	switch kind {
	case Tie:
		return ni >= 0 && nj >= 0 && a.Notes[ni].String != 0 && a.Notes[ni].String == b.Notes[nj].String
	case Slide:
		return len(a.Notes) > 0 && len(b.Notes) > 0 && a.Notes[0].String != 0 && a.Notes[0].String == b.Notes[0].String
	}
	return true
}

func lineIndex(lines []Line, name string) int {
	for i, l := range lines {
		if l.Name == name {
			return i
		}
	}
	return -1
}
