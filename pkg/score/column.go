package score

import (
	"slices"

	"github.com/matzehuels/staffline/pkg/theory"
)

// Column is one time slice of a measure. It holds at most one symbol per
// voice.
type Column struct {
	ID       ColumnID
	Measure  MeasureID
	Position int // ticks from the start of the measure
	Symbols  [MaxVoices]SymbolID
	// Shift marks voices whose heads move right by one head width to clear
	// a second formed with another voice on the same staff.
	Shift  [MaxVoices]bool
	Floats []FloatID

	dirty bool
}

// Each calls fn for every symbol in the column in voice order.
func (c *Column) Each(d *Document, fn func(*Symbol)) {
	for _, sid := range c.Symbols {
		if sid != NoID {
			fn(d.symbols[sid])
		}
	}
}

// Empty reports whether the column holds no symbol.
func (c *Column) Empty() bool {
	for _, sid := range c.Symbols {
		if sid != NoID {
			return false
		}
	}
	return true
}

// ColumnAt returns the column of measure m at pos, or nil.
func (d *Document) ColumnAt(m MeasureID, pos int) *Column {
	ms := d.Measure(m)
	if ms == nil {
		return nil
	}
	return d.columnAt(ms, pos, false)
}

// columnAt finds the column at pos, inserting one in order when create is
// set.
func (d *Document) columnAt(m *Measure, pos int, create bool) *Column {
	i, found := slices.BinarySearchFunc(m.Columns, pos, func(cid ColumnID, p int) int {
		return d.columns[cid].Position - p
	})
	if found {
		return d.columns[m.Columns[i]]
	}
	if !create {
		return nil
	}
	c := &Column{ID: ColumnID(len(d.columns)), Measure: m.ID, Position: pos}
	for v := range c.Symbols {
		c.Symbols[v] = NoID
	}
	d.columns = append(d.columns, c)
	m.Columns = slices.Insert(m.Columns, i, c.ID)
	d.touchColumn(c.ID)
	return c
}

// resolveStems sets the stem direction of every auto-stemmed symbol in m.
// When another voice shares the staff the voice rule applies (even voices
// up, odd voices down); otherwise the note farthest from the middle line
// decides.
func (d *Document) resolveStems(m *Measure) {
	lines := d.LinesOf(m.ID)
	shared := d.sharedVoices(m, lines)

	for _, cid := range m.Columns {
		d.columns[cid].Each(d, func(s *Symbol) {
			staff, onStaff := staffFor(lines, s.Voice)
			if s.Kind == Rest {
				s.Stem = voiceStem(s.Voice)
				if s.anchorAuto {
					s.Anchor = restAnchor(staff, onStaff, s.Voice, shared[s.Voice])
				}
				return
			}
			switch {
			case s.StemRequest != StemAuto:
				s.Stem = s.StemRequest
			case !onStaff:
				s.Stem = StemUp
			case shared[s.Voice]:
				s.Stem = voiceStem(s.Voice)
			default:
				s.Stem = stemByPosition(staff, s.Notes)
			}
		})
	}
}

// sharedVoices reports, per voice, whether another voice with symbols in m
// is drawn on the same staff.
func (d *Document) sharedVoices(m *Measure, lines []Line) [MaxVoices]bool {
	var used [MaxVoices]bool
	for v := range used {
		used[v] = m.voiceEnd[v] > 0
	}
	var out [MaxVoices]bool
	for v := range out {
		sv, ok := staffFor(lines, v)
		if !ok || !used[v] {
			continue
		}
		for w := range used {
			if w == v || !used[w] {
				continue
			}
			if sw, ok := staffFor(lines, w); ok && sw.Name == sv.Name {
				out[v] = true
			}
		}
	}
	return out
}

func voiceStem(voice int) StemDirection {
	if voice%2 == 0 {
		return StemUp
	}
	return StemDown
}

func stemByPosition(staff Line, notes []Note) StemDirection {
	mid := staff.MiddleDiatonic()
	far, farDist := 0, -1
	for _, n := range notes {
		dist := abs(n.Pitch.DiatonicID() - mid)
		if dist > farDist {
			far, farDist = n.Pitch.DiatonicID(), dist
		}
	}
	if far >= mid {
		return StemDown
	}
	return StemUp
}

func restAnchor(staff Line, ok bool, voice int, shared bool) theory.Note {
	mid := 5*7 - 1
	if ok {
		mid = staff.MiddleDiatonic()
	}
	if shared {
		if voice%2 == 0 {
			mid += 2
		} else {
			mid -= 2
		}
	}
	return theory.NoteFromDiatonic(mid)
}

// stemForBeam gives every auto-stemmed member of a beam group the
// direction of the note farthest from the middle line across the group.
func (d *Document) stemForBeam(m *Measure, g BeamGroup) {
	lines := d.LinesOf(m.ID)
	var notes []Note
	auto := false
	for _, sid := range g.Symbols {
		s := d.symbols[sid]
		notes = append(notes, s.Notes...)
		if s.StemRequest == StemAuto {
			auto = true
		}
	}
	if !auto || len(notes) == 0 {
		return
	}
	first := d.symbols[g.Symbols[0]]
	staff, ok := staffFor(lines, first.Voice)
	if !ok || d.sharedVoices(m, lines)[first.Voice] {
		return
	}
	dir := stemByPosition(staff, notes)
	for _, sid := range g.Symbols {
		if s := d.symbols[sid]; s.StemRequest == StemAuto {
			s.Stem = dir
		}
	}
}

// displace resolves notehead offsets in every column of m.
//
// Inside a chord, a note a second above its neighbour moves right of an up
// stem; with a down stem the lower note of the pair moves left. Across
// voices on one staff, the voice holding the lower of two heads a second
// apart shifts right.
func (d *Document) displace(m *Measure) {
	lines := d.LinesOf(m.ID)
	for _, cid := range m.Columns {
		c := d.columns[cid]
		c.Shift = [MaxVoices]bool{}
		c.Each(d, func(s *Symbol) {
			if s.Kind == NoteGroup {
				displaceChord(s)
			}
		})

		for v := 0; v < MaxVoices; v++ {
			a := d.Symbol(c.Symbols[v])
			if a == nil || a.Kind != NoteGroup {
				continue
			}
			for w := v + 1; w < MaxVoices; w++ {
				b := d.Symbol(c.Symbols[w])
				if b == nil || b.Kind != NoteGroup {
					continue
				}
				sa, okA := staffFor(lines, v)
				sb, okB := staffFor(lines, w)
				if !okA || !okB || sa.Name != sb.Name {
					continue
				}
				if lower, ok := secondBetween(a, b); ok {
					c.Shift[lower.Voice] = true
				}
			}
		}
	}
}

func displaceChord(s *Symbol) {
	for i := range s.Notes {
		s.Notes[i].Shift = 0
	}
	step := func(i, j int) bool {
		return abs(s.Notes[i].Pitch.DiatonicID()-s.Notes[j].Pitch.DiatonicID()) == 1
	}
	// Clusters zig-zag around the stem: a head only moves when the head it
	// forms the second with stayed put.
	if s.Stem == StemDown {
		for i := len(s.Notes) - 2; i >= 0; i-- {
			if step(i, i+1) && s.Notes[i+1].Shift == 0 {
				s.Notes[i].Shift = -1
			}
		}
		return
	}
	for i := 1; i < len(s.Notes); i++ {
		if step(i, i-1) && s.Notes[i-1].Shift == 0 {
			s.Notes[i].Shift = 1
		}
	}
}

// secondBetween reports whether any heads of a and b lie one step apart and
// returns the symbol holding the lower head.
func secondBetween(a, b *Symbol) (*Symbol, bool) {
	for _, x := range a.Notes {
		for _, y := range b.Notes {
			switch x.Pitch.DiatonicID() - y.Pitch.DiatonicID() {
			case 1:
				return b, true
			case -1:
				return a, true
			}
		}
	}
	return nil, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
