package score

import (
	"slices"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// LineKind distinguishes a five-line staff from a tablature line set.
type LineKind int

const (
	Staff LineKind = iota
	Tab
)

func (k LineKind) String() string {
	if k == Tab {
		return "tab"
	}
	return "staff"
}

// Clef selects the pitch mapping of a staff.
type Clef int

const (
	TrebleClef Clef = iota
	BassClef
)

// Line is one notation line of a row: a staff or a tab.
type Line struct {
	Name   string
	Kind   LineKind
	Clef   Clef          // staff only
	Voices []int         // voices drawn on the line; empty means all
	Tuning []theory.Note // tab only, highest string first
}

// MaxFret is the highest fret considered when assigning tab strings.
const MaxFret = 24

// StandardTuning is six-string guitar tuning, highest string first.
var StandardTuning = []theory.Note{
	{Letter: theory.E, Octave: 4},
	{Letter: theory.B, Octave: 3},
	{Letter: theory.G, Octave: 3},
	{Letter: theory.D, Octave: 3},
	{Letter: theory.A, Octave: 2},
	{Letter: theory.E, Octave: 2},
}

// Shows reports whether voice is drawn on the line.
func (l Line) Shows(voice int) bool {
	return len(l.Voices) == 0 || slices.Contains(l.Voices, voice)
}

// TopDiatonic is the diatonic id of the top staff line (F5 treble, A3 bass).
func (l Line) TopDiatonic() int {
	if l.Clef == BassClef {
		return 3*7 + int(theory.A)
	}
	return 5*7 + int(theory.F)
}

// MiddleDiatonic is the diatonic id of the middle staff line.
func (l Line) MiddleDiatonic() int { return l.TopDiatonic() - 4 }

// Strings returns the number of tab strings.
func (l Line) Strings() int { return len(l.Tuning) }

// Fret returns the fret of n on string str (1 = highest), or -1 when the
// note cannot be played there.
func (l Line) Fret(n theory.Note, str int) int {
	if str < 1 || str > len(l.Tuning) {
		return -1
	}
	f := n.MIDI() - l.Tuning[str-1].MIDI()
	if f < 0 || f > MaxFret {
		return -1
	}
	return f
}

// AssignStrings picks a string for every note, keeping explicit choices
// (nonzero entries of strs) and giving each remaining note the highest free
// string it can be fretted on. Notes that fit nowhere get 0.
func (l Line) AssignStrings(notes []theory.Note, strs []int) []int {
	out := make([]int, len(notes))
	used := make(map[int]bool)
	for i := range notes {
		if i < len(strs) && strs[i] > 0 {
			out[i] = strs[i]
			used[strs[i]] = true
		}
	}
	// Highest pitch first so that upper notes claim upper strings.
	order := make([]int, len(notes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return notes[b].MIDI() - notes[a].MIDI() })
	for _, i := range order {
		if out[i] > 0 {
			continue
		}
		for s := 1; s <= len(l.Tuning); s++ {
			if !used[s] && l.Fret(notes[i], s) >= 0 {
				out[i] = s
				used[s] = true
				break
			}
		}
	}
	return out
}

// Line presets accepted by [Config.Lines].
const (
	PresetTreble    = "treble"
	PresetBass      = "bass"
	PresetGrand     = "grand"
	PresetTab       = "tab"
	PresetTrebleTab = "treble+tab"
)

func presets() map[string][]Line {
	return map[string][]Line{
		PresetTreble: {{Name: "treble", Kind: Staff, Clef: TrebleClef}},
		PresetBass:   {{Name: "bass", Kind: Staff, Clef: BassClef}},
		PresetGrand: {
			{Name: "treble", Kind: Staff, Clef: TrebleClef, Voices: []int{0, 1}},
			{Name: "bass", Kind: Staff, Clef: BassClef, Voices: []int{2, 3}},
		},
		PresetTab: {{Name: "tab", Kind: Tab, Tuning: StandardTuning}},
		PresetTrebleTab: {
			{Name: "treble", Kind: Staff, Clef: TrebleClef},
			{Name: "tab", Kind: Tab, Tuning: StandardTuning},
		},
	}
}

// RegisterGroup adds a named line group that rows can later switch to with
// [Document.UseLines]. Presets cannot be redefined.
func (d *Document) RegisterGroup(name string, lines ...Line) error {
	if name == "" || len(lines) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "line group needs a name and at least one line")
	}
	if _, ok := presets()[name]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "line group %q is a preset", name)
	}
	for _, l := range lines {
		if l.Kind == Tab && len(l.Tuning) == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "tab line %q has no tuning", l.Name)
		}
		for _, v := range l.Voices {
			if err := errors.ValidateVoice(v, MaxVoices); err != nil {
				return err
			}
		}
	}
	d.groups[name] = slices.Clone(lines)
	return nil
}

// Groups returns the registered group names in sorted order.
func (d *Document) Groups() []string {
	names := make([]string, 0, len(d.groups))
	for n := range d.groups {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// UseLines selects the lines for rows started from now on. name is a preset
// or a group registered with [Document.RegisterGroup]. If the current row
// has no measures yet it switches too.
func (d *Document) UseLines(name string) error {
	lines, err := d.resolveLines(name)
	if err != nil {
		return err
	}
	d.lines = lines
	if r := d.currentRow(); r != nil && len(r.Measures) == 0 {
		r.Lines = slices.Clone(lines)
		d.touchRow(r.ID)
	}
	return nil
}

func (d *Document) resolveLines(name string) ([]Line, error) {
	if name == "" {
		name = PresetTreble
	}
	if lines, ok := presets()[name]; ok {
		return lines, nil
	}
	if lines, ok := d.groups[name]; ok {
		return slices.Clone(lines), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown line group %q", name)
}

// tabLine returns the first tab line of the row, if any.
func tabLine(lines []Line) (Line, bool) {
	for _, l := range lines {
		if l.Kind == Tab {
			return l, true
		}
	}
	return Line{}, false
}

// staffFor returns the first staff line that shows voice.
func staffFor(lines []Line, voice int) (Line, bool) {
	for _, l := range lines {
		if l.Kind == Staff && l.Shows(voice) {
			return l, true
		}
	}
	return Line{}, false
}
