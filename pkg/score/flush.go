package score

import (
	"slices"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/score/beam"
	"github.com/matzehuels/staffline/pkg/theory"
)

// BeamGroup is a resolved beam or tuplet group of one voice.
type BeamGroup struct {
	Voice   int
	Kind    beam.Kind
	Symbols []SymbolID
	Left    []int
	Right   []int
	Tuplet  theory.Tuplet
}

// Group converts g back to the engine's form, with member indices
// counting from zero.
func (g BeamGroup) Group() beam.Group {
	idx := make([]int, len(g.Symbols))
	for i := range idx {
		idx[i] = i
	}
	return beam.Group{Kind: g.Kind, Items: idx, Left: g.Left, Right: g.Right, Tuplet: g.Tuplet}
}

// Changes lists what a flush recomputed.
type Changes struct {
	Measures []MeasureID
	Rows     []RowID
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool { return len(c.Measures) == 0 && len(c.Rows) == 0 }

// Flush brings derived state up to date and clears the dirty flags.
//
// For every dirty measure it resolves stems, rebuilds beam groups and
// displaces noteheads. It then regrows and validates every connective and
// re-resolves every extension; measures whose connectives or extensions
// changed are reported as well.
//
// Every reported measure and row gets a new revision, so consumers that
// did not call Flush themselves can still tell what changed.
//
// An error leaves the document dirty.
func (d *Document) Flush() (Changes, error) {
	if !d.dirty {
		return Changes{}, nil
	}

	var dirty []*Measure
	for _, m := range d.measures {
		if m.dirty {
			dirty = append(dirty, m)
		}
	}

	for _, m := range dirty {
		d.resolveStems(m)
		if err := d.rebuildBeams(m); err != nil {
			return Changes{}, err
		}
		d.displace(m)
	}

	extra := make(map[MeasureID]bool)
	for _, c := range d.connectives {
		before := slices.Clone(c.Groups)
		if d.grow(c) {
			for _, sid := range append(before, c.Groups...) {
				extra[d.symbols[sid].Measure] = true
			}
		}
		if err := d.checkSpan(c); err != nil {
			return Changes{}, err
		}
		d.resolveSide(c)
	}

	for _, f := range d.floats {
		if !f.HasExtension() {
			continue
		}
		r := d.ResolveExtension(f)
		if !slices.Equal(r.Columns, f.Range.Columns) || r.BreakText != f.Range.BreakText {
			for _, m := range append(f.Range.Measures(d), r.Measures(d)...) {
				extra[m] = true
			}
		}
		f.Range = r
	}

	for _, m := range d.measures {
		if extra[m.ID] {
			m.dirty = true
			d.rows[m.Row].dirty = true
		}
	}

	var ch Changes
	d.rev++
	for _, m := range d.measures {
		if m.dirty {
			ch.Measures = append(ch.Measures, m.ID)
			m.rev = d.rev
		}
		m.dirty = false
	}
	for _, r := range d.rows {
		if r.dirty {
			ch.Rows = append(ch.Rows, r.ID)
			r.rev = d.rev
		}
		r.dirty = false
	}
	for _, c := range d.columns {
		c.dirty = false
	}
	d.dirty = false
	return ch, nil
}

// rebuildBeams regroups every voice of m.
func (d *Document) rebuildBeams(m *Measure) error {
	m.Beams = m.Beams[:0]
	for v := 0; v < MaxVoices; v++ {
		syms := d.VoiceSymbols(m.ID, v)
		items := make([]beam.Item, len(syms))
		for i, s := range syms {
			s.Beam = NoID
			items[i] = beam.Item{Duration: s.Duration, Rest: s.Kind == Rest}
		}
		groups, err := beam.Build(items, m.Time)
		if err != nil {
			return errors.Wrap(errors.GetCode(err), err, "measure %d voice %d", m.Index+1, v)
		}
		for _, g := range groups {
			bg := BeamGroup{
				Voice:  v,
				Kind:   g.Kind,
				Left:   g.Left,
				Right:  g.Right,
				Tuplet: g.Tuplet,
			}
			for _, i := range g.Items {
				bg.Symbols = append(bg.Symbols, syms[i].ID)
				syms[i].Beam = len(m.Beams)
			}
			m.Beams = append(m.Beams, bg)
			if bg.Kind != beam.TupletBracket {
				d.stemForBeam(m, bg)
			}
		}
	}
	return nil
}
