package score

// ExtensionRange is the resolved reach of a continuation line.
type ExtensionRange struct {
	Start   ColumnID
	End     ColumnID
	Columns []ColumnID // Start..End in document order
	// Break is the column whose annotation stopped the line, or NoID.
	Break     ColumnID
	BreakText string
}

// Empty reports whether the range covers nothing.
func (r ExtensionRange) Empty() bool { return len(r.Columns) == 0 }

// Measures returns the measures the range passes through, in order. One
// dashed segment is drawn per measure.
func (r ExtensionRange) Measures(d *Document) []MeasureID {
	var out []MeasureID
	for _, cid := range r.Columns {
		m := d.columns[cid].Measure
		if len(out) == 0 || out[len(out)-1] != m {
			out = append(out, m)
		}
	}
	return out
}

// ResolveExtension computes the columns covered by the continuation line of
// annotation f.
//
// Starting at the anchor column, the line advances one column at a time.
// It stops before a column when a break fires there: reaching it passes a
// measure, empty or not, that ends a section or the song, or carries an end
// repeat or an ending; or the column holds another annotation of the same
// context. A finite length is consumed by the tick distance of each step
// and the line stops once the remainder would drop to zero or below.
func (d *Document) ResolveExtension(f *Float) ExtensionRange {
	r := ExtensionRange{Start: NoID, End: NoID, Break: NoID}
	if f == nil || !f.HasExtension() || f.Anchor.OnBarline() || f.Anchor.Column == NoID {
		return r
	}

	cur := d.columns[f.Anchor.Column]
	r.Start, r.End = cur.ID, cur.ID
	r.Columns = []ColumnID{cur.ID}
	remaining := f.Extension

	for {
		next, gap := d.nextColumn(cur)
		if next == nil {
			break
		}
		if d.breaksBetween(cur, next) {
			break
		}
		if other := d.sameContext(next, f); other != nil {
			r.Break = next.ID
			r.BreakText = other.Text
			break
		}
		if f.Extension != Unbounded {
			if remaining-gap <= 0 {
				break
			}
			remaining -= gap
		}
		r.End = next.ID
		r.Columns = append(r.Columns, next.ID)
		cur = next
	}
	return r
}

// nextColumn returns the column after c in document order and the tick
// distance to it.
func (d *Document) nextColumn(c *Column) (*Column, int) {
	m := d.measures[c.Measure]
	for i, cid := range m.Columns {
		if cid == c.ID && i+1 < len(m.Columns) {
			n := d.columns[m.Columns[i+1]]
			return n, n.Position - c.Position
		}
	}
	gap := m.Capacity() - c.Position
	for n := d.Measure(m.Next); n != nil; n = d.Measure(n.Next) {
		if len(n.Columns) > 0 {
			first := d.columns[n.Columns[0]]
			return first, gap + first.Position
		}
		gap += n.Capacity()
	}
	return nil, 0
}

// breaksBetween reports whether a measure passed on the way from a to b,
// including empty ones, ends a section or the song, or carries an end
// repeat or an ending.
func (d *Document) breaksBetween(a, b *Column) bool {
	for m := d.measures[a.Measure]; m != nil && m.ID != b.Measure; m = d.Measure(m.Next) {
		if m.EndsSection || m.EndsSong || m.Nav.EndRepeat > 0 || len(m.Nav.Ending) > 0 {
			return true
		}
	}
	return false
}

func (d *Document) sameContext(c *Column, f *Float) *Float {
	for _, fid := range c.Floats {
		o := d.floats[fid]
		if o.ID != f.ID && o.Kind == AnnotationFloat && o.Context == f.Context {
			return o
		}
	}
	return nil
}
