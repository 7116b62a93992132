package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

// ObjectKind classifies pickable objects. Lower values are more specific
// and win when hit boxes overlap.
type ObjectKind int

const (
	NoteObject ObjectKind = iota
	SymbolObject
	FloatObject
	ConnectiveObject
	MeasureObject
)

func (k ObjectKind) String() string {
	switch k {
	case NoteObject:
		return "note"
	case SymbolObject:
		return "symbol"
	case FloatObject:
		return "float"
	case ConnectiveObject:
		return "connective"
	case MeasureObject:
		return "measure"
	}
	return "unknown"
}

// Object identifies something drawn. Unused ids are score.NoID; Note is -1
// unless Kind is NoteObject.
type Object struct {
	Kind       ObjectKind
	Measure    score.MeasureID
	Column     score.ColumnID
	Symbol     score.SymbolID
	Note       int
	Float      score.FloatID
	Connective score.ConnectiveID
	Line       int
}

// Hit is the pickable box of an object.
type Hit struct {
	Box    Rect
	Object Object
}

// Pick returns every object whose box contains the point, most specific
// first. Objects of the same kind keep drawing order.
func (l *Layout) Pick(x, y float64) []Object {
	var out []Object
	for _, h := range l.Hits {
		if h.Box.Contains(x, y) {
			out = append(out, h.Object)
		}
	}
	slices.SortStableFunc(out, func(a, b Object) int { return int(a.Kind) - int(b.Kind) })
	return out
}

// PickObject returns the single object at the point. When several objects
// of the most specific kind overlap, choose picks one of them; a nil choose
// takes the first.
func (l *Layout) PickObject(x, y float64, choose func([]Object) Object) (Object, bool) {
	all := l.Pick(x, y)
	if len(all) == 0 {
		return Object{}, false
	}
	n := 1
	for n < len(all) && all[n].Kind == all[0].Kind {
		n++
	}
	if n == 1 || choose == nil {
		return all[0], true
	}
	return choose(all[:n]), true
}

// StaffPosition is the musical meaning of a point on the lines.
type StaffPosition struct {
	Row     score.RowID
	Line    int
	Measure score.MeasureID
	// Column is the nearest existing column, or NoID in an empty measure.
	Column score.ColumnID
	// Diatonic and Note describe a staff position; String a tab string.
	Diatonic int
	Note     theory.Note
	String   int
}

// PickStaffPosition maps a point to row, line, measure, nearest column and
// staff position or tab string. Points between two lines belong to the
// closer one.
func (l *Layout) PickStaffPosition(x, y float64) (StaffPosition, bool) {
	for _, r := range l.Rows {
		if y < r.Box.Top || y > r.Box.Bottom || len(r.Lines) == 0 {
			continue
		}
		li := nearestLine(r.Lines, y)
		g := r.Lines[li]
		pos := StaffPosition{Row: r.Row, Line: li, Measure: score.NoID, Column: score.NoID}

		for _, ml := range r.Measures {
			if x < ml.Box.Left || x > ml.Box.Right {
				continue
			}
			pos.Measure = ml.Measure
			best := math.Inf(1)
			for _, c := range ml.Columns {
				if d := math.Abs(c.X - x); d < best {
					best, pos.Column = d, c.Column
				}
			}
		}
		if pos.Measure == score.NoID {
			return StaffPosition{}, false
		}
		if g.Line.Kind == score.Tab {
			pos.String = g.String(y)
		} else {
			pos.Diatonic = g.Diatonic(y)
			pos.Note = theory.NoteFromDiatonic(pos.Diatonic)
		}
		return pos, true
	}
	return StaffPosition{}, false
}

func nearestLine(lines []LineGeom, y float64) int {
	best, dist := 0, math.Inf(1)
	for i, g := range lines {
		var d float64
		switch {
		case y < g.Top:
			d = g.Top - y
		case y > g.Bottom:
			d = y - g.Bottom
		}
		if d < dist {
			best, dist = i, d
		}
	}
	return best
}
