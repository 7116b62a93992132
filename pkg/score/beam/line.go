package beam

import "math"

// Stem is one member of a beamed group as seen by the line fitter: the
// horizontal stem position and the Y of the notehead the stem grows from.
// Y grows downward.
type Stem struct {
	X    float64
	Head float64
}

// LineParams controls beam line fitting.
type LineParams struct {
	Up        bool    // stems point up (beam above the heads)
	Length    float64 // default stem length
	MinLength float64 // shortest stem any member may end up with
	MaxRise   float64 // largest vertical difference between the line ends
}

// Line is the outermost beam line of a group.
type Line struct {
	X0, Y0 float64
	X1, Y1 float64
}

// YAt returns the line's Y at x.
func (l Line) YAt(x float64) float64 {
	if l.X1 == l.X0 {
		return l.Y0
	}
	return l.Y0 + (l.Y1-l.Y0)*(x-l.X0)/(l.X1-l.X0)
}

// Slope returns dy/dx.
func (l Line) Slope() float64 {
	if l.X1 == l.X0 {
		return 0
	}
	return (l.Y1 - l.Y0) / (l.X1 - l.X0)
}

// Shift returns the line moved by dy.
func (l Line) Shift(dy float64) Line {
	l.Y0 += dy
	l.Y1 += dy
	return l
}

// FitLine fits the beam line of a group.
//
// The line starts as the segment between the end stems' default tips. Its
// rise is damped by the run so that short groups stay flatter than long
// ones, and capped at MaxRise. The whole line is then moved away from the
// heads until no stem is shorter than MinLength.
func FitLine(stems []Stem, p LineParams) Line {
	if len(stems) == 0 {
		return Line{}
	}
	dir := 1.0
	if p.Up {
		dir = -1
	}
	first, last := stems[0], stems[len(stems)-1]
	t0 := first.Head + dir*p.Length
	t1 := last.Head + dir*p.Length

	run := last.X - first.X
	rise := damp(t1-t0, run, p.MaxRise)
	mid := (t0 + t1) / 2
	l := Line{X0: first.X, Y0: mid - rise/2, X1: last.X, Y1: mid + rise/2}

	// Distance from head to line measured in stem direction; must be at
	// least MinLength everywhere.
	deficit := 0.0
	for _, s := range stems {
		length := dir * (l.YAt(s.X) - s.Head)
		if d := p.MinLength - length; d > deficit {
			deficit = d
		}
	}
	return l.Shift(dir * deficit)
}

// damp reduces rise in proportion to how short run is relative to it.
func damp(rise, run, maxRise float64) float64 {
	if run <= 0 || rise == 0 {
		return 0
	}
	r := rise * run / (run + math.Abs(rise)*4)
	if maxRise > 0 && math.Abs(r) > maxRise {
		r = math.Copysign(maxRise, r)
	}
	return r
}

// Segment is one horizontal piece of beam at a given level. Level 0 is the
// outermost line; deeper levels sit closer to the heads.
type Segment struct {
	Level  int
	X0, X1 float64
	Hook   bool
}

// Segments expands a group's beam counts into drawable pieces. xs holds the
// stem X of every member, hook is the length of a partial beam.
//
// Between two members every level up to the smaller facing count is drawn
// as a full segment. Levels beyond that, present on one side only, become
// hooks pointing toward the neighbour.
func Segments(g Group, xs []float64, hook float64) []Segment {
	n := len(g.Items)
	if n < 2 || len(xs) < n || g.Kind == TupletBracket {
		return nil
	}
	var out []Segment
	for i := 0; i+1 < n; i++ {
		shared := min(g.Right[i], g.Left[i+1])
		for lv := 0; lv < shared; lv++ {
			out = append(out, Segment{Level: lv, X0: xs[i], X1: xs[i+1]})
		}
		for lv := shared; lv < g.Right[i]; lv++ {
			out = append(out, Segment{Level: lv, X0: xs[i], X1: xs[i] + hook, Hook: true})
		}
		for lv := shared; lv < g.Left[i+1]; lv++ {
			out = append(out, Segment{Level: lv, X0: xs[i+1] - hook, X1: xs[i+1], Hook: true})
		}
	}
	return out
}
