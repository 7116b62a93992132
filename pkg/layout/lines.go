package layout

import "github.com/matzehuels/staffline/pkg/score"

// LineGeom places one notation line of a row. Coordinates are relative to
// the row until the row is positioned on the page.
type LineGeom struct {
	Line    score.Line `json:"line"`
	Top     float64    `json:"top"`
	Bottom  float64    `json:"bottom"`
	Spacing float64    `json:"spacing"` // distance between drawn lines
	Unit    float64    `json:"unit"`
}

// Count returns the number of drawn lines: five for a staff, one per string
// for tab.
func (g LineGeom) Count() int {
	if g.Line.Kind == score.Tab {
		return g.Line.Strings()
	}
	return 5
}

// LineY returns the Y of drawn line i, counting from the top.
func (g LineGeom) LineY(i int) float64 { return g.Top + float64(i)*g.Spacing }

// Y returns the Y of a diatonic staff position. Each step is one Unit.
func (g LineGeom) Y(diatonic int) float64 {
	return g.Top + float64(g.Line.TopDiatonic()-diatonic)*g.Unit
}

// Diatonic is the inverse of Y, rounded to the nearest staff position.
func (g LineGeom) Diatonic(y float64) int {
	return g.Line.TopDiatonic() - int(roundHalfUp((y-g.Top)/g.Unit))
}

// StringY returns the Y of tab string s (1 = highest).
func (g LineGeom) StringY(s int) float64 { return g.LineY(s - 1) }

// String is the inverse of StringY, clamped to the line's strings.
func (g LineGeom) String(y float64) int {
	s := int(roundHalfUp((y-g.Top)/g.Spacing)) + 1
	return max(1, min(s, g.Line.Strings()))
}

// stackLines places lines top to bottom starting at y=0.
func stackLines(lines []score.Line, m Metrics) []LineGeom {
	out := make([]LineGeom, len(lines))
	y := 0.0
	for i, l := range lines {
		g := LineGeom{Line: l, Top: y, Spacing: 2 * m.Unit, Unit: m.Unit}
		if l.Kind == score.Tab {
			g.Spacing = m.TabSpacing
		}
		g.Bottom = g.LineY(g.Count() - 1)
		out[i] = g
		y = g.Bottom + m.LineGap
	}
	return out
}

func roundHalfUp(x float64) float64 {
	if x < 0 {
		return -roundHalfUp(-x)
	}
	return float64(int(x + 0.5))
}
