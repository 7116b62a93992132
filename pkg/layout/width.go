package layout

const eps = 1e-9

// fitRow stretches a row of measures to width. The width is clamped to the
// row minimum; the surplus beyond the solid areas is shared by all columns
// through one scale factor, which is returned.
func fitRow(sizes []measureSize, m Metrics, width float64) float64 {
	var solid, content float64
	for _, s := range sizes {
		solid += s.LeftSolid + s.RightSolid
		content += s.Content(m)
	}
	if content < eps {
		return 1
	}
	target := max(width, solid+content)
	return (target - solid) / content
}

// placeRow assigns X coordinates to measures and columns, starting at x0.
func placeRow(sizes []measureSize, m Metrics, scale, x0 float64) []MeasureLayout {
	out := make([]MeasureLayout, len(sizes))
	x := x0
	for i, s := range sizes {
		ml := MeasureLayout{Box: Rect{Left: x}}
		x += s.LeftSolid
		ml.ContentLeft = x
		if len(s.Columns) == 0 {
			x += m.EmptyMeasure * scale
		}
		for _, c := range s.Columns {
			cl := ColumnLayout{
				Column:   c.ID,
				Position: c.Position,
				X:        x + c.Left*scale,
				Left:     c.Left * scale,
				Right:    c.Right * scale,
			}
			ml.Columns = append(ml.Columns, cl)
			x += (c.Left + c.Right) * scale
		}
		ml.ContentRight = x
		x += s.RightSolid
		ml.Box.Right = x
		out[i] = ml
	}
	return out
}
