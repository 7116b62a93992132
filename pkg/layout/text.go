package layout

import "unicode/utf8"

// TextMeasurer reports the advance width of text at a font size. Drawing
// surfaces that know their fonts implement it; [ApproxMeasurer] is used
// otherwise.
type TextMeasurer interface {
	MeasureText(text string, size float64) float64
}

// ApproxMeasurer estimates widths from the rune count.
type ApproxMeasurer struct {
	// Advance is the average glyph width as a fraction of the font size.
	Advance float64
}

// MeasureText implements [TextMeasurer].
func (a ApproxMeasurer) MeasureText(text string, size float64) float64 {
	adv := a.Advance
	if adv <= 0 {
		adv = 0.6
	}
	return float64(utf8.RuneCountInString(text)) * size * adv
}

// text builds a text shape and its box. The baseline sits at y.
func (b *rowBuilder) text(class, s string, x, y, size float64, anchor TextAnchor) Shape {
	w := b.e.measurer.MeasureText(s, size)
	left := x
	switch anchor {
	case AnchorMiddle:
		left = x - w/2
	case AnchorEnd:
		left = x - w
	}
	return Shape{
		Kind:   TextShape,
		Class:  class,
		Text:   s,
		Size:   size,
		Anchor: anchor,
		Points: []Point{{x, y}},
		Box:    Rect{Left: left, Top: y - size*0.8, Right: left + w, Bottom: y + size*0.2},
	}
}
