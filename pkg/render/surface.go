package render

import (
	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/layout"
)

// Surface is a 2-D drawing canvas. Coordinates are in layout units with Y
// growing downward.
type Surface interface {
	layout.TextMeasurer

	Line(from, to layout.Point, width float64, dashed bool)
	Bezier(p0, c0, c1, p1 layout.Point, width float64)
	Ellipse(box layout.Rect, fill bool, width float64)
	FillRect(box layout.Rect)
	// ClearRect paints box in the background color.
	ClearRect(box layout.Rect)
	// Text draws s with its baseline at y. The class names the kind of
	// object ("label", "fret", ...) for surfaces that style by class.
	Text(at layout.Point, s string, size float64, anchor layout.TextAnchor, class string)
	// Image draws an SVG glyph scaled into box.
	Image(box layout.Rect, name string, svg []byte)
}

// GlyphLoader provides the SVG source of named glyphs.
type GlyphLoader interface {
	Glyph(name string) ([]byte, error)
}

// Draw replays the display list of l on s. A nil surface or layout draws
// nothing. Glyph shapes are skipped when glyphs is nil.
func Draw(s Surface, l *layout.Layout, glyphs GlyphLoader) error {
	if s == nil || l == nil {
		return nil
	}
	cache := make(map[string][]byte)
	for _, sh := range l.Shapes {
		switch sh.Kind {
		case layout.LineShape:
			if len(sh.Points) < 2 {
				continue
			}
			s.Line(sh.Points[0], sh.Points[1], sh.Width, sh.Dash)
		case layout.BezierShape:
			if len(sh.Points) < 4 {
				continue
			}
			s.Bezier(sh.Points[0], sh.Points[1], sh.Points[2], sh.Points[3], sh.Width)
		case layout.EllipseShape:
			s.Ellipse(sh.Box, sh.Fill, sh.Width)
		case layout.RectShape:
			if sh.Erase {
				s.ClearRect(sh.Box)
			} else {
				s.FillRect(sh.Box)
			}
		case layout.TextShape:
			if len(sh.Points) == 0 {
				continue
			}
			s.Text(sh.Points[0], sh.Text, sh.Size, sh.Anchor, sh.Class)
		case layout.GlyphShape:
			if glyphs == nil {
				continue
			}
			data, ok := cache[sh.Glyph]
			if !ok {
				var err error
				if data, err = glyphs.Glyph(sh.Glyph); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "load glyph %q", sh.Glyph)
				}
				cache[sh.Glyph] = data
			}
			s.Image(sh.Box, sh.Glyph, data)
		}
	}
	return nil
}
