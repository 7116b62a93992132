package layout

// ShapeKind is the closed set of drawing primitives.
type ShapeKind int

const (
	LineShape ShapeKind = iota
	BezierShape
	EllipseShape
	RectShape
	TextShape
	GlyphShape
)

func (k ShapeKind) String() string {
	switch k {
	case LineShape:
		return "line"
	case BezierShape:
		return "bezier"
	case EllipseShape:
		return "ellipse"
	case RectShape:
		return "rect"
	case TextShape:
		return "text"
	case GlyphShape:
		return "glyph"
	}
	return "unknown"
}

// TextAnchor is the horizontal alignment of a text shape relative to its
// origin.
type TextAnchor int

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

// Point is a position in output units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Glyph names understood by the renderers.
const (
	GlyphTrebleClef = "treble-clef"
	GlyphBassClef   = "bass-clef"
)

// Shape is one entry of the display list.
//
// Lines use Points[0..1]; a Bezier uses Points[0] (start), Points[1] and
// Points[2] (controls) and Points[3] (end). Ellipses, rects and glyphs fill
// Box. Text is drawn at Points[0] with its baseline on Y.
type Shape struct {
	Kind   ShapeKind  `json:"kind"`
	Class  string     `json:"class,omitempty"`
	Points []Point    `json:"points,omitempty"`
	Box    Rect       `json:"box"`
	Width  float64    `json:"width,omitempty"`
	Fill   bool       `json:"fill,omitempty"`
	Dash   bool       `json:"dash,omitempty"`
	Erase  bool       `json:"erase,omitempty"` // rect painted in the background color
	Text   string     `json:"text,omitempty"`
	Size   float64    `json:"size,omitempty"`
	Anchor TextAnchor `json:"anchor,omitempty"`
	Glyph  string     `json:"glyph,omitempty"`
}

// Bounds returns an approximate bounding box of the shape. Text boxes are
// derived from Box, which the builder fills from the measured text width.
func (s Shape) Bounds() Rect {
	switch s.Kind {
	case LineShape, BezierShape:
		if len(s.Points) == 0 {
			return Rect{}
		}
		r := Rect{Left: s.Points[0].X, Top: s.Points[0].Y, Right: s.Points[0].X, Bottom: s.Points[0].Y}
		for _, p := range s.Points[1:] {
			r.Left, r.Right = min(r.Left, p.X), max(r.Right, p.X)
			r.Top, r.Bottom = min(r.Top, p.Y), max(r.Bottom, p.Y)
		}
		return r.Inflate(s.Width / 2)
	}
	return s.Box
}

// Translate returns s moved by dx, dy.
func (s Shape) Translate(dx, dy float64) Shape {
	if len(s.Points) > 0 {
		pts := make([]Point, len(s.Points))
		for i, p := range s.Points {
			pts[i] = Point{X: p.X + dx, Y: p.Y + dy}
		}
		s.Points = pts
	}
	s.Box = s.Box.Translate(dx, dy)
	return s
}

func line(class string, x0, y0, x1, y1, w float64) Shape {
	return Shape{Kind: LineShape, Class: class, Points: []Point{{x0, y0}, {x1, y1}}, Width: w}
}

func bezier(class string, p0, c0, c1, p1 Point, w float64) Shape {
	return Shape{Kind: BezierShape, Class: class, Points: []Point{p0, c0, c1, p1}, Width: w}
}

func ellipse(class string, box Rect, fill bool, w float64) Shape {
	return Shape{Kind: EllipseShape, Class: class, Box: box, Fill: fill, Width: w}
}

func rect(class string, box Rect) Shape {
	return Shape{Kind: RectShape, Class: class, Box: box, Fill: true}
}

func glyph(class, name string, box Rect) Shape {
	return Shape{Kind: GlyphShape, Class: class, Glyph: name, Box: box}
}
