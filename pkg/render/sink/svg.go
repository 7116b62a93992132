package sink

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/staffline/pkg/fonts"
	"github.com/matzehuels/staffline/pkg/layout"
	"github.com/matzehuels/staffline/pkg/render"
)

const hitInteractionCSS = `
    .hit { fill: transparent; stroke: none; }
    .hit:hover { fill: rgba(40, 110, 220, 0.18); }
    text { font-family: ` + fonts.FallbackFontFamily + `; }`

// SVGSurface is a [render.Surface] that writes SVG elements to a buffer.
type SVGSurface struct {
	buf      bytes.Buffer
	measurer layout.TextMeasurer
	color    string
	bg       string
}

// NewSVGSurface returns an empty surface. A nil measurer uses
// [layout.ApproxMeasurer].
func NewSVGSurface(m layout.TextMeasurer) *SVGSurface {
	if m == nil {
		m = layout.ApproxMeasurer{}
	}
	return &SVGSurface{measurer: m, color: "black", bg: "white"}
}

// Bytes returns the elements written so far.
func (s *SVGSurface) Bytes() []byte { return s.buf.Bytes() }

func (s *SVGSurface) MeasureText(text string, size float64) float64 {
	return s.measurer.MeasureText(text, size)
}

func (s *SVGSurface) Line(from, to layout.Point, width float64, dashed bool) {
	dash := ""
	if dashed {
		dash = fmt.Sprintf(` stroke-dasharray="%.1f %.1f"`, width*4, width*4)
	}
	fmt.Fprintf(&s.buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
		from.X, from.Y, to.X, to.Y, s.color, width, dash)
}

func (s *SVGSurface) Bezier(p0, c0, c1, p1 layout.Point, width float64) {
	fmt.Fprintf(&s.buf, `  <path d="M%.2f %.2f C%.2f %.2f %.2f %.2f %.2f %.2f" fill="none" stroke="%s" stroke-width="%.2f" stroke-linecap="round"/>`+"\n",
		p0.X, p0.Y, c0.X, c0.Y, c1.X, c1.Y, p1.X, p1.Y, s.color, width)
}

func (s *SVGSurface) Ellipse(box layout.Rect, fill bool, width float64) {
	f := "none"
	if fill {
		f = s.color
	}
	fmt.Fprintf(&s.buf, `  <ellipse cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`+"\n",
		box.CenterX(), box.CenterY(), box.Width()/2, box.Height()/2, f, s.color, width)
}

func (s *SVGSurface) FillRect(box layout.Rect) { s.rect(box, s.color) }

func (s *SVGSurface) ClearRect(box layout.Rect) { s.rect(box, s.bg) }

func (s *SVGSurface) rect(box layout.Rect, fill string) {
	fmt.Fprintf(&s.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
		box.Left, box.Top, box.Width(), box.Height(), fill)
}

var anchors = map[layout.TextAnchor]string{
	layout.AnchorStart:  "start",
	layout.AnchorMiddle: "middle",
	layout.AnchorEnd:    "end",
}

func (s *SVGSurface) Text(at layout.Point, text string, size float64, anchor layout.TextAnchor, class string) {
	fmt.Fprintf(&s.buf, `  <text class="%s" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="%s" fill="%s">`,
		class, at.X, at.Y, size, anchors[anchor], s.color)
	_ = xml.EscapeText(&s.buf, []byte(text))
	s.buf.WriteString("</text>\n")
}

func (s *SVGSurface) Image(box layout.Rect, name string, svg []byte) {
	fmt.Fprintf(&s.buf, `  <image class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="xMidYMid meet" href="data:image/svg+xml;base64,%s"/>`+"\n",
		name, box.Left, box.Top, box.Width(), box.Height(), base64.StdEncoding.EncodeToString(svg))
}

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background  string
	glyphs      render.GlyphLoader
	interactive bool
	measurer    layout.TextMeasurer
}

// WithBackground fills the page with color before drawing.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithGlyphs replaces the embedded clef glyphs.
func WithGlyphs(g render.GlyphLoader) SVGOption { return func(r *svgRenderer) { r.glyphs = g } }

// WithInteraction adds a transparent, hover-highlighted box over every
// pickable object, tagged with data attributes naming the object.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithMeasurer sets the text measurer of the surface.
func WithMeasurer(m layout.TextMeasurer) SVGOption { return func(r *svgRenderer) { r.measurer = m } }

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l *layout.Layout, opts ...SVGOption) ([]byte, error) {
	r := newSVGRenderer(opts...)
	s := NewSVGSurface(r.measurer)
	if r.background != "" {
		s.bg = r.background
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	if l.Title != "" {
		buf.WriteString("  <title>")
		_ = xml.EscapeText(&buf, []byte(l.Title))
		buf.WriteString("</title>\n")
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	if err := render.Draw(s, l, r.glyphs); err != nil {
		return nil, err
	}
	buf.Write(s.Bytes())

	if r.interactive {
		renderHitBoxes(&buf, l)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{glyphs: fonts.Loader{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderHitBoxes(buf *bytes.Buffer, l *layout.Layout) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", hitInteractionCSS)
	for _, h := range l.Hits {
		if h.Object.Kind == layout.MeasureObject {
			continue
		}
		o := h.Object
		fmt.Fprintf(buf, `  <rect class="hit" data-kind="%s" data-measure="%d" data-symbol="%d" data-note="%d" data-float="%d" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
			o.Kind, o.Measure, o.Symbol, o.Note, o.Float, h.Box.Left, h.Box.Top, h.Box.Width(), h.Box.Height())
	}
}
