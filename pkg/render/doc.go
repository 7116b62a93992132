// Package render draws score layouts.
//
// # Overview
//
// A [layout.Layout] is a flat display list. This package replays it against
// a drawing [Surface], the 2-D collaborator that owns the actual canvas:
//
//	lay, err := layout.NewEngine().Layout(doc, 900)
//	err = render.Draw(surface, lay, fonts.Loader{})
//
// Clef shapes are drawn from glyph assets obtained through a
// [GlyphLoader]. Drawing with a nil surface is a silent no-op.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg); set STAFFLINE_RSVG_CONVERT
// to use another binary. Both the score sinks and the navigation graph use
// them.
//
//	svg, err := sink.RenderSVG(lay)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// Subpackages:
//   - [sink]: SVG surface and output formats (SVG, JSON, PNG, PDF)
//   - [navgraph]: repeat and jump structure as a Graphviz diagram
//
// [sink]: github.com/matzehuels/staffline/pkg/render/sink
// [navgraph]: github.com/matzehuels/staffline/pkg/render/navgraph
package render
