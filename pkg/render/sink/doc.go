// Package sink provides output format renderers for score layouts.
//
// # Overview
//
// A "sink" transforms a computed [layout.Layout] into a final output format.
// This package provides renderers for:
//
//   - SVG: Scalable vector graphics, optionally with hover hit boxes
//   - JSON: Layout data export for external tools
//   - PDF: Print-ready output (requires rsvg-convert)
//   - PNG: Raster image output (requires rsvg-convert)
//
// # SVG Output
//
// [SVGSurface] implements [render.Surface] on an in-memory buffer.
// [RenderSVG] wraps it and replays a whole layout:
//
//	svg, err := sink.RenderSVG(lay,
//	    sink.WithBackground("#fffdf5"),
//	    sink.WithInteraction(),
//	)
//
// # SVG Options
//
//   - [WithBackground]: Fill the page with a color
//   - [WithGlyphs]: Use a custom clef glyph loader (default: embedded fonts)
//   - [WithInteraction]: Emit transparent hit boxes with hover highlighting
//
// # JSON Output
//
// [RenderJSON] exports rows, measures, columns and the display list, so
// external tools can reproduce or inspect the layout without this module.
//
// [render.Surface]: github.com/matzehuels/staffline/pkg/render.Surface
package sink
