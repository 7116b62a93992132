package sink

import (
	"github.com/matzehuels/staffline/pkg/layout"
	"github.com/matzehuels/staffline/pkg/render"
)

// RasterOption configures PNG and PDF engraving output.
type RasterOption func(*raster)

type raster struct {
	svgOpts []SVGOption
	scale   float64
}

// WithSVGOptions passes options to the SVG pass the page is converted from.
func WithSVGOptions(opts ...SVGOption) RasterOption {
	return func(r *raster) { r.svgOpts = opts }
}

// WithScale sets the zoom of PNG pages; 2 by default. PDF pages are vector
// output and ignore it.
func WithScale(s float64) RasterOption {
	return func(r *raster) { r.scale = s }
}

func newRaster(opts []RasterOption) raster {
	r := raster{scale: 2}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderPNG engraves the layout onto a white page and rasterizes it with
// rsvg-convert.
func RenderPNG(l *layout.Layout, opts ...RasterOption) ([]byte, error) {
	r := newRaster(opts)
	svg, err := RenderSVG(l, append([]SVGOption{WithBackground("white")}, r.svgOpts...)...)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, r.scale)
}

// RenderPDF engraves the layout as a single PDF page.
func RenderPDF(l *layout.Layout, opts ...RasterOption) ([]byte, error) {
	svg, err := RenderSVG(l, newRaster(opts).svgOpts...)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
