package pipeline

import (
	"fmt"

	"github.com/matzehuels/staffline/pkg/layout"
	"github.com/matzehuels/staffline/pkg/render/sink"
)

// RenderLayout writes l in each of formats. MIDI is not a layout format
// and is rejected here.
func RenderLayout(l *layout.Layout, formats []string, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(formats))

	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = sink.RenderSVG(l, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(l, sink.WithSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(l, buildJSONOptions(opts)...)
		default:
			return nil, fmt.Errorf("unsupported layout format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Background != "" {
		out = append(out, sink.WithBackground(opts.Background))
	}
	if opts.Interactive {
		out = append(out, sink.WithInteraction())
	}
	return out
}

func buildJSONOptions(opts Options) []sink.JSONOption {
	var out []sink.JSONOption
	if opts.Path != "" {
		out = append(out, sink.WithJSONSource(opts.Path))
	}
	if opts.Interactive {
		out = append(out, sink.WithJSONHits(), sink.WithJSONShapes())
	}
	return out
}
