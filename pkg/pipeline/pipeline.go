// Package pipeline provides the score pipeline shared by every staffline
// command.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: decode a TOML or YAML score file and build a [score.Document]
//  2. Layout: fit measures into rows for the requested page width
//  3. Render: write the layout as SVG, PNG, PDF or JSON
//  4. Perform: linearize navigation into timed events, exported as MIDI
//
// Rendered artifacts are cached under the SHA-256 of the score source plus
// every option that influences them, so re-running a command on an
// unchanged file skips layout and rendering entirely.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "etude.toml",
//	    Formats: []string{"svg", "mid"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	src, err := runner.Load(ctx, opts)
//	l, err := runner.Layout(ctx, src.Document, opts)
//	perf, err := runner.Perform(ctx, src.Document)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/staffline/pkg/cache"
	"github.com/matzehuels/staffline/pkg/layout"
	"github.com/matzehuels/staffline/pkg/playback"
	"github.com/matzehuels/staffline/pkg/score"
)

// =============================================================================
// Default Values - Single Source of Truth for the CLI
// =============================================================================

const (
	// DefaultWidth is the page width in SVG user units.
	DefaultWidth = 800.0

	// DefaultUnit is half a staff space.
	DefaultUnit = layout.DefaultUnit

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// DefaultBackground fills raster output, which has no transparency
	// in most viewers.
	DefaultBackground = "white"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatMIDI = "mid"
)

// Graph formats for the navigation graph.
const (
	GraphDOT = "dot"
	GraphSVG = "svg"
	GraphPNG = "png"
	GraphPDF = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatMIDI: true,
}

// ValidGraphFormats is the set of supported navigation graph formats.
var ValidGraphFormats = map[string]bool{
	GraphDOT: true,
	GraphSVG: true,
	GraphPNG: true,
	GraphPDF: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the score pipeline. The CLI fills
// it from flags and from the [render] table of staffline.toml.
type Options struct {
	// Load options
	Path        string `json:"path,omitempty" toml:"-"`
	Score       string `json:"score,omitempty" toml:"-"`        // inline score source
	ScoreFormat string `json:"score_format,omitempty" toml:"-"` // "toml" or "yaml", for inline scores
	Lines       string `json:"lines,omitempty" toml:"lines"`    // override of the file's line preset

	// Layout options
	Width float64 `json:"width,omitempty" toml:"width"`
	Unit  float64 `json:"unit,omitempty" toml:"unit"`

	// Render options
	Formats     []string `json:"formats,omitempty" toml:"formats"`
	Background  string   `json:"background,omitempty" toml:"background"`
	Interactive bool     `json:"interactive,omitempty" toml:"interactive"`
	Scale       float64  `json:"scale,omitempty" toml:"scale"`

	// MIDI options
	MIDIChannel uint8 `json:"midi_channel,omitempty" toml:"midi_channel"`
	MIDIProgram uint8 `json:"midi_program,omitempty" toml:"midi_program"`

	// Navigation graph options
	GraphDetailed bool `json:"graph_detailed,omitempty" toml:"graph_detailed"`

	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the built score.
	Document *score.Document

	// ScoreHash is the content hash of the score source.
	ScoreHash string

	// Layout is nil when every layout format came from the cache.
	Layout *layout.Layout

	// Performance is nil unless MIDI was rendered.
	Performance *playback.Performance

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Measures    int
	Rows        int
	Steps       int
	Seconds     float64
	LoadTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
	PerformTime time.Duration
}

// CacheInfo tracks cache hits for each output.
type CacheInfo struct {
	RenderHit bool // every layout format came from cache
	MIDIHit   bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, mid)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGraphFormat checks that a navigation graph format is valid.
func ValidateGraphFormat(format string) error {
	if !ValidGraphFormats[format] {
		return fmt.Errorf("invalid graph format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.MIDIChannel > 15 {
		return fmt.Errorf("midi_channel %d out of range 0-15", o.MIDIChannel)
	}
	if o.MIDIProgram > 127 {
		return fmt.Errorf("midi_program %d out of range 0-127", o.MIDIProgram)
	}
	return nil
}

// ValidateForLoad checks that exactly one score source is set.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.Path == "" && o.Score == "":
		return fmt.Errorf("path or score is required")
	case o.Path != "" && o.Score != "":
		return fmt.Errorf("path and score are mutually exclusive")
	case o.Score != "" && o.ScoreFormat == "":
		return fmt.Errorf("score_format is required for inline scores")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Unit == 0 {
		o.Unit = DefaultUnit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Background == "" && (slices.Contains(o.Formats, FormatPNG) || slices.Contains(o.Formats, FormatPDF)) {
		o.Background = DefaultBackground
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutFormats returns the requested formats that need a layout.
func (o *Options) LayoutFormats() []string {
	var out []string
	for _, f := range o.Formats {
		if f != FormatMIDI {
			out = append(out, f)
		}
	}
	return out
}

// WantsMIDI reports whether MIDI output was requested.
func (o *Options) WantsMIDI() bool { return slices.Contains(o.Formats, FormatMIDI) }

// Source names the score for log lines.
func (o *Options) Source() string {
	if o.Path != "" {
		return o.Path
	}
	return "<inline " + o.ScoreFormat + ">"
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:      format,
		Width:       o.Width,
		Unit:        o.Unit,
		Lines:       o.Lines,
		Background:  o.Background,
		Interactive: o.Interactive,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}

// MIDIKeyOpts returns cache key options for MIDI export.
func (o *Options) MIDIKeyOpts() cache.MIDIKeyOpts {
	return cache.MIDIKeyOpts{Channel: o.MIDIChannel, Program: o.MIDIProgram}
}

// MIDIOptions returns the playback export options.
func (o *Options) MIDIOptions() playback.MIDIOptions {
	return playback.MIDIOptions{Channel: o.MIDIChannel, Program: o.MIDIProgram}
}
