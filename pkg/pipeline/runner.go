package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/staffline/pkg/cache"
	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/layout"
	"github.com/matzehuels/staffline/pkg/observability"
	"github.com/matzehuels/staffline/pkg/playback"
	"github.com/matzehuels/staffline/pkg/render/navgraph"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/scorefile"
)

// Runner executes pipeline stages with caching.
//
// The Runner is stateless except for the cache and logger; it does not
// keep documents or layouts between calls, so one Runner may serve
// concurrent calls with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer uses a DefaultKeyer, a nil cache
// disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Source is a loaded score.
type Source struct {
	Document *score.Document
	// Hash is the SHA-256 of the raw source, the root of every cache key.
	Hash string
}

// Execute loads the score and produces every requested format.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	src, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Document:  src.Document,
		ScoreHash: src.Hash,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Measures = len(src.Document.Measures())

	if formats := opts.LayoutFormats(); len(formats) > 0 {
		if err := r.renderStage(ctx, src, formats, opts, result); err != nil {
			return nil, err
		}
	}
	if opts.WantsMIDI() {
		if err := r.midiStage(ctx, src, opts, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *Runner) renderStage(ctx context.Context, src *Source, formats []string, opts Options, result *Result) error {
	var missing []string
	for _, f := range formats {
		if data, ok := r.lookup(ctx, "artifact", r.Keyer.ArtifactKey(src.Hash, opts.ArtifactKeyOpts(f)), opts); ok {
			result.Artifacts[f] = data
			continue
		}
		missing = append(missing, f)
	}
	if len(missing) == 0 {
		result.CacheInfo.RenderHit = true
		r.Logger.Info("rendered outputs", "formats", formats, "cached", true)
		return nil
	}

	layoutStart := time.Now()
	l, err := r.Layout(ctx, src.Document, opts)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Rows = len(l.Rows)

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, l, missing, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	for f, data := range artifacts {
		result.Artifacts[f] = data
		r.store(ctx, "artifact", r.Keyer.ArtifactKey(src.Hash, opts.ArtifactKeyOpts(f)), data, cache.TTLArtifact)
	}
	result.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered outputs", "formats", missing, "duration", result.Stats.RenderTime)
	return nil
}

func (r *Runner) midiStage(ctx context.Context, src *Source, opts Options, result *Result) error {
	key := r.Keyer.MIDIKey(src.Hash, opts.MIDIKeyOpts())
	if data, ok := r.lookup(ctx, "midi", key, opts); ok {
		result.Artifacts[FormatMIDI] = data
		result.CacheInfo.MIDIHit = true
		return nil
	}

	start := time.Now()
	perf, err := r.Perform(ctx, src.Document)
	if err != nil {
		return fmt.Errorf("perform: %w", err)
	}
	var buf bytes.Buffer
	if err := playback.WriteMIDI(&buf, perf, opts.MIDIOptions()); err != nil {
		return fmt.Errorf("midi: %w", err)
	}
	result.Performance = perf
	result.Artifacts[FormatMIDI] = buf.Bytes()
	result.Stats.Steps = len(perf.Steps)
	result.Stats.Seconds = perf.Length
	result.Stats.PerformTime = time.Since(start)
	r.store(ctx, "midi", key, buf.Bytes(), cache.TTLMIDI)
	return nil
}

// Load reads the score named by opts and builds its document.
func (r *Runner) Load(ctx context.Context, opts Options) (*Source, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := opts.Source()
	observability.Pipeline().OnLoadStart(ctx, name)
	start := time.Now()
	src, err := load(opts)
	measures := 0
	if src != nil {
		measures = len(src.Document.Measures())
	}
	observability.Pipeline().OnLoadComplete(ctx, name, measures, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("loaded score", "source", name, "measures", measures, "duration", time.Since(start))
	return src, nil
}

func load(opts Options) (*Source, error) {
	data := []byte(opts.Score)
	format := scorefile.Format(opts.ScoreFormat)
	if opts.Path != "" {
		if err := errors.ValidateScorePath(opts.Path); err != nil {
			return nil, err
		}
		var err error
		if format, err = scorefile.FormatOf(opts.Path); err != nil {
			return nil, err
		}
		if data, err = os.ReadFile(opts.Path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "score file %s", opts.Path)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidScoreFile, err, "read %s", opts.Path)
		}
	}

	f, err := scorefile.Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	d, err := scorefile.Build(f, scorefile.BuildOptions{Lines: opts.Lines})
	if err != nil {
		return nil, err
	}
	return &Source{Document: d, Hash: cache.Hash(data)}, nil
}

// Layout lays d out for opts.Width with metrics derived from opts.Unit.
func (r *Runner) Layout(ctx context.Context, d *score.Document, opts Options) (*layout.Layout, error) {
	opts.SetLayoutDefaults()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	observability.Pipeline().OnLayoutStart(ctx, len(d.Measures()))
	start := time.Now()
	e := layout.NewEngine(layout.WithMetrics(layout.NewMetrics(opts.Unit)))
	l, err := e.Layout(d, opts.Width)
	rows := 0
	if l != nil {
		rows = len(l.Rows)
	}
	observability.Pipeline().OnLayoutComplete(ctx, rows, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("computed layout", "rows", rows, "width", l.Width, "height", l.Height, "duration", time.Since(start))
	return l, nil
}

// Render writes l in each of formats.
func (r *Runner) Render(ctx context.Context, l *layout.Layout, formats []string, opts Options) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	observability.Pipeline().OnRenderStart(ctx, formats)
	start := time.Now()
	artifacts, err := RenderLayout(l, formats, opts)
	observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
	return artifacts, err
}

// Perform sequences d into timed events.
func (r *Runner) Perform(ctx context.Context, d *score.Document) (*playback.Performance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	perf, err := playback.Perform(d)
	if err != nil {
		observability.Playback().OnSequence(ctx, 0, 0, err)
		return nil, err
	}
	observability.Playback().OnSequence(ctx, len(perf.Steps), perf.Length, nil)
	r.Logger.Debug("sequenced score", "steps", len(perf.Steps), "events", len(perf.Events), "seconds", perf.Length)
	return perf, nil
}

// NavGraph renders the navigation graph of the score named by opts.
func (r *Runner) NavGraph(ctx context.Context, opts Options, format string) ([]byte, error) {
	if err := ValidateGraphFormat(format); err != nil {
		return nil, err
	}
	opts.SetRenderDefaults()
	src, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.GraphKey(src.Hash, cache.GraphKeyOpts{Format: format, Detailed: opts.GraphDetailed})
	if data, ok := r.lookup(ctx, "navgraph", key, opts); ok {
		return data, nil
	}

	g, err := navgraph.Build(src.Document)
	if err != nil {
		return nil, err
	}
	dot := navgraph.ToDOT(g, navgraph.Options{Detailed: opts.GraphDetailed})

	var data []byte
	switch format {
	case GraphDOT:
		data = []byte(dot)
	case GraphSVG:
		data, err = navgraph.RenderSVG(dot)
	case GraphPNG:
		data, err = navgraph.RenderPNG(dot, opts.Scale)
	case GraphPDF:
		data, err = navgraph.RenderPDF(dot)
	}
	if err != nil {
		return nil, fmt.Errorf("render navigation graph: %w", err)
	}
	r.store(ctx, "navgraph", key, data, cache.TTLGraph)
	r.Logger.Info("rendered navigation graph", "nodes", len(g.Nodes), "edges", len(g.Edges), "format", format)
	return data, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) lookup(ctx context.Context, kind, key string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "kind", kind, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	r.Logger.Debug("cache hit", "kind", kind)
	return data, true
}

func (r *Runner) store(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}
