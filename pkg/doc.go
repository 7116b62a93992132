// Package pkg provides the core libraries for Staffline music engraving.
//
// # Overview
//
// Staffline turns a score, built in code or decoded from a TOML or YAML
// file, into staff and tablature notation and into a timed performance.
// Both paths share one document model:
//
//	score file ──► [scorefile] ──► [score].Document
//	                                  │
//	                 ┌────────────────┴─────────────────┐
//	                 ▼                                  ▼
//	          [layout].Engine                   [playback].Perform
//	                 │                                  │
//	                 ▼                                  ▼
//	   [render/sink]: SVG, PNG, PDF, JSON     MIDI file, [playback].Player
//
// # Quick Start
//
//	f, _ := scorefile.Load("song.toml")
//	d, _ := scorefile.Build(f, scorefile.BuildOptions{})
//
//	l, _ := layout.NewEngine().Layout(d, 800)
//	svg, _ := sink.RenderSVG(l)
//
//	perf, _ := playback.Perform(d)
//	_ = playback.WriteMIDI(w, perf, playback.MIDIOptions{})
//
// [pipeline] runs the same stages with caching and is what the CLI uses.
//
// # Main Packages
//
// [theory] - Pitches, durations, tuplets, key and time signatures, tempo and
// the note spelling tables.
//
// [score] - The mutable document: rows, measures, rhythm columns, symbols,
// connectives and floating objects. Changes mark measures dirty and
// [score.Document.Flush] brings stems, beams and extensions up to date.
//
// [score/beam] - Beam and tuplet grouping of one voice.
//
// [layout] - Three pass layout (size, width fit, vertical floaters) into a
// display list with hit regions.
//
// [render] - The drawing Surface and glyph loader collaborators and display
// list replay. [render/sink] writes SVG, PNG, PDF and JSON;
// [render/navgraph] draws the repeat and jump structure with Graphviz.
//
// [playback] - Navigation sequencing, dynamics and tempo envelopes, timing,
// MIDI export and a timer driven player.
//
// [cache] - File and null caches for rendered outputs.
//
// [observability] - Hooks for pipeline, playback and cache events.
//
// [theory]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/theory
// [score]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/score
// [score/beam]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/score/beam
// [scorefile]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/scorefile
// [layout]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/render/sink
// [render/navgraph]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/render/navgraph
// [playback]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/playback
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/staffline/pkg/observability
package pkg
