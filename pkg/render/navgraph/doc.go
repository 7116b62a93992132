// Package navgraph renders the playback route through a score as a
// node-link diagram.
//
// # Overview
//
// Every measure becomes a box labelled with its number and navigation
// marks (repeats, endings, segno, coda, fine, jumps). Every transition the
// playback sequencer takes between two measures becomes an arrow, styled by
// kind: plain for moving on to the next measure, dashed for a repeat, bold
// for a jump or an ending skip. Arrow labels list the order in which the
// transitions are taken.
//
// # Usage
//
//	g, err := navgraph.Build(doc)
//	dot := navgraph.ToDOT(g, navgraph.Options{Detailed: true})
//	svg, err := navgraph.RenderSVG(dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package navgraph
