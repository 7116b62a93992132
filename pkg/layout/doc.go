// Package layout computes the 2-D geometry of a score.
//
// Layout runs three ordered passes over a flushed [score.Document]:
//
//  1. Size: every rhythm column gets minimum half-widths from the drawn
//     extents of its symbols (heads, accidentals, dots, flags, tab frets)
//     plus any floating object that widens its column. Every measure adds
//     fixed solid areas on both sides for clef, key and time signatures,
//     barlines and repeat signs.
//  2. Width fit: each row is stretched to the target width. The target is
//     clamped to the row minimum and the surplus beyond the solid areas is
//     distributed over the columns by one linear scale factor per row.
//  3. Vertical floaters: fermatas, labels, annotations, navigation marks
//     and ending brackets are stacked above or below the lines, left to
//     right, group by group. Objects of a row-aligned group share one
//     row-wide extreme Y. An annotation and its continuation line move as
//     one unit.
//
// The result is a [Layout]: a flat display list of [Shape] values in
// document coordinates (Y grows downward) together with hit boxes for
// pointer picking. Drawing the display list is the job of package render.
//
// [Engine] caches the per-measure results of the size pass and only
// recomputes measures reported dirty by [score.Document.Flush].
package layout
