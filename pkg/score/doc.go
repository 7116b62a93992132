// Package score holds the structural model of a score: rows, measures,
// rhythm columns, symbols, connectives, floating objects and navigation
// marks, together with the builder API that creates them.
//
// # Arena
//
// Every object lives in a flat, index-ordered collection owned by the
// [Document]. Objects refer to each other through typed handles
// ([RowID], [MeasureID], [ColumnID], [SymbolID], [ConnectiveID], [FloatID])
// instead of pointers, so the graph has no ownership cycles. [NoID] marks
// an absent reference.
//
// # Building
//
//	doc, _ := score.NewDocument(score.Config{Lines: score.PresetTreble})
//	m := doc.AddMeasure()
//	doc.SetTimeSignature(m, theory.TimeSignature{Beats: 3, BeatType: 4})
//	c4 := doc.Notes.MustLookup("C4")
//	doc.AddNote(m, 0, c4, theory.NewDuration(theory.Quarter), score.NoteOptions{})
//	doc.CompleteRests(m, 0)
//
// Key signature, time signature and tempo are pull-inherited: a measure
// without an explicit value takes its predecessor's, and changing a value
// re-propagates it forward to every inheriting measure.
//
// # Dirty Flags and Flush
//
// Each mutation marks the touched column, its measure, its row and the
// document dirty. [Document.Flush] runs one deterministic pass over the
// dirty subtrees: stem directions, beam groups, notehead displacement,
// connective growth and validation, and extension ranges. It reports the
// measures and rows whose derived state changed so that the layout engine
// can recompute only those.
//
// # Errors
//
// Invariant violations (an invalid voice, a connective spanning too far, an
// extension with no anchor, a malformed tuplet) are returned as coded
// [errors.Error] values and are not retried. Conditions that merely leave
// nothing to draw, such as a tie whose string does not continue on a tab
// line, produce empty results.
package score
