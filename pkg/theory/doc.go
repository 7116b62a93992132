// Package theory provides the music-theory value objects consumed by the
// score engine: notes, rhythmic durations, key and time signatures, and
// tempo.
//
// All types are small immutable values. Durations are measured in ticks,
// with [TicksPerWhole] ticks in a whole note, so every supported note length,
// dot count and triplet ratio maps to an integer tick count.
//
// Note-name parsing is memoized per [NoteTable] instance rather than in a
// package-level cache, so independent documents never share lookup state.
package theory
