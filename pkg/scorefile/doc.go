// Package scorefile reads declarative score descriptions.
//
// A score file lists measures in order. Each measure may change the key,
// time signature, tempo or line group, carries its symbols as compact
// per-voice token strings, and lists its navigation marks, annotations,
// labels, fermatas and connectives. Files are TOML or YAML; both decode
// into the same [File] structure, which [Build] turns into a
// [score.Document] through the builder API.
//
// A minimal TOML score:
//
//	title = "Etude"
//	lines = "treble+tab"
//
//	[[measures]]
//	time = "3/4"
//	voices = ["E4:4 G4:4 B4:4"]
//
//	[[measures]]
//	voices = ["C4+E4+G4:2.,arp"]
//	repeat_end = 2
//
// # Symbol tokens
//
// A voice is a whitespace separated list of symbols. A symbol is
// pitch[+pitch...]:duration, or r:duration for a rest, optionally followed
// by flags, each introduced by a comma: stacc, accent, arp, up, down. Durations
// use the note-value syntax of [theory.ParseDuration] ("4", "8.", "8t",
// "4/3:2").
//
// Positions of labels, annotations and fermatas are given in beats of the
// measure's time signature, counting from 0.
package scorefile
