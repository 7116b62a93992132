// Package playback turns a score document into a timed performance and
// plays it.
//
// Playback runs in three stages:
//
//  1. [Sequence] walks the measures the way a player reads them, resolving
//     repeats, endings, segno, coda, fine and the D.C./D.S. jumps into a flat
//     list of [Step] values, one per rhythm column visited.
//  2. Envelopes assign every step a tempo multiplier and a volume: "a tempo"
//     resets the speed, dynamics marks set the volume, and accel., rit.,
//     cresc. and dim. ramp linearly over the columns their continuation
//     line covers.
//  3. Timing converts ticks into seconds and produces the [Event] list: one
//     tone per sounding note, with fermata holds, arpeggio offsets, slur
//     volume, staccato shortening and ties merged into one event.
//
// [Perform] runs all three and returns a [Performance]. A [Player] schedules
// the performance one step at a time with a one-shot timer and calls a
// [Tone] for every event; [WriteMIDI] exports it as a standard MIDI file.
package playback
