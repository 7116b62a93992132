package playback

import (
	"io"
	"math"
	"slices"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/matzehuels/staffline/pkg/errors"
)

// MIDI export constants. At 60 beats per minute one beat lasts one second,
// so event times in seconds map linearly onto ticks.
const (
	MIDIResolution = 960
	MIDITempo      = 60
)

// MIDIOptions configures [WriteMIDI].
type MIDIOptions struct {
	Channel uint8
	// Program is the General MIDI instrument (0 = acoustic grand piano).
	Program uint8
}

type midiMessage struct {
	tick uint32
	on   bool
	msg  midi.Message
}

// WriteMIDI writes the events of perf as a single-track standard MIDI file.
func WriteMIDI(w io.Writer, perf *Performance, opts MIDIOptions) error {
	if perf == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no performance to export")
	}
	if opts.Channel > 15 {
		return errors.New(errors.ErrCodeInvalidInput, "MIDI channel %d out of range", opts.Channel)
	}
	if opts.Program > 127 {
		return errors.New(errors.ErrCodeInvalidInput, "MIDI program %d out of range", opts.Program)
	}

	var msgs []midiMessage
	for _, e := range perf.Events {
		key := e.Note.MIDI()
		if key < 0 || key > 127 {
			continue
		}
		vel := uint8(min(max(math.Round(e.Volume*127), 1), 127))
		start := toTicks(e.Start)
		end := max(toTicks(e.Start+e.Duration), start+1)
		msgs = append(msgs,
			midiMessage{tick: start, on: true, msg: midi.NoteOn(opts.Channel, uint8(key), vel)},
			midiMessage{tick: end, msg: midi.NoteOff(opts.Channel, uint8(key))},
		)
	}
	// Offs before ons at the same tick so repeated notes retrigger.
	slices.SortStableFunc(msgs, func(a, b midiMessage) int {
		if a.tick != b.tick {
			if a.tick < b.tick {
				return -1
			}
			return 1
		}
		switch {
		case a.on == b.on:
			return 0
		case !a.on:
			return -1
		}
		return 1
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(MIDITempo))
	tr.Add(0, midi.ProgramChange(opts.Channel, opts.Program))
	last := uint32(0)
	for _, m := range msgs {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(MIDIResolution)
	s.Add(tr)
	if _, err := s.WriteTo(w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write MIDI")
	}
	return nil
}

func toTicks(seconds float64) uint32 {
	return uint32(math.Round(max(seconds, 0) * MIDIResolution * MIDITempo / 60))
}
