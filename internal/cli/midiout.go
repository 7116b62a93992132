package cli

import (
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// midiOut sends tones to a MIDI output port. Ports are only available when
// a driver is compiled in (build with -tags rtmidi).
type midiOut struct {
	send    func(midi.Message) error
	channel uint8

	mu      sync.Mutex
	closed  bool
	pending map[*time.Timer]struct{}
}

// ccAllNotesOff is the channel mode message that silences a channel.
const ccAllNotesOff = 123

// openMIDIOut connects to the output port whose name contains name.
func openMIDIOut(name string, channel uint8) (*midiOut, error) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "midi output %q", name)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open midi output %q", name)
	}
	return &midiOut{send: send, channel: channel, pending: make(map[*time.Timer]struct{})}, nil
}

// Play starts note now and releases it after seconds.
func (o *midiOut) Play(note theory.Note, seconds, volume float64) {
	key := note.MIDI()
	if key < 0 || key > 127 {
		return
	}
	vel := uint8(min(max(volume, 0), 1)*126) + 1

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	_ = o.send(midi.NoteOn(o.channel, uint8(key), vel))
	var t *time.Timer
	t = time.AfterFunc(time.Duration(seconds*float64(time.Second)), func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.pending, t)
		if !o.closed {
			_ = o.send(midi.NoteOff(o.channel, uint8(key)))
		}
	})
	o.pending[t] = struct{}{}
}

// Close silences the channel and shuts the driver down.
func (o *midiOut) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	for t := range o.pending {
		t.Stop()
	}
	clear(o.pending)
	_ = o.send(midi.ControlChange(o.channel, ccAllNotesOff, 0))
	midi.CloseDriver()
}
