package theory

import (
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
)

// KeySignature is described by its position on the circle of fifths:
// positive values count sharps, negative values count flats.
type KeySignature struct {
	Fifths int
}

var (
	sharpOrder = [...]Letter{F, C, G, D, A, E, B}
	flatOrder  = [...]Letter{B, E, A, D, G, C, F}
)

// majorFifths maps a major tonic spelling to its fifths count.
var majorFifths = map[string]int{
	"Cb": -7, "Gb": -6, "Db": -5, "Ab": -4, "Eb": -3, "Bb": -2, "F": -1,
	"C": 0, "G": 1, "D": 2, "A": 3, "E": 4, "B": 5, "F#": 6, "C#": 7,
}

// ParseKeySignature parses a tonic name with an optional trailing "m" for
// minor, e.g. "G", "Bb", "F#m".
func ParseKeySignature(s string) (KeySignature, error) {
	s = strings.TrimSpace(s)
	minor := false
	if strings.HasSuffix(s, "m") && len(s) > 1 {
		minor = true
		s = strings.TrimSuffix(s, "m")
	}
	if s == "" {
		return KeySignature{}, errors.New(errors.ErrCodeInvalidSignature, "empty key signature")
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	f, ok := majorFifths[s]
	if !ok && !minor {
		return KeySignature{}, errors.New(errors.ErrCodeInvalidSignature, "unknown key %q", s)
	}
	if minor {
		// The relative major lies three fifths below the minor tonic's own
		// major key.
		mf, ok := majorFifths[s]
		if !ok {
			return KeySignature{}, errors.New(errors.ErrCodeInvalidSignature, "unknown key %qm", s)
		}
		f = mf - 3
	}
	if f < -7 || f > 7 {
		return KeySignature{}, errors.New(errors.ErrCodeInvalidSignature, "key %q out of range", s)
	}
	return KeySignature{Fifths: f}, nil
}

// Count returns the number of accidentals in the signature.
func (k KeySignature) Count() int {
	if k.Fifths < 0 {
		return -k.Fifths
	}
	return k.Fifths
}

// Letters returns the altered letters in the order they are written.
func (k KeySignature) Letters() []Letter {
	n := k.Count()
	out := make([]Letter, 0, n)
	for i := 0; i < n; i++ {
		if k.Fifths > 0 {
			out = append(out, sharpOrder[i])
		} else {
			out = append(out, flatOrder[i])
		}
	}
	return out
}

// AccidentalFor returns the accidental the signature applies to letter.
func (k KeySignature) AccidentalFor(l Letter) int {
	for _, x := range k.Letters() {
		if x == l {
			if k.Fifths > 0 {
				return 1
			}
			return -1
		}
	}
	return 0
}

// TimeSignature is Beats beats of 1/BeatType each.
type TimeSignature struct {
	Beats    int
	BeatType int
}

// CommonTime is 4/4.
var CommonTime = TimeSignature{Beats: 4, BeatType: 4}

// ParseTimeSignature parses "3/4", "6/8" and friends.
func ParseTimeSignature(s string) (TimeSignature, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 2)
	if len(parts) != 2 {
		return TimeSignature{}, errors.New(errors.ErrCodeInvalidSignature, "invalid time signature %q", s)
	}
	b, err1 := strconv.Atoi(parts[0])
	t, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return TimeSignature{}, errors.New(errors.ErrCodeInvalidSignature, "invalid time signature %q", s)
	}
	ts := TimeSignature{Beats: b, BeatType: t}
	return ts, ts.Validate()
}

// Validate checks beat count and beat type.
func (t TimeSignature) Validate() error {
	if t.Beats < 1 || t.Beats > 32 {
		return errors.New(errors.ErrCodeInvalidSignature, "invalid beat count %d", t.Beats)
	}
	if !NoteLength(t.BeatType).Valid() {
		return errors.New(errors.ErrCodeInvalidSignature, "invalid beat type %d", t.BeatType)
	}
	return nil
}

// BeatTicks is the tick length of one beat.
func (t TimeSignature) BeatTicks() int { return TicksPerWhole / t.BeatType }

// MeasureTicks is the tick capacity of one measure.
func (t TimeSignature) MeasureTicks() int { return t.Beats * t.BeatTicks() }

// IsCompound reports whether beats group in threes (6/8, 9/8, 12/16, ...).
func (t TimeSignature) IsCompound() bool {
	return t.BeatType >= 8 && t.Beats > 3 && t.Beats%3 == 0
}

// BeamGroupTicks is the tick length after which beams restart: a dotted
// quarter-equivalent in compound meters, otherwise one beat capped at a
// quarter note.
func (t TimeSignature) BeamGroupTicks() int {
	if t.IsCompound() {
		return 3 * t.BeatTicks()
	}
	return min(t.BeatTicks(), TicksPerQuarter)
}

func (t TimeSignature) String() string {
	return strconv.Itoa(t.Beats) + "/" + strconv.Itoa(t.BeatType)
}

// Tempo is a metronome mark: BPM beats of length Beat per minute.
type Tempo struct {
	BPM  float64
	Beat Duration
}

// DefaultTempo is quarter = 120.
var DefaultTempo = Tempo{BPM: 120, Beat: Duration{Length: Quarter}}

// TicksPerBeat is the tick length of the tempo's beat unit.
func (t Tempo) TicksPerBeat() int {
	if t.Beat.Length == 0 {
		return TicksPerQuarter
	}
	return t.Beat.Ticks()
}

// Validate checks that the tempo is positive.
func (t Tempo) Validate() error {
	if t.BPM <= 0 || t.BPM > 1000 {
		return errors.New(errors.ErrCodeInvalidSignature, "invalid tempo %.1f", t.BPM)
	}
	if t.Beat.Length != 0 {
		return t.Beat.Validate()
	}
	return nil
}

// Seconds converts a tick count into seconds at the given speed multiplier.
func (t Tempo) Seconds(ticks int, speed float64) float64 {
	if speed <= 0 {
		speed = 1
	}
	return float64(ticks) * 60 / (t.BPM * speed * float64(t.TicksPerBeat()))
}
