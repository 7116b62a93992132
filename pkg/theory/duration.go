package theory

import (
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
)

// Tick resolution. Every supported length, dot count and triplet maps to an
// integer number of ticks.
const (
	TicksPerWhole   = 768
	TicksPerQuarter = TicksPerWhole / 4
)

// NoteLength is the denominator of a note value: 1 = whole, 4 = quarter.
type NoteLength int

const (
	Whole        NoteLength = 1
	Half         NoteLength = 2
	Quarter      NoteLength = 4
	Eighth       NoteLength = 8
	Sixteenth    NoteLength = 16
	ThirtySecond NoteLength = 32
	SixtyFourth  NoteLength = 64
)

// Valid reports whether l is one of the supported lengths.
func (l NoteLength) Valid() bool {
	switch l {
	case Whole, Half, Quarter, Eighth, Sixteenth, ThirtySecond, SixtyFourth:
		return true
	}
	return false
}

// Ticks returns the undotted length in ticks.
func (l NoteLength) Ticks() int { return TicksPerWhole / int(l) }

// FlagCount returns the number of flags (or beams) of the length: 0 for a
// quarter note and longer, 1 for an eighth, and so on.
func (l NoteLength) FlagCount() int {
	n := 0
	for v := int(l); v > 4; v /= 2 {
		n++
	}
	return n
}

// Tuplet is a ratio: Parts notes played in the time of InTimeOf.
// The zero value means "no tuplet".
type Tuplet struct {
	Parts    int
	InTimeOf int
}

// Triplet is the common 3:2 ratio.
var Triplet = Tuplet{Parts: 3, InTimeOf: 2}

// IsZero reports whether t is the "no tuplet" value.
func (t Tuplet) IsZero() bool { return t.Parts == 0 && t.InTimeOf == 0 }

func (t Tuplet) String() string {
	if t.IsZero() {
		return ""
	}
	return strconv.Itoa(t.Parts) + ":" + strconv.Itoa(t.InTimeOf)
}

// Duration is the rhythmic value of a note or rest.
type Duration struct {
	Length NoteLength
	Dots   int
	Tuplet Tuplet

	// LegacyTriplet marks an old-style triplet: the value is shortened to
	// two thirds and beam grouping detects the triplet runs automatically.
	LegacyTriplet bool
}

// NewDuration returns an undotted duration of the given length.
func NewDuration(l NoteLength) Duration { return Duration{Length: l} }

// Dotted returns d with n dots.
func (d Duration) Dotted(n int) Duration { d.Dots = n; return d }

// WithTuplet returns d as part of the given tuplet.
func (d Duration) WithTuplet(t Tuplet) Duration { d.Tuplet = t; return d }

// Validate checks the length, the dot count and that the tuplet ratio
// divides the value into whole ticks.
func (d Duration) Validate() error {
	if !d.Length.Valid() {
		return errors.New(errors.ErrCodeInvalidDuration, "invalid note length %d", d.Length)
	}
	if d.Dots < 0 || d.Dots > 2 {
		return errors.New(errors.ErrCodeInvalidDuration, "invalid dot count %d", d.Dots)
	}
	if d.Dots > 0 && d.Length.Ticks()>>d.Dots<<d.Dots != d.Length.Ticks() {
		return errors.New(errors.ErrCodeInvalidDuration, "cannot dot 1/%d %d times", d.Length, d.Dots)
	}
	if !d.Tuplet.IsZero() {
		if d.LegacyTriplet {
			return errors.New(errors.ErrCodeInvalidTuplet, "legacy triplet cannot carry an explicit ratio")
		}
		if d.Tuplet.Parts < 2 || d.Tuplet.InTimeOf < 1 {
			return errors.New(errors.ErrCodeInvalidTuplet, "invalid tuplet ratio %s", d.Tuplet)
		}
		if d.NominalTicks()*d.Tuplet.InTimeOf%d.Tuplet.Parts != 0 {
			return errors.New(errors.ErrCodeInvalidTuplet, "tuplet %s does not divide 1/%d", d.Tuplet, d.Length)
		}
	}
	return nil
}

// NominalTicks is the length including dots but ignoring any tuplet ratio.
func (d Duration) NominalTicks() int {
	base := d.Length.Ticks()
	t := base
	for i := 1; i <= d.Dots; i++ {
		t += base >> i
	}
	return t
}

// Ticks is the sounding length including dots and tuplet ratio.
func (d Duration) Ticks() int {
	t := d.NominalTicks()
	switch {
	case d.LegacyTriplet:
		return t * 2 / 3
	case !d.Tuplet.IsZero():
		return t * d.Tuplet.InTimeOf / d.Tuplet.Parts
	}
	return t
}

// FlagCount returns the flag count of the underlying length.
func (d Duration) FlagCount() int { return d.Length.FlagCount() }

// IsTuplet reports whether d belongs to an explicit or legacy tuplet.
func (d Duration) IsTuplet() bool { return d.LegacyTriplet || !d.Tuplet.IsZero() }

// IsDottedDoubleOf reports whether d is a dotted value whose base length is
// exactly twice the base length of o, e.g. a dotted eighth against a
// sixteenth.
func (d Duration) IsDottedDoubleOf(o Duration) bool {
	return d.Dots > 0 && o.Dots == 0 && d.Length.Ticks() == 2*o.Length.Ticks()
}

func (d Duration) String() string {
	s := strconv.Itoa(int(d.Length)) + strings.Repeat(".", d.Dots)
	switch {
	case d.LegacyTriplet:
		s += "t"
	case !d.Tuplet.IsZero():
		s += "/" + d.Tuplet.String()
	}
	return s
}

// ParseDuration parses values such as "4", "8.", "16..", "8t" (legacy
// triplet) and "8/3:2" (explicit tuplet).
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	var d Duration

	if i := strings.IndexByte(s, '/'); i >= 0 {
		var p, q int
		parts := strings.SplitN(s[i+1:], ":", 2)
		if len(parts) != 2 {
			return Duration{}, errors.New(errors.ErrCodeInvalidTuplet, "invalid tuplet in %q", s)
		}
		var err1, err2 error
		p, err1 = strconv.Atoi(parts[0])
		q, err2 = strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return Duration{}, errors.New(errors.ErrCodeInvalidTuplet, "invalid tuplet in %q", s)
		}
		d.Tuplet = Tuplet{Parts: p, InTimeOf: q}
		s = s[:i]
	}
	if strings.HasSuffix(s, "t") {
		d.LegacyTriplet = true
		s = strings.TrimSuffix(s, "t")
	}
	for strings.HasSuffix(s, ".") {
		d.Dots++
		s = s[:len(s)-1]
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return Duration{}, errors.Wrap(errors.ErrCodeInvalidDuration, err, "invalid note length")
	}
	d.Length = NoteLength(n)
	if err := d.Validate(); err != nil {
		return Duration{}, err
	}
	return d, nil
}

// restValues lists candidate values for rest completion, longest first.
var restValues = []NoteLength{Whole, Half, Quarter, Eighth, Sixteenth, ThirtySecond, SixtyFourth}

// SplitTicks decomposes ticks into canonical durations, largest value first,
// preferring a dotted value when it fits exactly into the remainder.
// Remaining ticks smaller than a sixty-fourth note are dropped.
func SplitTicks(ticks int) []Duration {
	var out []Duration
	for ticks > 0 {
		picked := false
		for _, l := range restValues {
			dotted := Duration{Length: l, Dots: 1}
			if dotted.Validate() == nil && dotted.Ticks() <= ticks && ticks%dotted.Ticks() == 0 {
				out = append(out, dotted)
				ticks -= dotted.Ticks()
				picked = true
				break
			}
			if l.Ticks() <= ticks {
				out = append(out, Duration{Length: l})
				ticks -= l.Ticks()
				picked = true
				break
			}
		}
		if !picked {
			break
		}
	}
	return out
}
