package score

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
)

// Jump is a "da capo" or "dal segno" instruction at the end of a measure.
type Jump int

const (
	NoJump Jump = iota
	DaCapo
	DaCapoAlFine
	DaCapoAlCoda
	DalSegno
	DalSegnoAlFine
	DalSegnoAlCoda
)

func (j Jump) String() string {
	switch j {
	case DaCapo:
		return "D.C."
	case DaCapoAlFine:
		return "D.C. al Fine"
	case DaCapoAlCoda:
		return "D.C. al Coda"
	case DalSegno:
		return "D.S."
	case DalSegnoAlFine:
		return "D.S. al Fine"
	case DalSegnoAlCoda:
		return "D.S. al Coda"
	}
	return ""
}

// ToSegno reports whether the jump targets the segno rather than the start.
func (j Jump) ToSegno() bool { return j >= DalSegno }

// AlFine reports whether playback stops at Fine after the jump.
func (j Jump) AlFine() bool { return j == DaCapoAlFine || j == DalSegnoAlFine }

// AlCoda reports whether playback takes the coda after the jump.
func (j Jump) AlCoda() bool { return j == DaCapoAlCoda || j == DalSegnoAlCoda }

// Navigation holds the repeat and jump marks of a measure.
type Navigation struct {
	StartRepeat bool
	// EndRepeat is the total number of passes through the repeated
	// section; 0 means no end repeat.
	EndRepeat int
	// Ending lists the passes this measure's ending bracket is played on.
	Ending []int
	Segno  bool
	Coda   bool
	ToCoda bool
	Fine   bool
	Jump   Jump
}

// IsZero reports whether the measure carries no navigation.
func (n Navigation) IsZero() bool {
	return !n.StartRepeat && n.EndRepeat == 0 && len(n.Ending) == 0 &&
		!n.Segno && !n.Coda && !n.ToCoda && !n.Fine && n.Jump == NoJump
}

// NavigationKind selects the mark added by [Document.AddNavigation].
type NavigationKind int

const (
	NavStartRepeat NavigationKind = iota
	NavEndRepeat
	NavEnding
	NavSegno
	NavCoda
	NavToCoda
	NavFine
	NavJump
)

// NavigationOptions configures [Document.AddNavigation].
type NavigationOptions struct {
	Kind NavigationKind
	// Count is the pass count of an end repeat; 0 means 2.
	Count int
	// Passages lists the passes an ending is taken on.
	Passages []int
	Jump     Jump
}

// AddNavigation adds a repeat, ending, segno, coda, fine or jump mark to
// measure m. Text marks become floating objects in the navigation group;
// endings become a bracket in the ending group.
func (d *Document) AddNavigation(m MeasureID, opts NavigationOptions) error {
	ms, err := d.measureOrErr(m)
	if err != nil {
		return err
	}
	nav := &ms.Nav

	switch opts.Kind {
	case NavStartRepeat:
		nav.StartRepeat = true
	case NavEndRepeat:
		count := opts.Count
		if count == 0 {
			count = 2
		}
		if count < 2 {
			return errors.New(errors.ErrCodeInvalidInput, "repeat count %d below 2", count)
		}
		nav.EndRepeat = count
	case NavEnding:
		if len(opts.Passages) == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "ending without passages")
		}
		for _, p := range opts.Passages {
			if p < 1 {
				return errors.New(errors.ErrCodeInvalidInput, "invalid ending passage %d", p)
			}
		}
		nav.Ending = slices.Sorted(slices.Values(opts.Passages))
		d.addFloat(&Float{
			Kind:    EndingFloat,
			Group:   GroupEnding,
			Measure: m,
			Anchor:  Anchor{Column: NoID, Barline: LeftBarline},
			Side:    Above,
			Text:    endingText(nav.Ending),
		})
		return nil
	case NavSegno:
		nav.Segno = true
		d.addMark(m, LeftBarline, "Segno")
		return nil
	case NavCoda:
		nav.Coda = true
		d.addMark(m, LeftBarline, "Coda")
		return nil
	case NavToCoda:
		nav.ToCoda = true
		d.addMark(m, RightBarline, "To Coda")
		return nil
	case NavFine:
		nav.Fine = true
		d.addMark(m, RightBarline, "Fine")
		return nil
	case NavJump:
		if opts.Jump == NoJump {
			return errors.New(errors.ErrCodeInvalidInput, "jump mark without a jump")
		}
		nav.Jump = opts.Jump
		d.addMark(m, RightBarline, opts.Jump.String())
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown navigation kind %d", opts.Kind)
	}
	d.touchMeasure(m)
	return nil
}

func (d *Document) addMark(m MeasureID, bar Barline, text string) {
	d.addFloat(&Float{
		Kind:    NavigationFloat,
		Group:   GroupNavigation,
		Measure: m,
		Anchor:  Anchor{Column: NoID, Barline: bar},
		Side:    Above,
		Text:    text,
	})
}

func endingText(passages []int) string {
	parts := make([]string, len(passages))
	for i, p := range passages {
		parts[i] = strconv.Itoa(p) + "."
	}
	return strings.Join(parts, " ")
}
