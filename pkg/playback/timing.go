package playback

import (
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Timing constants, in ticks.
const (
	// ArpeggioTicks delays each note of an arpeggiated chord after the one
	// below it.
	ArpeggioTicks = theory.TicksPerWhole / 64
	// StaccatoMaxTicks caps a staccato note: half of an eighth.
	StaccatoMaxTicks = theory.TicksPerWhole / 16
)

// SlurVolume scales the volume of notes under a slur.
const SlurVolume = 0.8

// Event is one tone of the performance.
type Event struct {
	Step     int // index into Performance.Steps
	Voice    int
	Note     theory.Note
	Start    float64 // seconds from the start of the performance
	Duration float64 // seconds
	Volume   float64
}

// Performance is a fully timed playback of a document.
type Performance struct {
	Steps  []Step
	Events []Event
	// Length is the total duration in seconds.
	Length float64

	byStep [][]int
}

// StepEvents returns the events that start on step i.
func (p *Performance) StepEvents(i int) []Event {
	if i < 0 || i >= len(p.byStep) {
		return nil
	}
	out := make([]Event, len(p.byStep[i]))
	for k, e := range p.byStep[i] {
		out[k] = p.Events[e]
	}
	return out
}

// Perform sequences d and computes envelopes and timing.
func Perform(d *score.Document) (*Performance, error) {
	steps, err := Sequence(d)
	if err != nil {
		return nil, err
	}
	applyEnvelopes(d, steps)
	return schedule(d, steps), nil
}

type toneKey struct {
	voice int
	midi  int
}

// schedule converts steps into seconds and collects note events.
func schedule(d *score.Document, steps []Step) *Performance {
	tied, slurred := connectiveRoles(d)
	p := &Performance{Steps: steps, byStep: make([][]int, len(steps))}

	// sounding remembers the last event per voice and key so a tie can
	// extend it.
	sounding := make(map[toneKey]int)
	now := 0.0
	for i := range steps {
		st := &steps[i]
		m := d.Measure(st.Measure)
		tempo := m.Tempo
		st.Start = now

		hold := 0
		if st.Column != score.NoID {
			col := d.Column(st.Column)
			var syms []*score.Symbol
			col.Each(d, func(s *score.Symbol) { syms = append(syms, s) })
			if d.ColumnFermata(st.Column) {
				hold = averageTicks(syms)
			}
			for _, s := range syms {
				if s.Kind != score.NoteGroup {
					continue
				}
				for ni, n := range s.Notes {
					key := toneKey{s.Voice, n.Pitch.MIDI()}
					ticks := s.Ticks() + hold
					if tied[s.ID] {
						if e, ok := sounding[key]; ok {
							p.Events[e].Duration += tempo.Seconds(ticks, st.Speed)
							continue
						}
					}
					offset := 0
					if s.Arpeggio {
						offset = ni * ArpeggioTicks
					}
					ticks = max(ticks-offset, 1)
					if s.Staccato {
						ticks = min(ticks, max(s.Ticks()/2, 1), StaccatoMaxTicks)
					}
					vol := st.Volume
					if slurred[s.ID] {
						vol *= SlurVolume
					}
					p.byStep[i] = append(p.byStep[i], len(p.Events))
					sounding[key] = len(p.Events)
					p.Events = append(p.Events, Event{
						Step:     i,
						Voice:    s.Voice,
						Note:     n.Pitch,
						Start:    now + tempo.Seconds(offset, st.Speed),
						Duration: tempo.Seconds(ticks, st.Speed),
						Volume:   vol,
					})
				}
			}
		}
		st.Seconds = tempo.Seconds(st.Ticks+hold, st.Speed)
		now += st.Seconds
	}
	p.Length = now
	return p
}

func averageTicks(syms []*score.Symbol) int {
	if len(syms) == 0 {
		return 0
	}
	sum := 0
	for _, s := range syms {
		sum += s.Ticks()
	}
	return sum / len(syms)
}

// connectiveRoles marks note groups entered by a tie and note groups under
// a slur.
func connectiveRoles(d *score.Document) (tied, slurred map[score.SymbolID]bool) {
	tied = make(map[score.SymbolID]bool)
	slurred = make(map[score.SymbolID]bool)
	for _, c := range d.Connectives() {
		switch c.Kind {
		case score.Tie:
			for i, s := range c.Groups {
				if i > 0 {
					tied[s] = true
				}
			}
		case score.Slur:
			for _, s := range c.Groups {
				slurred[s] = true
			}
		}
	}
	return tied, slurred
}
