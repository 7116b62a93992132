package playback

import (
	"slices"
	"strings"

	"github.com/matzehuels/staffline/pkg/score"
)

// Envelope constants.
const (
	// DefaultVolume is the volume before the first dynamics mark.
	DefaultVolume = 0.5
	// DynamicStep is the volume change per p or f; m counts half.
	DynamicStep = 0.1
	// TempoRamp is the speed change of an accel. or rit. without a target.
	TempoRamp = 0.25
	// VolumeRamp is the volume change of a cresc. or dim. without a target.
	VolumeRamp = 0.2
)

type rampKind int

const (
	speedRamp rampKind = iota
	volumeRamp
)

// ramp is a linear change over the columns of an extension.
type ramp struct {
	float   score.FloatID
	kind    rampKind
	index   map[score.ColumnID]int
	start   float64
	target  float64
	divisor float64
}

func (r *ramp) at(c score.ColumnID) (float64, bool) {
	i, ok := r.index[c]
	if !ok {
		return 0, false
	}
	if r.divisor == 0 {
		return r.target, true
	}
	return r.start + (r.target-r.start)*float64(i)/r.divisor, true
}

// applyEnvelopes sets Speed and Volume on every step.
//
// Literal marks on a column apply first. Ramps anchored on the column then
// open with the current value as their start, and every open ramp covering
// the column contributes its interpolated value; several contributions of
// one kind are averaged. A ramp with a target reaches it on the column that
// stopped its line, one without reaches start ± the fixed step on its last
// column.
func applyEnvelopes(d *score.Document, steps []Step) {
	speed, volume := 1.0, DefaultVolume
	var open []*ramp

	for i := range steps {
		st := &steps[i]
		if st.Column != score.NoID {
			anns := d.Annotations(st.Column)
			for _, f := range anns {
				switch f.Context {
				case score.TempoContext:
					if isATempo(f.Text) {
						speed = 1
					}
				case score.Dynamics:
					if v, ok := dynamicsVolume(f.Text); ok {
						volume = v
					}
				}
			}

			kept := open[:0]
			for _, r := range open {
				if _, ok := r.index[st.Column]; ok {
					kept = append(kept, r)
				}
			}
			open = kept

			for _, f := range anns {
				if r := newRamp(f, speed, volume); r != nil {
					open = slices.DeleteFunc(open, func(o *ramp) bool { return o.float == f.ID })
					open = append(open, r)
				}
			}

			if v, ok := average(open, speedRamp, st.Column); ok {
				speed = v
			}
			if v, ok := average(open, volumeRamp, st.Column); ok {
				volume = v
			}
		}
		st.Speed, st.Volume = speed, volume
	}
}

func average(open []*ramp, kind rampKind, c score.ColumnID) (float64, bool) {
	sum, n := 0.0, 0
	for _, r := range open {
		if r.kind != kind {
			continue
		}
		if v, ok := r.at(c); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// newRamp opens the ramp of annotation f, or returns nil when f is not a
// ramp mark with a continuation line.
func newRamp(f *score.Float, speed, volume float64) *ramp {
	if !f.HasExtension() || f.Range.Empty() {
		return nil
	}
	dir, kind, ok := rampDirection(f)
	if !ok {
		return nil
	}

	r := &ramp{float: f.ID, kind: kind, index: make(map[score.ColumnID]int, len(f.Range.Columns))}
	for i, c := range f.Range.Columns {
		r.index[c] = i
	}
	step := TempoRamp
	r.start = speed
	if kind == volumeRamp {
		step, r.start = VolumeRamp, volume
	}

	n := len(f.Range.Columns)
	if t, ok := targetValue(f.Range.BreakText, kind); ok {
		r.target = t
		r.divisor = float64(n)
		return r
	}
	r.target = r.start + dir*step
	if kind == volumeRamp {
		r.target = clamp01(r.target)
	}
	r.divisor = float64(n - 1)
	return r
}

func rampDirection(f *score.Float) (float64, rampKind, bool) {
	t := strings.ToLower(strings.TrimSpace(f.Text))
	switch f.Context {
	case score.TempoContext:
		switch {
		case strings.HasPrefix(t, "accel"), strings.HasPrefix(t, "stringendo"):
			return 1, speedRamp, true
		case strings.HasPrefix(t, "rit"), strings.HasPrefix(t, "rall"):
			return -1, speedRamp, true
		}
	case score.Dynamics:
		switch {
		case strings.HasPrefix(t, "cresc"):
			return 1, volumeRamp, true
		case strings.HasPrefix(t, "dim"), strings.HasPrefix(t, "decresc"):
			return -1, volumeRamp, true
		}
	}
	return 0, 0, false
}

func targetValue(text string, kind rampKind) (float64, bool) {
	if text == "" {
		return 0, false
	}
	if kind == speedRamp {
		return 1, isATempo(text)
	}
	return dynamicsVolume(text)
}

func isATempo(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "a tempo")
}

// dynamicsVolume maps a dynamics literal such as "pp" or "mf" to a volume:
// 0.5 plus DynamicStep per f, minus it per p, with a leading m counting
// half a step in the literal's direction.
func dynamicsVolume(text string) (float64, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, false
	}
	mezzo := strings.HasPrefix(t, "m")
	if mezzo {
		t = t[1:]
	}
	if t == "" {
		return 0, false
	}
	ps, fs := strings.Count(t, "p"), strings.Count(t, "f")
	if ps+fs != len(t) || (ps > 0 && fs > 0) {
		return 0, false
	}
	steps := float64(fs - ps)
	if mezzo {
		if ps+fs != 1 {
			return 0, false
		}
		steps /= 2
	}
	return clamp01(DefaultVolume + steps*DynamicStep), true
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
