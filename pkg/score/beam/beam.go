// Package beam derives beam and tuplet grouping from rhythm values.
//
// The engine works on a single voice of a single measure at a time. Input is
// the ordered list of rhythm symbols of that voice ([Item]); output is a set
// of [Group] values, each covering two or more consecutive items together
// with the number of beam lines drawn on the left and right side of every
// member.
//
// # Meter grouping
//
// Items are walked in position order while their ticks accumulate against
// the time signature's beam-group length. Whenever the accumulated ticks hit
// an exact multiple of that length, the pending run is closed and its beam
// counts are relaxed to a fixed point (see [Relax]). Runs left open at the end
// of the voice stay unbeamed.
//
// # Tuplets
//
// Explicit tuplets are grouped by ratio instead of by meter: a run of items
// sharing one ratio closes when its nominal ticks equal Parts times the
// smallest nominal value in the run. Old-style (legacy) triplets have no
// declared ratio; runs of equal-length legacy items are chunked into threes,
// with a trailing pair grouped on its own.
package beam

import (
	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

// Kind distinguishes the three drawn forms of a beam group.
type Kind int

const (
	// Regular is a plain beam over flagged values.
	Regular Kind = iota
	// TupletBeam is a tuplet drawn as a beam with a ratio number.
	TupletBeam
	// TupletBracket is a tuplet drawn as a bracket with a ratio number,
	// used when the values are quarter notes or longer or their edge flag
	// counts differ.
	TupletBracket
)

func (k Kind) String() string {
	switch k {
	case Regular:
		return "beam"
	case TupletBeam:
		return "tuplet-beam"
	case TupletBracket:
		return "tuplet-bracket"
	}
	return "unknown"
}

// Item is one rhythm symbol of a voice, in position order.
type Item struct {
	Duration theory.Duration
	Rest     bool
}

func (it Item) flags() int {
	if it.Rest {
		return 0
	}
	return it.Duration.FlagCount()
}

// Group is a set of consecutive items joined by beam lines or a tuplet
// bracket. Left and Right hold the beam count on each side of every member;
// both are zero for bracket groups.
type Group struct {
	Kind   Kind
	Items  []int // indices into the input slice
	Left   []int
	Right  []int
	Tuplet theory.Tuplet
}

// Len returns the number of members.
func (g Group) Len() int { return len(g.Items) }

// Build groups the items of one voice under time signature ts.
//
// It returns [errors.ErrCodeMalformedBeam] when an explicit tuplet run is
// interrupted before it is complete, and [errors.ErrCodeBeamDivergence] when
// relaxation fails to settle.
func Build(items []Item, ts theory.TimeSignature) ([]Group, error) {
	groupTicks := ts.BeamGroupTicks()
	if groupTicks <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidSignature, "time signature %s has no beam length", ts)
	}

	var (
		groups []Group
		run    []int
		acc    int
	)

	closeRun := func() error {
		defer func() { run = run[:0] }()
		if len(run) < 2 {
			return nil
		}
		gs, err := relaxRun(items, run)
		if err != nil {
			return err
		}
		groups = append(groups, gs...)
		return nil
	}

	for i := 0; i < len(items); {
		it := items[i]

		switch {
		case it.Duration.LegacyTriplet:
			run = run[:0]
			end := i
			for end < len(items) && items[end].Duration.LegacyTriplet &&
				items[end].Duration.Length == it.Duration.Length {
				acc += items[end].Duration.Ticks()
				end++
			}
			groups = append(groups, legacyChunks(items, i, end)...)
			i = end

		case !it.Duration.Tuplet.IsZero():
			run = run[:0]
			g, end, complete, err := tupletRun(items, i)
			if err != nil {
				return nil, err
			}
			for j := i; j < end; j++ {
				acc += items[j].Duration.Ticks()
			}
			if !complete && end < len(items) {
				return nil, errors.New(errors.ErrCodeMalformedBeam,
					"tuplet %s starting at item %d is interrupted", it.Duration.Tuplet, i)
			}
			if complete && g.Len() >= 2 {
				groups = append(groups, g)
			}
			i = end

		default:
			run = append(run, i)
			acc += it.Duration.Ticks()
			if acc%groupTicks == 0 {
				if err := closeRun(); err != nil {
					return nil, err
				}
			}
			i++
		}
	}
	return groups, nil
}

// relaxRun settles the beam counts of a closed meter run and splits it into
// chains of nonzero counts.
func relaxRun(items []Item, run []int) ([]Group, error) {
	durs := make([]theory.Duration, len(run))
	flags := make([]int, len(run))
	for k, idx := range run {
		durs[k] = items[idx].Duration
		flags[k] = items[idx].flags()
	}
	left, right, err := Relax(flags, durs)
	if err != nil {
		return nil, err
	}
	return chains(run, left, right, Regular, theory.Tuplet{}), nil
}

// chains splits a relaxed run into groups joined by nonzero right counts.
func chains(idx, left, right []int, kind Kind, t theory.Tuplet) []Group {
	var out []Group
	start := 0
	for k := 0; k < len(idx); k++ {
		if k < len(idx)-1 && right[k] > 0 {
			continue
		}
		if k-start+1 >= 2 {
			out = append(out, Group{
				Kind:   kind,
				Items:  append([]int(nil), idx[start:k+1]...),
				Left:   zeroOuter(left[start:k+1], true),
				Right:  zeroOuter(right[start:k+1], false),
				Tuplet: t,
			})
		}
		start = k + 1
	}
	return out
}

func zeroOuter(counts []int, left bool) []int {
	out := append([]int(nil), counts...)
	if left {
		out[0] = 0
	} else {
		out[len(out)-1] = 0
	}
	return out
}

// Relax computes left and right beam counts for a run of flag counts.
//
// Every member is seeded with its own flag count on both inner sides; the
// outer sides of the run start at zero. Each adjacent pair then shares the
// common flag count when both are equal, keeps both own counts when one is a
// dotted value exactly twice the other (a full match), and drops to the lesser
// count otherwise. A member left with no beam on either side is reset to zero,
// which may in turn isolate its neighbours; this repeats until stable.
//
// Relaxation is capped at 4n+8 rounds; exceeding the cap returns
// [errors.ErrCodeBeamDivergence].
func Relax(flags []int, durs []theory.Duration) (left, right []int, err error) {
	n := len(flags)
	left = make([]int, n)
	right = make([]int, n)
	if n == 0 {
		return left, right, nil
	}
	eff := append([]int(nil), flags...)
	for i := range eff {
		left[i], right[i] = eff[i], eff[i]
	}
	left[0], right[n-1] = 0, 0

	limit := 4*n + 8
	for round := 0; ; round++ {
		if round >= limit {
			return nil, nil, errors.New(errors.ErrCodeBeamDivergence,
				"beam counts did not settle after %d rounds (flags %v)", limit, flags)
		}
		changed := false

		for i := 0; i+1 < n; i++ {
			l, r := pairCounts(eff[i], eff[i+1], dur(durs, i), dur(durs, i+1))
			if right[i] != l || left[i+1] != r {
				right[i], left[i+1] = l, r
				changed = true
			}
		}

		for i := 0; i < n; i++ {
			if eff[i] > 0 && left[i] == 0 && right[i] == 0 {
				eff[i] = 0
				changed = true
			}
		}

		if !changed {
			return left, right, nil
		}
	}
}

func dur(durs []theory.Duration, i int) theory.Duration {
	if i < len(durs) {
		return durs[i]
	}
	return theory.Duration{}
}

// pairCounts returns the counts facing each other across the boundary
// between a and b.
func pairCounts(fa, fb int, da, db theory.Duration) (int, int) {
	switch {
	case fa == 0 || fb == 0:
		return 0, 0
	case fa == fb:
		return fa, fb
	case da.IsDottedDoubleOf(db) || db.IsDottedDoubleOf(da):
		return fa, fb
	}
	m := min(fa, fb)
	return m, m
}

// tupletRun collects the explicit tuplet run starting at i. It returns the
// group, the index after the run and whether the run completed.
func tupletRun(items []Item, i int) (Group, int, bool, error) {
	ratio := items[i].Duration.Tuplet
	if err := items[i].Duration.Validate(); err != nil {
		return Group{}, i + 1, false, err
	}

	var (
		idx      []int
		nominal  int
		smallest = items[i].Duration.Length.Ticks()
		end      = i
	)
	for end < len(items) && items[end].Duration.Tuplet == ratio {
		d := items[end].Duration
		idx = append(idx, end)
		nominal += d.NominalTicks()
		smallest = min(smallest, d.Length.Ticks())
		end++
		if nominal == ratio.Parts*smallest {
			return tupletGroup(items, idx, ratio), end, true, nil
		}
	}
	return Group{Items: idx}, end, false, nil
}

// tupletGroup decides between beam and bracket and relaxes the beam counts.
func tupletGroup(items []Item, idx []int, ratio theory.Tuplet) Group {
	flags := make([]int, len(idx))
	durs := make([]theory.Duration, len(idx))
	allFlagged := true
	for k, i := range idx {
		flags[k] = items[i].flags()
		durs[k] = items[i].Duration
		if flags[k] == 0 {
			allFlagged = false
		}
	}

	g := Group{Kind: TupletBracket, Items: idx, Left: make([]int, len(idx)), Right: make([]int, len(idx)), Tuplet: ratio}
	if !allFlagged || flags[0] != flags[len(flags)-1] {
		return g
	}
	left, right, err := Relax(flags, durs)
	if err != nil {
		return g
	}
	g.Kind = TupletBeam
	g.Left, g.Right = left, right
	return g
}

// legacyChunks groups legacy triplet items in [from, to) into threes, with a
// trailing pair grouped on its own and a single leftover left alone.
func legacyChunks(items []Item, from, to int) []Group {
	var out []Group
	for start := from; start < to; {
		size := min(3, to-start)
		if size < 2 {
			break
		}
		idx := make([]int, size)
		for k := range idx {
			idx[k] = start + k
		}
		out = append(out, tupletGroup(items, idx, theory.Triplet))
		start += size
	}
	return out
}
