package beam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/theory"
)

func items(durs ...string) []Item {
	out := make([]Item, len(durs))
	for i, s := range durs {
		d, err := theory.ParseDuration(s)
		if err != nil {
			panic(err)
		}
		out[i] = Item{Duration: d}
	}
	return out
}

func TestRelaxEqualFlags(t *testing.T) {
	left, right, err := Relax([]int{1, 1, 1}, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 1}, left)
	assert.Equal(t, []int{1, 1, 0}, right)
	assert.Equal(t, 1, left[1])
	assert.Equal(t, 1, right[1])
}

func TestRelaxMixedFlagsTakesMin(t *testing.T) {
	left, right, err := Relax([]int{1, 2, 1}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, right[0])
	assert.Equal(t, 1, left[1], "boundary toward the eighth drops to the min")
	assert.Equal(t, 1, right[1])
	assert.Equal(t, 1, left[2])
}

func TestRelaxFullMatchKeepsOwnCounts(t *testing.T) {
	dotted := theory.Duration{Length: theory.Eighth, Dots: 1}
	six := theory.Duration{Length: theory.Sixteenth}
	left, right, err := Relax([]int{1, 2}, []theory.Duration{dotted, six})
	require.NoError(t, err)

	assert.Equal(t, 1, right[0])
	assert.Equal(t, 2, left[1])
}

func TestRelaxIsolatedResets(t *testing.T) {
	left, right, err := Relax([]int{1, 0, 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, left)
	assert.Equal(t, []int{0, 0, 0}, right)
}

func TestBuild(t *testing.T) {
	common := theory.CommonTime
	six8 := theory.TimeSignature{Beats: 6, BeatType: 8}

	tests := []struct {
		name  string
		ts    theory.TimeSignature
		items []Item
		sizes []int
		kinds []Kind
	}{
		{name: "four quarters", ts: common, items: items("4", "4", "4", "4")},
		{name: "four eighths", ts: common, items: items("8", "8", "8", "8"),
			sizes: []int{2, 2}, kinds: []Kind{Regular, Regular}},
		{name: "eight eighths", ts: common, items: items("8", "8", "8", "8", "8", "8", "8", "8"),
			sizes: []int{2, 2, 2, 2}, kinds: []Kind{Regular, Regular, Regular, Regular}},
		{name: "compound meter", ts: six8, items: items("8", "8", "8", "8", "8", "8"),
			sizes: []int{3, 3}, kinds: []Kind{Regular, Regular}},
		{name: "sixteenths and eighth", ts: common, items: items("16", "16", "8", "4", "2"),
			sizes: []int{3}, kinds: []Kind{Regular}},
		{name: "dotted pair", ts: common, items: items("8.", "16", "4", "2"),
			sizes: []int{2}, kinds: []Kind{Regular}},
		{name: "eighth triplet", ts: common, items: items("8/3:2", "8/3:2", "8/3:2", "4", "2"),
			sizes: []int{3}, kinds: []Kind{TupletBeam}},
		{name: "quarter triplet", ts: common, items: items("4/3:2", "4/3:2", "4/3:2", "2"),
			sizes: []int{3}, kinds: []Kind{TupletBracket}},
		{name: "mismatched tuplet edges", ts: common, items: items("16/3:2", "8/3:2", "4", "2"),
			sizes: []int{2}, kinds: []Kind{TupletBracket}},
		{name: "legacy triplets", ts: common, items: items("8t", "8t", "8t", "8t", "8t", "8t", "2"),
			sizes: []int{3, 3}, kinds: []Kind{TupletBeam, TupletBeam}},
		{name: "legacy pair", ts: common, items: items("8t", "8t", "8t", "8t", "8t"),
			sizes: []int{3, 2}, kinds: []Kind{TupletBeam, TupletBeam}},
		{name: "open run stays unbeamed", ts: common, items: items("4", "8")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := Build(tt.items, tt.ts)
			require.NoError(t, err)
			require.Len(t, groups, len(tt.sizes))
			for i, g := range groups {
				assert.Equal(t, tt.sizes[i], g.Len(), "group %d size", i)
				assert.Equal(t, tt.kinds[i], g.Kind, "group %d kind", i)
			}
		})
	}
}

func TestBuildRestBreaksBeam(t *testing.T) {
	its := items("16", "16", "16", "16")
	its[1].Rest = true
	groups, err := Build(its, theory.CommonTime)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{2, 3}, groups[0].Items)
}

func TestBuildInterruptedTuplet(t *testing.T) {
	_, err := Build(items("8/3:2", "8/3:2", "8", "8"), theory.CommonTime)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedBeam))
}

func TestBuildTrailingTupletIsTolerated(t *testing.T) {
	groups, err := Build(items("2", "4", "8/3:2", "8/3:2"), theory.CommonTime)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestFitLine(t *testing.T) {
	p := LineParams{Up: true, Length: 35, MinLength: 25, MaxRise: 10}

	t.Run("flat heads give a flat line", func(t *testing.T) {
		l := FitLine([]Stem{{X: 0, Head: 100}, {X: 40, Head: 100}}, p)
		assert.InDelta(t, 65, l.Y0, 1e-9)
		assert.InDelta(t, 0, l.Slope(), 1e-9)
	})

	t.Run("rise is damped", func(t *testing.T) {
		l := FitLine([]Stem{{X: 0, Head: 100}, {X: 40, Head: 80}}, p)
		assert.Less(t, l.Y0-l.Y1, 20.0)
		assert.Greater(t, l.Y0-l.Y1, 0.0)
	})

	t.Run("interior stems keep minimum length", func(t *testing.T) {
		stems := []Stem{{X: 0, Head: 100}, {X: 20, Head: 50}, {X: 40, Head: 100}}
		l := FitLine(stems, p)
		assert.LessOrEqual(t, l.YAt(20), 50-p.MinLength+1e-9)
	})

	t.Run("down stems", func(t *testing.T) {
		down := p
		down.Up = false
		l := FitLine([]Stem{{X: 0, Head: 10}, {X: 40, Head: 10}}, down)
		assert.InDelta(t, 45, l.Y0, 1e-9)
	})
}

func TestSegments(t *testing.T) {
	g := Group{Items: []int{0, 1}, Left: []int{0, 2}, Right: []int{1, 0}}
	segs := Segments(g, []float64{0, 30}, 8)
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Level: 0, X0: 0, X1: 30}, segs[0])
	assert.Equal(t, Segment{Level: 1, X0: 22, X1: 30, Hook: true}, segs[1])

	bracket := Group{Kind: TupletBracket, Items: []int{0, 1, 2}, Left: make([]int, 3), Right: make([]int, 3)}
	assert.Nil(t, Segments(bracket, []float64{0, 10, 20}, 8))
}
