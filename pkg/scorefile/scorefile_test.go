package scorefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

const etudeTOML = `
title = "Etude"
lines = "treble+tab"
key = "G"
tempo = 96.0

[[measures]]
time = "3/4"
repeat_start = true
voices = ["E4:4 G4:4,stacc B4:4"]

  [[measures.labels]]
  kind = "chord"
  text = "Em"

  [[measures.annotations]]
  context = "dynamics"
  text = "p"

  [[measures.annotations]]
  context = "dynamics"
  text = "cresc."
  beat = 1.0
  extension = "open"

[[measures]]
voices = ["C4+E4+G4:2,arp r:4"]
ending = [1]
repeat_end = 2
end_row = true

  [[measures.fermatas]]
  barline = true

[[measures]]
voices = ["D5:8 D5:8 r:2"]
ending = [2]
end_song = true

  [[measures.connectives]]
  kind = "tie"
  symbol = 0
`

const etudeYAML = `
title: Etude
lines: treble+tab
key: G
tempo: 96
measures:
  - time: 3/4
    repeat_start: true
    voices: ["E4:4 G4:4,stacc B4:4"]
    labels:
      - {kind: chord, text: Em}
    annotations:
      - {context: dynamics, text: p}
      - {context: dynamics, text: cresc., beat: 1, extension: open}
  - voices: ["C4+E4+G4:2,arp r:4"]
    ending: [1]
    repeat_end: 2
    end_row: true
    fermatas:
      - barline: true
  - voices: ["D5:8 D5:8 r:2"]
    ending: [2]
    end_song: true
    connectives:
      - {kind: tie, symbol: 0}
`

func buildString(t *testing.T, src string, format Format) *score.Document {
	t.Helper()
	f, err := Decode(strings.NewReader(src), format)
	require.NoError(t, err)
	d, err := Build(f, BuildOptions{})
	require.NoError(t, err)
	return d
}

func TestBuild(t *testing.T) {
	for _, tt := range []struct {
		format Format
		src    string
	}{
		{TOML, etudeTOML},
		{YAML, etudeYAML},
	} {
		t.Run(string(tt.format), func(t *testing.T) {
			d := buildString(t, tt.src, tt.format)
			assert.Equal(t, "Etude", d.Title)

			ms := d.Measures()
			require.Len(t, ms, 3)
			assert.Len(t, d.Rows(), 2)

			m1 := ms[0]
			assert.Equal(t, 1, m1.Key.Fifths)
			assert.Equal(t, theory.TimeSignature{Beats: 3, BeatType: 4}, m1.Time)
			assert.Equal(t, 96.0, m1.Tempo.BPM)
			assert.True(t, m1.Nav.StartRepeat)
			assert.Len(t, m1.Columns, 3)

			stacc := d.VoiceSymbols(m1.ID, 0)[1]
			assert.True(t, stacc.Staccato)

			m2 := ms[1]
			assert.Equal(t, m1.Time, m2.Time, "time is inherited")
			assert.Equal(t, []int{1}, m2.Nav.Ending)
			assert.Equal(t, 2, m2.Nav.EndRepeat)
			assert.True(t, d.BarlineFermata(m2.ID))
			chord := d.VoiceSymbols(m2.ID, 0)[0]
			assert.Len(t, chord.Notes, 3)
			assert.True(t, chord.Arpeggio)

			m3 := ms[2]
			assert.True(t, m3.EndsSong)
			require.Len(t, d.Connectives(), 1)
			assert.Equal(t, score.Tie, d.Connectives()[0].Kind)

			var texts []string
			for _, f := range d.Floats() {
				texts = append(texts, f.Text)
			}
			assert.Contains(t, texts, "Em")
			assert.Contains(t, texts, "cresc.")

			_, err := d.Flush()
			require.NoError(t, err)
			for _, f := range d.Floats() {
				if f.Text == "cresc." {
					assert.Equal(t, score.Unbounded, f.Extension)
					assert.Len(t, f.Range.Columns, 4, "stops at the end repeat")
				}
			}
		})
	}
}

func TestBuildLinesOverride(t *testing.T) {
	f, err := Decode(strings.NewReader(etudeTOML), TOML)
	require.NoError(t, err)
	d, err := Build(f, BuildOptions{Lines: score.PresetBass})
	require.NoError(t, err)
	lines := d.LinesOf(d.Measures()[0].ID)
	require.Len(t, lines, 1)
	assert.Equal(t, score.BassClef, lines[0].Clef)
}

func TestBuildGroups(t *testing.T) {
	src := `
lines = "duo"

[[groups]]
name = "duo"

  [[groups.lines]]
  name = "flute"
  voices = [0]

  [[groups.lines]]
  name = "bass"
  clef = "bass"
  voices = [1]

[[measures]]
voices = ["C5:1", "C3:1"]
`
	d := buildString(t, src, TOML)
	lines := d.LinesOf(d.Measures()[0].ID)
	require.Len(t, lines, 2)
	assert.Equal(t, "flute", lines[0].Name)
	assert.Equal(t, score.BassClef, lines[1].Clef)
	assert.Equal(t, []string{"duo"}, d.Groups())
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errors.Code
	}{
		{"bad token", "[[measures]]\nvoices = [\"C4\"]\n", errors.ErrCodeInvalidScoreFile},
		{"bad flag", "[[measures]]\nvoices = [\"C4:4,loud\"]\n", errors.ErrCodeInvalidScoreFile},
		{"bad duration", "[[measures]]\nvoices = [\"C4:3\"]\n", errors.ErrCodeInvalidDuration},
		{"overflow", "[[measures]]\nvoices = [\"C4:1 C4:4\"]\n", errors.ErrCodeMeasureOverflow},
		{"bad jump", "[[measures]]\njump = \"D.X.\"\n", errors.ErrCodeInvalidScoreFile},
		{"missing connective start", "[[measures]]\n[[measures.connectives]]\nkind = \"tie\"\n", errors.ErrCodeInvalidScoreFile},
		{"extension without context", "[[measures]]\nvoices = [\"C4:1\"]\n[[measures.annotations]]\ntext = \"x\"\nextension = \"open\"\n", errors.ErrCodeNoExtensionAnchor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Decode(strings.NewReader(tt.src), TOML)
			require.NoError(t, err)
			_, err = Build(f, BuildOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "%v", err)
			assert.Contains(t, err.Error(), "measure 1")
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("titel = \"x\"\n"), TOML)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScoreFile))

	_, err = Decode(strings.NewReader("titel: x\n"), YAML)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScoreFile))

	_, err = Decode(strings.NewReader(""), "json")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "etude.yml")
	require.NoError(t, os.WriteFile(path, []byte(etudeYAML), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Etude", f.Title)
	assert.Len(t, f.Measures, 3)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = Load(filepath.Join(dir, "score.json"))
	assert.Error(t, err)
}

func TestParseExtension(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"open", score.Unbounded},
		{"1", 768},
		{"2 4", 576},
		{"4.", 288},
	}
	for _, tt := range tests {
		got, err := parseExtension(tt.in)
		if err != nil {
			t.Errorf("parseExtension(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseExtension(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseJump(t *testing.T) {
	for in, want := range map[string]score.Jump{
		"D.C.":          score.DaCapo,
		"D.S. al Coda":  score.DalSegnoAlCoda,
		"d.c.  al fine": score.DaCapoAlFine,
		"DS al Fine":    score.DalSegnoAlFine,
	} {
		got, err := parseJump(in)
		if err != nil || got != want {
			t.Errorf("parseJump(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestExampleScores(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "scores", "*"))
	require.NoError(t, err)

	built := 0
	for _, path := range paths {
		if _, err := FormatOf(path); err != nil || filepath.Base(path) == "staffline.toml" {
			continue
		}
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := Load(path)
			require.NoError(t, err)
			d, err := Build(f, BuildOptions{})
			require.NoError(t, err)
			assert.NotEmpty(t, d.Title)
			assert.NotEmpty(t, d.Measures())
		})
		built++
	}
	assert.Equal(t, 2, built)
}
