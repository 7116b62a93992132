package scorefile

// File is the decoded form of a score file. Field names match the TOML and
// YAML keys.
type File struct {
	Title    string      `toml:"title" yaml:"title"`
	Lines    string      `toml:"lines" yaml:"lines"`
	Key      string      `toml:"key" yaml:"key"`
	Time     string      `toml:"time" yaml:"time"`
	Tempo    float64     `toml:"tempo" yaml:"tempo"`
	Groups   []LineGroup `toml:"groups" yaml:"groups"`
	Measures []Measure   `toml:"measures" yaml:"measures"`
}

// LineGroup registers a named set of notation lines.
type LineGroup struct {
	Name  string `toml:"name" yaml:"name"`
	Lines []Line `toml:"lines" yaml:"lines"`
}

// Line is one staff or tab line of a group.
type Line struct {
	Name   string   `toml:"name" yaml:"name"`
	Kind   string   `toml:"kind" yaml:"kind"` // staff or tab
	Clef   string   `toml:"clef" yaml:"clef"` // treble or bass
	Voices []int    `toml:"voices" yaml:"voices"`
	Tuning []string `toml:"tuning" yaml:"tuning"` // highest string first
}

// Measure describes one measure.
type Measure struct {
	Key       string  `toml:"key" yaml:"key"`
	Time      string  `toml:"time" yaml:"time"`
	Tempo     float64 `toml:"tempo" yaml:"tempo"`
	TempoBeat string  `toml:"tempo_beat" yaml:"tempo_beat"`
	Lines     string  `toml:"lines" yaml:"lines"`

	// Voices holds one token string per voice, voice 0 first.
	Voices        []string `toml:"voices" yaml:"voices"`
	CompleteRests bool     `toml:"complete_rests" yaml:"complete_rests"`

	RepeatStart bool   `toml:"repeat_start" yaml:"repeat_start"`
	RepeatEnd   int    `toml:"repeat_end" yaml:"repeat_end"`
	Ending      []int  `toml:"ending" yaml:"ending"`
	Segno       bool   `toml:"segno" yaml:"segno"`
	Coda        bool   `toml:"coda" yaml:"coda"`
	ToCoda      bool   `toml:"to_coda" yaml:"to_coda"`
	Fine        bool   `toml:"fine" yaml:"fine"`
	Jump        string `toml:"jump" yaml:"jump"`

	EndRow     bool `toml:"end_row" yaml:"end_row"`
	EndSection bool `toml:"end_section" yaml:"end_section"`
	EndSong    bool `toml:"end_song" yaml:"end_song"`

	Annotations []Annotation `toml:"annotations" yaml:"annotations"`
	Labels      []Label      `toml:"labels" yaml:"labels"`
	Fermatas    []Fermata    `toml:"fermatas" yaml:"fermatas"`
	Connectives []Connective `toml:"connectives" yaml:"connectives"`
}

// Annotation is a dynamics, tempo or free text mark.
type Annotation struct {
	Text    string  `toml:"text" yaml:"text"`
	Context string  `toml:"context" yaml:"context"` // dynamics, tempo or empty
	Beat    float64 `toml:"beat" yaml:"beat"`
	Barline string  `toml:"barline" yaml:"barline"` // left or right
	Side    string  `toml:"side" yaml:"side"`       // above or below
	// Extension is "open" or a sum of note values such as "1 2".
	Extension string `toml:"extension" yaml:"extension"`
}

// Label is a chord or note label.
type Label struct {
	Text string  `toml:"text" yaml:"text"`
	Kind string  `toml:"kind" yaml:"kind"` // chord or note
	Beat float64 `toml:"beat" yaml:"beat"`
	Side string  `toml:"side" yaml:"side"`
}

// Fermata marks a column or the right barline.
type Fermata struct {
	Beat    float64 `toml:"beat" yaml:"beat"`
	Barline bool    `toml:"barline" yaml:"barline"`
	Side    string  `toml:"side" yaml:"side"`
}

// Connective is a tie, slur or slide starting at a symbol of this measure.
type Connective struct {
	Kind  string `toml:"kind" yaml:"kind"` // tie, slur or slide
	Voice int    `toml:"voice" yaml:"voice"`
	// Symbol is the index of the starting symbol within the voice.
	Symbol    int    `toml:"symbol" yaml:"symbol"`
	Count     int    `toml:"count" yaml:"count"`
	Span      string `toml:"span" yaml:"span"` // count, stub or measure
	Placement string `toml:"placement" yaml:"placement"`
}
