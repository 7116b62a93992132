package scorefile

import (
	"math"
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

// BuildOptions adjusts how a file becomes a document.
type BuildOptions struct {
	// Lines overrides the file's initial line preset or group.
	Lines string
}

// Build creates a document from f. Errors name the 1-based measure they
// occur in.
func Build(f *File, opts BuildOptions) (*score.Document, error) {
	groups := make(map[string][]score.Line, len(f.Groups))
	for _, g := range f.Groups {
		lines, err := buildLines(g)
		if err != nil {
			return nil, err
		}
		groups[g.Name] = lines
	}

	lines := f.Lines
	if opts.Lines != "" {
		lines = opts.Lines
	}
	d, err := score.NewDocument(score.Config{Title: f.Title, Lines: lines, Groups: groups})
	if err != nil {
		return nil, err
	}

	for i, fm := range f.Measures {
		defaults := Measure{}
		if i == 0 {
			defaults = Measure{Key: f.Key, Time: f.Time, Tempo: f.Tempo}
		}
		if err := buildMeasure(d, fm, defaults); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "measure %d", i+1)
		}
	}
	return d, nil
}

func buildLines(g LineGroup) ([]score.Line, error) {
	out := make([]score.Line, 0, len(g.Lines))
	for _, l := range g.Lines {
		line := score.Line{Name: l.Name, Voices: l.Voices}
		switch strings.ToLower(l.Kind) {
		case "", "staff":
			line.Kind = score.Staff
		case "tab":
			line.Kind = score.Tab
			line.Tuning = score.StandardTuning
		default:
			return nil, errors.New(errors.ErrCodeInvalidScoreFile, "line %q: unknown kind %q", l.Name, l.Kind)
		}
		switch strings.ToLower(l.Clef) {
		case "", "treble":
		case "bass":
			line.Clef = score.BassClef
		default:
			return nil, errors.New(errors.ErrCodeInvalidScoreFile, "line %q: unknown clef %q", l.Name, l.Clef)
		}
		if len(l.Tuning) > 0 {
			line.Tuning = make([]theory.Note, len(l.Tuning))
			for i, s := range l.Tuning {
				n, err := theory.ParseNote(s)
				if err != nil {
					return nil, err
				}
				line.Tuning[i] = n
			}
		}
		out = append(out, line)
	}
	return out, nil
}

func buildMeasure(d *score.Document, fm, defaults Measure) error {
	if fm.Lines != "" {
		if err := d.UseLines(fm.Lines); err != nil {
			return err
		}
	}
	id := d.AddMeasure()

	if err := signatures(d, id, fm, defaults); err != nil {
		return err
	}

	symbols := make([][]score.SymbolID, len(fm.Voices))
	for v, tokens := range fm.Voices {
		ids, err := addVoice(d, id, v, tokens)
		if err != nil {
			return err
		}
		symbols[v] = ids
		if fm.CompleteRests && len(ids) > 0 {
			if _, err := d.CompleteRests(id, v); err != nil {
				return err
			}
		}
	}

	if err := navigation(d, id, fm); err != nil {
		return err
	}
	if err := floats(d, id, fm); err != nil {
		return err
	}
	if err := connectives(d, fm, symbols); err != nil {
		return err
	}

	if fm.EndSection {
		if err := d.EndSection(id); err != nil {
			return err
		}
	}
	if fm.EndSong {
		if err := d.EndSong(id); err != nil {
			return err
		}
	}
	if fm.EndRow {
		d.EndRow()
	}
	return nil
}

func signatures(d *score.Document, id score.MeasureID, fm, defaults Measure) error {
	key, time, bpm := fm.Key, fm.Time, fm.Tempo
	if key == "" {
		key = defaults.Key
	}
	if time == "" {
		time = defaults.Time
	}
	if bpm == 0 {
		bpm = defaults.Tempo
	}

	if key != "" {
		k, err := theory.ParseKeySignature(key)
		if err != nil {
			return err
		}
		if err := d.SetKeySignature(id, k); err != nil {
			return err
		}
	}
	if time != "" {
		t, err := theory.ParseTimeSignature(time)
		if err != nil {
			return err
		}
		if err := d.SetTimeSignature(id, t); err != nil {
			return err
		}
	}
	if bpm != 0 {
		tempo := theory.Tempo{BPM: bpm, Beat: theory.NewDuration(theory.Quarter)}
		if fm.TempoBeat != "" {
			beat, err := theory.ParseDuration(fm.TempoBeat)
			if err != nil {
				return err
			}
			tempo.Beat = beat
		}
		if err := d.SetTempo(id, tempo); err != nil {
			return err
		}
	}
	return nil
}

func navigation(d *score.Document, id score.MeasureID, fm Measure) error {
	var marks []score.NavigationOptions
	if fm.RepeatStart {
		marks = append(marks, score.NavigationOptions{Kind: score.NavStartRepeat})
	}
	if len(fm.Ending) > 0 {
		marks = append(marks, score.NavigationOptions{Kind: score.NavEnding, Passages: fm.Ending})
	}
	if fm.Segno {
		marks = append(marks, score.NavigationOptions{Kind: score.NavSegno})
	}
	if fm.Coda {
		marks = append(marks, score.NavigationOptions{Kind: score.NavCoda})
	}
	if fm.ToCoda {
		marks = append(marks, score.NavigationOptions{Kind: score.NavToCoda})
	}
	if fm.Fine {
		marks = append(marks, score.NavigationOptions{Kind: score.NavFine})
	}
	if fm.RepeatEnd != 0 {
		marks = append(marks, score.NavigationOptions{Kind: score.NavEndRepeat, Count: fm.RepeatEnd})
	}
	if fm.Jump != "" {
		j, err := parseJump(fm.Jump)
		if err != nil {
			return err
		}
		marks = append(marks, score.NavigationOptions{Kind: score.NavJump, Jump: j})
	}
	for _, opts := range marks {
		if err := d.AddNavigation(id, opts); err != nil {
			return err
		}
	}
	return nil
}

func floats(d *score.Document, id score.MeasureID, fm Measure) error {
	m := d.Measure(id)
	for _, a := range fm.Annotations {
		opts := score.AnnotationOptions{Text: a.Text}
		var err error
		if opts.Position, err = beatTicks(m, a.Beat); err != nil {
			return err
		}
		if opts.Barline, err = parseBarline(a.Barline); err != nil {
			return err
		}
		if opts.Side, err = parseSide(a.Side); err != nil {
			return err
		}
		if opts.Context, err = parseContext(a.Context); err != nil {
			return err
		}
		if opts.Extension, err = parseExtension(a.Extension); err != nil {
			return err
		}
		if _, err := d.AddAnnotation(id, opts); err != nil {
			return err
		}
	}

	for _, l := range fm.Labels {
		opts := score.LabelOptions{Text: l.Text}
		var err error
		if opts.Position, err = beatTicks(m, l.Beat); err != nil {
			return err
		}
		if opts.Side, err = parseSide(l.Side); err != nil {
			return err
		}
		switch strings.ToLower(l.Kind) {
		case "", "note":
			opts.Kind = score.NoteLabel
		case "chord":
			opts.Kind = score.ChordLabel
		default:
			return errors.New(errors.ErrCodeInvalidScoreFile, "unknown label kind %q", l.Kind)
		}
		if _, err := d.AddLabel(id, opts); err != nil {
			return err
		}
	}

	for _, f := range fm.Fermatas {
		opts := score.FermataOptions{Barline: f.Barline}
		var err error
		if !f.Barline {
			if opts.Position, err = beatTicks(m, f.Beat); err != nil {
				return err
			}
		}
		if opts.Side, err = parseSide(f.Side); err != nil {
			return err
		}
		if _, err := d.AddFermata(id, opts); err != nil {
			return err
		}
	}
	return nil
}

func connectives(d *score.Document, fm Measure, symbols [][]score.SymbolID) error {
	for _, c := range fm.Connectives {
		if c.Voice < 0 || c.Voice >= len(symbols) || c.Symbol < 0 || c.Symbol >= len(symbols[c.Voice]) {
			return errors.New(errors.ErrCodeInvalidScoreFile,
				"connective starts at voice %d symbol %d, which does not exist", c.Voice, c.Symbol)
		}
		opts := score.ConnectiveOptions{Count: c.Count}
		var err error
		if opts.Kind, err = parseConnectiveKind(c.Kind); err != nil {
			return err
		}
		if opts.Span, err = parseSpan(c.Span); err != nil {
			return err
		}
		if opts.Placement, err = parsePlacement(c.Placement); err != nil {
			return err
		}
		if _, err := d.AddConnective(symbols[c.Voice][c.Symbol], opts); err != nil {
			return err
		}
	}
	return nil
}

// beatTicks converts a beat offset into a tick position of m.
func beatTicks(m *score.Measure, beat float64) (int, error) {
	if beat < 0 || math.IsNaN(beat) {
		return 0, errors.New(errors.ErrCodeInvalidScoreFile, "invalid beat %v", beat)
	}
	return int(math.Round(beat * float64(m.Time.BeatTicks()))), nil
}
