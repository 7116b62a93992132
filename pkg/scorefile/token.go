package scorefile

import (
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

// symbolToken is one parsed entry of a voice string.
type symbolToken struct {
	rest    bool
	pitches []theory.Note
	dur     theory.Duration
	opts    score.NoteOptions
}

// addVoice appends the symbols of a voice token string to measure id.
func addVoice(d *score.Document, id score.MeasureID, voice int, tokens string) ([]score.SymbolID, error) {
	var ids []score.SymbolID
	for _, tok := range strings.Fields(tokens) {
		st, err := parseToken(d.Notes, tok)
		if err != nil {
			return nil, err
		}
		var sid score.SymbolID
		if st.rest {
			sid, err = d.AddRest(id, voice, st.dur, score.RestOptions{})
		} else {
			sid, err = d.AddChord(id, voice, st.pitches, st.dur, st.opts)
		}
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "voice %d symbol %q", voice, tok)
		}
		ids = append(ids, sid)
	}
	return ids, nil
}

// parseToken parses pitch[+pitch...]:duration[,flag...] or r:duration.
func parseToken(notes *theory.NoteTable, tok string) (symbolToken, error) {
	head, rest, ok := strings.Cut(tok, ":")
	if !ok || head == "" || rest == "" {
		return symbolToken{}, errors.New(errors.ErrCodeInvalidScoreFile, "symbol %q is not pitch:duration", tok)
	}
	parts := strings.Split(rest, ",")

	var st symbolToken
	dur, err := theory.ParseDuration(parts[0])
	if err != nil {
		return symbolToken{}, err
	}
	st.dur = dur

	if strings.EqualFold(head, "r") {
		if len(parts) > 1 {
			return symbolToken{}, errors.New(errors.ErrCodeInvalidScoreFile, "rest %q takes no flags", tok)
		}
		st.rest = true
		return st, nil
	}

	for _, name := range strings.Split(head, "+") {
		n, err := notes.Lookup(name)
		if err != nil {
			return symbolToken{}, err
		}
		st.pitches = append(st.pitches, n)
	}
	for _, flag := range parts[1:] {
		switch strings.ToLower(flag) {
		case "stacc", "staccato":
			st.opts.Staccato = true
		case "accent", ">":
			st.opts.Accent = true
		case "arp", "arpeggio":
			st.opts.Arpeggio = true
		case "up":
			st.opts.Stem = score.StemUp
		case "down":
			st.opts.Stem = score.StemDown
		default:
			return symbolToken{}, errors.New(errors.ErrCodeInvalidScoreFile, "unknown flag %q in %q", flag, tok)
		}
	}
	return st, nil
}

func parseJump(s string) (score.Jump, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), " "))
	for j := score.DaCapo; j <= score.DalSegnoAlCoda; j++ {
		if strings.ToLower(j.String()) == norm {
			return j, nil
		}
	}
	aliases := map[string]score.Jump{
		"dc":         score.DaCapo,
		"dc al fine": score.DaCapoAlFine,
		"dc al coda": score.DaCapoAlCoda,
		"ds":         score.DalSegno,
		"ds al fine": score.DalSegnoAlFine,
		"ds al coda": score.DalSegnoAlCoda,
		"da capo":    score.DaCapo,
		"dal segno":  score.DalSegno,
	}
	if j, ok := aliases[norm]; ok {
		return j, nil
	}
	return score.NoJump, errors.New(errors.ErrCodeInvalidScoreFile, "unknown jump %q", s)
}

func parseBarline(s string) (score.Barline, error) {
	switch strings.ToLower(s) {
	case "":
		return score.NoBarline, nil
	case "left":
		return score.LeftBarline, nil
	case "right":
		return score.RightBarline, nil
	}
	return score.NoBarline, errors.New(errors.ErrCodeInvalidScoreFile, "unknown barline %q", s)
}

func parseSide(s string) (score.Side, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return score.SideAuto, nil
	case "above":
		return score.Above, nil
	case "below":
		return score.Below, nil
	}
	return score.SideAuto, errors.New(errors.ErrCodeInvalidScoreFile, "unknown side %q", s)
}

func parseContext(s string) (score.Context, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return score.NoContext, nil
	case "dynamics":
		return score.Dynamics, nil
	case "tempo":
		return score.TempoContext, nil
	}
	return score.NoContext, errors.New(errors.ErrCodeInvalidScoreFile, "unknown annotation context %q", s)
}

// parseExtension reads "open" or a space separated sum of note values.
func parseExtension(s string) (int, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0, nil
	case "open":
		return score.Unbounded, nil
	}
	ticks := 0
	for _, f := range strings.Fields(s) {
		dur, err := theory.ParseDuration(f)
		if err != nil {
			return 0, err
		}
		ticks += dur.Ticks()
	}
	return ticks, nil
}

func parseConnectiveKind(s string) (score.ConnectiveKind, error) {
	switch strings.ToLower(s) {
	case "tie":
		return score.Tie, nil
	case "slur":
		return score.Slur, nil
	case "slide":
		return score.Slide, nil
	}
	return score.Tie, errors.New(errors.ErrCodeInvalidScoreFile, "unknown connective kind %q", s)
}

func parseSpan(s string) (score.SpanKind, error) {
	switch strings.ToLower(s) {
	case "", "count":
		return score.SpanCount, nil
	case "stub":
		return score.SpanStub, nil
	case "measure":
		return score.SpanToMeasureEnd, nil
	}
	return score.SpanCount, errors.New(errors.ErrCodeInvalidScoreFile, "unknown connective span %q", s)
}

func parsePlacement(s string) (score.Placement, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return score.PlaceAuto, nil
	case "above":
		return score.PlaceAbove, nil
	case "below":
		return score.PlaceBelow, nil
	case "tip":
		return score.PlaceStemTip, nil
	case "center":
		return score.PlaceCenter, nil
	}
	return score.PlaceAuto, errors.New(errors.ErrCodeInvalidScoreFile, "unknown connective placement %q", s)
}
