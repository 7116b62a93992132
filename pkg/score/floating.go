package score

import (
	"github.com/matzehuels/staffline/pkg/errors"
)

// FloatKind is the closed set of floating object variants.
type FloatKind int

const (
	FermataFloat FloatKind = iota
	LabelFloat
	AnnotationFloat
	NavigationFloat
	EndingFloat
)

// LayoutGroup controls collision avoidance between floating objects.
// Groups are placed in declaration order, so earlier groups sit closer to
// the staff.
type LayoutGroup int

const (
	GroupFermata LayoutGroup = iota
	GroupNoteLabel
	GroupChordLabel
	GroupNavigation
	GroupEnding
	GroupTempo
	GroupDynamics
	numGroups
)

// LayoutGroups lists every group in placement order.
func LayoutGroups() []LayoutGroup {
	out := make([]LayoutGroup, numGroups)
	for i := range out {
		out[i] = LayoutGroup(i)
	}
	return out
}

func (g LayoutGroup) String() string {
	switch g {
	case GroupFermata:
		return "fermata"
	case GroupNoteLabel:
		return "note-label"
	case GroupChordLabel:
		return "chord-label"
	case GroupNavigation:
		return "navigation"
	case GroupEnding:
		return "ending"
	case GroupTempo:
		return "tempo"
	case GroupDynamics:
		return "dynamics"
	}
	return "unknown"
}

// RowAligned reports whether all objects of the group in a row share one
// vertical position.
func (g LayoutGroup) RowAligned() bool {
	switch g {
	case GroupChordLabel, GroupNavigation, GroupEnding, GroupTempo, GroupDynamics:
		return true
	}
	return false
}

// WidensColumn reports whether objects of the group take part in column
// width computation.
func (g LayoutGroup) WidensColumn() bool {
	return g == GroupNoteLabel || g == GroupChordLabel
}

// Side is the vertical side of the lines a floating object is placed on.
type Side int

const (
	SideAuto Side = iota
	Above
	Below
)

// Barline selects a barline anchor.
type Barline int

const (
	NoBarline Barline = iota
	LeftBarline
	RightBarline
)

// Anchor ties a floating object to a column or to one of the measure's
// barlines.
type Anchor struct {
	Column  ColumnID
	Barline Barline
}

// OnBarline reports whether the anchor is a barline.
func (a Anchor) OnBarline() bool { return a.Barline != NoBarline }

// Context classifies annotations whose extensions interact.
type Context int

const (
	NoContext Context = iota
	Dynamics
	TempoContext
)

// Unbounded is the extension length of an open continuation line.
const Unbounded = -1

// Float is a fermata, label, annotation, navigation mark or ending bracket.
type Float struct {
	ID      FloatID
	Kind    FloatKind
	Group   LayoutGroup
	Measure MeasureID
	Anchor  Anchor
	Side    Side
	Text    string
	Context Context

	// Extension is the continuation length in ticks: 0 for none,
	// Unbounded for an open line.
	Extension int
	// Range is resolved by Flush for annotations with an extension.
	Range ExtensionRange
}

// HasExtension reports whether the float carries a continuation line.
func (f *Float) HasExtension() bool { return f.Extension != 0 }

// AnnotationOptions configures [Document.AddAnnotation].
type AnnotationOptions struct {
	Position  int     // column position in ticks
	Barline   Barline // anchor to a barline instead of a column
	Context   Context
	Text      string
	Side      Side
	Extension int
}

// LabelKind distinguishes note labels from chord labels.
type LabelKind int

const (
	NoteLabel LabelKind = iota
	ChordLabel
)

// LabelOptions configures [Document.AddLabel].
type LabelOptions struct {
	Position int
	Kind     LabelKind
	Text     string
	Side     Side
}

// FermataOptions configures [Document.AddFermata].
type FermataOptions struct {
	Position int
	// Barline places the fermata over the measure's right barline.
	Barline bool
	Side    Side
}

// AddAnnotation attaches a text annotation. Dynamics default below the
// lines, everything else above. An extension requires a column anchor.
func (d *Document) AddAnnotation(m MeasureID, opts AnnotationOptions) (FloatID, error) {
	if err := errors.ValidateText(opts.Text); err != nil {
		return NoID, err
	}
	if opts.Extension < Unbounded {
		return NoID, errors.New(errors.ErrCodeInvalidInput, "negative extension %d", opts.Extension)
	}
	if opts.Extension != 0 && (opts.Barline != NoBarline || opts.Context == NoContext) {
		return NoID, errors.New(errors.ErrCodeNoExtensionAnchor,
			"extension of %q needs a dynamics or tempo annotation on a column", opts.Text)
	}

	group, side := GroupTempo, Above
	if opts.Context == Dynamics {
		group, side = GroupDynamics, Below
	}
	if opts.Side != SideAuto {
		side = opts.Side
	}
	anchor, err := d.anchorFor(m, opts.Position, opts.Barline)
	if err != nil {
		if opts.Extension != 0 {
			return NoID, errors.Wrap(errors.ErrCodeNoExtensionAnchor, err, "extension of %q", opts.Text)
		}
		return NoID, err
	}
	return d.addFloat(&Float{
		Kind:      AnnotationFloat,
		Group:     group,
		Measure:   m,
		Anchor:    anchor,
		Side:      side,
		Text:      opts.Text,
		Context:   opts.Context,
		Extension: opts.Extension,
	}), nil
}

// AddLabel attaches a note or chord label to a column. Both kinds widen
// the column to fit the text.
func (d *Document) AddLabel(m MeasureID, opts LabelOptions) (FloatID, error) {
	if err := errors.ValidateText(opts.Text); err != nil {
		return NoID, err
	}
	anchor, err := d.anchorFor(m, opts.Position, NoBarline)
	if err != nil {
		return NoID, err
	}
	group, side := GroupNoteLabel, Below
	if opts.Kind == ChordLabel {
		group, side = GroupChordLabel, Above
	}
	if opts.Side != SideAuto {
		side = opts.Side
	}
	return d.addFloat(&Float{
		Kind:    LabelFloat,
		Group:   group,
		Measure: m,
		Anchor:  anchor,
		Side:    side,
		Text:    opts.Text,
	}), nil
}

// AddFermata places a fermata over a column or the right barline.
func (d *Document) AddFermata(m MeasureID, opts FermataOptions) (FloatID, error) {
	bar := NoBarline
	if opts.Barline {
		bar = RightBarline
	}
	anchor, err := d.anchorFor(m, opts.Position, bar)
	if err != nil {
		return NoID, err
	}
	side := opts.Side
	if side == SideAuto {
		side = Above
	}
	return d.addFloat(&Float{
		Kind:    FermataFloat,
		Group:   GroupFermata,
		Measure: m,
		Anchor:  anchor,
		Side:    side,
	}), nil
}

func (d *Document) anchorFor(m MeasureID, pos int, bar Barline) (Anchor, error) {
	ms, err := d.measureOrErr(m)
	if err != nil {
		return Anchor{}, err
	}
	if bar != NoBarline {
		return Anchor{Column: NoID, Barline: bar}, nil
	}
	c := d.columnAt(ms, pos, false)
	if c == nil {
		return Anchor{}, errors.New(errors.ErrCodeInvalidInput,
			"measure %d has no column at tick %d", ms.Index+1, pos)
	}
	return Anchor{Column: c.ID}, nil
}

func (d *Document) addFloat(f *Float) FloatID {
	f.ID = FloatID(len(d.floats))
	f.Range = ExtensionRange{Start: NoID, End: NoID, Break: NoID}
	d.floats = append(d.floats, f)
	m := d.Measure(f.Measure)
	m.Floats = append(m.Floats, f.ID)
	if f.Anchor.Column != NoID && !f.Anchor.OnBarline() {
		c := d.columns[f.Anchor.Column]
		c.Floats = append(c.Floats, f.ID)
		d.touchColumn(c.ID)
	} else {
		d.touchMeasure(f.Measure)
	}
	return f.ID
}

// ColumnFermata reports whether a fermata sits over column c.
func (d *Document) ColumnFermata(c ColumnID) bool {
	col := d.Column(c)
	if col == nil {
		return false
	}
	for _, fid := range col.Floats {
		if d.floats[fid].Kind == FermataFloat {
			return true
		}
	}
	return false
}

// BarlineFermata reports whether a fermata sits over the right barline of m.
func (d *Document) BarlineFermata(m MeasureID) bool {
	ms := d.Measure(m)
	if ms == nil {
		return false
	}
	for _, fid := range ms.Floats {
		f := d.floats[fid]
		if f.Kind == FermataFloat && f.Anchor.Barline == RightBarline {
			return true
		}
	}
	return false
}

// Annotations returns the annotations anchored to column c.
func (d *Document) Annotations(c ColumnID) []*Float {
	col := d.Column(c)
	if col == nil {
		return nil
	}
	var out []*Float
	for _, fid := range col.Floats {
		if f := d.floats[fid]; f.Kind == AnnotationFloat {
			out = append(out, f)
		}
	}
	return out
}
