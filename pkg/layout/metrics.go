package layout

// Metrics holds every engraving constant. All values are in output units
// (SVG user units) and derive from Unit, half the distance between two
// staff lines.
type Metrics struct {
	Unit float64 `json:"unit"`

	TabSpacing    float64 `json:"tab_spacing"`
	LineGap       float64 `json:"line_gap"`
	RowGap        float64 `json:"row_gap"`
	Margin        float64 `json:"margin"`
	HeadWidth     float64 `json:"head_width"`
	HeadHeight    float64 `json:"head_height"`
	StemLength    float64 `json:"stem_length"`
	MinStemLength float64 `json:"min_stem_length"`
	StemWidth     float64 `json:"stem_width"`
	LineWidth     float64 `json:"line_width"`
	BeamThickness float64 `json:"beam_thickness"`
	BeamGap       float64 `json:"beam_gap"`
	MaxBeamRise   float64 `json:"max_beam_rise"`
	HookLength    float64 `json:"hook_length"`
	FlagWidth     float64 `json:"flag_width"`
	DotGap        float64 `json:"dot_gap"`
	AccidentalW   float64 `json:"accidental_width"`
	ColumnPadding float64 `json:"column_padding"`
	ClefWidth     float64 `json:"clef_width"`
	TimeWidth     float64 `json:"time_width"`
	BarPadding    float64 `json:"bar_padding"`
	RepeatWidth   float64 `json:"repeat_width"`
	FloatPadding  float64 `json:"float_padding"`
	FontSize      float64 `json:"font_size"`
	SmallFontSize float64 `json:"small_font_size"`
	EmptyMeasure  float64 `json:"empty_measure"`
	ArpeggioWidth float64 `json:"arpeggio_width"`
}

// DefaultUnit is the half staff space used by [DefaultMetrics].
const DefaultUnit = 5.0

// DefaultMetrics returns metrics for [DefaultUnit].
func DefaultMetrics() Metrics { return NewMetrics(DefaultUnit) }

// NewMetrics derives a full metric set from unit.
func NewMetrics(unit float64) Metrics {
	if unit <= 0 {
		unit = DefaultUnit
	}
	return Metrics{
		Unit:          unit,
		TabSpacing:    3 * unit,
		LineGap:       10 * unit,
		RowGap:        6 * unit,
		Margin:        4 * unit,
		HeadWidth:     2.6 * unit,
		HeadHeight:    2 * unit,
		StemLength:    7 * unit,
		MinStemLength: 5 * unit,
		StemWidth:     0.25 * unit,
		LineWidth:     0.2 * unit,
		BeamThickness: unit,
		BeamGap:       0.5 * unit,
		MaxBeamRise:   2 * unit,
		HookLength:    2 * unit,
		FlagWidth:     1.8 * unit,
		DotGap:        unit,
		AccidentalW:   2 * unit,
		ColumnPadding: unit,
		ClefWidth:     7 * unit,
		TimeWidth:     4 * unit,
		BarPadding:    2 * unit,
		RepeatWidth:   3 * unit,
		FloatPadding:  unit,
		FontSize:      3 * unit,
		SmallFontSize: 2.4 * unit,
		EmptyMeasure:  12 * unit,
		ArpeggioWidth: 2 * unit,
	}
}

// StaffHeight is the distance from the top to the bottom staff line.
func (m Metrics) StaffHeight() float64 { return 8 * m.Unit }
