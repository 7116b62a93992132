package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/staffline/pkg/errors"
	"github.com/matzehuels/staffline/pkg/layout"
	"github.com/matzehuels/staffline/pkg/render"
	"github.com/matzehuels/staffline/pkg/score"
	"github.com/matzehuels/staffline/pkg/theory"
)

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	d := score.MustNew(score.Config{Title: "Fish & Chips", Lines: score.PresetTrebleTab})
	m := d.AddMeasure()
	q, err := theory.ParseDuration("4")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"E4", "G4", "B4", "E5"} {
		if _, err := d.AddNote(m, 0, d.Notes.MustLookup(name), q, score.NoteOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.AddLabel(m, score.LabelOptions{Kind: score.ChordLabel, Text: "Em"}); err != nil {
		t.Fatal(err)
	}
	lay, err := layout.NewEngine().Layout(d, 500)
	if err != nil {
		t.Fatal(err)
	}
	return lay
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(testLayout(t))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	s := string(svg)
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg"`,
		"<title>Fish &amp; Chips</title>",
		`<image class="treble-clef"`,
		`<text class="label"`,
		`<text class="fret"`,
		"<ellipse",
		"</svg>",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("RenderSVG() missing %q", want)
		}
	}
	if strings.Contains(s, `class="hit"`) {
		t.Error("hit boxes rendered without WithInteraction")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg, err := RenderSVG(testLayout(t), WithBackground("#fffdf5"), WithInteraction())
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, `fill="#fffdf5"`) {
		t.Error("background missing")
	}
	if !strings.Contains(s, `<rect class="hit" data-kind="note"`) {
		t.Error("note hit boxes missing")
	}
	if !strings.Contains(s, `data-kind="float"`) {
		t.Error("label hit box missing")
	}
}

func TestRenderJSON(t *testing.T) {
	lay := testLayout(t)
	data, err := RenderJSON(lay, WithJSONSource("etude.toml"), WithJSONHits())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Width != lay.Width {
		t.Errorf("Width = %v, want %v", out.Width, lay.Width)
	}
	if out.Source != "etude.toml" {
		t.Errorf("Source = %q", out.Source)
	}
	if len(out.Rows) != 1 {
		t.Fatalf("Rows = %d, want 1", len(out.Rows))
	}
	row := out.Rows[0]
	if len(row.Lines) != 2 || row.Lines[1].Kind != "tab" {
		t.Errorf("Lines = %+v", row.Lines)
	}
	if len(row.Measures) != 1 || len(row.Measures[0].Columns) != 4 {
		t.Errorf("Measures = %+v", row.Measures)
	}
	if len(out.Shapes) != 0 {
		t.Error("Shapes exported without WithJSONShapes")
	}
	if len(out.Hits) == 0 {
		t.Error("Hits missing with WithJSONHits")
	}
}

func TestRenderJSONShapes(t *testing.T) {
	lay := testLayout(t)
	data, err := RenderJSON(lay, WithJSONShapes())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if len(out.Shapes) != len(lay.Shapes) {
		t.Errorf("Shapes = %d, want %d", len(out.Shapes), len(lay.Shapes))
	}
}

func TestRenderRaster(t *testing.T) {
	lay := testLayout(t)

	if _, err := RenderPNG(lay, WithScale(0)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("RenderPNG(scale=0) error = %v, want INVALID_INPUT", err)
	}

	t.Run("missing converter", func(t *testing.T) {
		t.Setenv(render.ConverterEnv, "staffline-no-such-converter")
		if _, err := RenderPDF(lay); !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("RenderPDF() error = %v, want UNSUPPORTED", err)
		}
	})

	if !render.CanConvert() {
		t.Skip("rsvg-convert not installed")
	}
	png, err := RenderPNG(lay, WithSVGOptions(WithInteraction()))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	if string(png[1:4]) != "PNG" {
		t.Errorf("RenderPNG() produced %q, want a PNG header", png[:4])
	}
}
