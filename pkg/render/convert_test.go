package render

import (
	"testing"

	"github.com/matzehuels/staffline/pkg/errors"
)

func TestConvertMissingBinary(t *testing.T) {
	t.Setenv(ConverterEnv, "staffline-no-such-converter")

	if CanConvert() {
		t.Fatal("CanConvert() = true with a missing binary")
	}
	_, err := ToPDF([]byte("<svg/>"))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPDF() error = %v, want UNSUPPORTED", err)
	}
}

func TestToPNGScale(t *testing.T) {
	for _, scale := range []float64{0, -1} {
		_, err := ToPNG([]byte("<svg/>"), scale)
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("ToPNG(scale=%v) error = %v, want INVALID_INPUT", scale, err)
		}
	}
}

func TestConvert(t *testing.T) {
	if !CanConvert() {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`)

	png, err := ToPNG(svg, 2)
	if err != nil {
		t.Fatalf("ToPNG: %v", err)
	}
	if string(png[1:4]) != "PNG" {
		t.Errorf("ToPNG output is not a PNG")
	}

	pdf, err := ToPDF(svg)
	if err != nil {
		t.Fatalf("ToPDF: %v", err)
	}
	if string(pdf[:4]) != "%PDF" {
		t.Errorf("ToPDF output is not a PDF")
	}
}
