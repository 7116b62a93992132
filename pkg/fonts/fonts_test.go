package fonts

import (
	"strings"
	"testing"
)

func TestGlyph(t *testing.T) {
	for _, name := range Names() {
		data, err := Glyph(name)
		if err != nil {
			t.Fatalf("Glyph(%q) error: %v", name, err)
		}
		if !strings.HasPrefix(string(data), "<svg") {
			t.Errorf("Glyph(%q) is not an SVG document", name)
		}
	}
	if _, err := Glyph("alto-clef"); err == nil {
		t.Error("Glyph(alto-clef) succeeded, want error")
	}
}

func TestDataURI(t *testing.T) {
	uri, err := DataURI(TrebleClef)
	if err != nil {
		t.Fatalf("DataURI() error: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/svg+xml;base64,") {
		t.Errorf("DataURI() = %q", uri[:30])
	}
	again, _ := DataURI(TrebleClef)
	if again != uri {
		t.Error("DataURI() not stable across calls")
	}
}
