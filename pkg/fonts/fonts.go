// Package fonts provides the embedded glyph assets used when rendering
// scores.
//
// The two clef glyphs are SVG files embedded directly into the binary using
// go:embed, so rendering needs no external files. Text is set in the
// renderer's serif family with music symbols taken from the fallback list.
package fonts

import (
	"embed"
	"encoding/base64"
	"fmt"
	"sync"
)

//go:embed glyphs/*.svg
var glyphFS embed.FS

// Glyph names, matching the files under glyphs/.
const (
	TrebleClef = "treble-clef"
	BassClef   = "bass-clef"
)

// Glyph returns the SVG source of the named glyph.
func Glyph(name string) ([]byte, error) {
	data, err := glyphFS.ReadFile("glyphs/" + name + ".svg")
	if err != nil {
		return nil, fmt.Errorf("glyph %q: %w", name, err)
	}
	return data, nil
}

// Names lists the embedded glyphs.
func Names() []string { return []string{TrebleClef, BassClef} }

// Loader serves embedded glyphs. The zero value is ready to use and safe for
// concurrent use.
type Loader struct{}

// Glyph implements the render package's GlyphLoader.
func (Loader) Glyph(name string) ([]byte, error) { return Glyph(name) }

// Cache for base64 data URIs (computed once per glyph on first access).
var (
	uriMu    sync.Mutex
	uriCache = make(map[string]string)
)

// DataURI returns the glyph as an SVG data URI for <image href>. The result
// is cached after first computation.
func DataURI(name string) (string, error) {
	uriMu.Lock()
	defer uriMu.Unlock()
	if uri, ok := uriCache[name]; ok {
		return uri, nil
	}
	data, err := Glyph(name)
	if err != nil {
		return "", err
	}
	uri := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(data)
	uriCache[name] = uri
	return uri, nil
}

// FontFamily is the CSS font-family used for score text.
const FontFamily = "Bravura Text"

// FallbackFontFamily lists families that carry the music symbol range.
const FallbackFontFamily = `'Bravura Text', 'Noto Music', 'Segoe UI Symbol', 'DejaVu Serif', serif`
