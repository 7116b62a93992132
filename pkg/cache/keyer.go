package cache

// ArtifactKeyOpts lists every option that changes a rendered score.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Width       float64 `json:"width"`
	Unit        float64 `json:"unit"`
	Lines       string  `json:"lines,omitempty"`
	Background  string  `json:"background,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// MIDIKeyOpts lists every option that changes an exported MIDI file.
type MIDIKeyOpts struct {
	Channel uint8 `json:"channel"`
	Program uint8 `json:"program"`
}

// GraphKeyOpts lists every option that changes a navigation graph render.
type GraphKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// Keyer derives cache keys from a score content hash and output options.
type Keyer interface {
	ArtifactKey(scoreHash string, opts ArtifactKeyOpts) string
	MIDIKey(scoreHash string, opts MIDIKeyOpts) string
	GraphKey(scoreHash string, opts GraphKeyOpts) string
}

// DefaultKeyer hashes the score hash and options into prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the stock keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ArtifactKey(scoreHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", scoreHash, opts)
}

func (DefaultKeyer) MIDIKey(scoreHash string, opts MIDIKeyOpts) string {
	return hashKey("midi", scoreHash, opts)
}

func (DefaultKeyer) GraphKey(scoreHash string, opts GraphKeyOpts) string {
	return hashKey("navgraph", scoreHash, opts)
}
