package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// release so that layout changes between versions never serve old output:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v"+buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ArtifactKey(scoreHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(scoreHash, opts)
}

func (k *ScopedKeyer) MIDIKey(scoreHash string, opts MIDIKeyOpts) string {
	return k.prefix + k.inner.MIDIKey(scoreHash, opts)
}

func (k *ScopedKeyer) GraphKey(scoreHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(scoreHash, opts)
}
