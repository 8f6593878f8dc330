package cache

// ScopedKeyer wraps a Keyer with a prefix. The server uses it to keep
// reports computed with a user-supplied reference table apart from those
// computed with the built-in one.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "refdb:"+tableHash+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReportKey generates a prefixed report key.
func (k *ScopedKeyer) ReportKey(modelHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(modelHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(modelHash, opts)
}
