package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each scope (for example
// one editing session) its own key namespace.
//
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:"+id+":")
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

// ChartKey generates a prefixed chart key.
func (k *ScopedKeyer) ChartKey(contentHash string) string {
	return k.prefix + k.inner.ChartKey(contentHash)
}

// MockupKey generates a prefixed mockup key.
func (k *ScopedKeyer) MockupKey(contentHash string, opts MockupKeyOpts) string {
	return k.prefix + k.inner.MockupKey(contentHash, opts)
}
