package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one redis or mongo store without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer falls back
// to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ChartKey generates a prefixed chart key.
func (k *ScopedKeyer) ChartKey(opts ChartKeyOpts) string {
	return k.prefix + k.inner.ChartKey(opts)
}
