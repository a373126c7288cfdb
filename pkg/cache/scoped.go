package cache

// ScopedKeyer wraps a Keyer with a prefix so independent deployments (or
// users of a shared Redis instance) get isolated namespaces.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// CompositionKey generates a prefixed composition key.
func (k *ScopedKeyer) CompositionKey(opts CompositionKeyOpts) string {
	return k.prefix + k.inner.CompositionKey(opts)
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(compositionHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(compositionHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(compositionHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(compositionHash, opts)
}
