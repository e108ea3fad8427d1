package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several redwire servers share one Redis instance.
//
// Example usage:
//
//	// Keys for a staging deployment
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ReportKey generates a prefixed key for report caching.
func (k *ScopedKeyer) ReportKey(inputHash string) string {
	return k.prefix + k.inner.ReportKey(inputHash)
}

// TimelineKey generates a prefixed key for timeline caching.
func (k *ScopedKeyer) TimelineKey(inputHash string, opts TimelineKeyOpts) string {
	return k.prefix + k.inner.TimelineKey(inputHash, opts)
}
