package history

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithCache enables the keyed parse cache. Entries are keyed by absolute
// path plus file size and modification time, so a rewritten file is
// always re-parsed; the cache is a pure optimization with no observable
// staleness.
func WithCache(enabled bool) Option {
	return func(l *Loader) {
		l.cacheEnabled = enabled
	}
}

// WithDateLayouts overrides the accepted date formats, tried in order.
func WithDateLayouts(layouts []string) Option {
	return func(l *Loader) {
		if len(layouts) > 0 {
			l.layouts = make([]string, len(layouts))
			copy(l.layouts, layouts)
		}
	}
}
