package cache

// Manager owns the backends a process opened, so they can be shared by name
// and closed together on exit.
type Manager interface {
	// AddCache registers raw under name, replacing any earlier entry.
	AddCache(name string, raw RawCache)
	GetRawCache(name string) (RawCache, bool)
	// Close closes every registered backend and empties the registry.
	Close() error
}
