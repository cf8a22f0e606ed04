package repositories

// ReferenceCache defines the interface for the durable identifier ->
// reference store shared between runs. Load acquires exclusive ownership of
// the store; Save rewrites it in full and releases ownership. Close releases
// ownership on paths where Save is never reached and is safe to call after
// Save.
type ReferenceCache interface {
	// Load opens the store, creating it if absent, and returns its parsed
	// contents. Malformed entries are skipped.
	Load() (map[string]string, error)

	// Save rewrites the store with the given mapping, sorted by identifier
	// for reproducible diffs, then releases ownership.
	Save(refs map[string]string) error

	// Close releases ownership without persisting. Safe to call multiple
	// times and after Save.
	Close() error
}
