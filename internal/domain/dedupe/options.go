package dedupe

// Default dedupe configuration constants.
const defaultMaxSize = 50000

// Option applies a configuration option to the deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of tracked ids. Zero or negative means
// unbounded.
func WithMaxSize(size int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = size
	}
}
