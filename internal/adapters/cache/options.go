package cache

// Option applies a configuration option to a Memo.
type Option func(*config)

type config struct {
	maxSize int
}

// WithMaxSize sets the maximum number of entries kept.
// If maxSize > 0: bounded mode, the oldest entry is evicted first.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}
