package poirank

// Option configures an Engine.
type Option func(*Engine)

// WithTopN sets how many counterparts are kept per direction.
func WithTopN(n int) Option {
	return func(e *Engine) {
		e.topN = n
	}
}
