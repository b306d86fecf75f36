package areametrics

// Option configures a Projector.
type Option func(*Projector)

// WithClasses sets the number of colour classes.
func WithClasses(k int) Option {
	return func(p *Projector) {
		p.classes = k
	}
}

// WithVisibilityThreshold sets the absolute value below which an area has no data.
func WithVisibilityThreshold(v float64) Option {
	return func(p *Projector) {
		p.threshold = v
	}
}

// WithSyntheticModes lists modes whose relative shares are attached to every metric.
func WithSyntheticModes(ids ...string) Option {
	return func(p *Projector) {
		p.synthetic = append([]string(nil), ids...)
	}
}
