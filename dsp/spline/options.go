package spline

// Option configures a Spline at construction.
type Option func(*config)

type config struct {
	capacity int
}

// WithCapacity selects the fixed-capacity strategy with room for maxBreaks
// samples. Values below 2 are ignored and leave the spline growable.
func WithCapacity(maxBreaks int) Option {
	return func(c *config) {
		if maxBreaks >= 2 {
			c.capacity = maxBreaks
		}
	}
}

func applyOptions(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
