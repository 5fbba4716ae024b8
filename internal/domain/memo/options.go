package memo

// Option configures a memo cache.
type Option func(*settings)

type settings struct {
	name    string
	maxSize int
}

// WithMaxSize bounds the number of memoized results. Zero or negative
// disables memoization entirely.
func WithMaxSize(size int) Option {
	return func(s *settings) {
		s.maxSize = size
	}
}

// WithName sets the cache label used in metrics.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}
