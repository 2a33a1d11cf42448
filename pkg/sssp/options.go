package sssp

import "log/slog"

type config struct {
	precision int
	logger    *slog.Logger
}

func defaultConfig() config {
	return config{
		precision: DefaultPrecision,
		logger:    slog.Default(),
	}
}

func buildConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a Solver or an oracle run.
type Option func(*config)

// WithPrecision rounds every computed distance to the given number of
// decimal places. A negative value disables rounding.
func WithPrecision(digits int) Option {
	return func(c *config) {
		c.precision = digits
	}
}

// WithoutRounding keeps raw floating-point sums.
func WithoutRounding() Option {
	return WithPrecision(-1)
}

// WithLogger sets the logger used for run summaries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
