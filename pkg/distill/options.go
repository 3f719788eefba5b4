package distill

import (
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 2 * time.Minute

type config struct {
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func newConfig(opts []Option) config {
	c := config{
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures a Distiller or a QuizGenerator.
type Option func(*config)

// WithTimeout sets the completion timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
