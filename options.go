package dtanalysis

import (
	"log/slog"

	"github.com/ezachrisen/dtanalysis/index"
)

// Option configures a RuleInspectorCache or a Session.
type Option func(c *config)

type config struct {
	logger    *slog.Logger
	oracle    Oracle
	indexOpts []index.Option
}

func newConfig(opts []Option) config {
	c := config{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger sets the logger used for mutation tracing. Mutations log at
// debug level. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOracle sets the oracle used to type columns that do not declare a type.
func WithOracle(o Oracle) Option {
	return func(c *config) {
		c.oracle = o
	}
}

// WithIndexOptions passes options to the underlying KeyTreeMap.
func WithIndexOptions(opts ...index.Option) Option {
	return func(c *config) {
		c.indexOpts = append(c.indexOpts, opts...)
	}
}
