package openingtree

import (
	"go.uber.org/zap"

	"github.com/discochess/openingtree/internal/stats"
)

// DefaultMaxDepth is the default tree depth bound in plies.
const DefaultMaxDepth = 4

// DefaultReportInterval is the default progress cadence in games.
const DefaultReportInterval = 1000

// Option configures a Pipeline.
type Option interface {
	apply(*options)
}

// options holds the pipeline configuration.
type options struct {
	maxDepth       int
	reportInterval int64
	stats          stats.Collector
	logger         *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		maxDepth:       DefaultMaxDepth,
		reportInterval: DefaultReportInterval,
		stats:          stats.NewNoop(),
		logger:         zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithMaxDepth sets the tree depth bound in plies.
// Default is 4. A non-positive value makes New fail.
func WithMaxDepth(n int) Option {
	return optionFunc(func(o *options) {
		o.maxDepth = n
	})
}

// WithReportInterval sets the progress-logging cadence in processed
// games. Default is 1000; zero disables progress logging.
func WithReportInterval(n int) Option {
	return optionFunc(func(o *options) {
		o.reportInterval = int64(n)
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
