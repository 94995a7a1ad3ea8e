package kdgo

import (
	"log/slog"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/kdgo/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	resources        *resource.Controller
	batchConcurrency int
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		batchConcurrency: runtime.GOMAXPROCS(0),
	}
}

// Option configures index construction and query behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := kdgo.NewJSONLogger(slog.LevelInfo)
//	idx, _ := kdgo.New(points, kdgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &kdgo.BasicMetricsCollector{}
//	idx, _ := kdgo.New(points, kdgo.WithMetricsCollector(metrics))
//	// ... use idx ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg visits: %d\n", stats.SearchCount, stats.SearchAvgVisits)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithResourceController reserves the node arena against rc's memory budget
// and gates every query on rc's rate and concurrency limits.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithBatchConcurrency limits the number of goroutines BatchSearch uses.
// Values below one default to GOMAXPROCS.
func WithBatchConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		o.batchConcurrency = n
	}
}

type searchOptions struct {
	filter func(id uint32) bool
}

// SearchOption configures a single query.
type SearchOption func(*searchOptions)

// WithFilter accepts only candidates whose ID satisfies fn. Rejected nodes are
// still visited and still steer the traversal.
func WithFilter(fn func(id uint32) bool) SearchOption {
	return func(o *searchOptions) {
		o.filter = fn
	}
}

// WithAllowList accepts only candidates whose ID is contained in ids.
func WithAllowList(ids *roaring.Bitmap) SearchOption {
	return func(o *searchOptions) {
		if ids == nil {
			o.filter = nil
			return
		}
		o.filter = ids.Contains
	}
}
