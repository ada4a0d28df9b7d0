package repository

import "github.com/vsm/qualitycheck/pkg/logger"

// Option applies a configuration option to the ReportIndex.
type Option func(*ReportIndex)

// WithIndex sets the name of the secondary index keyed by report id.
func WithIndex(name string) Option {
	return func(r *ReportIndex) {
		if name != "" {
			r.index = name
		}
	}
}

// WithConcurrency bounds the number of lookups in flight for one batch.
func WithConcurrency(n int) Option {
	return func(r *ReportIndex) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the index.
func WithLogger(l logger.Logger) Option {
	return func(r *ReportIndex) {
		if l != nil {
			r.logger = l
		}
	}
}
