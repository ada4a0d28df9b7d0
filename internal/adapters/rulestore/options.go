package rulestore

import "github.com/vsm/qualitycheck/pkg/logger"

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithLogger sets a custom logger for the loader.
func WithLogger(l logger.Logger) Option {
	return func(r *Loader) {
		if l != nil {
			r.logger = l
		}
	}
}
