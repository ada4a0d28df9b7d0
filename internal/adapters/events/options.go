package events

import "github.com/vsm/qualitycheck/pkg/logger"

// Default event tags.
const (
	DefaultSource     = "stat.tracker.quality"
	DefaultDetailType = "csv.quality"
)

// Option applies a configuration option to the Publisher.
type Option func(*Publisher)

// WithSource sets the event source tag.
func WithSource(source string) Option {
	return func(p *Publisher) {
		if source != "" {
			p.source = source
		}
	}
}

// WithDetailType sets the event detail-type tag.
func WithDetailType(detailType string) Option {
	return func(p *Publisher) {
		if detailType != "" {
			p.detailType = detailType
		}
	}
}

// WithLogger sets a custom logger for the publisher.
func WithLogger(l logger.Logger) Option {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}
