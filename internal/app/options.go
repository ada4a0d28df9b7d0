package service

import "github.com/vsm/qualitycheck/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDetector enables duplicate detection against persisted reports.
func WithDetector(d DuplicateDetector) Option {
	return func(s *Service) {
		s.detector = d
	}
}

// WithPublisher enables publishing the verdict.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
