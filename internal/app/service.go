// Package service runs the quality check for one report batch: rule
// evaluation, duplicate detection, merging, summary and publish.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vsm/qualitycheck/internal/domain/failures"
	"github.com/vsm/qualitycheck/internal/domain/model"
	"github.com/vsm/qualitycheck/internal/domain/normalize"
	"github.com/vsm/qualitycheck/internal/domain/rules"
	"github.com/vsm/qualitycheck/pkg/logger"
	"github.com/vsm/qualitycheck/pkg/metrics"
)

// Stage failure kinds recorded in metrics.
const (
	kindConfiguration = "configuration"
	kindStorage       = "storage"
	kindPublish       = "publish"
)

// checkDuplicateInStore labels issues raised by the duplicate detector.
const checkDuplicateInStore = "duplicate_in_store"

// RulesLoader provides the cached rule configuration.
type RulesLoader interface {
	Load(ctx context.Context) (rules.Config, error)
	Invalidate()
}

// DuplicateDetector finds reports that were already persisted.
type DuplicateDetector interface {
	FindExisting(ctx context.Context, reports []model.Report) ([]model.Failure, error)
}

// EventPublisher emits the verdict and returns the bus event id.
type EventPublisher interface {
	Publish(ctx context.Context, status string, summary model.BatchSummary, failures []model.Failure) (string, error)
}

// Service is safe for concurrent use; it keeps no per-batch state.
type Service struct {
	rules     RulesLoader
	detector  DuplicateDetector
	publisher EventPublisher
	logger    logger.Logger
}

// New constructs a Service. Duplicate detection and publishing are skipped
// unless enabled with options.
func New(loader RulesLoader, opts ...Option) (*Service, error) {
	if loader == nil {
		return nil, errors.New("service: rules loader is required")
	}
	s := &Service{rules: loader}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("quality-check")
	}
	return s, nil
}

// Check validates event and returns it enriched with the batch summary and
// the normalized reports. It returns a *QualityCheckError when any report
// failed, a *normalize.ValidationError for a malformed batch, and an error
// wrapping ErrStageFailed when a collaborator could not be reached.
func (s *Service) Check(ctx context.Context, event model.Event) (model.Event, error) {
	start := time.Now()
	defer func() {
		metrics.RecordCheckLatency(float64(time.Since(start).Milliseconds()))
	}()

	cfg, err := s.rules.Load(ctx)
	if err != nil {
		return nil, s.stageFailure(ctx, kindConfiguration, err)
	}

	reports, err := normalize.Reports(event)
	if err != nil {
		metrics.RecordValidationError()
		s.logger.Warn(ctx, "batch rejected", logger.Any("ingestionId", event[model.KeyIngestionID]), logger.Error(err))
		return nil, err
	}

	var (
		wg         sync.WaitGroup
		duplicates []model.Failure
		detectErr  error
	)
	if s.detector != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			duplicates, detectErr = s.detector.FindExisting(ctx, reports)
		}()
	}
	ruleFailures := rules.Evaluate(cfg, reports)
	wg.Wait()
	if detectErr != nil {
		return nil, s.stageFailure(ctx, kindStorage, detectErr)
	}

	merged := failures.Merge(ruleFailures, duplicates)
	summary := model.Summarize(event, reports, merged)

	if s.publisher != nil {
		eventID, err := s.publisher.Publish(ctx, summary.Status, summary, merged)
		if err != nil {
			return nil, s.stageFailure(ctx, kindPublish, err)
		}
		summary.EventBridgeEventID = eventID
	}

	record(summary, merged)
	s.logger.Info(ctx, "quality check complete",
		logger.Any("ingestionId", summary.IngestionID),
		logger.String("status", summary.Status),
		logger.Int("total", summary.TotalReports),
		logger.Int("failed", summary.FailedReports),
	)

	if len(merged) > 0 {
		return nil, &QualityCheckError{Failures: merged, Summary: summary}
	}
	return event.Enrich(summary, reports), nil
}

// InvalidateRules drops the cached rule document.
func (s *Service) InvalidateRules() {
	s.rules.Invalidate()
}

func (s *Service) stageFailure(ctx context.Context, kind string, err error) error {
	metrics.RecordStageFailure(kind)
	s.logger.Error(ctx, "quality check stage failed", logger.String("kind", kind), logger.Error(err))
	return fmt.Errorf("%w: %w", ErrStageFailed, err)
}

func record(summary model.BatchSummary, merged []model.Failure) {
	metrics.RecordBatch(summary.Status, summary.TotalReports, summary.FailedReports)
	for _, f := range merged {
		for _, issue := range f.Issues {
			check := rules.CheckName(issue)
			if check == "other" {
				check = checkDuplicateInStore
			}
			metrics.RecordIssue(check)
		}
	}
}
