package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/vsm/qualitycheck/internal/adapters/worker"
	"github.com/vsm/qualitycheck/internal/domain/dedupe"
	"github.com/vsm/qualitycheck/internal/domain/model"
	"github.com/vsm/qualitycheck/pkg/logger"
	"github.com/vsm/qualitycheck/pkg/metrics"
)

const defaultConcurrency = 8

// Lookup results recorded in metrics.
const (
	resultFound  = "found"
	resultAbsent = "absent"
	resultError  = "error"
)

// ReportIndex detects reports that already exist in the reports table.
type ReportIndex struct {
	client      Querier
	table       string
	index       string
	concurrency int
	pool        *worker.Pool
	logger      logger.Logger
}

// NewReportIndex creates a detector over table.
func NewReportIndex(client Querier, table string, opts ...Option) (*ReportIndex, error) {
	if client == nil {
		return nil, errors.New("repository: nil DynamoDB client")
	}
	if table == "" {
		return nil, errors.New("repository: table name is required")
	}
	r := &ReportIndex{
		client:      client,
		table:       table,
		index:       DefaultIndex,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("repository")
	}
	r.logger = r.logger.With(logger.String("table", r.table), logger.String("index", r.index))
	r.pool = worker.NewPool(r.concurrency, worker.WithName("duplicate-lookup"), worker.WithLogger(r.logger))
	return r, nil
}

// FindExisting returns one failure per distinct report id already present in
// the table, in first-seen order. Each id is looked up once however often it
// appears in reports.
func (r *ReportIndex) FindExisting(ctx context.Context, reports []model.Report) ([]model.Failure, error) {
	ids := make([]string, len(reports))
	for i, rep := range reports {
		ids[i] = rep.ReportID
	}
	ids = dedupe.Distinct(ids)
	r.logger.Debug(ctx, "looking up report ids", logger.Int("ids", len(ids)), logger.Int("workers", r.pool.Size()))

	found := make([]bool, len(ids))
	tasks := make([]worker.Task, len(ids))
	for i, id := range ids {
		tasks[i] = func(ctx context.Context) error {
			exists, err := r.exists(ctx, id)
			if err != nil {
				return err
			}
			found[i] = exists
			return nil
		}
	}
	if err := r.pool.Run(ctx, tasks); err != nil {
		if errors.Is(err, ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	var failures []model.Failure
	for i, id := range ids {
		if found[i] {
			failures = append(failures, model.Failure{ReportID: id, Issues: []string{IssueAlreadyPersisted}})
		}
	}
	return failures, nil
}

func (r *ReportIndex) exists(ctx context.Context, reportID string) (bool, error) {
	start := time.Now()
	key, err := attributevalue.Marshal(indexKey(reportID))
	if err != nil {
		return false, fmt.Errorf("%w: encode key for %s: %w", ErrStorage, reportID, err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(r.index),
		KeyConditionExpression: aws.String(partitionKey + " = :pk AND " + sortKey + " = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": key,
			":sk": key,
		},
		ProjectionExpression: aws.String("reportId"),
		Limit:                aws.Int32(1),
	})
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordDuplicateLookup(resultError, elapsed)
		fields := []logger.Field{
			logger.String("operation", "Query"),
			logger.String("reportId", reportID),
			logger.Error(err),
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			fields = append(fields, logger.String("code", apiErr.ErrorCode()))
		}
		r.logger.Error(ctx, "duplicate lookup failed", fields...)
		return false, fmt.Errorf("%w: query %s for %s: %w", ErrStorage, r.table, reportID, err)
	}

	if out.Count == 0 && len(out.Items) == 0 {
		metrics.RecordDuplicateLookup(resultAbsent, elapsed)
		return false, nil
	}
	metrics.RecordDuplicateLookup(resultFound, elapsed)

	var matches []indexedReport
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &matches); err == nil && len(matches) > 0 {
		r.logger.Debug(ctx, "report already persisted", logger.String("reportId", matches[0].ReportID))
	}
	return true, nil
}
