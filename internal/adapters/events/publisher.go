// Package events emits the batch verdict to EventBridge.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/aws/smithy-go"

	"github.com/vsm/qualitycheck/internal/domain/model"
	"github.com/vsm/qualitycheck/pkg/logger"
	"github.com/vsm/qualitycheck/pkg/metrics"
)

// Publish results recorded in metrics.
const (
	resultSent    = "sent"
	resultSkipped = "skipped"
	resultError   = "error"
)

// EventPutter is the part of the EventBridge client the publisher needs.
type EventPutter interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Detail is the body of a quality event.
type Detail struct {
	Status   string             `json:"status"`
	Summary  model.BatchSummary `json:"summary"`
	Failures []model.Failure    `json:"failures"`
}

// Publisher sends one event per batch. With no bus configured it does nothing.
type Publisher struct {
	client     EventPutter
	bus        string
	source     string
	detailType string
	logger     logger.Logger
}

// NewPublisher creates a publisher for bus. An empty bus disables publishing.
func NewPublisher(client EventPutter, bus string, opts ...Option) *Publisher {
	p := &Publisher{
		client:     client,
		bus:        bus,
		source:     DefaultSource,
		detailType: DefaultDetailType,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("events")
	}
	return p
}

// Enabled reports whether a destination bus is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.bus != "" && p.client != nil
}

// Publish sends {status, summary, failures} and returns the event id
// assigned by the bus, or "" when publishing is disabled.
func (p *Publisher) Publish(ctx context.Context, status string, summary model.BatchSummary, failures []model.Failure) (string, error) {
	if !p.Enabled() {
		metrics.RecordPublish(resultSkipped)
		return "", nil
	}
	if failures == nil {
		failures = []model.Failure{}
	}

	detail, err := json.Marshal(Detail{Status: status, Summary: summary, Failures: failures})
	if err != nil {
		metrics.RecordPublish(resultError)
		return "", fmt.Errorf("%w: encode detail: %w", ErrPublish, err)
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{{
			Source:       aws.String(p.source),
			DetailType:   aws.String(p.detailType),
			Detail:       aws.String(string(detail)),
			EventBusName: aws.String(p.bus),
		}},
	})
	if err != nil {
		metrics.RecordPublish(resultError)
		fields := []logger.Field{logger.String("bus", p.bus), logger.Error(err)}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			fields = append(fields, logger.String("code", apiErr.ErrorCode()))
		}
		p.logger.Error(ctx, "put events failed", fields...)
		return "", fmt.Errorf("%w: %w", ErrPublish, err)
	}

	if out.FailedEntryCount > 0 {
		metrics.RecordPublish(resultError)
		reason := rejection(out.Entries)
		p.logger.Error(ctx, "quality event rejected",
			logger.String("bus", p.bus),
			logger.Int("failed", int(out.FailedEntryCount)),
			logger.String("reason", reason),
		)
		return "", fmt.Errorf("%w: %s", ErrPublish, reason)
	}

	var eventID string
	if len(out.Entries) > 0 {
		eventID = aws.ToString(out.Entries[0].EventId)
	}
	metrics.RecordPublish(resultSent)
	p.logger.Info(ctx, "quality event published",
		logger.String("bus", p.bus),
		logger.String("status", status),
		logger.String("eventId", eventID),
	)
	return eventID, nil
}

// rejection joins the error messages of the rejected entries.
func rejection(entries []types.PutEventsResultEntry) string {
	var msgs []string
	for _, e := range entries {
		if msg := aws.ToString(e.ErrorMessage); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		return "unknown error"
	}
	return strings.Join(msgs, ", ")
}
