// Package model contains domain models passed between layers.
package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Event is the raw invocation payload handed over by the upstream stage.
// Besides "reports" it carries free-form passthrough identifiers
// (ingestionId, sourceBucket, sourceKey) that are echoed back untouched.
type Event map[string]any

// Payload keys read from or written to an Event.
const (
	KeyReports      = "reports"
	KeyQualityCheck = "qualityCheck"
	KeyIngestionID  = "ingestionId"
	KeySourceBucket = "sourceBucket"
	KeySourceKey    = "sourceKey"
)

// Enrich returns a shallow copy of e with the summary and the normalized
// reports attached. e itself is left unchanged.
func (e Event) Enrich(summary BatchSummary, reports []Report) Event {
	out := make(Event, len(e)+1)
	for k, v := range e {
		out[k] = v
	}
	out[KeyQualityCheck] = summary
	out[KeyReports] = reports
	return out
}

// CategoryName returns the canonical spelling of a category name: trimmed
// and in Unicode NFC. Report keys and rule document names are both compared
// in this form.
func CategoryName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Report is the canonical form of one player performance report.
type Report struct {
	ReportID        string            `json:"reportId"`
	PlayerID        string            `json:"playerId"`
	CoachID         string            `json:"coachId"`
	ReportTimestamp string            `json:"reportTimestamp"`
	Categories      map[string]string `json:"categories"`

	CreatedAt   string `json:"createdAt,omitempty"`
	TeamID      string `json:"teamId,omitempty"`
	PlayerEmail string `json:"playerEmail,omitempty"`
	PlayerName  string `json:"playerName,omitempty"`
}

// Failure lists the distinct issues found for one report id.
type Failure struct {
	ReportID string   `json:"reportId"`
	Issues   []string `json:"issues"`
}

// Verdict statuses.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// BatchSummary is the batch-level outcome of one quality check.
// The passthrough identifiers keep whatever JSON value the caller sent.
type BatchSummary struct {
	IngestionID        any    `json:"ingestionId"`
	SourceBucket       any    `json:"sourceBucket"`
	SourceKey          any    `json:"sourceKey"`
	TotalReports       int    `json:"totalReports"`
	FailedReports      int    `json:"failedReports"`
	Status             string `json:"status"`
	EventBridgeEventID string `json:"eventBridgeEventId,omitempty"`
}

// Summarize builds the summary for a batch once detection has completed.
func Summarize(e Event, reports []Report, failures []Failure) BatchSummary {
	status := StatusPassed
	if len(failures) > 0 {
		status = StatusFailed
	}
	return BatchSummary{
		IngestionID:   e[KeyIngestionID],
		SourceBucket:  e[KeySourceBucket],
		SourceKey:     e[KeySourceKey],
		TotalReports:  len(reports),
		FailedReports: len(failures),
		Status:        status,
	}
}
