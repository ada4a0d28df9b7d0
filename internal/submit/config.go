// Package submit is a small client for posting report batches to a running
// quality-check service and reporting the verdicts.
package submit

import (
	"time"

	"github.com/vsm/qualitycheck/internal/domain/model"
)

// Process exit codes.
const (
	ExitPassed = 0
	ExitFailed = 1
	ExitError  = 2
)

// Outcome of one submission.
const (
	OutcomePassed  = "passed"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Config holds configuration for a submit run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Files    []string      // Payload files to submit
	Generate int           // Number of reports in a generated batch, 0 for none
	Repeat   int           // Number of reports in the generated batch reusing an earlier id
	Workers  int           // Number of concurrent submissions
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Print failures per report
}

// Payload is one batch to submit.
type Payload struct {
	Name string
	Body []byte
}

// Verdict is the service's answer for one payload.
type Verdict struct {
	Name       string
	Outcome    string
	StatusCode int
	Summary    *model.BatchSummary
	Failures   []model.Failure
	Message    string
}

// failureBody mirrors the 422 response.
type failureBody struct {
	Error    string             `json:"error"`
	Failures []model.Failure    `json:"failures"`
	Summary  model.BatchSummary `json:"summary"`
}

// passedBody picks the summary out of a 200 response.
type passedBody struct {
	QualityCheck model.BatchSummary `json:"qualityCheck"`
}

// errorBody mirrors the API error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
