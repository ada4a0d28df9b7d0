package service

import (
	"errors"
	"fmt"

	"github.com/vsm/qualitycheck/internal/domain/model"
)

// ErrStageFailed wraps every infrastructure failure of the stage. The
// underlying kind stays reachable through errors.Is.
var ErrStageFailed = errors.New("quality check stage failed")

// QualityCheckError is the expected outcome when one or more reports failed
// a rule or duplicate check. It carries the full verdict.
type QualityCheckError struct {
	Failures []model.Failure
	Summary  model.BatchSummary
}

func (e *QualityCheckError) Error() string {
	return fmt.Sprintf("quality check failed: %d of %d reports failed", e.Summary.FailedReports, e.Summary.TotalReports)
}
