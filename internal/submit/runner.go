package submit

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vsm/qualitycheck/internal/adapters/worker"
	"github.com/vsm/qualitycheck/pkg/logger"
)

// Run submits every configured payload, writes one line per verdict to out
// and returns the process exit code: ExitError if any payload could not be
// checked, else ExitFailed if any batch failed, else ExitPassed.
func Run(ctx context.Context, cfg *Config, out io.Writer) int {
	log := logger.Get().Named("submit")

	payloads, err := collect(cfg)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return ExitError
	}
	if len(payloads) == 0 {
		fmt.Fprintln(out, "error: nothing to submit")
		return ExitError
	}

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	verdicts := make([]Verdict, len(payloads))
	tasks := make([]worker.Task, len(payloads))
	for i, p := range payloads {
		tasks[i] = func(ctx context.Context) error {
			v, err := client.Submit(ctx, p)
			if err != nil {
				log.Error(ctx, "submission failed", logger.String("payload", p.Name), logger.Error(err))
				v = Verdict{Name: p.Name, Outcome: OutcomeError, Message: err.Error()}
			}
			verdicts[i] = v
			return nil
		}
	}
	pool := worker.NewPool(cfg.Workers, worker.WithName("submit"), worker.WithLogger(log))
	if err := pool.Run(ctx, tasks); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return ExitError
	}

	code := ExitPassed
	for _, v := range verdicts {
		report(out, v, cfg.Verbose)
		switch v.Outcome {
		case OutcomePassed:
		case OutcomeFailed:
			if code == ExitPassed {
				code = ExitFailed
			}
		default:
			code = ExitError
		}
	}
	return code
}

func collect(cfg *Config) ([]Payload, error) {
	payloads := make([]Payload, 0, len(cfg.Files)+1)
	for _, name := range cfg.Files {
		body, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		payloads = append(payloads, Payload{Name: name, Body: body})
	}
	if cfg.Generate > 0 {
		p, err := GenerateBatch(cfg.Generate, cfg.Repeat)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

func report(out io.Writer, v Verdict, verbose bool) {
	switch v.Outcome {
	case OutcomePassed, OutcomeFailed:
		line := fmt.Sprintf("%s: %s (%d/%d reports failed)", v.Name, v.Outcome, v.Summary.FailedReports, v.Summary.TotalReports)
		if v.Summary.EventBridgeEventID != "" {
			line += " event=" + v.Summary.EventBridgeEventID
		}
		fmt.Fprintln(out, line)
		if verbose {
			for _, f := range v.Failures {
				fmt.Fprintf(out, "  %s: %s\n", f.ReportID, strings.Join(f.Issues, "; "))
			}
		}
	default:
		if v.StatusCode != 0 {
			fmt.Fprintf(out, "%s: %s (HTTP %d) %s\n", v.Name, v.Outcome, v.StatusCode, v.Message)
			return
		}
		fmt.Fprintf(out, "%s: %s %s\n", v.Name, v.Outcome, v.Message)
	}
}
