package submit

import "io"

// ShowHelp prints usage information for the submit tool.
func ShowHelp(out io.Writer) {
	_, _ = io.WriteString(out, `Quality Check Submit Tool
=========================

Posts report batches to a running quality-check service and prints the verdicts.

Usage:
  go run ./cmd/qc-submit [options] [payload.json ...]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -generate int
        Also submit a generated batch with this many reports
  -repeat int
        Number of reports in the generated batch that reuse an earlier reportId
  -workers int
        Number of concurrent submissions (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Print the issues of every failed report
  -help
        Show this help message

Exit status:
  0 every batch passed, 1 at least one batch failed its checks,
  2 a batch was malformed or the service could not be reached.

Examples:
  go run ./cmd/qc-submit batch.json
  go run ./cmd/qc-submit -generate 200 -repeat 3 -verbose
`)
}
