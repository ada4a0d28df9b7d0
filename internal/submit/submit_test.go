package submit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vsm/qualitycheck/internal/submit"
	"github.com/vsm/qualitycheck/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithOutput(io.Discard))
}

// verdictServer answers by ingestionId: "pass", "fail", "bad" or anything else for 500.
func verdictServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event map[string]any
		_ = json.NewDecoder(r.Body).Decode(&event)
		w.Header().Set("Content-Type", "application/json")
		switch event["ingestionId"] {
		case "pass":
			_, _ = io.WriteString(w, `{"qualityCheck": {"status": "passed", "totalReports": 2, "failedReports": 0, "eventBridgeEventId": "evt-9"}}`)
		case "fail":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = io.WriteString(w, `{"error": "quality_check_failed", "failures": [{"reportId": "r1", "issues": ["Duplicate reportId within payload"]}], "summary": {"status": "failed", "totalReports": 2, "failedReports": 1}}`)
		case "bad":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"code": "bad_request", "message": "reports must be a non-empty array"}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"code": "stage_failed", "message": "quality check unavailable"}`)
		}
	}))
}

func writePayload(t *testing.T, dir, name, ingestionID string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(`{"ingestionId": "`+ingestionID+`", "reports": []}`), 0o600); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	return path
}

func TestClientSubmit(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv := verdictServer()
		defer srv.Close()
		client := submit.NewClient(srv.URL+"/", time.Second)

		Convey("When a batch passes", func() {
			v, err := client.Submit(context.Background(), submit.Payload{Name: "a", Body: []byte(`{"ingestionId": "pass"}`)})
			So(err, ShouldBeNil)
			So(v.Outcome, ShouldEqual, submit.OutcomePassed)
			So(v.Summary.EventBridgeEventID, ShouldEqual, "evt-9")
		})

		Convey("When a batch fails", func() {
			v, err := client.Submit(context.Background(), submit.Payload{Name: "b", Body: []byte(`{"ingestionId": "fail"}`)})
			So(err, ShouldBeNil)
			So(v.Outcome, ShouldEqual, submit.OutcomeFailed)
			So(v.Failures, ShouldHaveLength, 1)
			So(v.Summary.FailedReports, ShouldEqual, 1)
		})

		Convey("When a batch is malformed", func() {
			v, err := client.Submit(context.Background(), submit.Payload{Name: "c", Body: []byte(`{"ingestionId": "bad"}`)})
			So(err, ShouldBeNil)
			So(v.Outcome, ShouldEqual, submit.OutcomeInvalid)
			So(v.Message, ShouldEqual, "reports must be a non-empty array")
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running service and payload files", t, func() {
		srv := verdictServer()
		defer srv.Close()
		dir := t.TempDir()
		pass := writePayload(t, dir, "pass.json", "pass")
		fail := writePayload(t, dir, "fail.json", "fail")
		broken := writePayload(t, dir, "broken.json", "boom")

		run := func(files ...string) (int, string) {
			var out bytes.Buffer
			code := submit.Run(context.Background(), &submit.Config{
				BaseURL: srv.URL,
				Files:   files,
				Workers: 2,
				Timeout: time.Second,
				Verbose: true,
			}, &out)
			return code, out.String()
		}

		Convey("When every batch passes", func() {
			code, out := run(pass)
			So(code, ShouldEqual, submit.ExitPassed)
			So(out, ShouldContainSubstring, "passed (0/2 reports failed) event=evt-9")
		})

		Convey("When one batch fails", func() {
			code, out := run(pass, fail)
			So(code, ShouldEqual, submit.ExitFailed)
			So(out, ShouldContainSubstring, "r1: Duplicate reportId within payload")
		})

		Convey("When the service errors on one batch", func() {
			code, out := run(fail, broken)
			So(code, ShouldEqual, submit.ExitError)
			So(out, ShouldContainSubstring, "(HTTP 500)")
		})

		Convey("When a file is missing", func() {
			code, _ := run(filepath.Join(dir, "missing.json"))
			So(code, ShouldEqual, submit.ExitError)
		})

		Convey("When there is nothing to submit", func() {
			code, _ := run()
			So(code, ShouldEqual, submit.ExitError)
		})
	})
}

func TestGenerateBatch(t *testing.T) {
	Convey("Given a generated batch with repeated ids", t, func() {
		p, err := submit.GenerateBatch(10, 3)
		So(err, ShouldBeNil)

		var batch struct {
			IngestionID string           `json:"ingestionId"`
			Reports     []map[string]any `json:"reports"`
		}
		So(json.Unmarshal(p.Body, &batch), ShouldBeNil)

		Convey("Then it has the requested size and exactly the repeated duplicates", func() {
			So(batch.Reports, ShouldHaveLength, 10)
			seen := map[string]bool{}
			repeats := 0
			for _, r := range batch.Reports {
				id := r["reportId"].(string)
				if seen[id] {
					repeats++
				}
				seen[id] = true
				So(r["categories"], ShouldHaveLength, 2)
			}
			So(repeats, ShouldEqual, 3)
			So(p.Name, ShouldEqual, "generated:"+batch.IngestionID)
		})
	})

	Convey("Given an empty batch request", t, func() {
		_, err := submit.GenerateBatch(0, 0)
		So(err, ShouldNotBeNil)
	})
}
