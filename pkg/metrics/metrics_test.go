package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.batches.WithLabelValues("passed").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["vsm_quality_check_batches_total"], ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("qc"),
				WithHistogramBuckets([]float64{1, 2}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the custom namespace is used", func() {
				manager.reports.Add(3)
				So(testutil.ToFloat64(manager.reports), ShouldEqual, 3)
				count, err := testutil.GatherAndCount(registry, "test_qc_reports_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording a failed batch", func() {
			before := testutil.ToFloat64(globalManager.batches.WithLabelValues("failed"))
			beforeFailed := testutil.ToFloat64(globalManager.failedReports)
			RecordBatch("failed", 4, 2)

			Convey("Then batch and report counters advance", func() {
				So(testutil.ToFloat64(globalManager.batches.WithLabelValues("failed")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.failedReports), ShouldEqual, beforeFailed+2)
			})
		})

		Convey("When recording collaborator outcomes", func() {
			RecordRulesLoad("miss")
			RecordDuplicateLookup("found", 3)
			RecordPublish("sent")
			RecordStageFailure("storage")
			RecordIssue("required_categories")
			RecordValidationError()
			RecordCheckLatency(12)
			RecordHTTPRequest("quality_check", "POST", "200", 5)

			Convey("Then the registry gathers without error", func() {
				_, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(testutil.ToFloat64(globalManager.duplicateLookups.WithLabelValues("found")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given const labels applied to the global manager", t, func() {
		Configure(WithConstLabels(map[string]string{"stage": "quality-check"}))
		RecordPublish("sent")

		Convey("Then every gathered series carries them", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)

			var labelled bool
			for _, f := range families {
				if f.GetName() != "vsm_quality_check_publish_total" {
					continue
				}
				for _, m := range f.GetMetric() {
					for _, l := range m.GetLabel() {
						if l.GetName() == "stage" && l.GetValue() == "quality-check" {
							labelled = true
						}
					}
				}
			}
			So(labelled, ShouldBeTrue)
		})
	})
}
