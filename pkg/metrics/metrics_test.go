package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/ideastack/ember/pkg/metrics"
)

func familyNames(reg *prometheus.Registry) map[string]bool {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestManager(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		reg := prometheus.NewRegistry()
		metrics.NewManager(
			metrics.WithNamespace("testns"),
			metrics.WithSubsystem("sub"),
			metrics.WithRegistry(reg),
			metrics.WithHistogramBuckets([]float64{1, 10, 100}),
		)

		Convey("When the registry is gathered", func() {
			names := familyNames(reg)

			Convey("Then the collectors carry the configured prefix", func() {
				So(names["testns_sub_events_appended_total"], ShouldBeTrue)
				So(names["testns_sub_feed_requests_total"], ShouldBeTrue)
				So(names["testns_sub_queue_size"], ShouldBeTrue)
				So(names["testns_sub_worker_processed_total"], ShouldBeTrue)
			})
		})
	})

	Convey("Given the package-level helpers", t, func() {
		Convey("When the counters and gauges are exercised", func() {
			So(func() {
				metrics.RecordEventAppended()
				metrics.RecordEventDropped()
				metrics.RecordEventDuplicate()
				metrics.RecordStoreReadError()
				metrics.RecordAppendLatency(1.5)
				metrics.RecordFeedRequest()
				metrics.RecordFeedLatency(12)
				metrics.ObserveFeedCandidates(40)
				metrics.RecordEngineComputation("spark")
				metrics.UpdateQueueSize(3)
				metrics.UpdateQueueCapacity(100)
				metrics.UpdateQueueUtilization(0.03)
				metrics.RecordQueueDrop()
				metrics.UpdateWorkerActive(4)
				metrics.RecordWorkerProcessed()
				metrics.RecordHTTPRequest("feed", "GET", "200")
				metrics.RecordHTTPRequestDuration("feed", "GET", "200", 2.5)
			}, ShouldNotPanic)

			Convey("Then the global registry serves the resulting samples", func() {
				names := familyNames(metrics.GetRegistry())
				So(names["ember_feed_events_appended_total"], ShouldBeTrue)
				So(names["ember_feed_engine_computations_total"], ShouldBeTrue)
				So(names["ember_feed_http_requests_total"], ShouldBeTrue)
			})
		})
	})
}
