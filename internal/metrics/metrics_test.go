package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it owns a registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("levels"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then metrics are registered on the given registry", func() {
				So(manager.Registry(), ShouldEqual, registry)
				manager.JobRecorded("client")
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_levels_jobs_recorded_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When jobs are recorded", func() {
			manager.JobRecorded("freelancer")
			manager.JobRecorded("freelancer")
			manager.JobRecorded("client")

			Convey("Then counts are kept per role", func() {
				So(testutil.ToFloat64(manager.jobsRecorded.WithLabelValues("freelancer")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.jobsRecorded.WithLabelValues("client")), ShouldEqual, 1)
			})
		})

		Convey("When levels change", func() {
			manager.LevelChanged("freelancer", 3, 4)
			manager.LevelChanged("freelancer", 4, 4)
			manager.LevelChanged("client", 5, 2)

			Convey("Then only real transitions are counted by direction", func() {
				So(testutil.ToFloat64(manager.levelChanges.WithLabelValues("freelancer", "up")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.levelChanges.WithLabelValues("client", "down")), ShouldEqual, 1)
			})
		})

		Convey("When cache lookups and analytics are observed", func() {
			manager.CacheLookup(true)
			manager.CacheLookup(false)
			manager.CacheLookup(false)
			manager.AnalyticsServed("daily", "spending")
			manager.Recalculated("unchanged")
			manager.PublishFailed()

			Convey("Then each counter moves", func() {
				So(testutil.ToFloat64(manager.cacheLookups.WithLabelValues("hit")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.cacheLookups.WithLabelValues("miss")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.analyticsQueries.WithLabelValues("daily", "spending")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.recalculations.WithLabelValues("unchanged")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.publishFailures), ShouldEqual, 1)
			})
		})

		Convey("When an HTTP request is observed", func() {
			manager.ObserveHTTP(http.MethodGet, "/api/v1/levels", http.StatusOK, 20*time.Millisecond)

			Convey("Then the handler exposes it", func() {
				rec := httptest.NewRecorder()
				manager.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				body, _ := io.ReadAll(rec.Body)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, `kaamgarau_http_requests_total{method="GET",route="/api/v1/levels",status="200"} 1`)
			})
		})
	})
}

func TestNilManager(t *testing.T) {
	Convey("Given a nil manager", t, func() {
		var manager *Manager

		Convey("Then recording is a no-op", func() {
			So(func() {
				manager.JobRecorded("client")
				manager.LevelChanged("client", 1, 2)
				manager.Recalculated("error")
				manager.AnalyticsServed("yearly", "category")
				manager.CacheLookup(true)
				manager.PublishFailed()
				manager.ObserveHTTP(http.MethodPost, "/x", 500, time.Second)
			}, ShouldNotPanic)
		})
	})
}
