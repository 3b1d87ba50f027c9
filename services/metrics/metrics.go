package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trezcool/gradebook/core/school"
)

var (
	TestsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebook_tests_recorded_total",
			Help: "Total number of recorded tests, by outcome",
		},
		[]string{"outcome"},
	)

	TestScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gradebook_test_score",
			Help:    "Distribution of recorded test scores",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	StudentsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebook_students_imported_total",
			Help: "Total number of imported spreadsheet rows, by result",
		},
		[]string{"result"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// ObserveTest records a newly created test.
func ObserveTest(tst school.Test) {
	outcome := "failed"
	if tst.IsPassed() {
		outcome = "passed"
	}
	TestsRecorded.WithLabelValues(outcome).Inc()
	TestScore.Observe(tst.Score)
}

// ObserveImport records the outcome of a students import.
func ObserveImport(res school.ImportResult) {
	StudentsImported.WithLabelValues("created").Add(float64(len(res.Created)))
	StudentsImported.WithLabelValues("failed").Add(float64(len(res.Failed)))
}
