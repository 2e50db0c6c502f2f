package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var Compilations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "erd_compilations_total",
	Help: "The number of diagram compilations by variant",
}, []string{"variant"})

var StatementsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "erd_statements_emitted_total",
	Help: "The number of SQL statements emitted by kind",
}, []string{"kind"})

var DiagramsSaved = promauto.NewCounter(prometheus.CounterOpts{
	Name: "erd_diagrams_saved_total",
	Help: "The number of diagrams persisted",
})

var StorageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "erd_storage_failures_total",
	Help: "The number of failed storage operations",
}, []string{"operation"})

var ApplyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "erd_apply_duration_seconds",
	Help:    "The duration of applying a generated script to the target database",
	Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
})
