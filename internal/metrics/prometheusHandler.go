package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "enrichment_jobs_in_queue",
	Help: "Number of enrichment jobs waiting in the queues",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active enrichment workers",
})

var documentsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_created_total",
	Help: "Documents accepted by the ingestion pipeline",
})

var reconcileRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reconcile_repairs_total",
	Help: "Items repaired by reconciliation, labelled by kind",
}, []string{"kind"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func IncrementDocumentsCreated() {
	documentsCreated.Inc()
}

func CountReconcileRepair(kind string, n int) {
	reconcileRepairs.WithLabelValues(kind).Add(float64(n))
}

var jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "enrichment_job_duration_seconds",
	Help:    "Total time spent executing one enrichment job.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"kind", "outcome"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external oracle and store calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(kind string, outcome string, timeElapsed time.Duration) {
	jobDuration.WithLabelValues(kind, outcome).Observe(timeElapsed.Seconds())
}
