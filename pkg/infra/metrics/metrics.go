package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m-mizutani/ghtask/pkg/domain/model"
)

// Recorder exports run reports as Prometheus metrics on a private registry
type Recorder struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lastRun  *prometheus.GaugeVec
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghtask",
			Name:      "notifications_total",
			Help:      "Notifications and tasks processed, by outcome",
		}, []string{"outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ghtask",
			Name:      "runs_total",
			Help:      "Completed runs, by command and result",
		}, []string{"command", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ghtask",
			Name:      "run_duration_seconds",
			Help:      "Duration of runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ghtask",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}, []string{"command"}),
	}

	r.registry.MustRegister(
		r.events,
		r.runs,
		r.duration,
		r.lastRun,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records the outcome of one run
func (r *Recorder) Observe(command string, started time.Time, report *model.RunReport, err error) {
	r.duration.WithLabelValues(command).Observe(time.Since(started).Seconds())

	if report != nil {
		r.events.WithLabelValues("fetched").Add(float64(report.Fetched))
		r.events.WithLabelValues("created").Add(float64(report.Created))
		r.events.WithLabelValues("skipped").Add(float64(report.Skipped))
		r.events.WithLabelValues("acknowledged").Add(float64(report.Acknowledged))
		r.events.WithLabelValues("malformed").Add(float64(report.Malformed))
		r.events.WithLabelValues("failed").Add(float64(report.Failed))
		r.events.WithLabelValues("closed").Add(float64(len(report.Closed)))
	}

	if err != nil {
		r.runs.WithLabelValues(command, "error").Inc()
		return
	}
	r.runs.WithLabelValues(command, "success").Inc()
	r.lastRun.WithLabelValues(command).SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
