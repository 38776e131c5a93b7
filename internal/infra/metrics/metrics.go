package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Metrics holds the engine's prometheus collectors. All operations are
// safe for concurrent use.
type Metrics struct {
	feedRequests       *prometheus.CounterVec
	feedDuration       prometheus.Histogram
	candidatesScored   prometheus.Counter
	candidatesDropped  *prometheus.CounterVec
	heatingActivations *prometheus.CounterVec
	refreshQueueDepth  prometheus.Gauge
	refreshTasks       *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		feedRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchrank_feed_requests_total",
				Help: "Feed page requests by status",
			},
			[]string{"status"},
		),
		feedDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "matchrank_feed_duration_seconds",
				Help:    "Feed page build duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
			},
		),
		candidatesScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "matchrank_candidates_scored_total",
				Help: "Candidates that completed ranking",
			},
		),
		candidatesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchrank_candidates_dropped_total",
				Help: "Candidates dropped before or during ranking by reason",
			},
			[]string{"reason"},
		),
		heatingActivations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchrank_heating_activations_total",
				Help: "Heating activations by trigger and outcome",
			},
			[]string{"trigger", "outcome"},
		),
		refreshQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "matchrank_refresh_queue_depth",
				Help: "Pending profile refresh tasks",
			},
		),
		refreshTasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchrank_refresh_tasks_total",
				Help: "Profile refresh task executions by status",
			},
			[]string{"status"},
		),
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matchrank_jobs_total",
				Help: "Background job executions by job and status",
			},
			[]string{"job", "status"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matchrank_job_duration_seconds",
				Help:    "Background job duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"job"},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.feedRequests,
		m.feedDuration,
		m.candidatesScored,
		m.candidatesDropped,
		m.heatingActivations,
		m.refreshQueueDepth,
		m.refreshTasks,
		m.jobRuns,
		m.jobDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveFeed(seconds float64, ok bool) {
	status := statusSuccess
	if !ok {
		status = statusFailure
	}
	m.feedRequests.WithLabelValues(status).Inc()
	m.feedDuration.Observe(seconds)
}

func (m *Metrics) IncCandidatesScored() {
	m.candidatesScored.Inc()
}

func (m *Metrics) IncCandidateDropped(reason string) {
	m.candidatesDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncHeatingActivation(trigger string, applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "capped"
	}
	m.heatingActivations.WithLabelValues(trigger, outcome).Inc()
}

func (m *Metrics) SetRefreshQueueDepth(depth float64) {
	m.refreshQueueDepth.Set(depth)
}

func (m *Metrics) IncRefreshTask(ok bool) {
	status := statusSuccess
	if !ok {
		status = statusFailure
	}
	m.refreshTasks.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveJob(job string, seconds float64, ok bool) {
	status := statusSuccess
	if !ok {
		status = statusFailure
	}
	m.jobRuns.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(seconds)
}
