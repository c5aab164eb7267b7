// Package metrics exports separation measurements to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "expedition"

// PrometheusRecorder implements ports.MetricsRecorder with client_golang collectors.
type PrometheusRecorder struct {
	syncs       *prometheus.CounterVec
	syncSeconds prometheus.Histogram
	syncWrites  prometheus.Histogram
	retries     prometheus.Counter
	transitions *prometheus.CounterVec
	settled     prometheus.Counter
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "total",
			Help:      "Lot synchronizations by result.",
		}, []string{"result"}),
		syncSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Lot synchronization latency including retries.",
			Buckets:   prometheus.DefBuckets,
		}),
		syncWrites: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "writes",
			Help:      "Rows written by one successful synchronization.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "retries_total",
			Help:      "Synchronization attempts retried after a conflict.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Lifecycle calls by subject, action and outcome.",
		}, []string{"subject", "action", "outcome"}),
		settled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "controls_settled_total",
			Help:      "Controls completed by the cascade audit.",
		}),
	}

	for _, c := range []prometheus.Collector{r.syncs, r.syncSeconds, r.syncWrites, r.retries, r.transitions, r.settled} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) SyncFinished(result string, elapsed time.Duration, writes int) {
	r.syncs.WithLabelValues(result).Inc()
	r.syncSeconds.Observe(elapsed.Seconds())
	if result != "error" {
		r.syncWrites.Observe(float64(writes))
	}
}

func (r *PrometheusRecorder) SyncRetried() {
	r.retries.Inc()
}

func (r *PrometheusRecorder) Transition(subject, action, outcome string) {
	r.transitions.WithLabelValues(subject, action, outcome).Inc()
}

func (r *PrometheusRecorder) ControlsSettled(n int) {
	r.settled.Add(float64(n))
}
