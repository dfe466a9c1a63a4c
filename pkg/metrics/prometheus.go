package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records domain-level metrics for the prediction pipeline.
type Recorder struct {
	computes        *prometheus.CounterVec
	computeDuration prometheus.Histogram
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	locksWritten    prometheus.Counter
	gradings        prometheus.Counter
	upstreamErrors  *prometheus.CounterVec
}

// NewRecorder registers and returns the domain metrics recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		computes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hockeyquant_predictions_computed_total",
			Help: "Prediction computations by trigger.",
		}, []string{"trigger"}),
		computeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hockeyquant_prediction_compute_duration_seconds",
			Help:    "Time spent computing a full slate of predictions.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hockeyquant_prediction_cache_hits_total",
			Help: "Prediction cache hits.",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hockeyquant_prediction_cache_misses_total",
			Help: "Prediction cache misses.",
		}),
		locksWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hockeyquant_predictions_locked_total",
			Help: "Predictions written to the permanent record.",
		}),
		gradings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hockeyquant_predictions_graded_total",
			Help: "Locked predictions graded against final scores.",
		}),
		upstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hockeyquant_upstream_errors_total",
			Help: "Upstream data source failures by source.",
		}, []string{"source"}),
	}
}

// ComputeObserved records one prediction computation and its duration.
// trigger is "canonical" or "override".
func (r *Recorder) ComputeObserved(trigger string, d time.Duration) {
	r.computes.WithLabelValues(trigger).Inc()
	r.computeDuration.Observe(d.Seconds())
}

func (r *Recorder) CacheHit()  { r.cacheHits.Inc() }
func (r *Recorder) CacheMiss() { r.cacheMisses.Inc() }

// LocksWritten records n predictions written to the permanent record.
func (r *Recorder) LocksWritten(n int) {
	r.locksWritten.Add(float64(n))
}

// Graded records n predictions graded.
func (r *Recorder) Graded(n int) {
	r.gradings.Add(float64(n))
}

// UpstreamError records a failure talking to an external data source.
func (r *Recorder) UpstreamError(source string) {
	r.upstreamErrors.WithLabelValues(source).Inc()
}
