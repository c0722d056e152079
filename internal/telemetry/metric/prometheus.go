package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snapmerge"

// Registry holds all merge metrics.
type Registry struct {
	registry *prometheus.Registry

	AccountsLoaded   *prometheus.CounterVec
	AccountsExcluded *prometheus.CounterVec
	AccountsShadowed *prometheus.CounterVec
	AccountsMerged   prometheus.Gauge
	Capitalization   prometheus.Gauge
	SegmentsWritten  prometheus.Counter
	SegmentBytes     prometheus.Counter
	StageDuration    *prometheus.GaugeVec
}

// NewRegistry creates a registry with all merge metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		AccountsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_loaded_total",
			Help:      "Accounts read from an input ledger",
		}, []string{"side"}),
		AccountsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_excluded_total",
			Help:      "Source accounts dropped as validator identity state",
		}, []string{"reason"}),
		AccountsShadowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_shadowed_total",
			Help:      "Addresses present on both sides, by the side whose copy was kept",
		}, []string{"winner"}),
		AccountsMerged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounts_merged",
			Help:      "Accounts in the merged store",
		}),
		Capitalization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "capitalization_lamports",
			Help:      "Recomputed capitalization of the merged store",
		}),
		SegmentsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_written_total",
			Help:      "Storage segments staged to disk",
		}),
		SegmentBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segment_bytes_total",
			Help:      "Bytes of storage segments staged to disk",
		}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage",
		}, []string{"stage"}),
	}

	r.registry.MustRegister(
		r.AccountsLoaded,
		r.AccountsExcluded,
		r.AccountsShadowed,
		r.AccountsMerged,
		r.Capitalization,
		r.SegmentsWritten,
		r.SegmentBytes,
		r.StageDuration,
	)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// Loaded records n accounts read from side ("source" or "target").
func (r *Registry) Loaded(side string, n int) {
	if r == nil {
		return
	}
	r.AccountsLoaded.WithLabelValues(side).Add(float64(n))
}

// Excluded records n source accounts dropped for reason.
func (r *Registry) Excluded(reason string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.AccountsExcluded.WithLabelValues(reason).Add(float64(n))
}

// Shadowed records n addresses resolved in favour of winner.
func (r *Registry) Shadowed(winner string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.AccountsShadowed.WithLabelValues(winner).Add(float64(n))
}

// Merged records the merged store's size and capitalization.
func (r *Registry) Merged(accounts int, capitalization uint64) {
	if r == nil {
		return
	}
	r.AccountsMerged.Set(float64(accounts))
	r.Capitalization.Set(float64(capitalization))
}

// SegmentWritten records one staged segment of n bytes.
func (r *Registry) SegmentWritten(n int64) {
	if r == nil {
		return
	}
	r.SegmentsWritten.Inc()
	r.SegmentBytes.Add(float64(n))
}

// ObserveStage records how long stage took.
func (r *Registry) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// WriteTextfile writes all metrics to path in the textfile collector
// format. The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
