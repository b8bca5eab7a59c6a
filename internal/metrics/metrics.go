// Package metrics exposes Prometheus instrumentation for a running
// receiver: timing-loop drift, sync-lock state, NID outcomes,
// BCH-corrected bit errors, sync losses, and assembler capacity drops.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector a receiver registers. Construct one with
// New(prometheus.DefaultRegisterer) (or a test registry) and wire its
// methods into the symbol/framer listeners.
type Metrics struct {
	ObservedSamplesPerSymbol prometheus.Gauge
	SyncLocked               prometheus.Gauge

	NIDValidTotal   prometheus.Counter
	NIDInvalidTotal prometheus.Counter

	BCHCorrectedBitErrors prometheus.Histogram

	SyncLossTotal          prometheus.Counter
	AssemblerFullDropTotal prometheus.Counter
}

// New registers and returns a fresh Metrics bundle against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ObservedSamplesPerSymbol: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "p25rx",
			Name:      "observed_samples_per_symbol",
			Help:      "Current estimate of samples per symbol, tracked by the timing loop.",
		}),
		SyncLocked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "p25rx",
			Name:      "sync_locked",
			Help:      "1 when the timing loop holds sync lock, 0 otherwise.",
		}),
		NIDValidTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "p25rx",
			Name:      "nid_valid_total",
			Help:      "Count of NIDs that decoded (after BCH correction) within the error-correcting capacity.",
		}),
		NIDInvalidTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "p25rx",
			Name:      "nid_invalid_total",
			Help:      "Count of NIDs the BCH decoder reported as uncorrectable.",
		}),
		BCHCorrectedBitErrors: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "p25rx",
			Name:      "bch_corrected_bit_errors",
			Help:      "Number of bit errors corrected per successfully decoded NID.",
			Buckets:   prometheus.LinearBuckets(0, 1, 12),
		}),
		SyncLossTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "p25rx",
			Name:      "sync_loss_total",
			Help:      "Count of SyncLoss events emitted by the message framer.",
		}),
		AssemblerFullDropTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "p25rx",
			Name:      "assembler_full_drop_total",
			Help:      "Count of payload bits dropped because an assembler reached its DUID's capacity.",
		}),
	}
}

// RecordNID records the outcome of one NID decode attempt.
func (m *Metrics) RecordNID(valid bool, correctedBitErrors int) {
	if valid {
		m.NIDValidTotal.Inc()
		m.BCHCorrectedBitErrors.Observe(float64(correctedBitErrors))
		return
	}
	m.NIDInvalidTotal.Inc()
}

// SetSyncLock updates the sync-lock gauge.
func (m *Metrics) SetSyncLock(locked bool) {
	if locked {
		m.SyncLocked.Set(1)
		return
	}
	m.SyncLocked.Set(0)
}
