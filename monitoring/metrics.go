package monitoring

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchaseAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchase_attempts_total",
			Help: "Purchase attempts by settled outcome",
		},
		[]string{"outcome"},
	)

	transferAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_attempts_total",
			Help: "Transfer attempts by settled outcome",
		},
		[]string{"outcome"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flow_stage_duration_seconds",
			Help:    "Time spent in each purchase/transfer stage",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"flow", "stage"},
	)

	unrecordedPayments = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "unrecorded_payments_total",
			Help: "Confirmed on-chain payments the backend failed to record",
		},
	)

	inFlightAttempts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "in_flight_attempts_total",
			Help: "Purchase/transfer attempts currently between submission and settlement",
		},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_goroutines_total",
			Help: "Current number of active goroutines",
		},
	)
)

type Monitor struct{}

func NewMonitor() *Monitor {
	monitor := &Monitor{}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		goroutineCount.Set(float64(runtime.NumGoroutine()))
	}
}

// Outcome labels for settled attempts.
const (
	OutcomeSuccess        = "success"
	OutcomeRejected       = "rejected"
	OutcomeChainFailed    = "chain_failed"
	OutcomeInvalidInput   = "invalid_input"
	OutcomePaidUnrecorded = "paid_unrecorded"
)

func (m *Monitor) TrackPurchase(outcome string) {
	purchaseAttempts.WithLabelValues(outcome).Inc()
	if outcome == OutcomePaidUnrecorded {
		unrecordedPayments.Inc()
	}
}

func (m *Monitor) TrackTransfer(outcome string) {
	transferAttempts.WithLabelValues(outcome).Inc()
	if outcome == OutcomePaidUnrecorded {
		unrecordedPayments.Inc()
	}
}

func (m *Monitor) TrackStage(flow, stage string, duration time.Duration) {
	stageDuration.WithLabelValues(flow, stage).Observe(duration.Seconds())
}

func (m *Monitor) AttemptStarted() { inFlightAttempts.Inc() }
func (m *Monitor) AttemptSettled() { inFlightAttempts.Dec() }
