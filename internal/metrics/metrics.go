// Package metrics exposes pipeline counters to Prometheus.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

const namespace = "fatigue"

type Metrics struct {
	Polls            *prometheus.CounterVec
	Deliveries       *prometheus.CounterVec
	DeliveryDuration *prometheus.HistogramVec
	Watermark        prometheus.Gauge
	SnapshotWrites   *prometheus.CounterVec
	Uploads          *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Polls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Poll cycles by outcome.",
		}, []string{"outcome"}),

		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Delivery attempts by sink and result.",
		}, []string{"sink", "result"}),

		DeliveryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Delivery latency by sink.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),

		Watermark: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watermark_timestamp_seconds",
			Help:      "Modification time of the last delivered snapshot.",
		}),

		SnapshotWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Snapshots written by status code.",
		}, []string{"status_code"}),

		Uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receiver_uploads_total",
			Help:      "Uploads received by HTTP status.",
		}, []string{"code"}),
	}
}

func (m *Metrics) PollOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Polls.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Delivery(sink string, ok bool, took time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.Deliveries.WithLabelValues(sink, result).Inc()
	m.DeliveryDuration.WithLabelValues(sink).Observe(took.Seconds())
}

func (m *Metrics) WatermarkAdvanced(t time.Time) {
	if m == nil {
		return
	}
	m.Watermark.Set(float64(t.UnixNano()) / 1e9)
}

func (m *Metrics) SnapshotWritten(code status.Code) {
	if m == nil {
		return
	}
	m.SnapshotWrites.WithLabelValues(strconv.Itoa(int(code))).Inc()
}

func (m *Metrics) Upload(httpCode int) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(strconv.Itoa(httpCode)).Inc()
}
