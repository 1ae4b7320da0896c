/************************************************************************************
 *
 * gatecore, a Discord gateway shard core for Go
 *
 * SPDX-License-Identifier: BSD-3-Clause
 *
 ************************************************************************************/

package example

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gatecore/gatecore"
)

// PrometheusMetrics implements gatecore.Metrics for a runner that
// exposes a /metrics endpoint; the core itself never imports
// prometheus directly.
type PrometheusMetrics struct {
	latency    prometheus.Histogram
	reconnects *prometheus.CounterVec
	identifies prometheus.Counter
	resumes    prometheus.Counter
	stage      *prometheus.GaugeVec
}

// NewPrometheusMetrics registers its collectors against reg, labeling
// every series with the owning shard's index.
func NewPrometheusMetrics(reg prometheus.Registerer, shardIndex int) *PrometheusMetrics {
	labels := prometheus.Labels{"shard": strconv.Itoa(shardIndex)}
	return &PrometheusMetrics{
		latency: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:        "gatecore_heartbeat_latency_seconds",
			Help:        "Round trip time between a heartbeat send and its ack.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		reconnects: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name:        "gatecore_reconnects_total",
			Help:        "Reconnects by triggering reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
		identifies: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "gatecore_identifies_total",
			Help:        "Identify frames sent.",
			ConstLabels: labels,
		}),
		resumes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name:        "gatecore_resumes_total",
			Help:        "Resume frames sent.",
			ConstLabels: labels,
		}),
		stage: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gatecore_stage",
			Help:        "1 for the shard's current connection stage, 0 otherwise.",
			ConstLabels: labels,
		}, []string{"stage"}),
	}
}

func (m *PrometheusMetrics) ObserveLatency(d time.Duration) {
	m.latency.Observe(d.Seconds())
}

func (m *PrometheusMetrics) IncReconnect(reason string) {
	m.reconnects.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) IncIdentify() {
	m.identifies.Inc()
}

func (m *PrometheusMetrics) IncResume() {
	m.resumes.Inc()
}

func (m *PrometheusMetrics) SetStage(stage gatecore.Stage) {
	for _, s := range allStages {
		v := 0.0
		if s == stage {
			v = 1.0
		}
		m.stage.WithLabelValues(s.String()).Set(v)
	}
}

var allStages = []gatecore.Stage{
	gatecore.StageDisconnected,
	gatecore.StageConnecting,
	gatecore.StageHandshake,
	gatecore.StageIdentifying,
	gatecore.StageResuming,
	gatecore.StageConnected,
}
