package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricNameSpace = "passit"
)

var (
	flowsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "flows_finished_total",
			Help:      "claim flows that reached a terminal phase",
		},
		[]string{"phase", "code"},
	)
	flowsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "flows_active",
			Help:      "claim flows currently registered",
		},
	)
	pollQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "poll_queries_total",
			Help:      "claim status queries by outcome",
		},
		[]string{"outcome"},
	)
	artifactDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "artifact_deliveries_total",
			Help:      "card downloads and prints by delivery method",
		},
		[]string{"action", "method"},
	)
)

func init() {
	prometheus.MustRegister(
		flowsFinished,
		flowsActive,
		pollQueries,
		artifactDeliveries,
	)
}

// FlowFinished counts a flow entering success or error. code is empty on success.
func FlowFinished(phase, code string) {
	flowsFinished.WithLabelValues(phase, code).Inc()
}

func FlowsActive(n int) {
	flowsActive.Set(float64(n))
}

// PollQuery counts one status query; outcome is the tx state or "error".
func PollQuery(outcome string) {
	pollQueries.WithLabelValues(outcome).Inc()
}

func ArtifactDelivered(action, method string) {
	artifactDeliveries.WithLabelValues(action, method).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
