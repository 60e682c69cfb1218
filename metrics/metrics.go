// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MustRegister will register all metrics on the given registry.
// If metrics with the same name already exist on the registry this function will panic.
func MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(verdictCounter, operationCounter, actionCounter,
		capabilityCounter, capabilityDuration)
}

// SampleVerdict counts one safety gate verdict ("SAFE" or "MALICIOUS").
func SampleVerdict(verdict string) {
	verdictCounter.With(prometheus.Labels{"verdict": verdict}).Inc()
}

// SampleOperation counts one executed (or failed) store operation.
func SampleOperation(kind string, err error) {
	operationCounter.With(prometheus.Labels{"kind": kind, "status": status(err)}).Inc()
}

// SampleAction counts one routed analytics action.
func SampleAction(action string) {
	actionCounter.With(prometheus.Labels{"action": action}).Inc()
}

// SampleCapability records one call to an external capability.
func SampleCapability(name string, elapsed time.Duration, err error) {
	labels := prometheus.Labels{"name": name, "status": status(err)}
	capabilityCounter.With(labels).Inc()
	capabilityDuration.With(labels).Observe(elapsed.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	verdictCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryguard_verdicts_total",
			Help: "Count of safety gate verdicts",
		},
		[]string{"verdict"},
	)
	operationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryguard_operations_total",
			Help: "Count of store operations run for safe statements",
		},
		[]string{"kind", "status"},
	)
	actionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryguard_analytics_actions_total",
			Help: "Count of analytics questions per classified action",
		},
		[]string{"action"},
	)
	capabilityCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queryguard_capability_calls_total",
			Help: "Count of classifier and summarizer calls",
		},
		[]string{"name", "status"},
	)
	capabilityDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "queryguard_capability_duration_seconds",
			Help: "Duration of classifier and summarizer calls",
			Buckets: []float64{
				.1, .25, .5, .75, 1, 2, 3, 5, 10, 20, 30,
			},
		},
		[]string{"name", "status"},
	)
)
