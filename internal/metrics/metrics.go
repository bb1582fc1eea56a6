// Package metrics holds Prometheus instruments for configuration
// resolution.  All collectors are registered with the global registry, so
// serving promhttp.Handler() is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// LookupsTotal counts resolved reads by the tier that answered
	// (vault, env, file) or "miss".
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_lookups_total",
			Help: "Configuration reads by answering tier.",
		}, []string{"tier"})

	SecretReadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "config_secret_read_errors_total",
			Help: "Cumulative number of failed secret-store reads.",
		})

	SecretBootstrapTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_secret_bootstrap_total",
			Help: "Secret-store bootstrap attempts by outcome.",
		}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		LookupsTotal,
		SecretReadErrorsTotal,
		SecretBootstrapTotal,
	)
}
