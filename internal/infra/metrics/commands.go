package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Handled bot commands by verb and outcome (ok/user_error/error).",
		},
		[]string{"command", "outcome"},
	)

	commandLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bot_command_latency_ms",
			Help:    "Command handling latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
		[]string{"command"},
	)

	rateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_rate_limited_total",
			Help: "Commands rejected by the per-user rate limiter.",
		},
	)
)

func init() {
	register(commandsTotal, commandLatencyMs, rateLimited)
}

func norm(s string) string { return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "/")) }

func ObserveCommand(command, outcome string, latencyMs float64) {
	commandsTotal.WithLabelValues(norm(command), outcome).Inc()
	commandLatencyMs.WithLabelValues(norm(command)).Observe(latencyMs)
}

func IncRateLimited() { rateLimited.Inc() }
