package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	reminderRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_runs_total",
			Help: "Daily reminder job runs by outcome (sent/empty/error).",
		},
		[]string{"outcome"},
	)
)

func init() {
	register(reminderRunsTotal)
}

func ReminderRun(outcome string) {
	reminderRunsTotal.WithLabelValues(outcome).Inc()
}
