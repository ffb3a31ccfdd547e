package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application lifecycle.
type Metrics struct {
	ApplicationsRegistered prometheus.Counter
	Transitions            *prometheus.CounterVec
	NotificationFailures   prometheus.Counter
	ExpirySweepDuration    prometheus.Histogram
}

// New registers all lifecycle metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ApplicationsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_applications_registered_total",
			Help: "Total number of initial applications registered",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_application_transitions_total",
			Help: "Application status transitions by target status",
		}, []string{"status"}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_notification_failures_total",
			Help: "Notifications that could not be delivered after a committed transition",
		}),
		ExpirySweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_expiry_sweep_duration_seconds",
			Help:    "Duration of expiry sweeps over active applications",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	m.ApplicationsRegistered.Inc()
}

func (m *Metrics) IncrementTransition(status string) {
	m.Transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementNotificationFailure() {
	m.NotificationFailures.Inc()
}

// ObserveExpirySweep records the duration of a sweep.
// Call with time.Now() at the start of the sweep.
func (m *Metrics) ObserveExpirySweep(start time.Time) {
	m.ExpirySweepDuration.Observe(time.Since(start).Seconds())
}
