package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the membership module: application
// volume, lifecycle decisions and the registration critical path.
type Metrics struct {
	Registrations      prometheus.Counter
	LifecycleDecisions *prometheus.CounterVec
	InterestChanges    *prometheus.CounterVec
	RegisterDuration   prometheus.Histogram
	SearchDuration     prometheus.Histogram
}

// New creates a Metrics instance with all membership metrics registered.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "culturecrm_registrations_total",
			Help: "Total number of membership applications received",
		}),
		LifecycleDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "culturecrm_lifecycle_decisions_total",
			Help: "Lifecycle transitions by outcome (approved, rejected, deactivated, reactivated)",
		}, []string{"decision"}),
		InterestChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "culturecrm_interest_changes_total",
			Help: "Interest associations added and removed",
		}, []string{"action"}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "culturecrm_register_duration_seconds",
			Help:    "Duration of registration (account, profile and history writes)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "culturecrm_member_search_duration_seconds",
			Help:    "Duration of admin member searches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementRegistration records a received application.
func (m *Metrics) IncrementRegistration() {
	m.Registrations.Inc()
}

// IncrementDecision records a lifecycle transition outcome.
func (m *Metrics) IncrementDecision(decision string) {
	m.LifecycleDecisions.WithLabelValues(decision).Inc()
}

// IncrementInterestChange records an interest association change.
func (m *Metrics) IncrementInterestChange(action string) {
	m.InterestChanges.WithLabelValues(action).Inc()
}

// ObserveRegister records the duration of a registration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveSearch records the duration of an admin search.
func (m *Metrics) ObserveSearch(start time.Time) {
	m.SearchDuration.Observe(time.Since(start).Seconds())
}
