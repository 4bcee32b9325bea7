package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Depot/internal/scoring"
)

// Metrics holds the induction planning collectors.
type Metrics struct {
	plansTotal      *prometheus.CounterVec
	categoryTrains  *prometheus.GaugeVec
	alertsTotal     *prometheus.CounterVec
	scoringDuration prometheus.Histogram
	fleetSize       prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		plansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "depot",
			Subsystem: "induction",
			Name:      "plans_total",
			Help:      "Induction plans generated, by weight preset.",
		}, []string{"preset"}),
		categoryTrains: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "depot",
			Subsystem: "induction",
			Name:      "category_trains",
			Help:      "Trains per category in the latest induction plan.",
		}, []string{"category"}),
		alertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "depot",
			Subsystem: "induction",
			Name:      "conflict_alerts_total",
			Help:      "Conflict alerts raised by induction plans, by kind.",
		}, []string{"kind"}),
		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "depot",
			Subsystem: "induction",
			Name:      "scoring_duration_seconds",
			Help:      "Time spent scoring and categorizing the fleet.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		fleetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "depot",
			Name:      "fleet_size",
			Help:      "Trains in the stored fleet.",
		}),
	}
	reg.MustRegister(m.plansTotal, m.categoryTrains, m.alertsTotal, m.scoringDuration, m.fleetSize)
	return m
}

// ObservePlan records one generated plan.
func (m *Metrics) ObservePlan(preset string, plan scoring.InductionPlan, elapsed time.Duration) {
	if preset == "" {
		preset = "custom"
	}
	m.plansTotal.WithLabelValues(preset).Inc()
	for c, n := range plan.Report.Counts() {
		m.categoryTrains.WithLabelValues(string(c)).Set(float64(n))
	}
	for _, a := range plan.Alerts {
		m.alertsTotal.WithLabelValues(string(a.Kind)).Inc()
	}
	m.scoringDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) SetFleetSize(n int) {
	m.fleetSize.Set(float64(n))
}
