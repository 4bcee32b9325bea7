package scoring

import (
	"fmt"

	"github.com/MikeSquared-Agency/Depot/internal/store"
)

// Capacity limits behind the conflict alerts. Not configurable.
const (
	MinReadyForService = 18
	MaxMaintenanceLoad = 4
)

// SchedulingReport partitions a fleet into the five categories. Each id list
// keeps fleet input order.
type SchedulingReport struct {
	FitnessInvalid       []string `json:"fitness_invalid"`
	ScheduledMaintenance []string `json:"scheduled_maintenance"`
	ScheduledCleaning    []string `json:"scheduled_cleaning"`
	ReadyForService      []string `json:"ready_for_service"`
	StandbyIdle          []string `json:"standby_idle"`
	ConflictAlerts       []string `json:"conflict_alerts"`
}

func newSchedulingReport() SchedulingReport {
	return SchedulingReport{
		FitnessInvalid:       []string{},
		ScheduledMaintenance: []string{},
		ScheduledCleaning:    []string{},
		ReadyForService:      []string{},
		StandbyIdle:          []string{},
		ConflictAlerts:       []string{},
	}
}

func (r *SchedulingReport) bucket(c Category) *[]string {
	switch c {
	case CategoryFitnessInvalid:
		return &r.FitnessInvalid
	case CategoryScheduledMaintenance:
		return &r.ScheduledMaintenance
	case CategoryScheduledCleaning:
		return &r.ScheduledCleaning
	case CategoryReadyForService:
		return &r.ReadyForService
	default:
		return &r.StandbyIdle
	}
}

// IDs returns the train ids placed in category c.
func (r *SchedulingReport) IDs(c Category) []string {
	return *r.bucket(c)
}

// Counts returns the number of trains per category.
func (r *SchedulingReport) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = len(r.IDs(c))
	}
	return counts
}

// ComputeSchedulingReport scores every train with the given weights, places
// each one in its category and derives the capacity alerts. It is pure: the
// same fleet and weights always produce the same report.
func ComputeSchedulingReport(fleet []*store.Train, weights WeightSet) SchedulingReport {
	report := newSchedulingReport()
	for _, t := range fleet {
		score := scoreTrain(t, weights)
		b := report.bucket(score.Category)
		*b = append(*b, t.ID)
	}
	report.ConflictAlerts = deriveAlerts(&report)
	return report
}

// AlertKind identifies which capacity rule raised an alert.
type AlertKind string

const (
	AlertInsufficientService AlertKind = "insufficient_service"
	AlertMaintenanceLoad     AlertKind = "maintenance_load"
)

// Alert is a conflict alert with its originating rule.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// Alerts evaluates the capacity rules against a categorized report.
func Alerts(r *SchedulingReport) []Alert {
	alerts := []Alert{}
	if n := len(r.ReadyForService); n < MinReadyForService {
		alerts = append(alerts, Alert{
			Kind:    AlertInsufficientService,
			Message: fmt.Sprintf("Insufficient trains ready for service. Only %d available, need %d minimum.", n, MinReadyForService),
		})
	}
	if n := len(r.ScheduledMaintenance); n > MaxMaintenanceLoad {
		alerts = append(alerts, Alert{
			Kind:    AlertMaintenanceLoad,
			Message: fmt.Sprintf("High maintenance load: %d trains require maintenance.", n),
		})
	}
	return alerts
}

func deriveAlerts(r *SchedulingReport) []string {
	alerts := Alerts(r)
	msgs := make([]string, 0, len(alerts))
	for _, a := range alerts {
		msgs = append(msgs, a.Message)
	}
	return msgs
}
