package scoring

import "github.com/MikeSquared-Agency/Depot/internal/store"

// Category is the operational bucket a train is inducted into.
type Category string

const (
	CategoryFitnessInvalid       Category = "fitness_invalid"
	CategoryScheduledMaintenance Category = "scheduled_maintenance"
	CategoryScheduledCleaning    Category = "scheduled_cleaning"
	CategoryReadyForService      Category = "ready_for_service"
	CategoryStandbyIdle          Category = "standby_idle"
)

// Categories lists every bucket in evaluation order.
var Categories = []Category{
	CategoryFitnessInvalid,
	CategoryScheduledMaintenance,
	CategoryScheduledCleaning,
	CategoryReadyForService,
	CategoryStandbyIdle,
}

const (
	// ServiceScoreThreshold is the composite score a train must strictly exceed
	// to be ready for service.
	ServiceScoreThreshold = 0.7
	// CleanlinessThreshold sends trains scoring below it to cleaning.
	CleanlinessThreshold = 70
)

type categoryRule struct {
	category Category
	matches  func(t *store.Train, total float64) bool
}

// categoryRules are evaluated in order; the first match wins. The last rule
// always matches, so every train lands in exactly one category.
var categoryRules = []categoryRule{
	{CategoryFitnessInvalid, func(t *store.Train, _ float64) bool {
		return !t.FitnessValid()
	}},
	{CategoryScheduledMaintenance, func(t *store.Train, _ float64) bool {
		return t.JobCards.Open > 0 || t.Status == store.StatusMaintenance
	}},
	{CategoryScheduledCleaning, func(t *store.Train, _ float64) bool {
		return t.Cleaning.NeedsCleaning || t.Cleaning.CleanlinessScore < CleanlinessThreshold
	}},
	{CategoryReadyForService, func(_ *store.Train, total float64) bool {
		return total > ServiceScoreThreshold
	}},
	{CategoryStandbyIdle, func(*store.Train, float64) bool {
		return true
	}},
}

// Categorize returns the first category whose rule matches.
func Categorize(t *store.Train, total float64) Category {
	for _, r := range categoryRules {
		if r.matches(t, total) {
			return r.category
		}
	}
	return CategoryStandbyIdle
}
