package scoring

import (
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/Depot/internal/store"
)

// Factor names, in weight order.
const (
	FactorReliability      = "reliability"
	FactorBranding         = "branding"
	FactorCleaning         = "cleaning"
	FactorMileageBalancing = "mileage_balancing"
)

var factorNames = []string{FactorReliability, FactorBranding, FactorCleaning, FactorMileageBalancing}

// FactorResult captures one factor's contribution to the total score.
type FactorResult struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
	Reason   string  `json:"reason"`
}

// --- Individual factor calculators ---

// ReliabilityFactor counts the three certificates plus "no open job cards",
// each worth a quarter.
func ReliabilityFactor(t *store.Train) FactorResult {
	checks := []bool{
		t.FitnessRollingStock.Valid,
		t.FitnessSignaling.Valid,
		t.FitnessTelecom.Valid,
		t.JobCards.Open == 0,
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return FactorResult{
		Name:   FactorReliability,
		Score:  float64(passed) / float64(len(checks)),
		Reason: fmt.Sprintf("%d/4 checks passed, %d open job cards", passed, t.JobCards.Open),
	}
}

// BrandingFactor scores contract exposure priority. A low-priority contract
// scores the same as no contract at all.
func BrandingFactor(t *store.Train) FactorResult {
	b := t.Branding
	switch {
	case b.HasContract && b.Priority == store.PriorityHigh:
		return FactorResult{Name: FactorBranding, Score: 1.0, Reason: "high priority contract"}
	case b.HasContract && b.Priority == store.PriorityMedium:
		return FactorResult{Name: FactorBranding, Score: 0.6, Reason: "medium priority contract"}
	case b.HasContract:
		return FactorResult{Name: FactorBranding, Score: 0.3, Reason: "low priority contract"}
	default:
		return FactorResult{Name: FactorBranding, Score: 0.3, Reason: "no contract"}
	}
}

// CleaningFactor is the cleanliness score scaled to [0, 1].
func CleaningFactor(t *store.Train) FactorResult {
	return FactorResult{
		Name:   FactorCleaning,
		Score:  float64(t.Cleaning.CleanlinessScore) / 100,
		Reason: fmt.Sprintf("cleanliness %d/100", t.Cleaning.CleanlinessScore),
	}
}

// MileageBalancingFactor falls linearly from 1 at zero variance to 0 at a
// deviation of 50 km or more from the fleet average.
func MileageBalancingFactor(t *store.Train) FactorResult {
	v := t.MileageData.Variance
	return FactorResult{
		Name:   FactorMileageBalancing,
		Score:  math.Max(0, 1-math.Abs(v)/50),
		Reason: fmt.Sprintf("variance %+.1f km vs fleet average", v),
	}
}
