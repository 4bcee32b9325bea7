package scoring

import (
	"log/slog"
	"sort"

	"github.com/MikeSquared-Agency/Depot/internal/store"
)

// TrainScore captures the complete scoring output for a single train.
type TrainScore struct {
	TrainID    string         `json:"train_id"`
	TotalScore float64        `json:"total_score"`
	Factors    []FactorResult `json:"factors"`
	Category   Category       `json:"category"`
}

// InductionPlan is a scheduling report together with the per-train
// breakdown that produced it.
type InductionPlan struct {
	Weights WeightSet        `json:"weights"`
	Report  SchedulingReport `json:"report"`
	Alerts  []Alert          `json:"alerts"`
	// Scores are ranked by total score, highest first.
	Scores []TrainScore `json:"scores"`
}

// Scorer applies one weight configuration to fleets.
type Scorer struct {
	weights WeightSet
	logger  *slog.Logger
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(weights WeightSet, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{weights: weights, logger: logger}
}

// Weights returns the scorer's weight configuration.
func (s *Scorer) Weights() WeightSet {
	return s.weights
}

// ScoreTrain computes the factor breakdown, total and category for one train.
func (s *Scorer) ScoreTrain(t *store.Train) TrainScore {
	return scoreTrain(t, s.weights)
}

// Report computes the scheduling report for a fleet.
func (s *Scorer) Report(fleet []*store.Train) SchedulingReport {
	return ComputeSchedulingReport(fleet, s.weights)
}

// Plan computes the report plus ranked per-train scores.
func (s *Scorer) Plan(fleet []*store.Train) InductionPlan {
	scores := make([]TrainScore, 0, len(fleet))
	for _, t := range fleet {
		scores = append(scores, scoreTrain(t, s.weights))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})

	report := ComputeSchedulingReport(fleet, s.weights)
	plan := InductionPlan{
		Weights: s.weights,
		Report:  report,
		Alerts:  Alerts(&report),
		Scores:  scores,
	}

	s.logger.Debug("induction plan computed",
		"fleet_size", len(fleet),
		"ready_for_service", len(report.ReadyForService),
		"scheduled_maintenance", len(report.ScheduledMaintenance),
		"alerts", len(report.ConflictAlerts),
	)
	return plan
}

func scoreTrain(t *store.Train, w WeightSet) TrainScore {
	factors := []FactorResult{
		ReliabilityFactor(t),
		BrandingFactor(t),
		CleaningFactor(t),
		MileageBalancingFactor(t),
	}

	weights := w.asList()

	var total float64
	for i := range factors {
		factors[i].Weight = weights[i]
		factors[i].Weighted = factors[i].Score * weights[i]
		total += factors[i].Weighted
	}

	return TrainScore{
		TrainID:    t.ID,
		TotalScore: total,
		Factors:    factors,
		Category:   Categorize(t, total),
	}
}
