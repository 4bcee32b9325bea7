package scoring

import "github.com/MikeSquared-Agency/Depot/internal/store"

// Move records a train whose category differs between two weight sets.
type Move struct {
	TrainID string   `json:"train_id"`
	From    Category `json:"from"`
	To      Category `json:"to"`
}

// Comparison is the what-if view of one fleet under two weight sets.
type Comparison struct {
	Baseline  WeightSet        `json:"baseline"`
	Candidate WeightSet        `json:"candidate"`
	Before    map[Category]int `json:"before"`
	After     map[Category]int `json:"after"`
	Moved     []Move           `json:"moved"`
	Alerts    []string         `json:"alerts"`
}

// Compare scores the fleet under baseline and candidate weights. Only the
// ready-for-service/standby split depends on weights, so moves are always
// between those two categories.
func Compare(fleet []*store.Train, baseline, candidate WeightSet) Comparison {
	before := ComputeSchedulingReport(fleet, baseline)
	after := ComputeSchedulingReport(fleet, candidate)

	moved := []Move{}
	for _, t := range fleet {
		from := scoreTrain(t, baseline).Category
		to := scoreTrain(t, candidate).Category
		if from != to {
			moved = append(moved, Move{TrainID: t.ID, From: from, To: to})
		}
	}

	return Comparison{
		Baseline:  baseline,
		Candidate: candidate,
		Before:    before.Counts(),
		After:     after.Counts(),
		Moved:     moved,
		Alerts:    after.ConflictAlerts,
	}
}
