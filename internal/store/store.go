package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TrainStatus string

const (
	StatusActive      TrainStatus = "active"
	StatusMaintenance TrainStatus = "maintenance"
	StatusCleaning    TrainStatus = "cleaning"
	StatusStandby     TrainStatus = "standby"
)

func (s TrainStatus) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusCleaning, StatusStandby:
		return true
	}
	return false
}

type BrandingPriority string

const (
	PriorityHigh   BrandingPriority = "high"
	PriorityMedium BrandingPriority = "medium"
	PriorityLow    BrandingPriority = "low"
)

func (p BrandingPriority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// FitnessCertificate is the validity flag of one safety subsystem.
type FitnessCertificate struct {
	Valid         bool   `json:"valid"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
	DaysRemaining int    `json:"days_remaining"`
}

type JobCards struct {
	Open         int      `json:"open"`
	Closed       int      `json:"closed"`
	PendingTasks []string `json:"pending_tasks,omitempty"`
}

type Branding struct {
	HasContract     bool             `json:"has_contract"`
	Priority        BrandingPriority `json:"priority"`
	Company         string           `json:"company,omitempty"`
	ContractHours   int              `json:"contract_hours"`
	CurrentExposure int              `json:"current_exposure"`
}

type Cleaning struct {
	CleanlinessScore int    `json:"cleanliness_score"` // 0-100
	NeedsCleaning    bool   `json:"needs_cleaning"`
	LastDeepClean    string `json:"last_deep_clean,omitempty"`
}

type MileageData struct {
	TotalKm     int     `json:"total_km"`
	DailyTarget int     `json:"daily_target"`
	Variance    float64 `json:"variance"` // vs fleet average
	WearLevel   int     `json:"wear_level"`
}

// Stabling places a train in the depot yard. ShuntCost is the energy cost of
// moving it out of CurrentBay.
type Stabling struct {
	CurrentBay   string `json:"current_bay,omitempty"`
	PreferredBay string `json:"preferred_bay,omitempty"`
	ShuntCost    int    `json:"shunt_cost"`
}

// Train is one fleet record as supplied by the fleet data source.
type Train struct {
	ID       string      `json:"id"`
	Status   TrainStatus `json:"status"`
	Location string      `json:"location,omitempty"`

	// Fitness certificates
	FitnessRollingStock FitnessCertificate `json:"fitness_rolling_stock"`
	FitnessSignaling    FitnessCertificate `json:"fitness_signaling"`
	FitnessTelecom      FitnessCertificate `json:"fitness_telecom"`

	JobCards    JobCards    `json:"job_cards"`
	Branding    Branding    `json:"branding"`
	Cleaning    Cleaning    `json:"cleaning"`
	MileageData MileageData `json:"mileage_data"`
	Stabling    Stabling    `json:"stabling"`

	UpdatedAt time.Time `json:"updated_at"`
}

// FitnessValid reports whether all three certificates are valid.
func (t *Train) FitnessValid() bool {
	return t.FitnessRollingStock.Valid && t.FitnessSignaling.Valid && t.FitnessTelecom.Valid
}

// Validate checks that every scoring input is present and within its domain.
func (t *Train) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("train id required")
	}
	if !t.Status.Valid() {
		return fmt.Errorf("train %s: invalid status %q", t.ID, t.Status)
	}
	if !t.Branding.Priority.Valid() {
		return fmt.Errorf("train %s: invalid branding priority %q", t.ID, t.Branding.Priority)
	}
	if t.JobCards.Open < 0 {
		return fmt.Errorf("train %s: open job cards must be non-negative, got %d", t.ID, t.JobCards.Open)
	}
	if t.Cleaning.CleanlinessScore < 0 || t.Cleaning.CleanlinessScore > 100 {
		return fmt.Errorf("train %s: cleanliness score %d outside 0-100", t.ID, t.Cleaning.CleanlinessScore)
	}
	return nil
}

// ValidateFleet checks a whole fleet before it replaces the stored one: no
// null records, every record valid, ids unique.
func ValidateFleet(trains []*Train) error {
	seen := make(map[string]int, len(trains))
	for i, t := range trains {
		if t == nil {
			return fmt.Errorf("fleet record %d: null", i)
		}
		if err := t.Validate(); err != nil {
			return fmt.Errorf("fleet record %d: %w", i, err)
		}
		if prev, ok := seen[t.ID]; ok {
			return fmt.Errorf("fleet record %d: duplicate train id %s (also record %d)", i, t.ID, prev)
		}
		seen[t.ID] = i
	}
	return nil
}

type TrainFilter struct {
	Status *TrainStatus
	Limit  int
	Offset int
}

type FleetStats struct {
	Total         int                 `json:"total"`
	ByStatus      map[TrainStatus]int `json:"by_status"`
	FitnessValid  int                 `json:"fitness_valid"`
	OpenJobCards  int                 `json:"open_job_cards"`
	NeedsCleaning int                 `json:"needs_cleaning"`
	WithContract  int                 `json:"with_contract"`
}

// PlanRecord is a persisted induction plan. Report and Scores hold the JSON
// encoding produced by the scoring package.
type PlanRecord struct {
	ID         uuid.UUID          `json:"plan_id"`
	Preset     string             `json:"preset,omitempty"`
	Weights    map[string]float64 `json:"weights"`
	FleetSize  int                `json:"fleet_size"`
	AlertCount int                `json:"alert_count"`
	Report     json.RawMessage    `json:"report"`
	Scores     json.RawMessage    `json:"scores,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

type PlanFilter struct {
	Preset string
	Limit  int
	Offset int
}

type Store interface {
	UpsertTrain(ctx context.Context, train *Train) error
	GetTrain(ctx context.Context, id string) (*Train, error)
	ListTrains(ctx context.Context, filter TrainFilter) ([]*Train, error)
	DeleteTrain(ctx context.Context, id string) error
	// ReplaceFleet atomically swaps the whole fleet for the given records.
	ReplaceFleet(ctx context.Context, trains []*Train) error

	GetFleetStats(ctx context.Context) (*FleetStats, error)

	CreatePlan(ctx context.Context, plan *PlanRecord) error
	GetPlan(ctx context.Context, id uuid.UUID) (*PlanRecord, error)
	ListPlans(ctx context.Context, filter PlanFilter) ([]*PlanRecord, error)

	Close() error
}

// computeStats is shared by the store implementations.
func computeStats(trains []*Train) *FleetStats {
	stats := &FleetStats{ByStatus: make(map[TrainStatus]int)}
	for _, t := range trains {
		stats.Total++
		stats.ByStatus[t.Status]++
		if t.FitnessValid() {
			stats.FitnessValid++
		}
		stats.OpenJobCards += t.JobCards.Open
		if t.Cleaning.NeedsCleaning {
			stats.NeedsCleaning++
		}
		if t.Branding.HasContract {
			stats.WithContract++
		}
	}
	return stats
}
