package hermes

import "time"

type PlanGeneratedEvent struct {
	PlanID     string             `json:"plan_id"`
	Preset     string             `json:"preset,omitempty"`
	Weights    map[string]float64 `json:"weights"`
	FleetSize  int                `json:"fleet_size"`
	Counts     map[string]int     `json:"counts"`
	AlertCount int                `json:"alert_count"`
	Timestamp  time.Time          `json:"timestamp"`
}

type PlanAlertEvent struct {
	PlanID  string `json:"plan_id"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type FleetUpdatedEvent struct {
	TrainID string `json:"train_id"`
	Status  string `json:"status"`
}

type FleetReplacedEvent struct {
	Source    string    `json:"source"`
	FleetSize int       `json:"fleet_size"`
	Timestamp time.Time `json:"timestamp"`
}
