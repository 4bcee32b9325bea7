package hermes

import "time"

const (
	StreamName   = "DEPOT_EVENTS"
	StreamMaxAge = "168h" // 7 days

	// ConnectTimeout bounds the initial dial and stream setup.
	ConnectTimeout = 2 * time.Second
)

func SubjectPlanGenerated(planID string) string { return "depot.induction." + planID + ".generated" }
func SubjectPlanAlert(planID string) string     { return "depot.induction." + planID + ".alert" }

func SubjectFleetUpdated(trainID string) string { return "depot.fleet." + trainID + ".updated" }
func SubjectFleetRemoved(trainID string) string { return "depot.fleet." + trainID + ".removed" }
func SubjectFleetReplaced() string              { return "depot.fleet.replaced" }
