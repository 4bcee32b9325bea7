// Package depot derives the yard and work-queue views of the fleet: the bay
// map, branding contracts, maintenance jobs and cleaning tasks. Every view is
// computed from the stored train records, so it always agrees with the
// induction plan built from the same fleet.
package depot

import (
	"fmt"
	"sort"

	"github.com/MikeSquared-Agency/Depot/internal/scoring"
	"github.com/MikeSquared-Agency/Depot/internal/store"
)

type BayType string

const (
	BayParking     BayType = "parking"
	BayMaintenance BayType = "maintenance"
	BayCleaning    BayType = "cleaning"
)

// Yard layout: four parking rows of eight, four inspection bay lines and two
// cleaning bays.
var (
	ParkingRows      = []string{"A", "B", "C", "D"}
	BaysPerRow       = 8
	MaintenanceBays  = 4
	CleaningBayCount = 2
)

type Bay struct {
	ID       string  `json:"id"`
	Type     BayType `json:"type"`
	Capacity int     `json:"capacity"`
	Occupied bool    `json:"occupied"`
	TrainID  string  `json:"train_id,omitempty"`
}

// BayMap is the yard occupancy. Trains that need a maintenance or cleaning
// bay when all are taken are listed in Waiting; trains on the line are not in
// the yard.
type BayMap struct {
	Bays     []Bay           `json:"bays"`
	Waiting  []string        `json:"waiting"`
	OnLine   []string        `json:"on_line"`
	Occupied map[BayType]int `json:"occupied"`
	Free     map[BayType]int `json:"free"`
}

func layout() []Bay {
	bays := make([]Bay, 0, len(ParkingRows)*BaysPerRow+MaintenanceBays+CleaningBayCount)
	for _, row := range ParkingRows {
		for i := 1; i <= BaysPerRow; i++ {
			bays = append(bays, Bay{ID: fmt.Sprintf("%s-%02d", row, i), Type: BayParking, Capacity: 1})
		}
	}
	for i := 1; i <= MaintenanceBays; i++ {
		bays = append(bays, Bay{ID: fmt.Sprintf("IBL-%d", i), Type: BayMaintenance, Capacity: 1})
	}
	for i := 1; i <= CleaningBayCount; i++ {
		bays = append(bays, Bay{ID: fmt.Sprintf("CLEAN-%d", i), Type: BayCleaning, Capacity: 1})
	}
	return bays
}

// Bays places the fleet in the yard. Maintenance and cleaning trains take the
// first free bay of their type in fleet order; standby trains sit in their
// stabling bay, or the first free parking bay when it is unknown or taken.
func Bays(fleet []*store.Train) BayMap {
	bays := layout()
	index := make(map[string]int, len(bays))
	for i, b := range bays {
		index[b.ID] = i
	}
	m := BayMap{Bays: bays, Waiting: []string{}, OnLine: []string{}}

	occupy := func(i int, trainID string) {
		bays[i].Occupied = true
		bays[i].TrainID = trainID
	}
	firstFree := func(t BayType) int {
		for i, b := range bays {
			if b.Type == t && !b.Occupied {
				return i
			}
		}
		return -1
	}

	var standby []*store.Train
	for _, t := range fleet {
		switch t.Status {
		case store.StatusActive:
			m.OnLine = append(m.OnLine, t.ID)
		case store.StatusMaintenance, store.StatusCleaning:
			want := BayMaintenance
			if t.Status == store.StatusCleaning {
				want = BayCleaning
			}
			if i := firstFree(want); i >= 0 {
				occupy(i, t.ID)
			} else {
				m.Waiting = append(m.Waiting, t.ID)
			}
		default:
			standby = append(standby, t)
		}
	}
	for _, t := range standby {
		if i, ok := index[t.Stabling.CurrentBay]; ok && bays[i].Type == BayParking && !bays[i].Occupied {
			occupy(i, t.ID)
			continue
		}
		if i := firstFree(BayParking); i >= 0 {
			occupy(i, t.ID)
		} else {
			m.Waiting = append(m.Waiting, t.ID)
		}
	}

	m.Occupied = map[BayType]int{BayParking: 0, BayMaintenance: 0, BayCleaning: 0}
	m.Free = map[BayType]int{BayParking: 0, BayMaintenance: 0, BayCleaning: 0}
	for _, b := range bays {
		if b.Occupied {
			m.Occupied[b.Type]++
		} else {
			m.Free[b.Type]++
		}
	}
	return m
}

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractFulfilled ContractStatus = "fulfilled"
)

type BrandingContract struct {
	ID              string                 `json:"id"`
	TrainID         string                 `json:"train_id"`
	BrandName       string                 `json:"brand_name"`
	Priority        store.BrandingPriority `json:"priority"`
	ContractedHours int                    `json:"contracted_hours"`
	CurrentExposure int                    `json:"current_exposure"`
	RemainingHours  int                    `json:"remaining_hours"`
	Status          ContractStatus         `json:"status"`
}

// Contracts lists the wrap contracts carried by the fleet, largest exposure
// shortfall first.
func Contracts(fleet []*store.Train) []BrandingContract {
	out := []BrandingContract{}
	for _, t := range fleet {
		if !t.Branding.HasContract {
			continue
		}
		remaining := t.Branding.ContractHours - t.Branding.CurrentExposure
		status := ContractActive
		if remaining <= 0 {
			remaining = 0
			status = ContractFulfilled
		}
		out = append(out, BrandingContract{
			ID:              "BC-" + t.ID,
			TrainID:         t.ID,
			BrandName:       t.Branding.Company,
			Priority:        t.Branding.Priority,
			ContractedHours: t.Branding.ContractHours,
			CurrentExposure: t.Branding.CurrentExposure,
			RemainingHours:  remaining,
			Status:          status,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RemainingHours > out[j].RemainingHours
	})
	return out
}

type JobPriority string

const (
	JobHigh   JobPriority = "high"
	JobMedium JobPriority = "medium"
	JobLow    JobPriority = "low"
)

var jobRank = map[JobPriority]int{JobHigh: 0, JobMedium: 1, JobLow: 2}

type JobStatus string

const (
	JobNew        JobStatus = "new"
	JobInProgress JobStatus = "in_progress"
)

type MaintenanceJob struct {
	ID        string      `json:"id"`
	TrainID   string      `json:"train_id"`
	IssueType string      `json:"issue_type"`
	Priority  JobPriority `json:"priority"`
	Status    JobStatus   `json:"status"`
}

// MaintenanceJobs expands each train's open job cards into a queue, one job
// per pending task. A train with open cards but no named tasks gets one
// generic job. Trains with an invalid fitness certificate come first.
func MaintenanceJobs(fleet []*store.Train) []MaintenanceJob {
	out := []MaintenanceJob{}
	for _, t := range fleet {
		if t.JobCards.Open == 0 && len(t.JobCards.PendingTasks) == 0 {
			continue
		}
		priority := JobLow
		switch {
		case !t.FitnessValid():
			priority = JobHigh
		case t.Status == store.StatusMaintenance:
			priority = JobMedium
		}
		status := JobNew
		if t.Status == store.StatusMaintenance {
			status = JobInProgress
		}
		tasks := t.JobCards.PendingTasks
		if len(tasks) == 0 {
			tasks = []string{"Open job card"}
		}
		for i, task := range tasks {
			out = append(out, MaintenanceJob{
				ID:        fmt.Sprintf("MJ-%s-%d", t.ID, i+1),
				TrainID:   t.ID,
				IssueType: task,
				Priority:  priority,
				Status:    status,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return jobRank[out[i].Priority] < jobRank[out[j].Priority]
	})
	return out
}

type CleaningType string

const (
	CleaningDeep    CleaningType = "deep"
	CleaningRegular CleaningType = "regular"
)

type CleaningTask struct {
	ID               string       `json:"id"`
	TrainID          string       `json:"train_id"`
	CleaningType     CleaningType `json:"cleaning_type"`
	CleanlinessScore int          `json:"cleanliness_score"`
	Status           JobStatus    `json:"status"`
}

// CleaningTasks queues every train the planner would send to cleaning,
// dirtiest first. Trains below the cleanliness threshold get a deep clean.
func CleaningTasks(fleet []*store.Train) []CleaningTask {
	out := []CleaningTask{}
	for _, t := range fleet {
		below := t.Cleaning.CleanlinessScore < scoring.CleanlinessThreshold
		if !below && !t.Cleaning.NeedsCleaning {
			continue
		}
		kind := CleaningRegular
		if below {
			kind = CleaningDeep
		}
		status := JobNew
		if t.Status == store.StatusCleaning {
			status = JobInProgress
		}
		out = append(out, CleaningTask{
			ID:               "CT-" + t.ID,
			TrainID:          t.ID,
			CleaningType:     kind,
			CleanlinessScore: t.Cleaning.CleanlinessScore,
			Status:           status,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CleanlinessScore < out[j].CleanlinessScore
	})
	return out
}
