package fleet

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/MikeSquared-Agency/Depot/internal/store"
)

var (
	lineStations     = []string{"Aluva", "Pulinchodu", "Companypady", "Ambattukavu"}
	depotRows        = []string{"A", "B", "C", "D"}
	brandCompanies   = []string{"Coca-Cola", "Samsung", "Airtel", "BSNL", "Indian Oil"}
	maintenanceTasks = []string{"Brake System Check", "HVAC Calibration", "Door Sensor Repair"}
)

// Generator produces a synthetic fleet for demos and local runs. The same
// seed always yields the same records; only certificate expiry dates move
// with Now.
type Generator struct {
	Size int
	Seed int64
	Now  func() time.Time
}

func NewGenerator(size int, seed int64) *Generator {
	return &Generator{Size: size, Seed: seed, Now: time.Now}
}

func (g *Generator) Fleet(_ context.Context) ([]*store.Train, error) {
	return g.Generate(), nil
}

// Generate builds trains TS-01 through TS-<Size>.
func (g *Generator) Generate() []*store.Train {
	rng := rand.New(rand.NewSource(g.Seed))
	now := time.Now()
	if g.Now != nil {
		now = g.Now()
	}
	trains := make([]*store.Train, 0, g.Size)
	for i := 0; i < g.Size; i++ {
		trains = append(trains, generateTrain(rng, i, now))
	}
	return trains
}

func generateTrain(rng *rand.Rand, index int, now time.Time) *store.Train {
	statuses := []store.TrainStatus{store.StatusActive, store.StatusMaintenance, store.StatusCleaning, store.StatusStandby}
	priorities := []store.BrandingPriority{store.PriorityHigh, store.PriorityMedium, store.PriorityLow}
	status := statuses[rng.Intn(len(statuses))]
	bay := fmt.Sprintf("%s-%02d", depotRows[(index/8)%len(depotRows)], index%8+1)

	t := &store.Train{
		ID:     fmt.Sprintf("TS-%02d", index+1),
		Status: status,

		FitnessRollingStock: certificate(rng, now),
		FitnessSignaling:    certificate(rng, now),
		FitnessTelecom:      certificate(rng, now),

		Branding: store.Branding{
			HasContract:     rng.Float64() > 0.4,
			Company:         brandCompanies[rng.Intn(len(brandCompanies))],
			ContractHours:   rng.Intn(40) + 10,
			CurrentExposure: rng.Intn(35),
			Priority:        priorities[rng.Intn(len(priorities))],
		},

		Cleaning: store.Cleaning{
			CleanlinessScore: rng.Intn(40) + 60,
			LastDeepClean:    fmt.Sprintf("%d days ago", rng.Intn(7)+1),
			NeedsCleaning:    rng.Float64() > 0.6,
		},

		MileageData: store.MileageData{
			TotalKm:     50000 + rng.Intn(50000),
			DailyTarget: 150 + rng.Intn(100),
			Variance:    float64(rng.Intn(40) - 20),
			WearLevel:   rng.Intn(30) + 40,
		},
	}

	switch status {
	case store.StatusActive:
		t.Location = "Line 1 - " + lineStations[index%len(lineStations)]
	case store.StatusMaintenance:
		t.Location = fmt.Sprintf("IBL Bay %d", index/5+1)
	case store.StatusCleaning:
		t.Location = "Cleaning Bay"
	default:
		t.Location = "Depot " + bay
	}

	if status == store.StatusMaintenance {
		t.JobCards.Open = rng.Intn(5) + 1
		t.JobCards.PendingTasks = append([]string(nil), maintenanceTasks[:rng.Intn(len(maintenanceTasks))+1]...)
	} else {
		t.JobCards.Open = rng.Intn(2)
	}
	t.JobCards.Closed = rng.Intn(20) + 10

	t.Stabling = store.Stabling{
		CurrentBay:   bay,
		PreferredBay: fmt.Sprintf("%s-%02d", depotRows[rng.Intn(len(depotRows))], rng.Intn(8)+1),
		ShuntCost:    rng.Intn(50) + 10,
	}

	return t
}

// certificate expires between 15 days ago and 44 days from now; it is valid
// while at least one day remains.
func certificate(rng *rand.Rand, now time.Time) store.FitnessCertificate {
	days := rng.Intn(60) - 15
	return store.FitnessCertificate{
		Valid:         days > 0,
		ExpiryDate:    now.AddDate(0, 0, days).Format("2006-01-02"),
		DaysRemaining: days,
	}
}
