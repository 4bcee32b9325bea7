package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeSquared-Agency/Depot/internal/config"
	"github.com/MikeSquared-Agency/Depot/internal/fleet"
	"github.com/MikeSquared-Agency/Depot/internal/metrics"
	"github.com/MikeSquared-Agency/Depot/internal/store"
)

// recordingHermes keeps every published subject.
type recordingHermes struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (m *recordingHermes) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return m.err
}
func (m *recordingHermes) Close() {}

func (m *recordingHermes) published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.subjects...)
}

type staticSource struct {
	trains []*store.Train
	err    error
}

func (s staticSource) Fleet(context.Context) ([]*store.Train, error) { return s.trains, s.err }

type testEnv struct {
	router http.Handler
	store  *store.MemoryStore
	hermes *recordingHermes
	reg    *prometheus.Registry
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.AdminToken = "test-token"
	cfg.Server.RateLimit = 0
	cfg.Fleet.SyntheticSize = 25
	cfg.Fleet.SyntheticSeed = 1
	return cfg
}

func setupTestRouter(t *testing.T, backend fleet.Source) *testEnv {
	t.Helper()
	ms := store.NewMemoryStore()
	h := &recordingHermes{}
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(ms, h, backend, metrics.New(reg), testConfig(), logger)
	return &testEnv{router: router, store: ms, hermes: h, reg: reg}
}

func nominalTrain(id string) *store.Train {
	return &store.Train{
		ID:                  id,
		Status:              store.StatusActive,
		FitnessRollingStock: store.FitnessCertificate{Valid: true, DaysRemaining: 20},
		FitnessSignaling:    store.FitnessCertificate{Valid: true, DaysRemaining: 20},
		FitnessTelecom:      store.FitnessCertificate{Valid: true, DaysRemaining: 20},
		Branding:            store.Branding{HasContract: true, Priority: store.PriorityHigh},
		Cleaning:            store.Cleaning{CleanlinessScore: 90},
	}
}

func (e *testEnv) seed(t *testing.T, trains ...*store.Train) {
	t.Helper()
	if err := e.store.ReplaceFleet(context.Background(), trains); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func (e *testEnv) do(method, path, body string, admin bool) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(OperatorHeader, "supervisor-a")
	if admin {
		req.Header.Set("Authorization", "Bearer test-token")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := NewMetricsRouter(prometheus.NewRegistry())
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestMetricsEndpointServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.SetFleetSize(25)

	w := httptest.NewRecorder()
	NewMetricsRouter(reg).ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("depot_fleet_size 25")) {
		t.Errorf("fleet size gauge missing from output:\n%s", w.Body.String())
	}
}

func TestListFleet(t *testing.T) {
	env := setupTestRouter(t, nil)
	maint := nominalTrain("TS-02")
	maint.Status = store.StatusMaintenance
	env.seed(t, nominalTrain("TS-01"), maint)

	w := env.do("GET", "/api/v1/fleet", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var trains []store.Train
	json.NewDecoder(w.Body).Decode(&trains)
	if len(trains) != 2 {
		t.Errorf("expected 2 trains, got %d", len(trains))
	}

	w = env.do("GET", "/api/v1/fleet?status=maintenance", "", false)
	json.NewDecoder(w.Body).Decode(&trains)
	if len(trains) != 1 || trains[0].ID != "TS-02" {
		t.Errorf("expected only TS-02, got %+v", trains)
	}

	w = env.do("GET", "/api/v1/fleet?status=parked", "", false)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", w.Code)
	}
}

func TestGetTrainNotFound(t *testing.T) {
	env := setupTestRouter(t, nil)
	w := env.do("GET", "/api/v1/fleet/TS-99", "", false)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPutTrainRequiresAdminToken(t *testing.T) {
	env := setupTestRouter(t, nil)
	body, _ := json.Marshal(nominalTrain("TS-01"))

	w := env.do("PUT", "/api/v1/fleet/TS-01", string(body), false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestPutTrain(t *testing.T) {
	env := setupTestRouter(t, nil)
	tr := nominalTrain("")
	tr.Cleaning.CleanlinessScore = 55
	body, _ := json.Marshal(tr)

	w := env.do("PUT", "/api/v1/fleet/TS-07", string(body), true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	got, _ := env.store.GetTrain(context.Background(), "TS-07")
	if got == nil || got.Cleaning.CleanlinessScore != 55 {
		t.Fatalf("expected stored TS-07 with cleanliness 55, got %+v", got)
	}
	subjects := env.hermes.published()
	if len(subjects) != 1 || subjects[0] != "depot.fleet.TS-07.updated" {
		t.Errorf("unexpected events %v", subjects)
	}
}

func TestPutTrainRejectsInvalidRecords(t *testing.T) {
	env := setupTestRouter(t, nil)

	body, _ := json.Marshal(nominalTrain("TS-02"))
	w := env.do("PUT", "/api/v1/fleet/TS-01", string(body), true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for mismatched id, got %d", w.Code)
	}

	bad := nominalTrain("TS-01")
	bad.Cleaning.CleanlinessScore = 140
	body, _ = json.Marshal(bad)
	w = env.do("PUT", "/api/v1/fleet/TS-01", string(body), true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for cleanliness out of range, got %d", w.Code)
	}

	w = env.do("PUT", "/api/v1/fleet/TS-01", `{"status":`, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestDeleteTrain(t *testing.T) {
	env := setupTestRouter(t, nil)
	env.seed(t, nominalTrain("TS-01"))

	w := env.do("DELETE", "/api/v1/fleet/TS-01", "", true)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = env.do("DELETE", "/api/v1/fleet/TS-01", "", true)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestSyntheticFleet(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do("POST", "/api/v1/fleet/synthetic", `{"seed":42,"size":10}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	trains, _ := env.store.ListTrains(context.Background(), store.TrainFilter{})
	if len(trains) != 10 {
		t.Errorf("expected 10 trains, got %d", len(trains))
	}

	// Empty body uses configured defaults.
	w = env.do("POST", "/api/v1/fleet/synthetic", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	trains, _ = env.store.ListTrains(context.Background(), store.TrainFilter{})
	if len(trains) != 25 {
		t.Errorf("expected 25 trains, got %d", len(trains))
	}

	w = env.do("POST", "/api/v1/fleet/synthetic", `{"size":-1}`, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative size, got %d", w.Code)
	}
}

func TestSyncWithoutBackend(t *testing.T) {
	env := setupTestRouter(t, nil)
	w := env.do("POST", "/api/v1/fleet/sync", "", true)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestSyncFromBackend(t *testing.T) {
	env := setupTestRouter(t, staticSource{trains: []*store.Train{nominalTrain("TS-01"), nominalTrain("TS-02")}})
	env.seed(t, nominalTrain("TS-50"))

	w := env.do("POST", "/api/v1/fleet/sync", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	trains, _ := env.store.ListTrains(context.Background(), store.TrainFilter{})
	if len(trains) != 2 {
		t.Errorf("expected backend fleet to replace stored fleet, got %d trains", len(trains))
	}
	subjects := env.hermes.published()
	if len(subjects) != 1 || subjects[0] != "depot.fleet.replaced" {
		t.Errorf("unexpected events %v", subjects)
	}
}

func TestSyncBackendFailure(t *testing.T) {
	env := setupTestRouter(t, staticSource{err: errors.New("connection refused")})
	env.seed(t, nominalTrain("TS-01"))

	w := env.do("POST", "/api/v1/fleet/sync", "", true)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
	trains, _ := env.store.ListTrains(context.Background(), store.TrainFilter{})
	if len(trains) != 1 {
		t.Errorf("expected stored fleet untouched, got %d trains", len(trains))
	}
}

func TestSyncRejectsDuplicateBackendRecords(t *testing.T) {
	env := setupTestRouter(t, staticSource{trains: []*store.Train{nominalTrain("TS-01"), nominalTrain("TS-01")}})
	env.seed(t, nominalTrain("TS-50"))

	w := env.do("POST", "/api/v1/fleet/sync", "", true)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", w.Code)
	}
	got, _ := env.store.GetTrain(context.Background(), "TS-50")
	if got == nil {
		t.Error("expected stored fleet untouched")
	}
}

func TestStats(t *testing.T) {
	env := setupTestRouter(t, nil)
	maint := nominalTrain("TS-02")
	maint.Status = store.StatusMaintenance
	maint.JobCards.Open = 3
	env.seed(t, nominalTrain("TS-01"), maint)

	w := env.do("GET", "/api/v1/stats", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var stats store.FleetStats
	json.NewDecoder(w.Body).Decode(&stats)
	if stats.Total != 2 || stats.OpenJobCards != 3 || stats.ByStatus[store.StatusMaintenance] != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestEventFailureDoesNotFailRequest(t *testing.T) {
	env := setupTestRouter(t, nil)
	env.hermes.err = errors.New("nats unavailable")
	body, _ := json.Marshal(nominalTrain("TS-01"))

	w := env.do("PUT", "/api/v1/fleet/TS-01", string(body), true)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 despite publish failure, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t, nil)
	req := httptest.NewRequest("OPTIONS", "/api/v1/induction/plans", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Errorf("expected CORS allow-origin header, got none (status %d)", w.Code)
	}
}

func TestUpdatedAtIsSet(t *testing.T) {
	env := setupTestRouter(t, nil)
	body, _ := json.Marshal(nominalTrain("TS-01"))
	before := time.Now().Add(-time.Second)

	env.do("PUT", "/api/v1/fleet/TS-01", string(body), true)
	got, _ := env.store.GetTrain(context.Background(), "TS-01")
	if got == nil || got.UpdatedAt.Before(before) {
		t.Errorf("expected updated_at to be stamped, got %+v", got)
	}
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	env := setupTestRouter(t, nil)
	for _, path := range []string{
		"/api/v1/fleet",
		"/api/v1/induction/plans",
		"/api/v1/branding/contracts",
		"/api/v1/maintenance/jobs",
		"/api/v1/cleaning/tasks",
	} {
		w := env.do("GET", path, "", false)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if got := strings.TrimSpace(w.Body.String()); got != "[]" {
			t.Errorf("%s: expected [], got %s", path, got)
		}
	}
}
