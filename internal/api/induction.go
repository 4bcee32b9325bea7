package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Depot/internal/hermes"
	"github.com/MikeSquared-Agency/Depot/internal/metrics"
	"github.com/MikeSquared-Agency/Depot/internal/scoring"
	"github.com/MikeSquared-Agency/Depot/internal/store"
)

type InductionHandler struct {
	store         store.Store
	hermes        hermes.Client
	metrics       *metrics.Metrics
	defaultPreset string
	logger        *slog.Logger
}

func NewInductionHandler(s store.Store, h hermes.Client, m *metrics.Metrics, defaultPreset string, logger *slog.Logger) *InductionHandler {
	if defaultPreset == "" {
		defaultPreset = scoring.PresetBalanced
	}
	return &InductionHandler{store: s, hermes: h, metrics: m, defaultPreset: defaultPreset, logger: logger}
}

// WeightSelector names a preset or carries explicit weights. Weights take
// precedence over Preset.
type WeightSelector struct {
	Preset  string             `json:"preset,omitempty"`
	Weights *scoring.WeightSet `json:"weights,omitempty"`
}

var errUnknownPreset = errors.New("unknown preset")

// resolve returns the weights and the preset label to record. Explicit
// weights are labelled "custom".
func (h *InductionHandler) resolve(sel WeightSelector) (scoring.WeightSet, string, error) {
	if sel.Weights != nil {
		if err := sel.Weights.Validate(); err != nil {
			return scoring.WeightSet{}, "", err
		}
		return *sel.Weights, "custom", nil
	}
	name := sel.Preset
	if name == "" {
		name = h.defaultPreset
	}
	w, ok := scoring.Preset(name)
	if !ok {
		return scoring.WeightSet{}, "", fmt.Errorf("%w: %s", errUnknownPreset, name)
	}
	return w, name, nil
}

func (h *InductionHandler) Presets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": h.defaultPreset,
		"presets": scoring.Presets(),
	})
}

type PlanResponse struct {
	PlanID    uuid.UUID `json:"plan_id"`
	Preset    string    `json:"preset"`
	CreatedAt time.Time `json:"created_at"`
	scoring.InductionPlan
}

func (h *InductionHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req WeightSelector
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	weights, preset, err := h.resolve(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trains, err := h.store.ListTrains(r.Context(), store.TrainFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	start := time.Now()
	plan := scoring.NewScorer(weights, h.logger).Plan(trains)
	elapsed := time.Since(start)

	report, err := json.Marshal(plan.Report)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	scores, err := json.Marshal(plan.Scores)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rec := &store.PlanRecord{
		Preset:     preset,
		Weights:    weights.AsMap(),
		FleetSize:  len(trains),
		AlertCount: len(plan.Alerts),
		Report:     report,
		Scores:     scores,
	}
	if err := h.store.CreatePlan(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.ObservePlan(preset, plan, elapsed)
	}

	planID := rec.ID.String()
	counts := make(map[string]int, len(scoring.Categories))
	for c, n := range plan.Report.Counts() {
		counts[string(c)] = n
	}
	publishEvent(r.Context(), h.hermes, h.logger, hermes.SubjectPlanGenerated(planID), hermes.PlanGeneratedEvent{
		PlanID:     planID,
		Preset:     preset,
		Weights:    rec.Weights,
		FleetSize:  rec.FleetSize,
		Counts:     counts,
		AlertCount: rec.AlertCount,
		Timestamp:  rec.CreatedAt,
	})
	for _, a := range plan.Alerts {
		publishEvent(r.Context(), h.hermes, h.logger, hermes.SubjectPlanAlert(planID), hermes.PlanAlertEvent{
			PlanID:  planID,
			Kind:    string(a.Kind),
			Message: a.Message,
		})
	}

	h.logger.Info("induction plan generated",
		"plan_id", planID,
		"preset", preset,
		"fleet_size", rec.FleetSize,
		"ready_for_service", len(plan.Report.ReadyForService),
		"alerts", rec.AlertCount,
	)

	writeJSON(w, http.StatusCreated, PlanResponse{
		PlanID:        rec.ID,
		Preset:        preset,
		CreatedAt:     rec.CreatedAt,
		InductionPlan: plan,
	})
}

func (h *InductionHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.store.ListPlans(r.Context(), store.PlanFilter{
		Preset: r.URL.Query().Get("preset"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if plans == nil {
		plans = []*store.PlanRecord{}
	}
	// Listings omit the per-train scores.
	for _, p := range plans {
		p.Scores = nil
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *InductionHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	plan, err := h.store.GetPlan(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type ExplainResponse struct {
	Preset    string            `json:"preset"`
	Weights   scoring.WeightSet `json:"weights"`
	Threshold float64           `json:"service_threshold"`
	scoring.TrainScore
}

// Explain returns the factor breakdown for one train under a preset.
func (h *InductionHandler) Explain(w http.ResponseWriter, r *http.Request) {
	weights, preset, err := h.resolve(WeightSelector{Preset: r.URL.Query().Get("preset")})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.store.GetTrain(r.Context(), chi.URLParam(r, "train_id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "train not found")
		return
	}

	writeJSON(w, http.StatusOK, ExplainResponse{
		Preset:     preset,
		Weights:    weights,
		Threshold:  scoring.ServiceScoreThreshold,
		TrainScore: scoring.NewScorer(weights, h.logger).ScoreTrain(t),
	})
}

type CompareRequest struct {
	A WeightSelector `json:"a"`
	B WeightSelector `json:"b"`
}

// Compare shows how the stored fleet shifts between two weight sets.
func (h *InductionHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, _, err := h.resolve(req.A)
	if err != nil {
		writeError(w, http.StatusBadRequest, "a: "+err.Error())
		return
	}
	b, _, err := h.resolve(req.B)
	if err != nil {
		writeError(w, http.StatusBadRequest, "b: "+err.Error())
		return
	}

	trains, err := h.store.ListTrains(r.Context(), store.TrainFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scoring.Compare(trains, a, b))
}
