package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/Depot/internal/config"
	"github.com/MikeSquared-Agency/Depot/internal/fleet"
	"github.com/MikeSquared-Agency/Depot/internal/hermes"
	"github.com/MikeSquared-Agency/Depot/internal/metrics"
	"github.com/MikeSquared-Agency/Depot/internal/store"
)

type FleetHandler struct {
	store   store.Store
	hermes  hermes.Client
	backend fleet.Source
	metrics *metrics.Metrics
	cfg     *config.Config
	logger  *slog.Logger
}

func NewFleetHandler(s store.Store, h hermes.Client, backend fleet.Source, m *metrics.Metrics, cfg *config.Config, logger *slog.Logger) *FleetHandler {
	return &FleetHandler{store: s, hermes: h, backend: backend, metrics: m, cfg: cfg, logger: logger}
}

func (h *FleetHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.TrainFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if v := r.URL.Query().Get("status"); v != "" {
		st := store.TrainStatus(v)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		filter.Status = &st
	}

	trains, err := h.store.ListTrains(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if trains == nil {
		trains = []*store.Train{}
	}
	writeJSON(w, http.StatusOK, trains)
}

func (h *FleetHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetTrain(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "train not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Put creates or replaces one train record. The id in the path wins; a
// conflicting id in the body is rejected.
func (h *FleetHandler) Put(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var t store.Train
	if err := decodeOptional(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.ID != "" && t.ID != id {
		writeError(w, http.StatusBadRequest, "train id does not match path")
		return
	}
	t.ID = id
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.UpsertTrain(r.Context(), &t); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(r.Context(), hermes.SubjectFleetUpdated(t.ID), hermes.FleetUpdatedEvent{
		TrainID: t.ID,
		Status:  string(t.Status),
	})
	h.refreshFleetSize(r.Context())
	writeJSON(w, http.StatusOK, &t)
}

func (h *FleetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.store.GetTrain(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "train not found")
		return
	}
	if err := h.store.DeleteTrain(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(r.Context(), hermes.SubjectFleetRemoved(id), hermes.FleetUpdatedEvent{
		TrainID: id,
		Status:  string(existing.Status),
	})
	h.refreshFleetSize(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type SyntheticRequest struct {
	Seed *int64 `json:"seed,omitempty"`
	Size int    `json:"size,omitempty"`
}

// Synthetic replaces the fleet with generated records.
func (h *FleetHandler) Synthetic(w http.ResponseWriter, r *http.Request) {
	var req SyntheticRequest
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gen := fleet.NewGenerator(h.cfg.Fleet.SyntheticSize, h.cfg.Fleet.SyntheticSeed)
	if req.Seed != nil {
		gen.Seed = *req.Seed
	}
	if req.Size < 0 || req.Size > 500 {
		writeError(w, http.StatusBadRequest, "size must be between 1 and 500")
		return
	}
	if req.Size > 0 {
		gen.Size = req.Size
	}

	h.replace(w, r, gen, "synthetic")
}

// Sync pulls the fleet from the configured backend.
func (h *FleetHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.backend == nil {
		writeError(w, http.StatusServiceUnavailable, "no fleet backend configured")
		return
	}
	h.replace(w, r, h.backend, "backend")
}

func (h *FleetHandler) replace(w http.ResponseWriter, r *http.Request, src fleet.Source, source string) {
	n, err := fleet.Sync(r.Context(), h.store, src)
	if err != nil {
		h.logger.Error("fleet sync failed", "source", source, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.logger.Info("fleet replaced", "source", source, "fleet_size", n)

	h.publish(r.Context(), hermes.SubjectFleetReplaced(), hermes.FleetReplacedEvent{
		Source:    source,
		FleetSize: n,
		Timestamp: time.Now(),
	})
	if h.metrics != nil {
		h.metrics.SetFleetSize(n)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"source": source, "fleet_size": n})
}

func (h *FleetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetFleetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *FleetHandler) publish(ctx context.Context, subject string, event interface{}) {
	publishEvent(ctx, h.hermes, h.logger, subject, event)
}

func (h *FleetHandler) refreshFleetSize(ctx context.Context) {
	if h.metrics == nil {
		return
	}
	stats, err := h.store.GetFleetStats(ctx)
	if err != nil {
		h.logger.Warn("failed to refresh fleet size", "error", err)
		return
	}
	h.metrics.SetFleetSize(stats.Total)
}

// publishEvent is best effort; failures are logged and never fail a request.
func publishEvent(ctx context.Context, c hermes.Client, logger *slog.Logger, subject string, event interface{}) {
	if c == nil {
		return
	}
	if err := c.Publish(ctx, subject, event); err != nil {
		logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
