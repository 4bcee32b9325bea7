package api

import (
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Depot/internal/depot"
	"github.com/MikeSquared-Agency/Depot/internal/store"
)

// DepotHandler serves the yard and work-queue views derived from the stored
// fleet. All views are read-only.
type DepotHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewDepotHandler(s store.Store, logger *slog.Logger) *DepotHandler {
	return &DepotHandler{store: s, logger: logger}
}

func (h *DepotHandler) fleet(w http.ResponseWriter, r *http.Request) ([]*store.Train, bool) {
	trains, err := h.store.ListTrains(r.Context(), store.TrainFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return trains, true
}

func (h *DepotHandler) Bays(w http.ResponseWriter, r *http.Request) {
	trains, ok := h.fleet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, depot.Bays(trains))
}

func (h *DepotHandler) Contracts(w http.ResponseWriter, r *http.Request) {
	trains, ok := h.fleet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, depot.Contracts(trains))
}

func (h *DepotHandler) MaintenanceJobs(w http.ResponseWriter, r *http.Request) {
	trains, ok := h.fleet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, depot.MaintenanceJobs(trains))
}

func (h *DepotHandler) CleaningTasks(w http.ResponseWriter, r *http.Request) {
	trains, ok := h.fleet(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, depot.CleaningTasks(trains))
}
