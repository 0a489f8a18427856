package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/quantoak/nightscan/internal/store"
	"github.com/quantoak/nightscan/pkg/logger"
)

// ReportHandler serves the report artifacts. The latest report comes from
// the file the writer maintains; cycle history comes from the optional
// Postgres store.
type ReportHandler struct {
	latestPath string
	cycles     *store.Store // nil when persistence is disabled
	logger     *logger.Logger
}

// NewReportHandler creates a report handler. cycles may be nil.
func NewReportHandler(latestPath string, cycles *store.Store, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		latestPath: latestPath,
		cycles:     cycles,
		logger:     log,
	}
}

// GetLatest returns the most recent cycle report JSON.
func (h *ReportHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(h.latestPath)
	if os.IsNotExist(err) {
		writeError(w, http.StatusNotFound, "no report produced yet")
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to read latest report")
		writeError(w, http.StatusInternalServerError, "failed to read report")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// GetCycles returns the persisted cycle history, newest first.
func (h *ReportHandler) GetCycles(w http.ResponseWriter, r *http.Request) {
	if h.cycles == nil {
		writeError(w, http.StatusNotFound, "cycle history persistence is disabled")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 200")
			return
		}
		limit = parsed
	}

	cycles, err := h.cycles.RecentCycles(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query cycle history")
		writeError(w, http.StatusInternalServerError, "failed to query cycles")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cycles": cycles,
		"count":  len(cycles),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
