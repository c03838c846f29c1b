package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"smartbin-backend/internal/models"
	"smartbin-backend/internal/store"
	"smartbin-backend/pkg/utils"
)

// GetAlerts handles GET /api/alerts: every alert enriched with the bin's
// location and current fill level.
func GetAlerts(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts, err := s.ListAlerts(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch alerts")
			return
		}

		bins, err := s.ListBins(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch alerts")
			return
		}
		binsByID := make(map[int]models.Bin, len(bins))
		for _, b := range bins {
			binsByID[b.ID] = b
		}

		enriched := make([]models.AlertWithBin, 0, len(alerts))
		for _, alert := range alerts {
			entry := models.AlertWithBin{Alert: alert, BinLocation: "Unknown"}
			if b, ok := binsByID[alert.BinID]; ok {
				entry.BinLocation = b.Location
				entry.BinFillLevel = b.FillLevel
			}
			enriched = append(enriched, entry)
		}

		utils.RespondJSON(w, http.StatusOK, enriched)
	}
}

// ResolveAlert handles POST /api/alerts/{id}/resolve. Resolution is the only
// way an alert leaves the unresolved list; the engine never auto-resolves.
func ResolveAlert(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid alert id")
			return
		}

		alert, err := s.ResolveAlert(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Alert not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to resolve alert")
			return
		}

		utils.RespondJSON(w, http.StatusOK, alert)
	}
}
