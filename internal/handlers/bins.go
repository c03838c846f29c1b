package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"smartbin-backend/internal/models"
	"smartbin-backend/internal/services"
	"smartbin-backend/internal/store"
	"smartbin-backend/pkg/utils"
)

func binIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

// GetBins handles GET /api/bins: every bin joined with its owner, plus the
// dashboard counters.
func GetBins(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins, err := s.ListBins(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bins")
			return
		}

		users, err := s.ListUsers(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bins")
			return
		}
		usersByID := make(map[int]models.User, len(users))
		for _, u := range users {
			usersByID[u.ID] = u
		}

		withUsers := make([]models.BinWithUser, 0, len(bins))
		for _, bin := range bins {
			entry := models.BinWithUser{Bin: bin, UserName: "Unknown", UserEmail: "Unknown"}
			if u, ok := usersByID[bin.UserID]; ok {
				entry.UserName = u.Name
				entry.UserEmail = u.Email
			}
			withUsers = append(withUsers, entry)
		}

		unresolved, err := s.ListUnresolvedAlerts(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bins")
			return
		}

		utils.RespondJSON(w, http.StatusOK, models.BinListResponse{
			Bins:       withUsers,
			TotalBins:  len(bins),
			AlertCount: len(unresolved),
		})
	}
}

// GetBinStatus handles GET /api/bins/{id}/status.
func GetBinStatus(engine *services.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binIDParam(r)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "Invalid bin id")
			return
		}

		status, err := engine.GetBinStatus(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch bin status")
			return
		}

		utils.RespondJSON(w, http.StatusOK, status)
	}
}

// UpdateBinLevel handles PUT /api/bins/{id}/level. The engine applies the
// level and evaluates the threshold crossing.
func UpdateBinLevel(engine *services.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binIDParam(r)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "Invalid bin id")
			return
		}

		var req models.UpdateLevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		bin, alertTriggered, emailSent, err := engine.ApplyFillLevel(r.Context(), id, req.FillLevel)
		if errors.Is(err, services.ErrInvalidFillLevel) {
			utils.RespondError(w, http.StatusBadRequest, "Invalid fill level")
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Bin not found")
			return
		}
		if err != nil {
			log.Printf("❌ Failed to update level for bin %d: %v", id, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update bin level")
			return
		}

		utils.RespondJSON(w, http.StatusOK, models.UpdateLevelResponse{
			Success:        true,
			BinID:          bin.ID,
			FillLevel:      bin.FillLevel,
			AlertTriggered: alertTriggered,
			EmailSent:      emailSent,
		})
	}
}

// DeleteBin handles DELETE /api/bins/{id}. Deletion is soft: the bin is
// marked inactive and drops out of the simulation.
func DeleteBin(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binIDParam(r)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "Invalid bin id")
			return
		}

		if _, err := s.UpdateBinStatus(r.Context(), id, models.BinStatusInactive); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Bin not found")
				return
			}
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete bin")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Bin deleted successfully",
		})
	}
}

// OptimizeBin handles POST /api/bins/{id}/optimize: resets the fill level
// to a fixed 25%.
func OptimizeBin(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binIDParam(r)
		if !ok {
			utils.RespondError(w, http.StatusBadRequest, "Invalid bin id")
			return
		}

		if _, err := s.UpdateBinFillLevel(r.Context(), id, 25); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Bin not found")
				return
			}
			utils.RespondError(w, http.StatusInternalServerError, "Failed to optimize bin")
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success":      true,
			"message":      "Bin optimized successfully",
			"newFillLevel": 25,
		})
	}
}
