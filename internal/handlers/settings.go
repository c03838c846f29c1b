package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"smartbin-backend/internal/models"
	"smartbin-backend/internal/services"
	"smartbin-backend/internal/store"
	"smartbin-backend/pkg/utils"
)

// GetSettings handles GET /api/settings: the settings table flattened to a
// key/value map.
func GetSettings(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		settings, err := s.ListSettings(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch settings")
			return
		}

		flat := make(map[string]string, len(settings))
		for _, setting := range settings {
			flat[setting.Key] = setting.Value
		}

		utils.RespondJSON(w, http.StatusOK, flat)
	}
}

// UpdateSettings handles PUT /api/settings. Every string value is persisted;
// when both thresholds are present they are forwarded to the engine so its
// cached copies stay in sync.
func UpdateSettings(s store.Store, engine *services.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var incoming map[string]string
		if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		for key, value := range incoming {
			if _, err := s.SetSetting(r.Context(), key, value); err != nil {
				log.Printf("❌ Failed to persist setting %s: %v", key, err)
				utils.RespondError(w, http.StatusInternalServerError, "Failed to update settings")
				return
			}
		}

		alertRaw, hasAlert := incoming[models.SettingAlertThreshold]
		criticalRaw, hasCritical := incoming[models.SettingCriticalThreshold]
		if hasAlert && hasCritical {
			alertThreshold, err1 := strconv.Atoi(alertRaw)
			criticalThreshold, err2 := strconv.Atoi(criticalRaw)
			if err1 != nil || err2 != nil {
				utils.RespondError(w, http.StatusBadRequest, "Thresholds must be integers")
				return
			}
			if err := engine.UpdateThresholds(r.Context(), alertThreshold, criticalThreshold); err != nil {
				// In-memory thresholds are already updated; log and move on.
				log.Printf("⚠️  Threshold persistence failed: %v", err)
			}
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Settings updated successfully",
		})
	}
}
