package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"net/mail"
	"strings"

	"smartbin-backend/internal/metrics"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/services"
	"smartbin-backend/internal/store"
	"smartbin-backend/pkg/utils"
)

func validateRegisterRequest(req models.RegisterRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return "a valid email is required"
	}
	if strings.TrimSpace(req.Address) == "" {
		return "address is required"
	}
	if !models.ValidBinType(req.BinType) {
		return "binType must be one of residential, commercial, industrial"
	}
	return ""
}

// Register handles POST /api/users/register: creates the user, provisions
// one bin seeded at a random 10-40% fill, and sends best-effort emails.
func Register(s store.Store, notifier services.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if msg := validateRegisterRequest(req); msg != "" {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			utils.RespondError(w, http.StatusBadRequest, msg)
			return
		}

		user, err := s.CreateUser(r.Context(), store.NewUser{
			Name:    req.Name,
			Email:   req.Email,
			Address: req.Address,
			BinType: req.BinType,
		})
		if errors.Is(err, store.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			utils.RespondError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		if err != nil {
			log.Printf("❌ Registration failed to create user: %v", err)
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			utils.RespondError(w, http.StatusInternalServerError, "Registration failed")
			return
		}

		_, err = s.CreateBin(r.Context(), store.NewBin{
			UserID:    user.ID,
			Location:  req.Address,
			BinType:   req.BinType,
			Capacity:  models.CapacityForBinType(req.BinType),
			FillLevel: rand.Intn(31) + 10, // new bins start 10-40% full
		})
		if err != nil {
			log.Printf("❌ Registration failed to create bin for user %d: %v", user.ID, err)
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
			utils.RespondError(w, http.StatusInternalServerError, "Registration failed")
			return
		}

		// Email delivery is best-effort; registration succeeds regardless.
		confirmationSent := false
		if err := notifier.SendUserConfirmation(user.Email, user.Name); err == nil {
			confirmationSent = true
		}

		adminNotified := false
		adminEmail := store.DefaultAdminEmail
		if setting, err := s.GetSetting(r.Context(), models.SettingAdminEmail); err == nil && setting.Value != "" {
			adminEmail = setting.Value
		}
		if err := notifier.SendAdminRegistrationNotification(adminEmail, user.Name, user.Email, req.Address, req.BinType); err == nil {
			adminNotified = true
		}

		metrics.RegistrationsTotal.WithLabelValues("created").Inc()
		log.Printf("✅ Registered user %d (%s) with a %s bin", user.ID, user.Email, req.BinType)

		utils.RespondJSON(w, http.StatusCreated, models.RegisterResponse{
			Success:          true,
			Message:          "User registered successfully",
			UserID:           user.ID,
			ConfirmationSent: confirmationSent,
			AdminNotified:    adminNotified,
		})
	}
}

// GetUsers handles GET /api/users for the admin dashboard.
func GetUsers(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := s.ListUsers(r.Context())
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to fetch users")
			return
		}
		utils.RespondJSON(w, http.StatusOK, users)
	}
}
