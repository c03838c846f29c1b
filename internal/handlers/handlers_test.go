package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbin-backend/internal/models"
	"smartbin-backend/internal/services"
	"smartbin-backend/internal/store"
)

type stubNotifier struct {
	ConfirmationErr error
	AdminAlertErr   error
	RegistrationErr error
}

func (s *stubNotifier) SendUserConfirmation(email, name string) error {
	return s.ConfirmationErr
}

func (s *stubNotifier) SendAdminAlert(adminEmail, location string, fillLevel int) error {
	return s.AdminAlertErr
}

func (s *stubNotifier) SendAdminRegistrationNotification(adminEmail, name, email, address, binType string) error {
	return s.RegistrationErr
}

type testApp struct {
	store    *store.MemStore
	engine   *services.Engine
	notifier *stubNotifier
	router   chi.Router
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	s := store.NewMemStore()
	n := &stubNotifier{}
	engine := services.NewEngine(s, n, nil)
	engine.LoadSettings(context.Background())

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", Register(s, n))
		r.Get("/users", GetUsers(s))
		r.Get("/bins", GetBins(s))
		r.Get("/bins/{id}/status", GetBinStatus(engine))
		r.Put("/bins/{id}/level", UpdateBinLevel(engine))
		r.Delete("/bins/{id}", DeleteBin(s))
		r.Post("/bins/{id}/optimize", OptimizeBin(s))
		r.Get("/alerts", GetAlerts(s))
		r.Post("/alerts/{id}/resolve", ResolveAlert(s))
		r.Get("/settings", GetSettings(s))
		r.Put("/settings", UpdateSettings(s, engine))
	})

	return &testApp{store: s, engine: engine, notifier: n, router: r}
}

func (a *testApp) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func registerPayload(email string) models.RegisterRequest {
	return models.RegisterRequest{
		Name:    "Grace Hopper",
		Email:   email,
		Address: "1 Harbor Rd",
		BinType: models.BinTypeResidential,
	}
}

func TestRegisterCreatesUserAndBin(t *testing.T) {
	cases := []struct {
		binType  string
		capacity int
	}{
		{models.BinTypeResidential, 240},
		{models.BinTypeCommercial, 660},
		{models.BinTypeIndustrial, 1100},
	}

	for _, tc := range cases {
		t.Run(tc.binType, func(t *testing.T) {
			app := newTestApp(t)
			payload := registerPayload("grace@example.com")
			payload.BinType = tc.binType

			rec := app.request(t, http.MethodPost, "/api/users/register", payload)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			var resp models.RegisterResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.True(t, resp.ConfirmationSent)
			assert.True(t, resp.AdminNotified)

			ctx := context.Background()
			users, err := app.store.ListUsers(ctx)
			require.NoError(t, err)
			require.Len(t, users, 1)
			assert.Equal(t, resp.UserID, users[0].ID)

			bins, err := app.store.ListBinsByUser(ctx, resp.UserID)
			require.NoError(t, err)
			require.Len(t, bins, 1)
			assert.Equal(t, tc.capacity, bins[0].Capacity)
			assert.GreaterOrEqual(t, bins[0].FillLevel, 10)
			assert.LessOrEqual(t, bins[0].FillLevel, 40)
			assert.Equal(t, models.BinStatusActive, bins[0].Status)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodPost, "/api/users/register", registerPayload("grace@example.com"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/users/register", registerPayload("grace@example.com"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	ctx := context.Background()
	users, err := app.store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	bins, err := app.store.ListBins(ctx)
	require.NoError(t, err)
	assert.Len(t, bins, 1, "the rejected registration must not create a second bin")
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	bad := registerPayload("grace@example.com")
	bad.BinType = "underground"
	rec := app.request(t, http.MethodPost, "/api/users/register", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = registerPayload("not-an-email")
	rec = app.request(t, http.MethodPost, "/api/users/register", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad = registerPayload("grace@example.com")
	bad.Name = " "
	rec = app.request(t, http.MethodPost, "/api/users/register", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	users, err := app.store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRegisterReportsEmailFailures(t *testing.T) {
	app := newTestApp(t)
	app.notifier.ConfirmationErr = services.ErrNotificationFailed

	rec := app.request(t, http.MethodPost, "/api/users/register", registerPayload("grace@example.com"))
	require.Equal(t, http.StatusCreated, rec.Code, "registration succeeds even when email fails")

	var resp models.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.ConfirmationSent)
	assert.True(t, resp.AdminNotified)
}

func (a *testApp) seedBin(t *testing.T, fillLevel int) models.Bin {
	t.Helper()
	ctx := context.Background()

	user, err := a.store.CreateUser(ctx, store.NewUser{
		Name: "Grace Hopper", Email: fmt.Sprintf("user%d@example.com", fillLevel),
		Address: "1 Harbor Rd", BinType: models.BinTypeResidential,
	})
	require.NoError(t, err)

	bin, err := a.store.CreateBin(ctx, store.NewBin{
		UserID: user.ID, Location: user.Address, BinType: user.BinType,
		Capacity: 240, FillLevel: fillLevel,
	})
	require.NoError(t, err)
	return bin
}

func TestUpdateBinLevel(t *testing.T) {
	app := newTestApp(t)
	bin := app.seedBin(t, 70)

	// Out-of-range levels are rejected and the bin is untouched.
	rec := app.request(t, http.MethodPut, fmt.Sprintf("/api/bins/%d/level", bin.ID), models.UpdateLevelRequest{FillLevel: 120})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stored, err := app.store.GetBinByID(context.Background(), bin.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, stored.FillLevel)

	// Crossing the threshold (75 from the seed) triggers exactly one alert.
	rec = app.request(t, http.MethodPut, fmt.Sprintf("/api/bins/%d/level", bin.ID), models.UpdateLevelRequest{FillLevel: 80})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.UpdateLevelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlertTriggered)
	assert.True(t, resp.EmailSent)
	assert.Equal(t, 80, resp.FillLevel)

	rec = app.request(t, http.MethodPut, fmt.Sprintf("/api/bins/%d/level", bin.ID), models.UpdateLevelRequest{FillLevel: 82})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.AlertTriggered, "already above threshold")

	unresolved, err := app.store.ListUnresolvedAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, unresolved, 1)

	rec = app.request(t, http.MethodPut, "/api/bins/9999/level", models.UpdateLevelRequest{FillLevel: 50})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBins(t *testing.T) {
	app := newTestApp(t)
	bin := app.seedBin(t, 80)
	require.NoError(t, app.engine.SendCollectionAlert(context.Background(), bin.ID))

	rec := app.request(t, http.MethodGet, "/api/bins", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.BinListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalBins)
	assert.Equal(t, 1, resp.AlertCount)
	require.Len(t, resp.Bins, 1)
	assert.Equal(t, "Grace Hopper", resp.Bins[0].UserName)
	assert.Equal(t, "user80@example.com", resp.Bins[0].UserEmail)
}

func TestGetBinStatus(t *testing.T) {
	app := newTestApp(t)
	bin := app.seedBin(t, 30)

	rec := app.request(t, http.MethodGet, fmt.Sprintf("/api/bins/%d/status", bin.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.BinStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "normal", resp.AlertStatus)

	rec = app.request(t, http.MethodGet, "/api/bins/9999/status", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBinIsSoft(t *testing.T) {
	app := newTestApp(t)
	bin := app.seedBin(t, 30)

	rec := app.request(t, http.MethodDelete, fmt.Sprintf("/api/bins/%d", bin.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := app.store.GetBinByID(context.Background(), bin.ID)
	require.NoError(t, err, "soft delete keeps the record")
	assert.Equal(t, models.BinStatusInactive, stored.Status)

	rec = app.request(t, http.MethodDelete, "/api/bins/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptimizeBin(t *testing.T) {
	app := newTestApp(t)
	bin := app.seedBin(t, 90)

	rec := app.request(t, http.MethodPost, fmt.Sprintf("/api/bins/%d/optimize", bin.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := app.store.GetBinByID(context.Background(), bin.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, stored.FillLevel)

	rec = app.request(t, http.MethodPost, "/api/bins/9999/optimize", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertsEndpoints(t *testing.T) {
	app := newTestApp(t)
	bin := app.seedBin(t, 85)
	require.NoError(t, app.engine.SendCollectionAlert(context.Background(), bin.ID))

	rec := app.request(t, http.MethodGet, "/api/alerts", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []models.AlertWithBin
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "1 Harbor Rd", alerts[0].BinLocation)
	assert.Equal(t, 85, alerts[0].BinFillLevel)

	rec = app.request(t, http.MethodPost, fmt.Sprintf("/api/alerts/%d/resolve", alerts[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	unresolved, err := app.store.ListUnresolvedAlerts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unresolved)

	all, err := app.store.ListAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1, "resolved alerts remain in the audit trail")

	rec = app.request(t, http.MethodPost, "/api/alerts/9999/resolve", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var flat map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flat))
	assert.Equal(t, "75", flat["alertThreshold"])
	assert.Equal(t, "5", flat["updateInterval"])

	rec = app.request(t, http.MethodPut, "/api/settings", map[string]string{
		"alertThreshold":    "60",
		"criticalThreshold": "90",
		"adminEmail":        "ops@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 60, app.engine.AlertThreshold(), "threshold changes reach the engine")
	assert.Equal(t, 90, app.engine.CriticalThreshold())

	setting, err := app.store.GetSetting(context.Background(), models.SettingAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", setting.Value)

	// A level update right after uses the new threshold.
	bin := app.seedBin(t, 50)
	rec = app.request(t, http.MethodPut, fmt.Sprintf("/api/bins/%d/level", bin.ID), models.UpdateLevelRequest{FillLevel: 65})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.UpdateLevelResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.AlertTriggered)
}
