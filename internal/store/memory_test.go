package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartbin-backend/internal/models"
)

func TestBootstrapSettings(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	settings, err := s.ListSettings(ctx)
	require.NoError(t, err)

	byKey := make(map[string]string)
	for _, setting := range settings {
		byKey[setting.Key] = setting.Value
	}

	assert.Equal(t, map[string]string{
		"alertThreshold":    "75",
		"criticalThreshold": "85",
		"adminEmail":        DefaultAdminEmail,
		"updateInterval":    "5",
		"dataRetention":     "30",
	}, byKey)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	u := NewUser{Name: "Grace", Email: "grace@example.com", Address: "1 Harbor Rd", BinType: models.BinTypeCommercial}

	first, err := s.CreateUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	_, err = s.CreateUser(ctx, u)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1, "the failed registration must not leave a record")
}

func TestGetUserByEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	_, err := s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := s.CreateUser(ctx, NewUser{Name: "Grace", Email: "grace@example.com", Address: "1 Harbor Rd", BinType: models.BinTypeResidential})
	require.NoError(t, err)

	found, err := s.GetUserByEmail(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestBinDefaultsAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	user, err := s.CreateUser(ctx, NewUser{Name: "Grace", Email: "grace@example.com", Address: "1 Harbor Rd", BinType: models.BinTypeResidential})
	require.NoError(t, err)

	bin, err := s.CreateBin(ctx, NewBin{UserID: user.ID, Location: user.Address, BinType: user.BinType, Capacity: 240})
	require.NoError(t, err)
	assert.Equal(t, 0, bin.FillLevel)
	assert.Equal(t, models.BinStatusActive, bin.Status)
	assert.False(t, bin.LastUpdated.IsZero())

	before := bin.LastUpdated
	time.Sleep(time.Millisecond)

	updated, err := s.UpdateBinFillLevel(ctx, bin.ID, 55)
	require.NoError(t, err)
	assert.Equal(t, 55, updated.FillLevel)
	assert.True(t, updated.LastUpdated.After(before))

	updated, err = s.UpdateBinStatus(ctx, bin.ID, models.BinStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.BinStatusInactive, updated.Status)
	assert.Equal(t, 55, updated.FillLevel, "status changes leave the level alone")

	_, err = s.UpdateBinFillLevel(ctx, 9999, 10)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateBinStatus(ctx, 9999, models.BinStatusActive)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBinsByUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	alice, err := s.CreateUser(ctx, NewUser{Name: "Alice", Email: "alice@example.com", Address: "2 Elm St", BinType: models.BinTypeResidential})
	require.NoError(t, err)
	bob, err := s.CreateUser(ctx, NewUser{Name: "Bob", Email: "bob@example.com", Address: "3 Oak St", BinType: models.BinTypeIndustrial})
	require.NoError(t, err)

	_, err = s.CreateBin(ctx, NewBin{UserID: alice.ID, Location: alice.Address, BinType: alice.BinType, Capacity: 240})
	require.NoError(t, err)
	_, err = s.CreateBin(ctx, NewBin{UserID: bob.ID, Location: bob.Address, BinType: bob.BinType, Capacity: 1100})
	require.NoError(t, err)

	bins, err := s.ListBinsByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, alice.ID, bins[0].UserID)
}

func TestAlertLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	alert, err := s.CreateAlert(ctx, NewAlert{BinID: 1, AlertType: models.AlertTypeCollectionNeeded, Message: "Bin at 2 Elm St has reached 80% capacity"})
	require.NoError(t, err)
	assert.False(t, alert.IsResolved)

	other, err := s.CreateAlert(ctx, NewAlert{BinID: 2, AlertType: models.AlertTypeCollectionNeeded, Message: "Bin at 3 Oak St has reached 90% capacity"})
	require.NoError(t, err)

	unresolved, err := s.ListUnresolvedAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, unresolved, 2)

	byBin, err := s.ListAlertsByBin(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byBin, 1)
	assert.Equal(t, alert.ID, byBin[0].ID)

	resolved, err := s.ResolveAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)

	// Resolved alerts leave the unresolved list but stay in the full list.
	unresolved, err = s.ListUnresolvedAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, unresolved, 1)
	assert.Equal(t, other.ID, unresolved[0].ID)

	all, err := s.ListAlerts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.ResolveAlert(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetSettingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	before, err := s.GetSetting(ctx, models.SettingAdminEmail)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	updated, err := s.SetSetting(ctx, models.SettingAdminEmail, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, before.ID, updated.ID, "updating preserves identity")
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))

	got, err := s.GetSetting(ctx, models.SettingAdminEmail)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Value)

	// Unknown keys are created on first write.
	created, err := s.SetSetting(ctx, "customKey", "1")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = s.GetSetting(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
