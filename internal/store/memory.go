package store

import (
	"context"
	"sync"
	"time"

	"smartbin-backend/internal/models"
)

// DefaultAdminEmail is the operational fallback address used whenever the
// adminEmail setting is missing.
const DefaultAdminEmail = "thetownet@gmail.com"

// MemStore keeps everything in process memory. It is the default backend;
// one RWMutex serializes the periodic tick against request-triggered writes.
type MemStore struct {
	mu sync.RWMutex

	users    map[int]models.User
	bins     map[int]models.Bin
	alerts   map[int]models.Alert
	settings map[string]models.Setting

	// insertion order for stable listings
	userIDs    []int
	binIDs     []int
	alertIDs   []int
	settingKey []string

	nextUserID    int
	nextBinID     int
	nextAlertID   int
	nextSettingID int
}

// NewMemStore returns a store seeded with the bootstrap settings.
func NewMemStore() *MemStore {
	s := &MemStore{
		users:         make(map[int]models.User),
		bins:          make(map[int]models.Bin),
		alerts:        make(map[int]models.Alert),
		settings:      make(map[string]models.Setting),
		nextUserID:    1,
		nextBinID:     1,
		nextAlertID:   1,
		nextSettingID: 1,
	}

	defaults := []struct{ key, value string }{
		{models.SettingAlertThreshold, "75"},
		{models.SettingCriticalThreshold, "85"},
		{models.SettingAdminEmail, DefaultAdminEmail},
		{models.SettingUpdateInterval, "5"},
		{models.SettingDataRetention, "30"},
	}
	for _, d := range defaults {
		s.settings[d.key] = models.Setting{
			ID:        s.nextSettingID,
			Key:       d.key,
			Value:     d.value,
			UpdatedAt: time.Now(),
		}
		s.settingKey = append(s.settingKey, d.key)
		s.nextSettingID++
	}

	return s
}

func (s *MemStore) CreateUser(_ context.Context, u NewUser) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return models.User{}, ErrDuplicateEmail
		}
	}

	user := models.User{
		ID:        s.nextUserID,
		Name:      u.Name,
		Email:     u.Email,
		Address:   u.Address,
		BinType:   u.BinType,
		CreatedAt: time.Now(),
	}
	s.users[user.ID] = user
	s.userIDs = append(s.userIDs, user.ID)
	s.nextUserID++
	return user, nil
}

func (s *MemStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.userIDs))
	for _, id := range s.userIDs {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *MemStore) CreateBin(_ context.Context, b NewBin) (models.Bin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := b.Status
	if status == "" {
		status = models.BinStatusActive
	}

	bin := models.Bin{
		ID:          s.nextBinID,
		UserID:      b.UserID,
		Location:    b.Location,
		BinType:     b.BinType,
		Capacity:    b.Capacity,
		FillLevel:   b.FillLevel,
		Status:      status,
		LastUpdated: time.Now(),
	}
	s.bins[bin.ID] = bin
	s.binIDs = append(s.binIDs, bin.ID)
	s.nextBinID++
	return bin, nil
}

func (s *MemStore) GetBinByID(_ context.Context, id int) (models.Bin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bin, ok := s.bins[id]
	if !ok {
		return models.Bin{}, ErrNotFound
	}
	return bin, nil
}

func (s *MemStore) ListBins(_ context.Context) ([]models.Bin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bins := make([]models.Bin, 0, len(s.binIDs))
	for _, id := range s.binIDs {
		bins = append(bins, s.bins[id])
	}
	return bins, nil
}

func (s *MemStore) UpdateBinFillLevel(_ context.Context, id, fillLevel int) (models.Bin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bin, ok := s.bins[id]
	if !ok {
		return models.Bin{}, ErrNotFound
	}
	bin.FillLevel = fillLevel
	bin.LastUpdated = time.Now()
	s.bins[id] = bin
	return bin, nil
}

func (s *MemStore) UpdateBinStatus(_ context.Context, id int, status string) (models.Bin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bin, ok := s.bins[id]
	if !ok {
		return models.Bin{}, ErrNotFound
	}
	bin.Status = status
	bin.LastUpdated = time.Now()
	s.bins[id] = bin
	return bin, nil
}

func (s *MemStore) ListBinsByUser(_ context.Context, userID int) ([]models.Bin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bins []models.Bin
	for _, id := range s.binIDs {
		if s.bins[id].UserID == userID {
			bins = append(bins, s.bins[id])
		}
	}
	return bins, nil
}

func (s *MemStore) CreateAlert(_ context.Context, a NewAlert) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert := models.Alert{
		ID:         s.nextAlertID,
		BinID:      a.BinID,
		AlertType:  a.AlertType,
		Message:    a.Message,
		IsResolved: false,
		CreatedAt:  time.Now(),
	}
	s.alerts[alert.ID] = alert
	s.alertIDs = append(s.alertIDs, alert.ID)
	s.nextAlertID++
	return alert, nil
}

func (s *MemStore) ListAlertsByBin(_ context.Context, binID int) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var alerts []models.Alert
	for _, id := range s.alertIDs {
		if s.alerts[id].BinID == binID {
			alerts = append(alerts, s.alerts[id])
		}
	}
	return alerts, nil
}

func (s *MemStore) ListAlerts(_ context.Context) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alerts := make([]models.Alert, 0, len(s.alertIDs))
	for _, id := range s.alertIDs {
		alerts = append(alerts, s.alerts[id])
	}
	return alerts, nil
}

func (s *MemStore) ResolveAlert(_ context.Context, id int) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, ok := s.alerts[id]
	if !ok {
		return models.Alert{}, ErrNotFound
	}
	alert.IsResolved = true
	s.alerts[id] = alert
	return alert, nil
}

func (s *MemStore) ListUnresolvedAlerts(_ context.Context) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var alerts []models.Alert
	for _, id := range s.alertIDs {
		if !s.alerts[id].IsResolved {
			alerts = append(alerts, s.alerts[id])
		}
	}
	return alerts, nil
}

func (s *MemStore) GetSetting(_ context.Context, key string) (models.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	setting, ok := s.settings[key]
	if !ok {
		return models.Setting{}, ErrNotFound
	}
	return setting, nil
}

func (s *MemStore) SetSetting(_ context.Context, key, value string) (models.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting, ok := s.settings[key]
	if !ok {
		setting = models.Setting{ID: s.nextSettingID, Key: key}
		s.settingKey = append(s.settingKey, key)
		s.nextSettingID++
	}
	setting.Value = value
	setting.UpdatedAt = time.Now()
	s.settings[key] = setting
	return setting, nil
}

func (s *MemStore) ListSettings(_ context.Context) ([]models.Setting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := make([]models.Setting, 0, len(s.settingKey))
	for _, key := range s.settingKey {
		settings = append(settings, s.settings[key])
	}
	return settings, nil
}
