package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"smartbin-backend/internal/metrics"
	"smartbin-backend/internal/models"
	"smartbin-backend/internal/store"
)

// Compiled-in fallbacks used when the settings rows have never existed.
// Deliberately not the same as the store's bootstrap seed (75/85): a
// never-configured engine and a freshly seeded store are distinct states.
const (
	defaultAlertThreshold    = 70
	defaultCriticalThreshold = 85
)

// ErrInvalidFillLevel is returned for fill levels outside [0,100].
var ErrInvalidFillLevel = errors.New("fill level must be between 0 and 100")

// Rand is the source of simulated sensor noise. Tests inject a fixed one.
type Rand interface {
	Intn(n int) int
}

// Broadcaster pushes live updates to connected dashboards. May be nil.
type Broadcaster interface {
	BroadcastBinUpdated(bin models.Bin)
	BroadcastAlertCreated(alert models.Alert)
}

// Engine owns the simulated sensor behavior and threshold-based alerting.
// It caches the alert/critical thresholds in memory; external settings writes
// that bypass UpdateThresholds are not observed until the next LoadSettings.
type Engine struct {
	store       store.Store
	notifier    Notifier
	broadcaster Broadcaster
	rng         Rand

	mu                sync.RWMutex
	alertThreshold    int
	criticalThreshold int
}

func NewEngine(s store.Store, n Notifier, b Broadcaster) *Engine {
	return &Engine{
		store:             s,
		notifier:          n,
		broadcaster:       b,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
		alertThreshold:    defaultAlertThreshold,
		criticalThreshold: defaultCriticalThreshold,
	}
}

// LoadSettings refreshes the cached thresholds from the settings store.
// Missing or unparseable settings leave the current values untouched.
func (e *Engine) LoadSettings(ctx context.Context) {
	if setting, err := e.store.GetSetting(ctx, models.SettingAlertThreshold); err == nil {
		if v, err := strconv.Atoi(setting.Value); err == nil {
			e.mu.Lock()
			e.alertThreshold = v
			e.mu.Unlock()
		}
	}
	if setting, err := e.store.GetSetting(ctx, models.SettingCriticalThreshold); err == nil {
		if v, err := strconv.Atoi(setting.Value); err == nil {
			e.mu.Lock()
			e.criticalThreshold = v
			e.mu.Unlock()
		}
	}
}

func (e *Engine) AlertThreshold() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alertThreshold
}

func (e *Engine) CriticalThreshold() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.criticalThreshold
}

// tickInterval reads the updateInterval setting (minutes), defaulting to 5.
func (e *Engine) tickInterval(ctx context.Context) time.Duration {
	interval := 5
	if setting, err := e.store.GetSetting(ctx, models.SettingUpdateInterval); err == nil {
		if v, err := strconv.Atoi(setting.Value); err == nil && v > 0 {
			interval = v
		}
	}
	return time.Duration(interval) * time.Minute
}

// Start loads settings and runs the periodic simulation until ctx is canceled.
func (e *Engine) Start(ctx context.Context) {
	e.LoadSettings(ctx)

	interval := e.tickInterval(ctx)
	log.Printf("✅ Bin level simulation started (every %s, alert threshold %d%%)", interval, e.AlertThreshold())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("🛑 Bin level simulation stopped")
				return
			case <-ticker.C:
				e.Tick(ctx)
			}
		}
	}()
}

// Tick runs one simulation pass over every active bin: a random 5-15% fill
// increase, a collection reset to 10-20% when the bin would reach 100%, and
// an edge-triggered alert when the stored level crosses the alert threshold.
// Per-bin failures are logged and never abort the rest of the pass.
func (e *Engine) Tick(ctx context.Context) {
	metrics.TicksTotal.Inc()

	bins, err := e.store.ListBins(ctx)
	if err != nil {
		log.Printf("❌ Simulation tick failed to list bins: %v", err)
		return
	}

	threshold := e.AlertThreshold()

	for _, bin := range bins {
		if bin.Status != models.BinStatusActive {
			continue
		}

		increase := e.rng.Intn(11) + 5
		newLevel := bin.FillLevel + increase
		collected := false

		if newLevel >= 100 {
			newLevel = e.rng.Intn(11) + 10
			collected = true
			log.Printf("♻️  Bin %d at %s collected and reset to %d%%", bin.ID, bin.Location, newLevel)
			metrics.CollectionsSimulated.Inc()
		}

		updated, err := e.store.UpdateBinFillLevel(ctx, bin.ID, newLevel)
		if err != nil {
			log.Printf("❌ Failed to update bin %d during simulation: %v", bin.ID, err)
			metrics.TickErrors.Inc()
			continue
		}
		metrics.BinsSimulated.Inc()

		if e.broadcaster != nil {
			e.broadcaster.BroadcastBinUpdated(updated)
		}

		// Edge trigger on the pre-tick level. A collection reset never
		// alerts: the observed level just dropped.
		if !collected && bin.FillLevel < threshold && newLevel >= threshold {
			if err := e.SendCollectionAlert(ctx, bin.ID); err != nil {
				log.Printf("❌ Failed to send collection alert for bin %d: %v", bin.ID, err)
				metrics.TickErrors.Inc()
			}
		}
	}
}

// SendCollectionAlert records a collection_needed alert for the bin and
// emails the administrator. The alert record is never rolled back when the
// email fails; that failure surfaces as ErrNotificationFailed.
func (e *Engine) SendCollectionAlert(ctx context.Context, binID int) error {
	bin, err := e.store.GetBinByID(ctx, binID)
	if err != nil {
		return fmt.Errorf("bin %d: %w", binID, err)
	}

	adminEmail := store.DefaultAdminEmail
	if setting, err := e.store.GetSetting(ctx, models.SettingAdminEmail); err == nil && setting.Value != "" {
		adminEmail = setting.Value
	}

	alert, err := e.store.CreateAlert(ctx, store.NewAlert{
		BinID:     bin.ID,
		AlertType: models.AlertTypeCollectionNeeded,
		Message:   fmt.Sprintf("Bin at %s has reached %d%% capacity", bin.Location, bin.FillLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to create alert for bin %d: %w", bin.ID, err)
	}
	metrics.AlertsCreated.Inc()

	if e.broadcaster != nil {
		e.broadcaster.BroadcastAlertCreated(alert)
	}

	if err := e.notifier.SendAdminAlert(adminEmail, bin.Location, bin.FillLevel); err != nil {
		return err
	}

	log.Printf("🚨 Collection alert sent for bin %d at %s (%d%%)", bin.ID, bin.Location, bin.FillLevel)
	return nil
}

// ApplyFillLevel persists a manually supplied fill level and evaluates the
// same edge-triggered crossing rule the simulation uses. It reports whether
// an alert was recorded and whether the admin email went out.
func (e *Engine) ApplyFillLevel(ctx context.Context, binID, level int) (models.Bin, bool, bool, error) {
	if level < 0 || level > 100 {
		return models.Bin{}, false, false, ErrInvalidFillLevel
	}

	previous, err := e.store.GetBinByID(ctx, binID)
	if err != nil {
		return models.Bin{}, false, false, err
	}

	updated, err := e.store.UpdateBinFillLevel(ctx, binID, level)
	if err != nil {
		return models.Bin{}, false, false, err
	}

	if e.broadcaster != nil {
		e.broadcaster.BroadcastBinUpdated(updated)
	}

	threshold := e.AlertThreshold()
	alertTriggered := false
	emailSent := false

	if previous.FillLevel < threshold && level >= threshold {
		switch err := e.SendCollectionAlert(ctx, binID); {
		case err == nil:
			alertTriggered = true
			emailSent = true
		case errors.Is(err, ErrNotificationFailed):
			// Alert bookkeeping succeeded; only delivery failed.
			alertTriggered = true
			log.Printf("⚠️  Alert recorded for bin %d but email failed: %v", binID, err)
		default:
			log.Printf("❌ Failed to send collection alert for bin %d: %v", binID, err)
		}
	}

	return updated, alertTriggered, emailSent, nil
}

// UpdateThresholds sets both cached thresholds and persists them. In-memory
// values win even when persistence fails: alerting availability is preferred
// over settings durability.
func (e *Engine) UpdateThresholds(ctx context.Context, alertThreshold, criticalThreshold int) error {
	e.mu.Lock()
	e.alertThreshold = alertThreshold
	e.criticalThreshold = criticalThreshold
	e.mu.Unlock()

	var persistErr error
	if _, err := e.store.SetSetting(ctx, models.SettingAlertThreshold, strconv.Itoa(alertThreshold)); err != nil {
		persistErr = err
	}
	if _, err := e.store.SetSetting(ctx, models.SettingCriticalThreshold, strconv.Itoa(criticalThreshold)); err != nil && persistErr == nil {
		persistErr = err
	}
	if persistErr != nil {
		log.Printf("⚠️  Thresholds updated in memory but persistence failed: %v", persistErr)
		return fmt.Errorf("failed to persist thresholds: %w", persistErr)
	}

	log.Printf("⚙️  Thresholds updated: alert=%d%% critical=%d%%", alertThreshold, criticalThreshold)
	return nil
}

// GetBinStatus returns the bin enriched with its alert condition and the
// unresolved alerts attached to it.
func (e *Engine) GetBinStatus(ctx context.Context, binID int) (models.BinStatusResponse, error) {
	bin, err := e.store.GetBinByID(ctx, binID)
	if err != nil {
		return models.BinStatusResponse{}, err
	}

	alerts, err := e.store.ListAlertsByBin(ctx, binID)
	if err != nil {
		return models.BinStatusResponse{}, err
	}

	unresolved := []models.Alert{}
	for _, alert := range alerts {
		if !alert.IsResolved {
			unresolved = append(unresolved, alert)
		}
	}

	status := "normal"
	if len(unresolved) > 0 {
		status = models.AlertTypeCollectionNeeded
	}

	return models.BinStatusResponse{
		Bin:         bin,
		AlertStatus: status,
		Alerts:      unresolved,
	}, nil
}
