package models

import "time"

// Well-known setting keys. The store seeds all of them at bootstrap.
const (
	SettingAlertThreshold    = "alertThreshold"
	SettingCriticalThreshold = "criticalThreshold"
	SettingAdminEmail        = "adminEmail"
	SettingUpdateInterval    = "updateInterval"
	SettingDataRetention     = "dataRetention"
)

type Setting struct {
	ID        int       `json:"id" db:"id"`
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
