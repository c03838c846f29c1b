package models

import "time"

// AlertTypeCollectionNeeded is the only alert type issued today.
const AlertTypeCollectionNeeded = "collection_needed"

type Alert struct {
	ID         int       `json:"id" db:"id"`
	BinID      int       `json:"binId" db:"bin_id"`
	AlertType  string    `json:"alertType" db:"alert_type"`
	Message    string    `json:"message" db:"message"`
	IsResolved bool      `json:"isResolved" db:"is_resolved"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// AlertWithBin is an alert joined with its bin for GET /api/alerts
type AlertWithBin struct {
	Alert
	BinLocation  string `json:"binLocation"`
	BinFillLevel int    `json:"binFillLevel"`
}
