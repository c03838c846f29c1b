package models

import "time"

// Bin types accepted at registration. Capacity in liters is fixed per type.
const (
	BinTypeResidential = "residential"
	BinTypeCommercial  = "commercial"
	BinTypeIndustrial  = "industrial"
)

const (
	BinStatusActive   = "active"
	BinStatusInactive = "inactive"
)

type Bin struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"userId" db:"user_id"`
	Location    string    `json:"location" db:"location"`
	BinType     string    `json:"binType" db:"bin_type"`
	Capacity    int       `json:"capacity" db:"capacity"`
	FillLevel   int       `json:"fillLevel" db:"fill_level"`
	Status      string    `json:"status" db:"status"`
	LastUpdated time.Time `json:"lastUpdated" db:"last_updated"`
}

// CapacityForBinType maps a bin type to its capacity in liters.
// Returns 0 for unknown types.
func CapacityForBinType(binType string) int {
	switch binType {
	case BinTypeResidential:
		return 240
	case BinTypeCommercial:
		return 660
	case BinTypeIndustrial:
		return 1100
	default:
		return 0
	}
}

// ValidBinType reports whether binType is one of the accepted categories.
func ValidBinType(binType string) bool {
	return CapacityForBinType(binType) != 0
}

// BinWithUser is a bin joined with its owner for GET /api/bins
type BinWithUser struct {
	Bin
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// BinListResponse is the response body for GET /api/bins
type BinListResponse struct {
	Bins       []BinWithUser `json:"bins"`
	TotalBins  int           `json:"totalBins"`
	AlertCount int           `json:"alertCount"`
}

// BinStatusResponse is an enriched bin for GET /api/bins/:id/status
type BinStatusResponse struct {
	Bin
	AlertStatus string  `json:"alertStatus"` // "collection_needed" or "normal"
	Alerts      []Alert `json:"alerts"`
}

// UpdateLevelRequest is the request body for PUT /api/bins/:id/level
type UpdateLevelRequest struct {
	FillLevel int `json:"fillLevel"`
}

// UpdateLevelResponse reports the outcome of a manual level update
type UpdateLevelResponse struct {
	Success        bool `json:"success"`
	BinID          int  `json:"binId"`
	FillLevel      int  `json:"fillLevel"`
	AlertTriggered bool `json:"alertTriggered"`
	EmailSent      bool `json:"emailSent"`
}
