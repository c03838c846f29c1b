package store

import (
	"context"
	"errors"

	"smartbin-backend/internal/models"
)

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned by CreateUser when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// NewUser carries the caller-supplied fields for CreateUser.
type NewUser struct {
	Name    string
	Email   string
	Address string
	BinType string
}

// NewBin carries the caller-supplied fields for CreateBin.
// FillLevel defaults to 0 and Status to "active" when left zero-valued.
type NewBin struct {
	UserID    int
	Location  string
	BinType   string
	Capacity  int
	FillLevel int
	Status    string
}

// NewAlert carries the caller-supplied fields for CreateAlert.
type NewAlert struct {
	BinID     int
	AlertType string
	Message   string
}

// Store is the source of truth for users, bins, alerts and settings.
// Every operation is atomic with respect to the others.
type Store interface {
	CreateUser(ctx context.Context, u NewUser) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateBin(ctx context.Context, b NewBin) (models.Bin, error)
	GetBinByID(ctx context.Context, id int) (models.Bin, error)
	ListBins(ctx context.Context) ([]models.Bin, error)
	UpdateBinFillLevel(ctx context.Context, id, fillLevel int) (models.Bin, error)
	UpdateBinStatus(ctx context.Context, id int, status string) (models.Bin, error)
	ListBinsByUser(ctx context.Context, userID int) ([]models.Bin, error)

	CreateAlert(ctx context.Context, a NewAlert) (models.Alert, error)
	ListAlertsByBin(ctx context.Context, binID int) ([]models.Alert, error)
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	ResolveAlert(ctx context.Context, id int) (models.Alert, error)
	ListUnresolvedAlerts(ctx context.Context) ([]models.Alert, error)

	GetSetting(ctx context.Context, key string) (models.Setting, error)
	SetSetting(ctx context.Context, key, value string) (models.Setting, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
}
