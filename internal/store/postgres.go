package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"smartbin-backend/internal/models"
)

// PostgresStore implements Store on top of sqlx. Selected when DATABASE_URL
// is set; schema and seed live in internal/database.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (s *PostgresStore) CreateUser(ctx context.Context, u NewUser) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		INSERT INTO users (name, email, address, bin_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, address, bin_type, created_at
	`, u.Name, u.Email, u.Address, u.BinType, time.Now())
	if isUniqueViolation(err) {
		return models.User{}, ErrDuplicateEmail
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, name, email, address, bin_type, created_at
		FROM users WHERE email = $1
	`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users, `
		SELECT id, name, email, address, bin_type, created_at
		FROM users ORDER BY id ASC
	`)
	return users, err
}

func (s *PostgresStore) CreateBin(ctx context.Context, b NewBin) (models.Bin, error) {
	status := b.Status
	if status == "" {
		status = models.BinStatusActive
	}

	var bin models.Bin
	err := s.db.GetContext(ctx, &bin, `
		INSERT INTO bins (user_id, location, bin_type, capacity, fill_level, status, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, location, bin_type, capacity, fill_level, status, last_updated
	`, b.UserID, b.Location, b.BinType, b.Capacity, b.FillLevel, status, time.Now())
	if err != nil {
		return models.Bin{}, err
	}
	return bin, nil
}

func (s *PostgresStore) GetBinByID(ctx context.Context, id int) (models.Bin, error) {
	var bin models.Bin
	err := s.db.GetContext(ctx, &bin, `
		SELECT id, user_id, location, bin_type, capacity, fill_level, status, last_updated
		FROM bins WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bin{}, ErrNotFound
	}
	if err != nil {
		return models.Bin{}, err
	}
	return bin, nil
}

func (s *PostgresStore) ListBins(ctx context.Context) ([]models.Bin, error) {
	bins := []models.Bin{}
	err := s.db.SelectContext(ctx, &bins, `
		SELECT id, user_id, location, bin_type, capacity, fill_level, status, last_updated
		FROM bins ORDER BY id ASC
	`)
	return bins, err
}

func (s *PostgresStore) UpdateBinFillLevel(ctx context.Context, id, fillLevel int) (models.Bin, error) {
	var bin models.Bin
	err := s.db.GetContext(ctx, &bin, `
		UPDATE bins SET fill_level = $1, last_updated = $2 WHERE id = $3
		RETURNING id, user_id, location, bin_type, capacity, fill_level, status, last_updated
	`, fillLevel, time.Now(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bin{}, ErrNotFound
	}
	if err != nil {
		return models.Bin{}, err
	}
	return bin, nil
}

func (s *PostgresStore) UpdateBinStatus(ctx context.Context, id int, status string) (models.Bin, error) {
	var bin models.Bin
	err := s.db.GetContext(ctx, &bin, `
		UPDATE bins SET status = $1, last_updated = $2 WHERE id = $3
		RETURNING id, user_id, location, bin_type, capacity, fill_level, status, last_updated
	`, status, time.Now(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bin{}, ErrNotFound
	}
	if err != nil {
		return models.Bin{}, err
	}
	return bin, nil
}

func (s *PostgresStore) ListBinsByUser(ctx context.Context, userID int) ([]models.Bin, error) {
	bins := []models.Bin{}
	err := s.db.SelectContext(ctx, &bins, `
		SELECT id, user_id, location, bin_type, capacity, fill_level, status, last_updated
		FROM bins WHERE user_id = $1 ORDER BY id ASC
	`, userID)
	return bins, err
}

func (s *PostgresStore) CreateAlert(ctx context.Context, a NewAlert) (models.Alert, error) {
	var alert models.Alert
	err := s.db.GetContext(ctx, &alert, `
		INSERT INTO alerts (bin_id, alert_type, message, is_resolved, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id, bin_id, alert_type, message, is_resolved, created_at
	`, a.BinID, a.AlertType, a.Message, time.Now())
	if err != nil {
		return models.Alert{}, err
	}
	return alert, nil
}

func (s *PostgresStore) ListAlertsByBin(ctx context.Context, binID int) ([]models.Alert, error) {
	alerts := []models.Alert{}
	err := s.db.SelectContext(ctx, &alerts, `
		SELECT id, bin_id, alert_type, message, is_resolved, created_at
		FROM alerts WHERE bin_id = $1 ORDER BY id ASC
	`, binID)
	return alerts, err
}

func (s *PostgresStore) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	alerts := []models.Alert{}
	err := s.db.SelectContext(ctx, &alerts, `
		SELECT id, bin_id, alert_type, message, is_resolved, created_at
		FROM alerts ORDER BY id ASC
	`)
	return alerts, err
}

func (s *PostgresStore) ResolveAlert(ctx context.Context, id int) (models.Alert, error) {
	var alert models.Alert
	err := s.db.GetContext(ctx, &alert, `
		UPDATE alerts SET is_resolved = TRUE WHERE id = $1
		RETURNING id, bin_id, alert_type, message, is_resolved, created_at
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Alert{}, ErrNotFound
	}
	if err != nil {
		return models.Alert{}, err
	}
	return alert, nil
}

func (s *PostgresStore) ListUnresolvedAlerts(ctx context.Context) ([]models.Alert, error) {
	alerts := []models.Alert{}
	err := s.db.SelectContext(ctx, &alerts, `
		SELECT id, bin_id, alert_type, message, is_resolved, created_at
		FROM alerts WHERE is_resolved = FALSE ORDER BY id ASC
	`)
	return alerts, err
}

func (s *PostgresStore) GetSetting(ctx context.Context, key string) (models.Setting, error) {
	var setting models.Setting
	err := s.db.GetContext(ctx, &setting, `
		SELECT id, key, value, updated_at FROM settings WHERE key = $1
	`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Setting{}, ErrNotFound
	}
	if err != nil {
		return models.Setting{}, err
	}
	return setting, nil
}

func (s *PostgresStore) SetSetting(ctx context.Context, key, value string) (models.Setting, error) {
	var setting models.Setting
	err := s.db.GetContext(ctx, &setting, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		RETURNING id, key, value, updated_at
	`, key, value, time.Now())
	if err != nil {
		return models.Setting{}, err
	}
	return setting, nil
}

func (s *PostgresStore) ListSettings(ctx context.Context) ([]models.Setting, error) {
	settings := []models.Setting{}
	err := s.db.SelectContext(ctx, &settings, `
		SELECT id, key, value, updated_at FROM settings ORDER BY id ASC
	`)
	return settings, err
}
