package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/contractchecker-server/internal/model"
)

var _ model.DeviceStore = (*DeviceRepository)(nil)

const uniqueViolation = "23505"

type DeviceRepository struct {
	db querier
}

func NewDeviceRepository(db *Connection) *DeviceRepository {
	return &DeviceRepository{
		db: db,
	}
}

func (r *DeviceRepository) Create(ctx context.Context, device model.TrustedDevice) error {
	return insertTrustedDevice(ctx, r.db, device)
}

func insertTrustedDevice(ctx context.Context, db querier, device model.TrustedDevice) error {
	query := `INSERT INTO trusted_devices (user_id, device_id, user_agent, created_at, last_used_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := db.Exec(ctx, query,
		device.UserID, device.DeviceID, device.UserAgent, device.CreatedAt, device.LastUsed,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create trusted device: %w", err)
	}

	return nil
}

func (r *DeviceRepository) Touch(ctx context.Context, userID, deviceID string, at time.Time) (bool, error) {
	query := `UPDATE trusted_devices SET last_used_at = $3
			  WHERE user_id = $1 AND device_id = $2`

	tag, err := r.db.Exec(ctx, query, userID, deviceID, at)
	if err != nil {
		return false, fmt.Errorf("failed to touch trusted device: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
