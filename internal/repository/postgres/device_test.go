package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/contractchecker-server/internal/model"
)

func TestDeviceRepository_Create(t *testing.T) {
	now := time.Now().UTC()
	device := model.TrustedDevice{UserID: "u1", DeviceID: "device_1_abc", UserAgent: "ua", CreatedAt: now, LastUsed: now}

	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "success"},
		{name: "duplicate", execErr: &pgconn.PgError{Code: "23505"}, wantErr: model.ErrAlreadyExists},
		{name: "driver error", execErr: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{tag: pgconn.NewCommandTag("INSERT 0 1"), execErr: tt.execErr}
			repo := &DeviceRepository{db: q}

			err := repo.Create(context.Background(), device)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.execErr != nil:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, []any{"u1", "device_1_abc", "ua", now, now}, q.lastArgs)
			}
		})
	}
}

func TestDeviceRepository_Touch(t *testing.T) {
	at := time.Now().UTC()

	t.Run("known device", func(t *testing.T) {
		q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
		repo := &DeviceRepository{db: q}

		found, err := repo.Touch(context.Background(), "u1", "d1", at)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []any{"u1", "d1", at}, q.lastArgs)
	})

	t.Run("unknown device", func(t *testing.T) {
		q := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 0")}
		repo := &DeviceRepository{db: q}

		found, err := repo.Touch(context.Background(), "u1", "nope", at)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("driver error", func(t *testing.T) {
		q := &fakeQuerier{execErr: errors.New("boom")}
		repo := &DeviceRepository{db: q}

		_, err := repo.Touch(context.Background(), "u1", "d1", at)
		assert.Error(t, err)
	})
}
