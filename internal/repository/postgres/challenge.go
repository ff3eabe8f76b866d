package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/contractchecker-server/internal/model"
)

var _ model.ChallengeStore = (*ChallengeRepository)(nil)

// txFunc runs fn inside one transaction, committing when fn returns nil.
type txFunc func(ctx context.Context, fn func(q querier) error) error

type ChallengeRepository struct {
	db   querier
	inTx txFunc
}

func NewChallengeRepository(db *Connection) *ChallengeRepository {
	return &ChallengeRepository{
		db: db,
		inTx: func(ctx context.Context, fn func(q querier) error) error {
			return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
				return fn(tx)
			})
		},
	}
}

func (r *ChallengeRepository) Upsert(ctx context.Context, challenge model.OTPChallenge) error {
	query := `INSERT INTO otp_challenges (user_id, code, expires_at, created_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_id) DO UPDATE
			  SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`

	_, err := r.db.Exec(ctx, query,
		challenge.UserID, challenge.Code, challenge.ExpiresAt, challenge.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert otp challenge: %w", err)
	}

	return nil
}

func (r *ChallengeRepository) Get(ctx context.Context, userID string) (model.OTPChallenge, error) {
	var challenge model.OTPChallenge
	query := `SELECT user_id, code, expires_at, created_at
			  FROM otp_challenges WHERE user_id = $1`

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&challenge.UserID, &challenge.Code, &challenge.ExpiresAt, &challenge.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OTPChallenge{}, model.ErrNotFound
		}
		return model.OTPChallenge{}, fmt.Errorf("failed to get otp challenge: %w", err)
	}

	return challenge, nil
}

func (r *ChallengeRepository) Delete(ctx context.Context, userID string) error {
	query := `DELETE FROM otp_challenges WHERE user_id = $1`

	_, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to delete otp challenge: %w", err)
	}

	return nil
}

func (r *ChallengeRepository) Redeem(ctx context.Context, userID, code string, device model.TrustedDevice) (bool, error) {
	query := `DELETE FROM otp_challenges WHERE user_id = $1 AND code = $2`

	var redeemed bool
	err := r.inTx(ctx, func(q querier) error {
		tag, err := q.Exec(ctx, query, userID, code)
		if err != nil {
			return fmt.Errorf("failed to consume otp challenge: %w", err)
		}
		if tag.RowsAffected() != 1 {
			return nil
		}

		if err := insertTrustedDevice(ctx, q, device); err != nil {
			return err
		}
		redeemed = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return redeemed, nil
}

func (r *ChallengeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM otp_challenges WHERE expires_at < $1`

	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired otp challenges: %w", err)
	}

	return tag.RowsAffected(), nil
}
