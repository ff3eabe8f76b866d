package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/contractchecker-server/internal/model"
)

var _ model.WaitlistStore = (*WaitlistRepository)(nil)

type WaitlistRepository struct {
	db querier
}

func NewWaitlistRepository(db *Connection) *WaitlistRepository {
	return &WaitlistRepository{
		db: db,
	}
}

func (r *WaitlistRepository) GetByEmail(ctx context.Context, email string) (model.WaitlistEntry, error) {
	query := `SELECT id, email, status, source, created_at
			  FROM waitlist_entries WHERE email = $1`

	entry, err := scanWaitlistEntry(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.WaitlistEntry{}, model.ErrNotFound
		}
		return model.WaitlistEntry{}, fmt.Errorf("failed to get waitlist entry by email: %w", err)
	}

	return entry, nil
}

func (r *WaitlistRepository) GetByID(ctx context.Context, id uuid.UUID) (model.WaitlistEntry, error) {
	query := `SELECT id, email, status, source, created_at
			  FROM waitlist_entries WHERE id = $1`

	entry, err := scanWaitlistEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.WaitlistEntry{}, model.ErrNotFound
		}
		return model.WaitlistEntry{}, fmt.Errorf("failed to get waitlist entry by id: %w", err)
	}

	return entry, nil
}

// Create inserts entry unless the email is already present, in which case
// model.ErrAlreadyExists is returned.
func (r *WaitlistRepository) Create(ctx context.Context, entry model.WaitlistEntry) (model.WaitlistEntry, error) {
	query := `INSERT INTO waitlist_entries (id, email, status, source, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (email) DO NOTHING
			  RETURNING id, email, status, source, created_at`

	saved, err := scanWaitlistEntry(r.db.QueryRow(ctx, query,
		entry.ID, entry.Email, string(entry.Status), entry.Source, entry.CreatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.WaitlistEntry{}, model.ErrAlreadyExists
		}
		return model.WaitlistEntry{}, fmt.Errorf("failed to create waitlist entry: %w", err)
	}

	return saved, nil
}

func scanWaitlistEntry(row pgx.Row) (model.WaitlistEntry, error) {
	var (
		entry  model.WaitlistEntry
		status string
	)
	if err := row.Scan(&entry.ID, &entry.Email, &status, &entry.Source, &entry.CreatedAt); err != nil {
		return model.WaitlistEntry{}, err
	}
	entry.Status = model.WaitlistStatus(status)

	return entry, nil
}
