package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pacta-backend/internal/model"
)

type ContractRepository struct {
	db *pgxpool.Pool
}

func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Insert(ctx context.Context, c *model.Contract) error {
	query := `
        INSERT INTO contracts (number, user_id, title, counterparty, status, start_date, end_date, value_cents)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		c.Number,
		c.UserID,
		c.Title,
		c.Counterparty,
		c.Status,
		c.StartDate,
		c.EndDate,
		c.ValueCents,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *ContractRepository) GetByID(ctx context.Context, userID, id int64) (*model.Contract, error) {
	query := `
        SELECT id, number, user_id, title, counterparty, status, start_date, end_date, value_cents, created_at, updated_at
        FROM contracts
        WHERE id = $1 AND user_id = $2
    `
	var c model.Contract
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&c.ID,
		&c.Number,
		&c.UserID,
		&c.Title,
		&c.Counterparty,
		&c.Status,
		&c.StartDate,
		&c.EndDate,
		&c.ValueCents,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ContractRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Contract, error) {
	query := `
        SELECT id, number, user_id, title, counterparty, status, start_date, end_date, value_cents, created_at, updated_at
        FROM contracts
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*model.Contract
	for rows.Next() {
		var c model.Contract
		err := rows.Scan(
			&c.ID,
			&c.Number,
			&c.UserID,
			&c.Title,
			&c.Counterparty,
			&c.Status,
			&c.StartDate,
			&c.EndDate,
			&c.ValueCents,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, &c)
	}
	return contracts, rows.Err()
}

func (r *ContractRepository) UpdateStatus(ctx context.Context, userID, id int64, status model.ContractStatus) error {
	query := `
        UPDATE contracts SET status = $1, updated_at = NOW()
        WHERE id = $2 AND user_id = $3
    `
	tag, err := r.db.Exec(ctx, query, status, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ContractRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contracts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExpiringActive returns active contracts whose end date falls
// between now and the given horizon.
func (r *ContractRepository) ListExpiringActive(ctx context.Context, horizon time.Time) ([]*model.Contract, error) {
	query := `
        SELECT id, number, user_id, title, counterparty, status, start_date, end_date, value_cents, created_at, updated_at
        FROM contracts
        WHERE status = 'active' AND end_date > NOW() AND end_date <= $1
        ORDER BY end_date ASC
    `
	rows, err := r.db.Query(ctx, query, horizon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*model.Contract
	for rows.Next() {
		var c model.Contract
		err := rows.Scan(
			&c.ID,
			&c.Number,
			&c.UserID,
			&c.Title,
			&c.Counterparty,
			&c.Status,
			&c.StartDate,
			&c.EndDate,
			&c.ValueCents,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, &c)
	}
	return contracts, rows.Err()
}

// MarkExpired flips active contracts past their end date to expired and
// returns how many rows changed. Safe to run repeatedly.
func (r *ContractRepository) MarkExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE contracts SET status = 'expired', updated_at = NOW()
        WHERE status = 'active' AND end_date <= NOW()
    `)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
