package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pacta-backend/internal/model"
)

type LicenseRepository struct {
	db *pgxpool.Pool
}

func NewLicenseRepository(db *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{db: db}
}

func (r *LicenseRepository) Insert(ctx context.Context, l *model.License) error {
	query := `
        INSERT INTO licenses (user_id, name, vendor, status, seats, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		l.UserID,
		l.Name,
		l.Vendor,
		l.Status,
		l.Seats,
		l.StartDate,
		l.EndDate,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *LicenseRepository) GetByID(ctx context.Context, userID, id int64) (*model.License, error) {
	query := `
        SELECT id, user_id, name, vendor, status, seats, start_date, end_date, created_at
        FROM licenses
        WHERE id = $1 AND user_id = $2
    `
	var l model.License
	err := r.db.QueryRow(ctx, query, id, userID).Scan(
		&l.ID,
		&l.UserID,
		&l.Name,
		&l.Vendor,
		&l.Status,
		&l.Seats,
		&l.StartDate,
		&l.EndDate,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *LicenseRepository) ListByUser(ctx context.Context, userID int64) ([]*model.License, error) {
	query := `
        SELECT id, user_id, name, vendor, status, seats, start_date, end_date, created_at
        FROM licenses
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*model.License
	for rows.Next() {
		var l model.License
		err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.Name,
			&l.Vendor,
			&l.Status,
			&l.Seats,
			&l.StartDate,
			&l.EndDate,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, &l)
	}
	return licenses, rows.Err()
}

func (r *LicenseRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM licenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExpiringActive returns active licenses whose end date falls
// between now and the given horizon.
func (r *LicenseRepository) ListExpiringActive(ctx context.Context, horizon time.Time) ([]*model.License, error) {
	query := `
        SELECT id, user_id, name, vendor, status, seats, start_date, end_date, created_at
        FROM licenses
        WHERE status = 'active' AND end_date > NOW() AND end_date <= $1
        ORDER BY end_date ASC
    `
	rows, err := r.db.Query(ctx, query, horizon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var licenses []*model.License
	for rows.Next() {
		var l model.License
		err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.Name,
			&l.Vendor,
			&l.Status,
			&l.Seats,
			&l.StartDate,
			&l.EndDate,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, &l)
	}
	return licenses, rows.Err()
}
