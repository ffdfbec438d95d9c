package service

import (
	"context"
	"errors"
	"time"

	"pacta-backend/internal/apperr"
	"pacta-backend/internal/model"
	"pacta-backend/internal/repository"
)

// LicenseStore is the persistence surface the license service needs.
type LicenseStore interface {
	Insert(ctx context.Context, l *model.License) error
	GetByID(ctx context.Context, userID, id int64) (*model.License, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.License, error)
	Delete(ctx context.Context, userID, id int64) error
}

type CreateLicenseInput struct {
	Name      string
	Vendor    string
	Seats     int
	StartDate time.Time
	EndDate   time.Time
}

type LicenseService struct {
	store LicenseStore
}

func NewLicenseService(store LicenseStore) *LicenseService {
	return &LicenseService{store: store}
}

func (s *LicenseService) Create(ctx context.Context, userID int64, input CreateLicenseInput) (*model.License, error) {
	if userID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}
	if input.Name == "" {
		return nil, apperr.Validation("missing_name", "name is required")
	}
	if input.Seats < 1 {
		return nil, apperr.Validation("invalid_seats", "seats must be >= 1")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperr.Validation("invalid_dates", "end_date must be after start_date")
	}

	l := &model.License{
		UserID:    userID,
		Name:      input.Name,
		Vendor:    input.Vendor,
		Status:    model.LicenseStatusActive,
		Seats:     input.Seats,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}

	if err := s.store.Insert(ctx, l); err != nil {
		return nil, apperr.Internal(err)
	}
	return l, nil
}

func (s *LicenseService) Get(ctx context.Context, userID, id int64) (*model.License, error) {
	if userID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}

	l, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("license_not_found", "license not found")
		}
		return nil, apperr.Internal(err)
	}
	return l, nil
}

func (s *LicenseService) List(ctx context.Context, userID int64) ([]*model.License, error) {
	if userID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}

	licenses, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return licenses, nil
}

func (s *LicenseService) Delete(ctx context.Context, userID, id int64) error {
	if userID <= 0 {
		return apperr.Authorization("missing_user", "user not authenticated")
	}

	if err := s.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("license_not_found", "license not found")
		}
		return apperr.Internal(err)
	}
	return nil
}
