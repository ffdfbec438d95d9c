package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pacta-backend/internal/apperr"
	"pacta-backend/internal/model"
	"pacta-backend/internal/repository"
)

// ContractStore is the persistence surface the contract service needs.
type ContractStore interface {
	Insert(ctx context.Context, c *model.Contract) error
	GetByID(ctx context.Context, userID, id int64) (*model.Contract, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Contract, error)
	UpdateStatus(ctx context.Context, userID, id int64, status model.ContractStatus) error
	Delete(ctx context.Context, userID, id int64) error
}

type CreateContractInput struct {
	Title        string
	Counterparty string
	StartDate    time.Time
	EndDate      time.Time
	ValueCents   int64
}

type ContractService struct {
	store ContractStore
}

func NewContractService(store ContractStore) *ContractService {
	return &ContractService{store: store}
}

// Create stores a new draft contract with a generated reference number.
func (s *ContractService) Create(ctx context.Context, userID int64, input CreateContractInput) (*model.Contract, error) {
	if userID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}
	if input.Title == "" {
		return nil, apperr.Validation("missing_title", "title is required")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperr.Validation("invalid_dates", "end_date must be after start_date")
	}
	if input.ValueCents < 0 {
		return nil, apperr.Validation("invalid_value", "value must not be negative")
	}

	c := &model.Contract{
		Number:       "CT-" + uuid.NewString(),
		UserID:       userID,
		Title:        input.Title,
		Counterparty: input.Counterparty,
		Status:       model.ContractStatusDraft,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		ValueCents:   input.ValueCents,
	}

	if err := s.store.Insert(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *ContractService) Get(ctx context.Context, userID, id int64) (*model.Contract, error) {
	if userID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}

	c, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("contract_not_found", "contract not found")
		}
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *ContractService) List(ctx context.Context, userID int64) ([]*model.Contract, error) {
	if userID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}

	contracts, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return contracts, nil
}

// UpdateStatus moves a contract along the allowed status transitions.
func (s *ContractService) UpdateStatus(ctx context.Context, userID, id int64, status model.ContractStatus) (*model.Contract, error) {
	if userID <= 0 {
		return nil, apperr.Authorization("missing_user", "user not authenticated")
	}
	if !status.Valid() {
		return nil, apperr.Validation("invalid_status", "unknown contract status")
	}

	c, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("contract_not_found", "contract not found")
		}
		return nil, apperr.Internal(err)
	}

	if !c.Status.CanTransition(status) {
		return nil, apperr.Validation("invalid_transition", "status transition not allowed")
	}

	if err := s.store.UpdateStatus(ctx, userID, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("contract_not_found", "contract not found")
		}
		return nil, apperr.Internal(err)
	}

	c.Status = status
	return c, nil
}

func (s *ContractService) Delete(ctx context.Context, userID, id int64) error {
	if userID <= 0 {
		return apperr.Authorization("missing_user", "user not authenticated")
	}

	if err := s.store.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("contract_not_found", "contract not found")
		}
		return apperr.Internal(err)
	}
	return nil
}
