package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pacta-backend/internal/apperr"
	"pacta-backend/internal/model"
	"pacta-backend/internal/repository"
)

type fakeLicenseStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.License
}

func newFakeLicenseStore() *fakeLicenseStore {
	return &fakeLicenseStore{rows: make(map[int64]*model.License)}
}

func (f *fakeLicenseStore) Insert(ctx context.Context, l *model.License) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	l.ID = f.nextID
	cp := *l
	f.rows[l.ID] = &cp
	return nil
}

func (f *fakeLicenseStore) GetByID(ctx context.Context, userID, id int64) (*model.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok || l.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLicenseStore) ListByUser(ctx context.Context, userID int64) ([]*model.License, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.License
	for _, l := range f.rows {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLicenseStore) Delete(ctx context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok || l.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func validLicenseInput() CreateLicenseInput {
	return CreateLicenseInput{
		Name:      "IDE",
		Vendor:    "JetBrains",
		Seats:     5,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(1, 0, 0),
	}
}

func TestLicenseCreate(t *testing.T) {
	svc := NewLicenseService(newFakeLicenseStore())

	l, err := svc.Create(context.Background(), 1, validLicenseInput())
	require.NoError(t, err)
	assert.Equal(t, model.LicenseStatusActive, l.Status)
	assert.Equal(t, 5, l.Seats)
}

func TestLicenseCreateValidation(t *testing.T) {
	svc := NewLicenseService(newFakeLicenseStore())
	ctx := context.Background()

	input := validLicenseInput()
	input.Name = ""
	_, err := svc.Create(ctx, 1, input)
	assert.Equal(t, "missing_name", apperr.As(err).Code)

	input = validLicenseInput()
	input.Seats = 0
	_, err = svc.Create(ctx, 1, input)
	assert.Equal(t, "invalid_seats", apperr.As(err).Code)

	input = validLicenseInput()
	input.EndDate = input.StartDate
	_, err = svc.Create(ctx, 1, input)
	assert.Equal(t, "invalid_dates", apperr.As(err).Code)
}

func TestLicenseOwnerScope(t *testing.T) {
	store := newFakeLicenseStore()
	svc := NewLicenseService(store)
	ctx := context.Background()

	l, err := svc.Create(ctx, 1, validLicenseInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, l.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.As(err).Kind)

	err = svc.Delete(ctx, 2, l.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.As(err).Kind)
	assert.Contains(t, store.rows, l.ID)
}
