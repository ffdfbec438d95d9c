package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "pacta-backend/contracts/mq"
	"pacta-backend/internal/model"
)

type fakeContractScanStore struct {
	expiring   []*model.Contract
	markedRuns int
}

func (f *fakeContractScanStore) ListExpiringActive(ctx context.Context, horizon time.Time) ([]*model.Contract, error) {
	return f.expiring, nil
}

func (f *fakeContractScanStore) MarkExpired(ctx context.Context) (int64, error) {
	f.markedRuns++
	return 2, nil
}

type fakeLicenseScanStore struct {
	expiring []*model.License
}

func (f *fakeLicenseScanStore) ListExpiringActive(ctx context.Context, horizon time.Time) ([]*model.License, error) {
	return f.expiring, nil
}

type capturedEvent struct {
	RoutingKey string
	Payload    any
}

type capturingPublisher struct {
	events []capturedEvent
}

func (p *capturingPublisher) Publish(routingKey string, payload any) error {
	p.events = append(p.events, capturedEvent{RoutingKey: routingKey, Payload: payload})
	return nil
}

func (p *capturingPublisher) byKey(key string) []capturedEvent {
	var out []capturedEvent
	for _, ev := range p.events {
		if ev.RoutingKey == key {
			out = append(out, ev)
		}
	}
	return out
}

func TestScanContractsPublishesExpiryEvents(t *testing.T) {
	endDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	contracts := &fakeContractScanStore{
		expiring: []*model.Contract{
			{ID: 11, UserID: 3, Number: "CT-1", Title: "Hosting", Status: model.ContractStatusActive, EndDate: endDate},
		},
	}
	pub := &capturingPublisher{}
	scanner := NewExpiryScanner(contracts, &fakeLicenseScanStore{}, pub, 30, zap.NewNop())

	require.NoError(t, scanner.ScanContracts(context.Background()))

	assert.Equal(t, 1, contracts.markedRuns)

	expiring := pub.byKey("contract.expiring")
	require.Len(t, expiring, 1)
	payload, ok := expiring[0].Payload.(mqcontracts.ContractExpiringPayload)
	require.True(t, ok)
	assert.Equal(t, int64(11), payload.ContractID)
	assert.Equal(t, "CT-1", payload.Number)

	requests := pub.byKey("notification.requested")
	require.Len(t, requests, 1)
	request, ok := requests[0].Payload.(mqcontracts.NotificationRequestedPayload)
	require.True(t, ok)
	assert.Equal(t, "contract-expiring:11:2026-09-15", request.EventID, "event ID is stable for dedup")
	assert.Equal(t, int64(3), request.UserID)
	assert.Equal(t, "contract", request.Type)
	assert.Equal(t, "contracts", request.Category)
}

func TestScanLicensesPublishesExpiryEvents(t *testing.T) {
	endDate := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	licenses := &fakeLicenseScanStore{
		expiring: []*model.License{
			{ID: 4, UserID: 8, Name: "IDE", Vendor: "JetBrains", EndDate: endDate},
		},
	}
	pub := &capturingPublisher{}
	scanner := NewExpiryScanner(&fakeContractScanStore{}, licenses, pub, 30, zap.NewNop())

	require.NoError(t, scanner.ScanLicenses(context.Background()))

	require.Len(t, pub.byKey("license.expiring"), 1)

	requests := pub.byKey("notification.requested")
	require.Len(t, requests, 1)
	request := requests[0].Payload.(mqcontracts.NotificationRequestedPayload)
	assert.Equal(t, "license-expiring:4:2026-10-01", request.EventID)
	assert.Equal(t, "system", request.Type)
	assert.Equal(t, "licenses", request.Category)
}

func TestScanWithNothingExpiringPublishesNothing(t *testing.T) {
	pub := &capturingPublisher{}
	scanner := NewExpiryScanner(&fakeContractScanStore{}, &fakeLicenseScanStore{}, pub, 30, zap.NewNop())

	require.NoError(t, scanner.ScanContracts(context.Background()))
	require.NoError(t, scanner.ScanLicenses(context.Background()))

	assert.Empty(t, pub.events)
}
