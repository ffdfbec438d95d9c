package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "pacta-backend/contracts/mq"
	"pacta-backend/internal/model"
	"pacta-backend/pkg/metrics"
)

// ContractScanStore lists contracts relevant to the expiry scan.
type ContractScanStore interface {
	ListExpiringActive(ctx context.Context, horizon time.Time) ([]*model.Contract, error)
	MarkExpired(ctx context.Context) (int64, error)
}

// LicenseScanStore lists licenses relevant to the expiry scan.
type LicenseScanStore interface {
	ListExpiringActive(ctx context.Context, horizon time.Time) ([]*model.License, error)
}

// EventPublisher publishes durable domain events.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// ExpiryScanner finds contracts and licenses approaching their end date
// and requests notifications for their owners.
type ExpiryScanner struct {
	contracts  ContractScanStore
	licenses   LicenseScanStore
	publisher  EventPublisher
	windowDays int
	logger     *zap.Logger
}

func NewExpiryScanner(
	contracts ContractScanStore,
	licenses LicenseScanStore,
	publisher EventPublisher,
	windowDays int,
	logger *zap.Logger,
) *ExpiryScanner {
	return &ExpiryScanner{
		contracts:  contracts,
		licenses:   licenses,
		publisher:  publisher,
		windowDays: windowDays,
		logger:     logger,
	}
}

// ScanContracts marks overdue contracts expired, then publishes events
// for active contracts ending within the warning window.
func (s *ExpiryScanner) ScanContracts(ctx context.Context) error {
	s.logger.Info("Scanning for expiring contracts...",
		zap.Int("window_days", s.windowDays),
	)

	expired, err := s.contracts.MarkExpired(ctx)
	if err != nil {
		s.logger.Error("Failed to mark overdue contracts expired", zap.Error(err))
		return err
	}
	if expired > 0 {
		s.logger.Info("Marked overdue contracts expired", zap.Int64("count", expired))
	}

	horizon := time.Now().AddDate(0, 0, s.windowDays)
	contracts, err := s.contracts.ListExpiringActive(ctx, horizon)
	if err != nil {
		s.logger.Error("Failed to list expiring contracts", zap.Error(err))
		return err
	}

	for _, c := range contracts {
		metrics.ExpiryScanFindings.WithLabelValues("contract").Inc()

		expiring := mqcontracts.ContractExpiringPayload{
			ContractID: c.ID,
			UserID:     c.UserID,
			Number:     c.Number,
			Title:      c.Title,
			EndDate:    c.EndDate,
		}
		if err := s.publisher.Publish("contract.expiring", expiring); err != nil {
			s.logger.Error("Failed to publish contract.expiring event",
				zap.Int64("contract_id", c.ID),
				zap.Error(err),
			)
			continue
		}

		request := mqcontracts.NotificationRequestedPayload{
			EventID:  fmt.Sprintf("contract-expiring:%d:%s", c.ID, c.EndDate.Format("2006-01-02")),
			UserID:   c.UserID,
			Type:     string(model.NotificationTypeContract),
			Priority: string(model.NotificationPriorityHigh),
			Title:    "Contract expiring soon",
			Message:  fmt.Sprintf("Contract %q (%s) expires on %s", c.Title, c.Number, c.EndDate.Format("2006-01-02")),
			Category: "contracts",
			Metadata: map[string]string{
				"contract_id": fmt.Sprintf("%d", c.ID),
				"number":      c.Number,
			},
		}
		if err := s.publisher.Publish("notification.requested", request); err != nil {
			s.logger.Error("Failed to publish notification.requested event",
				zap.Int64("contract_id", c.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Contract expiry scan completed",
		zap.Int("expiring_count", len(contracts)),
	)
	return nil
}

// ScanLicenses publishes events for active licenses ending within the
// warning window.
func (s *ExpiryScanner) ScanLicenses(ctx context.Context) error {
	s.logger.Info("Scanning for expiring licenses...",
		zap.Int("window_days", s.windowDays),
	)

	horizon := time.Now().AddDate(0, 0, s.windowDays)
	licenses, err := s.licenses.ListExpiringActive(ctx, horizon)
	if err != nil {
		s.logger.Error("Failed to list expiring licenses", zap.Error(err))
		return err
	}

	for _, l := range licenses {
		metrics.ExpiryScanFindings.WithLabelValues("license").Inc()

		expiring := mqcontracts.LicenseExpiringPayload{
			LicenseID: l.ID,
			UserID:    l.UserID,
			Name:      l.Name,
			Vendor:    l.Vendor,
			EndDate:   l.EndDate,
		}
		if err := s.publisher.Publish("license.expiring", expiring); err != nil {
			s.logger.Error("Failed to publish license.expiring event",
				zap.Int64("license_id", l.ID),
				zap.Error(err),
			)
			continue
		}

		request := mqcontracts.NotificationRequestedPayload{
			EventID:  fmt.Sprintf("license-expiring:%d:%s", l.ID, l.EndDate.Format("2006-01-02")),
			UserID:   l.UserID,
			Type:     string(model.NotificationTypeSystem),
			Priority: string(model.NotificationPriorityHigh),
			Title:    "License expiring soon",
			Message:  fmt.Sprintf("License %q from %s expires on %s", l.Name, l.Vendor, l.EndDate.Format("2006-01-02")),
			Category: "licenses",
			Metadata: map[string]string{
				"license_id": fmt.Sprintf("%d", l.ID),
			},
		}
		if err := s.publisher.Publish("notification.requested", request); err != nil {
			s.logger.Error("Failed to publish notification.requested event",
				zap.Int64("license_id", l.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("License expiry scan completed",
		zap.Int("expiring_count", len(licenses)),
	)
	return nil
}
