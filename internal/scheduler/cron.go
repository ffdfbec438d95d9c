package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CleanupRunner removes old read notifications.
type CleanupRunner interface {
	CleanupOld(ctx context.Context, thresholdDays int) (int64, error)
}

// StartJobs schedules the periodic expiry scans and the notification
// cleanup. Jobs are fire-and-forget: each run is idempotent, so an
// overlap or a missed tick is harmless.
func StartJobs(scanner *ExpiryScanner, cleanup CleanupRunner, cleanupThresholdDays int, logger *zap.Logger) *cron.Cron {
	c := cron.New()

	// Expiry scans, nightly
	mustAdd(c, logger, "0 2 * * *", func() {
		if err := scanner.ScanContracts(context.Background()); err != nil {
			logger.Error("Contract expiry scan failed", zap.Error(err))
		}
	})
	mustAdd(c, logger, "10 2 * * *", func() {
		if err := scanner.ScanLicenses(context.Background()); err != nil {
			logger.Error("License expiry scan failed", zap.Error(err))
		}
	})

	// Cleanup of old read notifications, nightly
	mustAdd(c, logger, "30 2 * * *", func() {
		if _, err := cleanup.CleanupOld(context.Background(), cleanupThresholdDays); err != nil {
			logger.Error("Notification cleanup failed", zap.Error(err))
		}
	})

	c.Start()
	return c
}

func mustAdd(c *cron.Cron, logger *zap.Logger, spec string, job func()) {
	if _, err := c.AddFunc(spec, job); err != nil {
		logger.Fatal("Failed to schedule job",
			zap.String("spec", spec),
			zap.Error(err),
		)
	}
}
