package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job names registered by RegisterOutboxMaintenance
const (
	JobPurgeSentOutbox = "outbox.purge_sent"
	JobRequeueDeadCash = "outbox.requeue_dead_cash"
)

const (
	defaultRetention   = 7 * 24 * time.Hour
	defaultPurgeSpec   = "@every 1h"
	defaultRequeueSpec = "0 3 * * *"
)

// OutboxMaintainer is the part of the outbox store maintenance needs
type OutboxMaintainer interface {
	DeleteSentBefore(ctx context.Context, before time.Time) (int64, error)
	RequeueDead(ctx context.Context, eventTypes ...string) (int64, error)
}

// OutboxMaintenanceConfig configures the two outbox jobs
type OutboxMaintenanceConfig struct {
	PurgeSchedule   string
	RequeueSchedule string
	// Retention is how long SENT entries are kept
	Retention time.Duration
	// RequeueEventTypes limits requeueing; cash entry requests in practice
	RequeueEventTypes []string
}

// RegisterOutboxMaintenance adds the purge and requeue jobs to s.
func RegisterOutboxMaintenance(s *Scheduler, repo OutboxMaintainer, cfg OutboxMaintenanceConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PurgeSchedule == "" {
		cfg.PurgeSchedule = defaultPurgeSpec
	}
	if cfg.RequeueSchedule == "" {
		cfg.RequeueSchedule = defaultRequeueSpec
	}
	if cfg.Retention <= 0 {
		cfg.Retention = defaultRetention
	}

	if err := s.Register(JobPurgeSentOutbox, cfg.PurgeSchedule, PurgeSentJob(repo, cfg.Retention, time.Now)); err != nil {
		return err
	}
	if err := s.Register(JobRequeueDeadCash, cfg.RequeueSchedule, RequeueDeadJob(repo, logger, cfg.RequeueEventTypes...)); err != nil {
		return err
	}
	return nil
}

// PurgeSentJob deletes SENT entries processed before now-retention.
func PurgeSentJob(repo OutboxMaintainer, retention time.Duration, now func() time.Time) JobFunc {
	return func(ctx context.Context) (int64, error) {
		return repo.DeleteSentBefore(ctx, now().Add(-retention))
	}
}

// RequeueDeadJob resets DEAD entries of the given types to PENDING for one more round of retries.
func RequeueDeadJob(repo OutboxMaintainer, logger *zap.Logger, eventTypes ...string) JobFunc {
	return func(ctx context.Context) (int64, error) {
		n, err := repo.RequeueDead(ctx, eventTypes...)
		if err == nil && n > 0 {
			logger.Warn("Requeued dead outbox entries",
				zap.Int64("count", n),
				zap.Strings("event_types", eventTypes),
			)
		}
		return n, err
	}
}
