package ledger

import (
	"context"

	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityHandler turns committed debt lifecycle events into audit log lines
// and metrics. It sees only what the outbox delivers, so rolled back writes
// are never counted.
type ActivityHandler struct {
	metrics Metrics
	logger  *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(metrics Metrics, logger *zap.Logger) *ActivityHandler {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityHandler{metrics: metrics, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ActivityHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeDebtCreated,
		ledger.EventTypeDebtSettled,
		ledger.EventTypeDebtAmended,
		ledger.EventTypeDebtDeleted,
	}
}

// Handle records one lifecycle event
func (h *ActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.DebtCreatedEvent:
		h.metrics.RecordDebtCreated(ctx, string(e.DebtorType), e.Amount)
		h.logger.Info("audit: debt created",
			zap.String("debt_id", e.DebtID.String()),
			zap.String("debtor_type", string(e.DebtorType)),
			zap.Int64("branch_id", e.BranchID),
			zap.String("movement_type", string(e.MovementType)),
			zap.String("amount", e.Amount.String()),
		)
	case *ledger.DebtSettledEvent:
		h.metrics.RecordDebtSettled(ctx, string(e.DebtorType), e.Amount)
		h.logger.Info("audit: debt settled",
			zap.String("debt_id", e.DebtID.String()),
			zap.Int64("branch_id", e.BranchID),
			zap.String("settled_by", e.SettledByUserID.String()),
			zap.Time("paid_at", e.PaidAt),
		)
	case *ledger.DebtAmendedEvent:
		h.logger.Info("audit: debt amended",
			zap.String("debt_id", e.DebtID.String()),
			zap.String("previous_amount", e.PreviousAmount.String()),
			zap.String("amount", e.Amount.String()),
		)
	case *ledger.DebtDeletedEvent:
		h.metrics.RecordDebtDeleted(ctx, string(e.DebtorType))
		h.logger.Info("audit: debt deleted",
			zap.String("debt_id", e.DebtID.String()),
			zap.Int64("branch_id", e.BranchID),
			zap.String("status", string(e.Status)),
		)
	default:
		h.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*ActivityHandler)(nil)
