package ledger

import (
	"context"
	"fmt"

	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CashEntryHandler delivers CashEntryRequested events from the outbox to the cash ledger.
// Returning an error leaves the outbox entry for retry.
type CashEntryHandler struct {
	cashLedger ledger.CashLedger
	logger     *zap.Logger
}

// NewCashEntryHandler creates a new CashEntryHandler
func NewCashEntryHandler(cashLedger ledger.CashLedger, logger *zap.Logger) *CashEntryHandler {
	return &CashEntryHandler{
		cashLedger: cashLedger,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *CashEntryHandler) EventTypes() []string {
	return []string{ledger.EventTypeCashEntryRequested}
}

// Handle books the requested cash entry
func (h *CashEntryHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	requested, ok := event.(*ledger.CashEntryRequestedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypeCashEntryRequested),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypeCashEntryRequested, event.EventType())
	}

	if err := h.cashLedger.Record(ctx, requested.Entry, requested.EventID()); err != nil {
		h.logger.Error("failed to book cash entry",
			zap.String("event_id", requested.EventID().String()),
			zap.String("debt_id", requested.Entry.DebtID.String()),
			zap.String("reason", string(requested.Entry.Reason)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to book cash entry: %w", err)
	}
	return nil
}

var _ shared.EventHandler = (*CashEntryHandler)(nil)
