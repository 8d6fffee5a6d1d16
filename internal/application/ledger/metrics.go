package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Metrics receives ledger activity counters
type Metrics interface {
	RecordDebtCreated(ctx context.Context, debtorType string, amount decimal.Decimal)
	RecordDebtSettled(ctx context.Context, debtorType string, amount decimal.Decimal)
	RecordDebtDeleted(ctx context.Context, debtorType string)
	RecordCashEntryBooked(ctx context.Context, transactionType, reason string, amount decimal.Decimal)
	RecordConflict(ctx context.Context, operation string)
}

type noopMetrics struct{}

func (noopMetrics) RecordDebtCreated(context.Context, string, decimal.Decimal)             {}
func (noopMetrics) RecordDebtSettled(context.Context, string, decimal.Decimal)             {}
func (noopMetrics) RecordDebtDeleted(context.Context, string)                              {}
func (noopMetrics) RecordCashEntryBooked(context.Context, string, string, decimal.Decimal) {}
func (noopMetrics) RecordConflict(context.Context, string)                                 {}

// NoopMetrics returns a Metrics that discards everything
func NoopMetrics() Metrics {
	return noopMetrics{}
}
