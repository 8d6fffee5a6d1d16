package telemetry

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when LedgerMetrics is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// OutstandingBalance is the open exposure of one branch in one direction.
type OutstandingBalance struct {
	BranchID     int64
	MovementType string
	Count        int64
	Amount       decimal.Decimal
}

// OutstandingProvider reports open balances for the periodic gauges.
type OutstandingProvider interface {
	OutstandingByBranch(ctx context.Context) ([]OutstandingBalance, error)
}

// LedgerMetricsConfig configures LedgerMetrics.
type LedgerMetricsConfig struct {
	Meter               metric.Meter
	Logger              *zap.Logger
	OutstandingProvider OutstandingProvider
}

// LedgerMetrics counts debt and cash activity and samples outstanding balances.
type LedgerMetrics struct {
	logger   *zap.Logger
	provider OutstandingProvider

	debtsCreated  *Counter
	debtAmount    *FloatCounter
	debtsSettled  *Counter
	settledAmount *FloatCounter
	debtsDeleted  *Counter
	cashEntries   *Counter
	cashAmount    *FloatCounter
	conflicts     *Counter
	deadLetters   *Counter
	openDebts     *Gauge
	openAmount    *FloatGauge

	collectOnce sync.Once
	stopOnce    sync.Once
	stopCh      chan struct{}
}

// NewLedgerMetrics registers the ledger instruments on the meter.
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &LedgerMetrics{
		logger:   logger,
		provider: cfg.OutstandingProvider,
		stopCh:   make(chan struct{}),
	}

	var err error
	if m.debtsCreated, err = NewCounter(cfg.Meter, "ledger_debts_created_total", "Debt rows created", "{debts}"); err != nil {
		return nil, err
	}
	if m.debtAmount, err = NewFloatCounter(cfg.Meter, "ledger_debt_amount_total", "Amount of debt rows created", "{currency}"); err != nil {
		return nil, err
	}
	if m.debtsSettled, err = NewCounter(cfg.Meter, "ledger_debts_settled_total", "Debt rows settled", "{debts}"); err != nil {
		return nil, err
	}
	if m.settledAmount, err = NewFloatCounter(cfg.Meter, "ledger_settled_amount_total", "Amount of debt rows settled", "{currency}"); err != nil {
		return nil, err
	}
	if m.debtsDeleted, err = NewCounter(cfg.Meter, "ledger_debts_deleted_total", "Debt rows deleted", "{debts}"); err != nil {
		return nil, err
	}
	if m.cashEntries, err = NewCounter(cfg.Meter, "ledger_cash_entries_total", "Cash transactions booked", "{entries}"); err != nil {
		return nil, err
	}
	if m.cashAmount, err = NewFloatCounter(cfg.Meter, "ledger_cash_amount_total", "Amount of cash transactions booked", "{currency}"); err != nil {
		return nil, err
	}
	if m.conflicts, err = NewCounter(cfg.Meter, "ledger_conflicts_total", "Rejected conflicting writes", "{errors}"); err != nil {
		return nil, err
	}
	if m.deadLetters, err = NewCounter(cfg.Meter, "ledger_outbox_dead_total", "Outbox entries that exhausted their retries", "{events}"); err != nil {
		return nil, err
	}
	if m.openDebts, err = NewGauge(cfg.Meter, "ledger_outstanding_debts", "Outstanding debt rows per branch", "{debts}"); err != nil {
		return nil, err
	}
	if m.openAmount, err = NewFloatGauge(cfg.Meter, "ledger_outstanding_amount", "Outstanding amount per branch", "{currency}"); err != nil {
		return nil, err
	}
	return m, nil
}

func amountOf(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// RecordDebtCreated counts one new debt row.
func (m *LedgerMetrics) RecordDebtCreated(ctx context.Context, debtorType string, amount decimal.Decimal) {
	m.debtsCreated.Inc(ctx, AttrDebtorType.String(debtorType))
	m.debtAmount.Add(ctx, amountOf(amount), AttrDebtorType.String(debtorType))
}

// RecordDebtSettled counts one settled debt row.
func (m *LedgerMetrics) RecordDebtSettled(ctx context.Context, debtorType string, amount decimal.Decimal) {
	m.debtsSettled.Inc(ctx, AttrDebtorType.String(debtorType))
	m.settledAmount.Add(ctx, amountOf(amount), AttrDebtorType.String(debtorType))
}

// RecordDebtDeleted counts one deleted debt row.
func (m *LedgerMetrics) RecordDebtDeleted(ctx context.Context, debtorType string) {
	m.debtsDeleted.Inc(ctx, AttrDebtorType.String(debtorType))
}

// RecordCashEntryBooked counts one cash transaction.
func (m *LedgerMetrics) RecordCashEntryBooked(ctx context.Context, transactionType, reason string, amount decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrTransactionType.String(transactionType), AttrCashReason.String(reason)}
	m.cashEntries.Inc(ctx, attrs...)
	m.cashAmount.Add(ctx, amountOf(amount), attrs...)
}

// RecordConflict counts a rejected write.
func (m *LedgerMetrics) RecordConflict(ctx context.Context, operation string) {
	m.conflicts.Inc(ctx, AttrOperation.String(operation))
}

// RecordDeadLetter counts an outbox entry moved to DEAD.
func (m *LedgerMetrics) RecordDeadLetter(ctx context.Context, eventType string) {
	m.deadLetters.Inc(ctx, AttrEventType.String(eventType))
}

// StartPeriodicCollection samples outstanding balances every interval until
// Stop is called or ctx ends. Only the first call starts a collector.
func (m *LedgerMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go m.runCollection(ctx, interval)
	})
}

func (m *LedgerMetrics) runCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.CollectOutstanding(ctx)
	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CollectOutstanding(ctx)
		}
	}
}

// CollectOutstanding records one sample of the outstanding gauges.
func (m *LedgerMetrics) CollectOutstanding(ctx context.Context) {
	if m.provider == nil {
		return
	}
	balances, err := m.provider.OutstandingByBranch(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect outstanding balances", zap.Error(err))
		return
	}
	for _, b := range balances {
		attrs := []attribute.KeyValue{
			AttrBranchID.String(strconv.FormatInt(b.BranchID, 10)),
			AttrMovementType.String(b.MovementType),
		}
		m.openDebts.Record(ctx, b.Count, attrs...)
		m.openAmount.Record(ctx, amountOf(b.Amount), attrs...)
	}
}

// Stop ends periodic collection. Safe to call more than once.
func (m *LedgerMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}
