package integration

import (
	"context"
	"testing"
	"time"

	ledgerapp "github.com/parcelhub/backend/internal/application/ledger"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/infrastructure/event"
	"github.com/parcelhub/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOutboxProcessor_BackgroundDelivery(t *testing.T) {
	s := NewLedgerStack(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	settled := testutil.NewMockEventHandler(ledger.EventTypeDebtSettled)
	s.Bus.Subscribe(settled)

	processor := event.NewOutboxProcessor(s.OutboxRepo, s.Bus, s.Serializer, event.OutboxProcessorConfig{
		BatchSize:    10,
		PollInterval: 50 * time.Millisecond,
		RetryBackoff: 50 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, processor.Start(ctx))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = processor.Stop(stopCtx)
	})

	caller := testutil.BranchCaller(1)
	res, err := s.Debts.CreateDebt(ctx, caller, ledgerapp.CreateDebtRequest{
		DebtorType:   "BRANCH",
		DebtorID:     "2",
		Amount:       decimal.NewFromInt(1500),
		MovementType: "DEBTOR",
		Notes:        "weekly linehaul",
	})
	require.NoError(t, err)

	testutil.RequireEventually(t, func() bool {
		return s.DB.Count("cash_transactions") == 2
	}, 10*time.Second, 25*time.Millisecond, "creation cash entries were not booked")

	require.NoError(t, s.Debts.Settle(ctx, res.Debts[0].ID, caller.UserID))

	testutil.RequireEventually(t, func() bool {
		return settled.HandledCount() == 2 && s.DB.Count("cash_transactions") == 4
	}, 10*time.Second, 25*time.Millisecond, "settlement was not delivered")

	// nothing else arrives once the outbox is drained
	testutil.AssertNever(t, func() bool {
		return s.DB.Count("cash_transactions") > 4
	}, 300*time.Millisecond, 50*time.Millisecond)
}
