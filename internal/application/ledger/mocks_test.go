package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDebtRepository is a mock implementation of ledger.DebtRepository
type MockDebtRepository struct {
	mock.Mock
}

func (m *MockDebtRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Debt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Debt), args.Error(1)
}

func (m *MockDebtRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Debt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Debt), args.Error(1)
}

func (m *MockDebtRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Debt, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]ledger.Debt), args.Error(1)
}

func (m *MockDebtRepository) FindAll(ctx context.Context, filter ledger.DebtFilter) ([]ledger.Debt, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Debt), args.Get(1).(int64), args.Error(2)
}

func (m *MockDebtRepository) FindAllUnpaged(ctx context.Context, filter ledger.DebtFilter) ([]ledger.Debt, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Debt), args.Error(1)
}

func (m *MockDebtRepository) FindOutstandingByParcel(ctx context.Context, parcelID string) (*ledger.Debt, error) {
	args := m.Called(ctx, parcelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Debt), args.Error(1)
}

func (m *MockDebtRepository) Create(ctx context.Context, debt *ledger.Debt) error {
	args := m.Called(ctx, debt)
	return args.Error(0)
}

func (m *MockDebtRepository) CreatePair(ctx context.Context, a, b *ledger.Debt) error {
	args := m.Called(ctx, a, b)
	return args.Error(0)
}

func (m *MockDebtRepository) SaveWithLock(ctx context.Context, debt *ledger.Debt) error {
	args := m.Called(ctx, debt)
	return args.Error(0)
}

func (m *MockDebtRepository) MarkPaidIfOutstanding(ctx context.Context, debt *ledger.Debt) (bool, error) {
	args := m.Called(ctx, debt)
	return args.Bool(0), args.Error(1)
}

func (m *MockDebtRepository) DeleteByIDs(ctx context.Context, ids ...uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDebtRepository) SummarizeBranch(ctx context.Context, branchID int64) (*ledger.DebtTotals, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.DebtTotals), args.Error(1)
}

// MockCashTransactionRepository is a mock implementation of ledger.CashTransactionRepository
type MockCashTransactionRepository struct {
	mock.Mock
}

func (m *MockCashTransactionRepository) Create(ctx context.Context, tx *ledger.CashTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockCashTransactionRepository) ExistsBySourceEvent(ctx context.Context, eventID uuid.UUID) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCashTransactionRepository) FindAll(ctx context.Context, filter ledger.CashFilter) ([]ledger.CashTransaction, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.CashTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockCashTransactionRepository) FindByDebtIDs(ctx context.Context, debtIDs []uuid.UUID) ([]ledger.CashTransaction, error) {
	args := m.Called(ctx, debtIDs)
	return args.Get(0).([]ledger.CashTransaction), args.Error(1)
}

func (m *MockCashTransactionRepository) SumByBranch(ctx context.Context, branchID int64, from, to *time.Time) (*ledger.CashTotals, error) {
	args := m.Called(ctx, branchID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.CashTotals), args.Error(1)
}

// stubBranchDirectory serves a fixed set of branches
type stubBranchDirectory struct {
	branches map[int64]*ledger.Branch
}

func newStubBranchDirectory(branches ...ledger.Branch) *stubBranchDirectory {
	d := &stubBranchDirectory{branches: make(map[int64]*ledger.Branch)}
	for i := range branches {
		b := branches[i]
		d.branches[b.ID] = &b
	}
	return d
}

func (d *stubBranchDirectory) Resolve(_ context.Context, id int64) (*ledger.Branch, error) {
	b, ok := d.branches[id]
	if !ok {
		return nil, ledger.NewNotFoundError("branch not found")
	}
	return b, nil
}

func (d *stubBranchDirectory) ResolveMany(_ context.Context, ids []int64) (map[int64]*ledger.Branch, error) {
	out := make(map[int64]*ledger.Branch)
	for _, id := range ids {
		if b, ok := d.branches[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func (d *stubBranchDirectory) List(_ context.Context) ([]ledger.Branch, error) {
	out := make([]ledger.Branch, 0, len(d.branches))
	for _, b := range d.branches {
		out = append(out, *b)
	}
	return out, nil
}

// MockMetrics is a mock implementation of Metrics
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordDebtCreated(ctx context.Context, debtorType string, amount decimal.Decimal) {
	m.Called(ctx, debtorType, amount)
}

func (m *MockMetrics) RecordDebtSettled(ctx context.Context, debtorType string, amount decimal.Decimal) {
	m.Called(ctx, debtorType, amount)
}

func (m *MockMetrics) RecordDebtDeleted(ctx context.Context, debtorType string) {
	m.Called(ctx, debtorType)
}

func (m *MockMetrics) RecordCashEntryBooked(ctx context.Context, transactionType, reason string, amount decimal.Decimal) {
	m.Called(ctx, transactionType, reason, amount)
}

func (m *MockMetrics) RecordConflict(ctx context.Context, operation string) {
	m.Called(ctx, operation)
}
