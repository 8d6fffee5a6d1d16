package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/parcelhub/backend/internal/application/ledger"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/parcelhub/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDebtOperations struct {
	mock.Mock
}

func (m *MockDebtOperations) CreateDebt(ctx context.Context, caller ledger.CallerContext, req ledgerapp.CreateDebtRequest) (*ledgerapp.CreateDebtResult, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.CreateDebtResult), args.Error(1)
}

func (m *MockDebtOperations) CreateParcelDebt(ctx context.Context, caller ledger.CallerContext, req ledgerapp.ParcelDebtRequest) (*ledgerapp.CreateDebtResult, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.CreateDebtResult), args.Error(1)
}

func (m *MockDebtOperations) Settle(ctx context.Context, debtID, settlerUserID uuid.UUID) error {
	return m.Called(ctx, debtID, settlerUserID).Error(0)
}

func (m *MockDebtOperations) UpdateDebt(ctx context.Context, debtID uuid.UUID, req ledgerapp.UpdateDebtRequest) (*ledgerapp.DebtResponse, error) {
	args := m.Called(ctx, debtID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.DebtResponse), args.Error(1)
}

func (m *MockDebtOperations) DeleteDebt(ctx context.Context, debtID uuid.UUID) error {
	return m.Called(ctx, debtID).Error(0)
}

func (m *MockDebtOperations) GetDebt(ctx context.Context, debtID uuid.UUID) (*ledgerapp.DebtResponse, error) {
	args := m.Called(ctx, debtID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.DebtResponse), args.Error(1)
}

func (m *MockDebtOperations) ListDebts(ctx context.Context, filter ledgerapp.DebtListFilter) (*ledgerapp.DebtPage, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.DebtPage), args.Error(1)
}

type MockReportOperations struct {
	mock.Mock
}

func (m *MockReportOperations) ListDebtsForReport(ctx context.Context, filter ledgerapp.DebtListFilter) (*ledgerapp.DebtReport, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.DebtReport), args.Error(1)
}

func (m *MockReportOperations) ExportDebtReport(ctx context.Context, req ledgerapp.ExportDebtReportRequest) (*ledgerapp.ExportDebtReportResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.ExportDebtReportResponse), args.Error(1)
}

func (m *MockReportOperations) BranchSummary(ctx context.Context, branchID int64) (*ledgerapp.BranchSummaryResponse, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.BranchSummaryResponse), args.Error(1)
}

func (m *MockReportOperations) ListBranches(ctx context.Context) ([]ledger.Branch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Branch), args.Error(1)
}

type MockCashBook struct {
	mock.Mock
}

func (m *MockCashBook) ListCashTransactions(ctx context.Context, filter ledgerapp.CashTransactionListFilter) ([]ledgerapp.CashTransactionResponse, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]ledgerapp.CashTransactionResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockCashBook) TransactionsForDebts(ctx context.Context, debtIDs ...uuid.UUID) ([]ledgerapp.CashTransactionResponse, error) {
	args := m.Called(ctx, debtIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledgerapp.CashTransactionResponse), args.Error(1)
}

type ledgerFixture struct {
	debts   *MockDebtOperations
	reports *MockReportOperations
	cash    *MockCashBook
	router  *gin.Engine
	caller  *ledger.CallerContext
}

func newLedgerFixture(caller *ledger.CallerContext) *ledgerFixture {
	f := &ledgerFixture{
		debts:   new(MockDebtOperations),
		reports: new(MockReportOperations),
		cash:    new(MockCashBook),
		caller:  caller,
	}
	h := NewLedgerHandler(f.debts, f.reports, f.cash)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if f.caller != nil {
			setCaller(c, *f.caller)
		}
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))
	f.router = r
	return f
}

func (f *ledgerFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *ledgerFixture) assertExpectations(t *testing.T) {
	f.debts.AssertExpectations(t)
	f.reports.AssertExpectations(t)
	f.cash.AssertExpectations(t)
}

func branchCaller(role ledger.Role, branchID int64) *ledger.CallerContext {
	return &ledger.CallerContext{UserID: uuid.New(), Role: role, BranchID: &branchID}
}

func adminCaller() *ledger.CallerContext {
	return &ledger.CallerContext{UserID: uuid.New(), Role: ledger.RoleAdmin}
}

func int64Ptr(v int64) *int64 { return &v }

func TestLedgerHandler_CreateDebt(t *testing.T) {
	caller := branchCaller(ledger.RoleCashier, 3)
	f := newLedgerFixture(caller)

	body := ledgerapp.CreateDebtRequest{
		DebtorType:   "DRIVER",
		DebtorID:     "driver-9",
		Amount:       decimal.NewFromInt(5000),
		MovementType: "DEBTOR",
		Notes:        "Fuel advance",
	}
	debtID := uuid.New()
	f.debts.On("CreateDebt", mock.Anything, *caller, mock.MatchedBy(func(req ledgerapp.CreateDebtRequest) bool {
		return req.DebtorID == "driver-9" && req.Amount.Equal(decimal.NewFromInt(5000))
	})).Return(&ledgerapp.CreateDebtResult{Debts: []ledgerapp.DebtResponse{{ID: debtID, BranchID: 3}}}, nil)

	w := f.do(http.MethodPost, "/api/v1/ledger/debts", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), debtID.String())
	f.assertExpectations(t)
}

func TestLedgerHandler_CreateDebtValidation(t *testing.T) {
	f := newLedgerFixture(branchCaller(ledger.RoleCashier, 3))

	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown debtor type", map[string]any{"debtor_type": "SUPPLIER", "debtor_id": "x", "amount": "10", "movement_type": "DEBTOR", "notes": "valid"}},
		{"notes too short", map[string]any{"debtor_type": "DRIVER", "debtor_id": "x", "amount": "10", "movement_type": "DEBTOR", "notes": "ab"}},
		{"missing movement", map[string]any{"debtor_type": "DRIVER", "debtor_id": "x", "amount": "10", "notes": "valid notes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/v1/ledger/debts", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		})
	}
	f.debts.AssertNotCalled(t, "CreateDebt", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerHandler_Unauthenticated(t *testing.T) {
	f := newLedgerFixture(nil)
	w := f.do(http.MethodGet, "/api/v1/ledger/debts", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLedgerHandler_CreateParcelDebtTakesIDFromPath(t *testing.T) {
	caller := branchCaller(ledger.RoleClerk, 1)
	f := newLedgerFixture(caller)

	f.debts.On("CreateParcelDebt", mock.Anything, *caller, mock.MatchedBy(func(req ledgerapp.ParcelDebtRequest) bool {
		return req.ParcelID == "PCL-778"
	})).Return(&ledgerapp.CreateDebtResult{Debts: []ledgerapp.DebtResponse{{ID: uuid.New()}}}, nil)

	w := f.do(http.MethodPost, "/api/v1/ledger/parcels/PCL-778/debt", map[string]any{
		"customer_id":   "cust-1",
		"customer_name": "Amina Yusuf",
		"amount":        "1200",
		"notes":         "Unpaid shipping",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	f.assertExpectations(t)
}

func TestLedgerHandler_ListDebtsScopesToCallerBranch(t *testing.T) {
	caller := branchCaller(ledger.RoleBranchManager, 4)
	f := newLedgerFixture(caller)

	f.debts.On("ListDebts", mock.Anything, mock.MatchedBy(func(filter ledgerapp.DebtListFilter) bool {
		return filter.BranchID != nil && *filter.BranchID == 4 && filter.Status == "OUTSTANDING"
	})).Return(&ledgerapp.DebtPage{Items: []ledgerapp.DebtResponse{{ID: uuid.New()}}, Total: 41, Page: 2, PageSize: 20}, nil)

	w := f.do(http.MethodGet, "/api/v1/ledger/debts?status=OUTSTANDING&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(41), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	f.assertExpectations(t)
}

func TestLedgerHandler_ListDebtsForeignBranchForbidden(t *testing.T) {
	f := newLedgerFixture(branchCaller(ledger.RoleCashier, 4))
	w := f.do(http.MethodGet, "/api/v1/ledger/debts?branch_id=5", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.caller = &ledger.CallerContext{UserID: uuid.New(), Role: ledger.RoleCashier}
	w = f.do(http.MethodGet, "/api/v1/ledger/debts", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	f.debts.AssertNotCalled(t, "ListDebts", mock.Anything, mock.Anything)
}

func TestLedgerHandler_AdminSeesAllBranches(t *testing.T) {
	f := newLedgerFixture(adminCaller())
	f.debts.On("ListDebts", mock.Anything, mock.MatchedBy(func(filter ledgerapp.DebtListFilter) bool {
		return filter.BranchID == nil
	})).Return(&ledgerapp.DebtPage{Page: 1, PageSize: 20}, nil)

	w := f.do(http.MethodGet, "/api/v1/ledger/debts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	f.assertExpectations(t)
}

func TestLedgerHandler_GetDebt(t *testing.T) {
	id := uuid.New()

	t.Run("own branch", func(t *testing.T) {
		f := newLedgerFixture(branchCaller(ledger.RoleCashier, 2))
		f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 2}, nil)
		w := f.do(http.MethodGet, "/api/v1/ledger/debts/"+id.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other branch looks missing", func(t *testing.T) {
		f := newLedgerFixture(branchCaller(ledger.RoleCashier, 2))
		f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 9}, nil)
		w := f.do(http.MethodGet, "/api/v1/ledger/debts/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		f := newLedgerFixture(branchCaller(ledger.RoleCashier, 2))
		w := f.do(http.MethodGet, "/api/v1/ledger/debts/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		f := newLedgerFixture(adminCaller())
		f.debts.On("GetDebt", mock.Anything, id).Return(nil, ledger.ErrDebtNotFound)
		w := f.do(http.MethodGet, "/api/v1/ledger/debts/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})
}

func TestLedgerHandler_SettleDebt(t *testing.T) {
	caller := branchCaller(ledger.RoleCashier, 2)
	id := uuid.New()

	t.Run("returns refreshed debt", func(t *testing.T) {
		f := newLedgerFixture(caller)
		f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 2, Status: "OUTSTANDING"}, nil).Once()
		f.debts.On("Settle", mock.Anything, id, caller.UserID).Return(nil)
		f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 2, Status: "PAID"}, nil).Once()

		w := f.do(http.MethodPost, "/api/v1/ledger/debts/"+id.String()+"/settle", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"PAID"`)
		f.assertExpectations(t)
	})

	t.Run("already settled", func(t *testing.T) {
		f := newLedgerFixture(caller)
		f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 2, Status: "PAID"}, nil)
		f.debts.On("Settle", mock.Anything, id, caller.UserID).Return(ledger.ErrAlreadySettled)

		w := f.do(http.MethodPost, "/api/v1/ledger/debts/"+id.String()+"/settle", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadySettled, decodeResponse(t, w).Error.Code)
	})
}

func TestLedgerHandler_UpdateDebt(t *testing.T) {
	f := newLedgerFixture(adminCaller())
	id := uuid.New()
	f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 7}, nil)
	f.debts.On("UpdateDebt", mock.Anything, id, mock.MatchedBy(func(req ledgerapp.UpdateDebtRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(750))
	})).Return(&ledgerapp.DebtResponse{ID: id, Amount: decimal.NewFromInt(750)}, nil)

	w := f.do(http.MethodPut, "/api/v1/ledger/debts/"+id.String(), map[string]any{"amount": "750", "notes": "Corrected amount"})
	assert.Equal(t, http.StatusOK, w.Code)
	f.assertExpectations(t)
}

func TestLedgerHandler_UpdatePaidDebtConflicts(t *testing.T) {
	f := newLedgerFixture(adminCaller())
	id := uuid.New()
	f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 7}, nil)
	f.debts.On("UpdateDebt", mock.Anything, id, mock.Anything).Return(nil, ledger.ErrNotOutstanding)

	w := f.do(http.MethodPut, "/api/v1/ledger/debts/"+id.String(), map[string]any{"amount": "750", "notes": "Corrected amount"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeNotOutstanding, decodeResponse(t, w).Error.Code)
}

func TestLedgerHandler_DeleteDebt(t *testing.T) {
	f := newLedgerFixture(branchCaller(ledger.RoleBranchManager, 1))
	id := uuid.New()
	f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 1}, nil)
	f.debts.On("DeleteDebt", mock.Anything, id).Return(nil)

	w := f.do(http.MethodDelete, "/api/v1/ledger/debts/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	f.assertExpectations(t)
}

func TestLedgerHandler_DebtCashTransactionsIncludesPair(t *testing.T) {
	f := newLedgerFixture(branchCaller(ledger.RoleCashier, 1))
	id, pair := uuid.New(), uuid.New()
	f.debts.On("GetDebt", mock.Anything, id).Return(&ledgerapp.DebtResponse{ID: id, BranchID: 1, PairedDebtID: &pair}, nil)
	f.cash.On("TransactionsForDebts", mock.Anything, []uuid.UUID{id, pair}).
		Return([]ledgerapp.CashTransactionResponse{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	w := f.do(http.MethodGet, "/api/v1/ledger/debts/"+id.String()+"/cash-transactions", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	f.assertExpectations(t)
}

func TestLedgerHandler_DebtReport(t *testing.T) {
	f := newLedgerFixture(branchCaller(ledger.RoleBranchManager, 6))
	f.reports.On("ListDebtsForReport", mock.Anything, mock.MatchedBy(func(filter ledgerapp.DebtListFilter) bool {
		return *filter.BranchID == 6
	})).Return(&ledgerapp.DebtReport{BranchID: int64Ptr(6), BranchName: "Harbour"}, nil)

	w := f.do(http.MethodGet, "/api/v1/ledger/reports/debts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Harbour")
	f.assertExpectations(t)
}

func TestLedgerHandler_ExportDebtReport(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newLedgerFixture(branchCaller(ledger.RoleBranchManager, 6))
		f.reports.On("ExportDebtReport", mock.Anything, mock.MatchedBy(func(req ledgerapp.ExportDebtReportRequest) bool {
			return req.Format == ledgerapp.ExportFormatCSV && req.Filter.BranchID != nil && *req.Filter.BranchID == 6
		})).Return(&ledgerapp.ExportDebtReportResponse{StorageKey: "reports/debts/x.csv", Format: "csv"}, nil)

		w := f.do(http.MethodPost, "/api/v1/ledger/reports/debts/export", map[string]any{"format": "csv"})
		assert.Equal(t, http.StatusCreated, w.Code)
		f.assertExpectations(t)
	})

	t.Run("bad format", func(t *testing.T) {
		f := newLedgerFixture(adminCaller())
		w := f.do(http.MethodPost, "/api/v1/ledger/reports/debts/export", map[string]any{"format": "xlsx"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage not configured", func(t *testing.T) {
		f := newLedgerFixture(adminCaller())
		f.reports.On("ExportDebtReport", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("EXPORT_UNAVAILABLE", "Report export is not configured"))
		w := f.do(http.MethodPost, "/api/v1/ledger/reports/debts/export", map[string]any{"format": "pdf"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestLedgerHandler_ListCashTransactionsDefaultsMeta(t *testing.T) {
	f := newLedgerFixture(branchCaller(ledger.RoleCashier, 2))
	f.cash.On("ListCashTransactions", mock.Anything, mock.MatchedBy(func(filter ledgerapp.CashTransactionListFilter) bool {
		return *filter.BranchID == 2 && filter.TransactionType == "INCOME"
	})).Return([]ledgerapp.CashTransactionResponse{{ID: uuid.New()}}, int64(1), nil)

	w := f.do(http.MethodGet, "/api/v1/ledger/cash-transactions?transaction_type=INCOME", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 20, resp.Meta.PageSize)
	f.assertExpectations(t)
}

func TestLedgerHandler_Branches(t *testing.T) {
	f := newLedgerFixture(branchCaller(ledger.RoleCashier, 2))
	f.reports.On("ListBranches", mock.Anything).Return([]ledger.Branch{{ID: 1, Name: "Central", IsActive: true}}, nil)
	f.reports.On("BranchSummary", mock.Anything, int64(2)).Return(&ledgerapp.BranchSummaryResponse{BranchID: 2}, nil)

	w := f.do(http.MethodGet, "/api/v1/ledger/branches", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Central")

	w = f.do(http.MethodGet, "/api/v1/ledger/branches/2/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/ledger/branches/3/summary", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/v1/ledger/branches/abc/summary", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.assertExpectations(t)
}
