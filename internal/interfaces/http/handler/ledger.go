package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/parcelhub/backend/internal/application/ledger"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/interfaces/http/dto"
)

// DebtOperations is the debt lifecycle the handler drives
type DebtOperations interface {
	CreateDebt(ctx context.Context, caller ledger.CallerContext, req ledgerapp.CreateDebtRequest) (*ledgerapp.CreateDebtResult, error)
	CreateParcelDebt(ctx context.Context, caller ledger.CallerContext, req ledgerapp.ParcelDebtRequest) (*ledgerapp.CreateDebtResult, error)
	Settle(ctx context.Context, debtID, settlerUserID uuid.UUID) error
	UpdateDebt(ctx context.Context, debtID uuid.UUID, req ledgerapp.UpdateDebtRequest) (*ledgerapp.DebtResponse, error)
	DeleteDebt(ctx context.Context, debtID uuid.UUID) error
	GetDebt(ctx context.Context, debtID uuid.UUID) (*ledgerapp.DebtResponse, error)
	ListDebts(ctx context.Context, filter ledgerapp.DebtListFilter) (*ledgerapp.DebtPage, error)
}

// ReportOperations are the read-only report projections
type ReportOperations interface {
	ListDebtsForReport(ctx context.Context, filter ledgerapp.DebtListFilter) (*ledgerapp.DebtReport, error)
	ExportDebtReport(ctx context.Context, req ledgerapp.ExportDebtReportRequest) (*ledgerapp.ExportDebtReportResponse, error)
	BranchSummary(ctx context.Context, branchID int64) (*ledgerapp.BranchSummaryResponse, error)
	ListBranches(ctx context.Context) ([]ledger.Branch, error)
}

// CashBook reads the cash ledger
type CashBook interface {
	ListCashTransactions(ctx context.Context, filter ledgerapp.CashTransactionListFilter) ([]ledgerapp.CashTransactionResponse, int64, error)
	TransactionsForDebts(ctx context.Context, debtIDs ...uuid.UUID) ([]ledgerapp.CashTransactionResponse, error)
}

// LedgerHandler serves /api/v1/ledger.
// Callers bound to a branch only see and change that branch's rows;
// ADMIN and SUPER_ADMIN see every branch.
type LedgerHandler struct {
	BaseHandler
	debts   DebtOperations
	reports ReportOperations
	cash    CashBook
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(debts DebtOperations, reports ReportOperations, cash CashBook) *LedgerHandler {
	return &LedgerHandler{debts: debts, reports: reports, cash: cash}
}

// RegisterRoutes mounts the ledger routes under rg
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	l := rg.Group("/ledger")

	l.POST("/debts", h.CreateDebt)
	l.GET("/debts", h.ListDebts)
	l.GET("/debts/:id", h.GetDebt)
	l.PUT("/debts/:id", h.UpdateDebt)
	l.DELETE("/debts/:id", h.DeleteDebt)
	l.POST("/debts/:id/settle", h.SettleDebt)
	l.GET("/debts/:id/cash-transactions", h.ListDebtCashTransactions)
	l.POST("/parcels/:parcelId/debt", h.CreateParcelDebt)

	l.GET("/reports/debts", h.DebtReport)
	l.POST("/reports/debts/export", h.ExportDebtReport)

	l.GET("/cash-transactions", h.ListCashTransactions)
	l.GET("/branches", h.ListBranches)
	l.GET("/branches/:id/summary", h.BranchSummary)
}

// scopeBranch returns the branch a read is limited to.
// Branch-bound callers get their own branch; asking for another one is forbidden.
func (h *LedgerHandler) scopeBranch(c *gin.Context, caller ledger.CallerContext, requested *int64) (*int64, bool) {
	if caller.Role.IsBranchExempt() {
		return requested, true
	}
	if !caller.HasBranch() {
		h.Forbidden(c, "Caller is not attached to a branch")
		return nil, false
	}
	if requested != nil && *requested != *caller.BranchID {
		h.Forbidden(c, "Access to other branches is not allowed")
		return nil, false
	}
	own := *caller.BranchID
	return &own, true
}

// loadScoped fetches a debt the caller is allowed to see
func (h *LedgerHandler) loadScoped(c *gin.Context, caller ledger.CallerContext, id uuid.UUID) (*ledgerapp.DebtResponse, bool) {
	debt, err := h.debts.GetDebt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	if !caller.Role.IsBranchExempt() && (!caller.HasBranch() || debt.BranchID != *caller.BranchID) {
		// a foreign branch's debt looks the same as a missing one
		h.HandleError(c, ledger.ErrDebtNotFound)
		return nil, false
	}
	return debt, true
}

// CreateDebt godoc
// @ID           createLedgerDebt
// @Summary      Record a debt
// @Description  Opens a debt against a driver, customer or another branch. Branch debts create a mirrored pair.
// @Description  A cash entry is booked for every row created (EXPENSE for DEBTOR, INCOME for CREDITOR).
// @Tags         ledger-debts
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateDebtRequest true "Debt creation request"
// @Success      201 {object} APIResponse[ledgerapp.CreateDebtResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/debts [post]
func (h *LedgerHandler) CreateDebt(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req ledgerapp.CreateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.debts.CreateDebt(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// CreateParcelDebt godoc
// @ID           createParcelDebt
// @Summary      Record an unpaid shipment as a customer debt
// @Tags         ledger-debts
// @Accept       json
// @Produce      json
// @Param        parcelId path string true "Parcel ID"
// @Param        request body ledgerapp.ParcelDebtRequest true "Parcel debt request"
// @Success      201 {object} APIResponse[ledgerapp.CreateDebtResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/parcels/{parcelId}/debt [post]
func (h *LedgerHandler) CreateParcelDebt(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req ledgerapp.ParcelDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.ParcelID = c.Param("parcelId")
	result, err := h.debts.CreateParcelDebt(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListDebts godoc
// @ID           listLedgerDebts
// @Summary      List debts
// @Description  Paginated debts with counterpart names and movement labels
// @Tags         ledger-debts
// @Produce      json
// @Param        branch_id query int false "Branch ID"
// @Param        debtor_type query string false "DRIVER, BRANCH or CUSTOMER"
// @Param        status query string false "OUTSTANDING, PAID or PENDING_SETTLEMENT"
// @Param        movement_type query string false "DEBTOR or CREDITOR"
// @Param        search query string false "Matches debtor name, id and notes"
// @Param        parcel_id query string false "Parcel ID"
// @Param        from query string false "Created on or after (YYYY-MM-DD)"
// @Param        to query string false "Created on or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ledgerapp.DebtResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/debts [get]
func (h *LedgerHandler) ListDebts(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var filter ledgerapp.DebtListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.BranchID, ok = h.scopeBranch(c, caller, filter.BranchID); !ok {
		return
	}
	page, err := h.debts.ListDebts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetDebt godoc
// @ID           getLedgerDebt
// @Summary      Get a debt
// @Tags         ledger-debts
// @Produce      json
// @Param        id path string true "Debt ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.DebtResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/debts/{id} [get]
func (h *LedgerHandler) GetDebt(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	debt, ok := h.loadScoped(c, caller, id)
	if !ok {
		return
	}
	h.Success(c, debt)
}

// UpdateDebt godoc
// @ID           updateLedgerDebt
// @Summary      Amend an outstanding debt
// @Description  Changes amount and notes on the debt and its paired row. Recorded cash entries are not adjusted.
// @Tags         ledger-debts
// @Accept       json
// @Produce      json
// @Param        id path string true "Debt ID" format(uuid)
// @Param        request body ledgerapp.UpdateDebtRequest true "Amendment"
// @Success      200 {object} APIResponse[ledgerapp.DebtResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/debts/{id} [put]
func (h *LedgerHandler) UpdateDebt(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.UpdateDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if _, ok := h.loadScoped(c, caller, id); !ok {
		return
	}
	debt, err := h.debts.UpdateDebt(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, debt)
}

// DeleteDebt godoc
// @ID           deleteLedgerDebt
// @Summary      Delete a debt
// @Description  Removes the debt and its paired row. Cash history is kept.
// @Tags         ledger-debts
// @Param        id path string true "Debt ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/debts/{id} [delete]
func (h *LedgerHandler) DeleteDebt(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.loadScoped(c, caller, id); !ok {
		return
	}
	if err := h.debts.DeleteDebt(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SettleDebt godoc
// @ID           settleLedgerDebt
// @Summary      Settle a debt
// @Description  Marks the debt and its paired row PAID and books the reversing cash entries.
// @Tags         ledger-debts
// @Produce      json
// @Param        id path string true "Debt ID" format(uuid)
// @Success      200 {object} APIResponse[ledgerapp.DebtResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse "Already settled"
// @Security     BearerAuth
// @Router       /ledger/debts/{id}/settle [post]
func (h *LedgerHandler) SettleDebt(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.loadScoped(c, caller, id); !ok {
		return
	}
	if err := h.debts.Settle(c.Request.Context(), id, caller.UserID); err != nil {
		h.HandleError(c, err)
		return
	}
	debt, err := h.debts.GetDebt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, debt)
}

// ListDebtCashTransactions godoc
// @ID           listDebtCashTransactions
// @Summary      Cash entries booked for a debt
// @Tags         ledger-cash
// @Produce      json
// @Param        id path string true "Debt ID" format(uuid)
// @Success      200 {object} APIResponse[[]ledgerapp.CashTransactionResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/debts/{id}/cash-transactions [get]
func (h *LedgerHandler) ListDebtCashTransactions(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	debt, ok := h.loadScoped(c, caller, id)
	if !ok {
		return
	}
	ids := []uuid.UUID{debt.ID}
	if debt.PairedDebtID != nil {
		ids = append(ids, *debt.PairedDebtID)
	}
	rows, err := h.cash.TransactionsForDebts(c.Request.Context(), ids...)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// DebtReport godoc
// @ID           getDebtReport
// @Summary      Debt report
// @Description  Every matching debt, unpaginated, with totals by direction and status
// @Tags         ledger-reports
// @Produce      json
// @Param        branch_id query int false "Branch ID"
// @Param        status query string false "OUTSTANDING or PAID"
// @Param        from query string false "Created on or after (YYYY-MM-DD)"
// @Param        to query string false "Created on or before (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[ledgerapp.DebtReport]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/reports/debts [get]
func (h *LedgerHandler) DebtReport(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var filter ledgerapp.DebtListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.BranchID, ok = h.scopeBranch(c, caller, filter.BranchID); !ok {
		return
	}
	report, err := h.reports.ListDebtsForReport(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ExportDebtReport godoc
// @ID           exportDebtReport
// @Summary      Export the debt report
// @Description  Renders the report as CSV or PDF, stores it and returns a time-limited download link
// @Tags         ledger-reports
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.ExportDebtReportRequest true "Format and filter"
// @Success      201 {object} APIResponse[ledgerapp.ExportDebtReportResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse "Export storage not configured"
// @Security     BearerAuth
// @Router       /ledger/reports/debts/export [post]
func (h *LedgerHandler) ExportDebtReport(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req ledgerapp.ExportDebtReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.Filter.BranchID, ok = h.scopeBranch(c, caller, req.Filter.BranchID); !ok {
		return
	}
	resp, err := h.reports.ExportDebtReport(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListCashTransactions godoc
// @ID           listCashTransactions
// @Summary      List cash transactions
// @Tags         ledger-cash
// @Produce      json
// @Param        branch_id query int false "Branch ID"
// @Param        transaction_type query string false "INCOME or EXPENSE"
// @Param        reason query string false "DEBT_CREATED or DEBT_SETTLED"
// @Param        debt_id query string false "Debt ID" format(uuid)
// @Param        from query string false "On or after (YYYY-MM-DD)"
// @Param        to query string false "On or before (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ledgerapp.CashTransactionResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/cash-transactions [get]
func (h *LedgerHandler) ListCashTransactions(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var filter ledgerapp.CashTransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	if filter.BranchID, ok = h.scopeBranch(c, caller, filter.BranchID); !ok {
		return
	}
	rows, total, err := h.cash.ListCashTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, rows, total, page, pageSize)
}

// ListBranches godoc
// @ID           listLedgerBranches
// @Summary      List branches
// @Tags         ledger-branches
// @Produce      json
// @Success      200 {object} APIResponse[[]ledger.Branch]
// @Security     BearerAuth
// @Router       /ledger/branches [get]
func (h *LedgerHandler) ListBranches(c *gin.Context) {
	if _, ok := h.caller(c); !ok {
		return
	}
	branches, err := h.reports.ListBranches(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branches)
}

// BranchSummary godoc
// @ID           getBranchSummary
// @Summary      Branch debt and cash position
// @Tags         ledger-branches
// @Produce      json
// @Param        id path int true "Branch ID"
// @Success      200 {object} APIResponse[ledgerapp.BranchSummaryResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ledger/branches/{id}/summary [get]
func (h *LedgerHandler) BranchSummary(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	branchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || branchID <= 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Invalid branch id")
		return
	}
	if _, ok := h.scopeBranch(c, caller, &branchID); !ok {
		return
	}
	summary, err := h.reports.BranchSummary(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
