package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CreateDebtRequest represents a request to open a debt
type CreateDebtRequest struct {
	DebtorType   string          `json:"debtor_type" binding:"required,oneof=DRIVER BRANCH CUSTOMER"`
	DebtorID     string          `json:"debtor_id" binding:"required,max=100"`
	DebtorName   string          `json:"debtor_name" binding:"max=200"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	MovementType string          `json:"movement_type" binding:"required,oneof=DEBTOR CREDITOR"`
	Notes        string          `json:"notes" binding:"required,debt_notes"`
	ParcelID     *string         `json:"parcel_id,omitempty" binding:"omitempty,max=64"`
	// InitiatingBranchID lets admin callers without a branch pick one
	InitiatingBranchID *int64 `json:"initiating_branch_id,omitempty"`
}

// ParcelDebtRequest represents an unpaid shipping cost turned into a customer debt
type ParcelDebtRequest struct {
	ParcelID     string          `json:"-"`
	CustomerID   string          `json:"customer_id" binding:"required,max=100"`
	CustomerName string          `json:"customer_name" binding:"required,max=200"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Notes        string          `json:"notes" binding:"omitempty,debt_notes"`
	// InitiatingBranchID lets admin callers without a branch pick one
	InitiatingBranchID *int64 `json:"initiating_branch_id,omitempty"`
}

// UpdateDebtRequest represents an amendment of an outstanding debt
type UpdateDebtRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Notes  string          `json:"notes" binding:"required,debt_notes"`
}

// DebtResponse is a debt row enriched for display
type DebtResponse struct {
	ID                 uuid.UUID       `json:"id"`
	DebtorType         string          `json:"debtor_type"`
	DebtorID           string          `json:"debtor_id"`
	DebtorName         string          `json:"debtor_name"`
	CounterpartName    string          `json:"counterpart_name"`
	BranchID           int64           `json:"branch_id"`
	BranchName         string          `json:"branch_name"`
	Amount             decimal.Decimal `json:"amount"`
	MovementType       string          `json:"movement_type"`
	MovementLabel      string          `json:"movement_label"`
	MovementLabelText  string          `json:"movement_label_text"`
	Notes              string          `json:"notes"`
	Status             string          `json:"status"`
	ParcelID           *string         `json:"parcel_id,omitempty"`
	PairedDebtID       *uuid.UUID      `json:"paired_debt_id,omitempty"`
	InitiatingBranchID int64           `json:"initiating_branch_id"`
	InitiatorUserID    uuid.UUID       `json:"initiator_user_id"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	PaidAt             *time.Time      `json:"paid_at,omitempty"`
	SettledByUserID    *uuid.UUID      `json:"settled_by_user_id,omitempty"`
	Version            int             `json:"version"`
}

// CreateDebtResult lists the rows a creation produced: one for drivers and
// customers, two for branch pairs with the initiating branch's row first
type CreateDebtResult struct {
	Debts []DebtResponse `json:"debts"`
}

// Primary returns the row booked under the initiating branch
func (r *CreateDebtResult) Primary() *DebtResponse {
	if r == nil || len(r.Debts) == 0 {
		return nil
	}
	return &r.Debts[0]
}

// DebtListFilter represents list query parameters
type DebtListFilter struct {
	BranchID     *int64     `json:"branch_id,omitempty" form:"branch_id"`
	DebtorType   string     `json:"debtor_type,omitempty" form:"debtor_type" binding:"omitempty,oneof=DRIVER BRANCH CUSTOMER"`
	Status       string     `json:"status,omitempty" form:"status" binding:"omitempty,oneof=OUTSTANDING PAID PENDING_SETTLEMENT"`
	MovementType string     `json:"movement_type,omitempty" form:"movement_type" binding:"omitempty,oneof=DEBTOR CREDITOR"`
	Search       string     `json:"search,omitempty" form:"search" binding:"max=100"`
	ParcelID     string     `json:"parcel_id,omitempty" form:"parcel_id"`
	From         *time.Time `json:"from,omitempty" form:"from" time_format:"2006-01-02"`
	To           *time.Time `json:"to,omitempty" form:"to" time_format:"2006-01-02"`
	Page         int        `json:"page,omitempty" form:"page" binding:"omitempty,min=1"`
	PageSize     int        `json:"page_size,omitempty" form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `json:"order_by,omitempty" form:"order_by" binding:"omitempty,oneof=created_at updated_at amount debtor_name paid_at"`
	OrderDir     string     `json:"order_dir,omitempty" form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f DebtListFilter) toDomain() ledger.DebtFilter {
	out := ledger.DebtFilter{
		BranchID:    f.BranchID,
		CreatedFrom: f.From,
		CreatedTo:   f.To,
	}
	out.Page = f.Page
	out.PageSize = f.PageSize
	out.OrderBy = f.OrderBy
	out.OrderDir = f.OrderDir
	out.Search = f.Search
	if f.DebtorType != "" {
		t := ledger.DebtorType(f.DebtorType)
		out.DebtorType = &t
	}
	if f.Status != "" {
		s := ledger.DebtStatus(f.Status)
		out.Status = &s
	}
	if f.MovementType != "" {
		m := ledger.MovementType(f.MovementType)
		out.MovementType = &m
	}
	if f.ParcelID != "" {
		p := f.ParcelID
		out.ParcelID = &p
	}
	out.Filter = out.Filter.Normalize()
	return out
}

// DebtPage is one page of enriched debts
type DebtPage struct {
	Items    []DebtResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// DebtReportTotals sums report rows by direction and status
type DebtReportTotals struct {
	OutstandingOwedToUs decimal.Decimal `json:"outstanding_owed_to_us"`
	OutstandingWeOwe    decimal.Decimal `json:"outstanding_we_owe"`
	Paid                decimal.Decimal `json:"paid"`
	Count               int             `json:"count"`
	OutstandingCount    int             `json:"outstanding_count"`
}

// DebtReport is the unpaginated report projection
type DebtReport struct {
	GeneratedAt time.Time        `json:"generated_at"`
	BranchID    *int64           `json:"branch_id,omitempty"`
	BranchName  string           `json:"branch_name,omitempty"`
	Rows        []DebtResponse   `json:"rows"`
	Totals      DebtReportTotals `json:"totals"`
}

// ExportFormat selects the rendered report format
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportDebtReportRequest asks for a rendered report in object storage
type ExportDebtReportRequest struct {
	Filter DebtListFilter `json:"filter"`
	Format ExportFormat   `json:"format" binding:"required,oneof=csv pdf"`
}

// ExportDebtReportResponse points at the stored report
type ExportDebtReportResponse struct {
	StorageKey  string    `json:"storage_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	Rows        int       `json:"rows"`
	Format      string    `json:"format"`
}

// CashTransactionListFilter represents cash book query parameters
type CashTransactionListFilter struct {
	BranchID        *int64     `form:"branch_id"`
	TransactionType string     `form:"transaction_type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Reason          string     `form:"reason" binding:"omitempty,oneof=DEBT_CREATED DEBT_SETTLED"`
	DebtID          *uuid.UUID `form:"debt_id"`
	From            *time.Time `form:"from" time_format:"2006-01-02"`
	To              *time.Time `form:"to" time_format:"2006-01-02"`
	Page            int        `form:"page" binding:"omitempty,min=1"`
	PageSize        int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (f CashTransactionListFilter) toDomain() ledger.CashFilter {
	out := ledger.CashFilter{
		BranchID: f.BranchID,
		DebtID:   f.DebtID,
		From:     f.From,
		To:       f.To,
	}
	out.Page = f.Page
	out.PageSize = f.PageSize
	out.OrderBy = "transaction_date"
	if f.TransactionType != "" {
		t := ledger.TransactionType(f.TransactionType)
		out.TransactionType = &t
	}
	if f.Reason != "" {
		r := ledger.CashReason(f.Reason)
		out.Reason = &r
	}
	out.Filter = out.Filter.Normalize()
	return out
}

// CashTransactionResponse is a cash book row
type CashTransactionResponse struct {
	ID              uuid.UUID       `json:"id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	BranchID        int64           `json:"branch_id"`
	AddedByUserID   uuid.UUID       `json:"added_by_user_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	DebtID          *uuid.UUID      `json:"debt_id,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BranchSummaryResponse is a branch's debt and cash position
type BranchSummaryResponse struct {
	BranchID          int64           `json:"branch_id"`
	BranchName        string          `json:"branch_name"`
	OutstandingCount  int64           `json:"outstanding_count"`
	PaidCount         int64           `json:"paid_count"`
	Receivable        decimal.Decimal `json:"receivable"`
	Payable           decimal.Decimal `json:"payable"`
	NetPosition       decimal.Decimal `json:"net_position"`
	SettledTotal      decimal.Decimal `json:"settled_total"`
	OldestOutstanding *time.Time      `json:"oldest_outstanding,omitempty"`
	CashIncome        decimal.Decimal `json:"cash_income"`
	CashExpense       decimal.Decimal `json:"cash_expense"`
	CashNet           decimal.Decimal `json:"cash_net"`
}

func toCashTransactionResponse(t *ledger.CashTransaction) CashTransactionResponse {
	return CashTransactionResponse{
		ID:              t.ID,
		TransactionType: string(t.TransactionType),
		Amount:          t.Amount,
		Description:     t.Description,
		BranchID:        t.BranchID,
		AddedByUserID:   t.AddedByUserID,
		TransactionDate: t.TransactionDate,
		DebtID:          t.DebtID,
		Reason:          string(t.Reason),
		CreatedAt:       t.CreatedAt,
	}
}
