package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReportRenderer renders a debt report into a document
type ReportRenderer interface {
	// Render returns the document bytes and its content type
	Render(ctx context.Context, report *DebtReport, format ExportFormat) ([]byte, string, error)
}

// ReportStorage keeps rendered reports and hands out download links
type ReportStorage interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	PresignDownload(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
}

// ReportService serves the read-only report projections
type ReportService struct {
	debts    *DebtService
	debtRepo ledger.DebtRepository
	cashRepo ledger.CashTransactionRepository
	branches ledger.BranchDirectory
	renderer ReportRenderer
	storage  ReportStorage
	linkTTL  time.Duration
	logger   *zap.Logger
}

// NewReportService creates a new ReportService.
// renderer and storage may be nil, in which case exports are unavailable.
func NewReportService(
	debts *DebtService,
	debtRepo ledger.DebtRepository,
	cashRepo ledger.CashTransactionRepository,
	branches ledger.BranchDirectory,
	renderer ReportRenderer,
	storage ReportStorage,
	linkTTL time.Duration,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if linkTTL <= 0 {
		linkTTL = 15 * time.Minute
	}
	return &ReportService{
		debts:    debts,
		debtRepo: debtRepo,
		cashRepo: cashRepo,
		branches: branches,
		renderer: renderer,
		storage:  storage,
		linkTTL:  linkTTL,
		logger:   logger,
	}
}

// ListDebtsForReport returns every matching debt with counterpart names and totals
func (s *ReportService) ListDebtsForReport(ctx context.Context, filter DebtListFilter) (*DebtReport, error) {
	f := filter.toDomain()
	debts, err := s.debtRepo.FindAllUnpaged(ctx, f)
	if err != nil {
		return nil, ledger.NewPersistenceError("failed to load report rows", err)
	}
	rows, err := s.debts.enrich(ctx, debts)
	if err != nil {
		return nil, err
	}

	report := &DebtReport{
		GeneratedAt: time.Now().UTC(),
		BranchID:    filter.BranchID,
		Rows:        rows,
		Totals: DebtReportTotals{
			OutstandingOwedToUs: decimal.Zero,
			OutstandingWeOwe:    decimal.Zero,
			Paid:                decimal.Zero,
			Count:               len(rows),
		},
	}
	if filter.BranchID != nil {
		b, err := s.branches.Resolve(ctx, *filter.BranchID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("failed to resolve report branch", zap.Error(err))
		}
		report.BranchName = ledger.BranchName(b, *filter.BranchID)
	}

	for _, r := range rows {
		switch ledger.DebtStatus(r.Status) {
		case ledger.DebtStatusPaid:
			report.Totals.Paid = report.Totals.Paid.Add(r.Amount)
		case ledger.DebtStatusOutstanding:
			report.Totals.OutstandingCount++
			if ledger.MovementLabel(r.MovementLabel) == ledger.LabelOwedToUs {
				report.Totals.OutstandingOwedToUs = report.Totals.OutstandingOwedToUs.Add(r.Amount)
			} else {
				report.Totals.OutstandingWeOwe = report.Totals.OutstandingWeOwe.Add(r.Amount)
			}
		}
	}
	return report, nil
}

// ExportDebtReport renders the report, stores it and returns a download link
func (s *ReportService) ExportDebtReport(ctx context.Context, req ExportDebtReportRequest) (*ExportDebtReportResponse, error) {
	if s.renderer == nil || s.storage == nil {
		return nil, shared.NewDomainError("EXPORT_UNAVAILABLE", "Report export is not configured")
	}
	format := ExportFormat(strings.ToLower(string(req.Format)))
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, ledger.NewValidationError(fmt.Sprintf("unsupported export format %q", req.Format))
	}

	report, err := s.ListDebtsForReport(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	body, contentType, err := s.renderer.Render(ctx, report, format)
	if err != nil {
		s.logger.Error("failed to render debt report", zap.String("format", string(format)), zap.Error(err))
		return nil, fmt.Errorf("failed to render debt report: %w", err)
	}

	key := reportKey(report, format)
	if err := s.storage.Upload(ctx, key, body, contentType); err != nil {
		s.logger.Error("failed to upload debt report", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to upload debt report: %w", err)
	}
	url, expiresAt, err := s.storage.PresignDownload(ctx, key, s.linkTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign report download: %w", err)
	}

	s.logger.Info("debt report exported",
		zap.String("key", key),
		zap.String("format", string(format)),
		zap.Int("rows", len(report.Rows)),
		zap.Int("bytes", len(body)),
	)
	return &ExportDebtReportResponse{
		StorageKey:  key,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
		Rows:        len(report.Rows),
		Format:      string(format),
	}, nil
}

// BranchSummary returns a branch's debt position next to its cash book totals
func (s *ReportService) BranchSummary(ctx context.Context, branchID int64) (*BranchSummaryResponse, error) {
	b, err := s.branches.Resolve(ctx, branchID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ledger.NewNotFoundError(fmt.Sprintf("branch %d not found", branchID))
		}
		return nil, ledger.NewPersistenceError("failed to resolve branch", err)
	}

	totals, err := s.debtRepo.SummarizeBranch(ctx, branchID)
	if err != nil {
		return nil, ledger.NewPersistenceError("failed to summarize branch debts", err)
	}
	cash, err := s.cashRepo.SumByBranch(ctx, branchID, nil, nil)
	if err != nil {
		return nil, ledger.NewPersistenceError("failed to summarize branch cash", err)
	}

	return &BranchSummaryResponse{
		BranchID:          branchID,
		BranchName:        b.Name,
		OutstandingCount:  totals.OutstandingCount,
		PaidCount:         totals.PaidCount,
		Receivable:        totals.ReceivableTotal,
		Payable:           totals.PayableTotal,
		NetPosition:       totals.ReceivableTotal.Sub(totals.PayableTotal),
		SettledTotal:      totals.SettledTotal,
		OldestOutstanding: totals.OldestOutstanding,
		CashIncome:        cash.Income,
		CashExpense:       cash.Expense,
		CashNet:           cash.Net(),
	}, nil
}

// ListBranches returns the branch directory
func (s *ReportService) ListBranches(ctx context.Context) ([]ledger.Branch, error) {
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, ledger.NewPersistenceError("failed to list branches", err)
	}
	return branches, nil
}

func reportKey(report *DebtReport, format ExportFormat) string {
	scope := "all"
	if report.BranchID != nil {
		scope = fmt.Sprintf("branch-%d", *report.BranchID)
	}
	return fmt.Sprintf("reports/debts/%s/%s-%s.%s",
		report.GeneratedAt.Format("2006/01/02"),
		scope,
		uuid.NewString()[:8],
		format,
	)
}
