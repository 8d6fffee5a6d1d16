package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DebtService creates, edits, settles and deletes debts
type DebtService struct {
	scope    TransactionScope
	debtRepo ledger.DebtRepository
	branches ledger.BranchDirectory
	metrics  Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// DebtServiceOption configures a DebtService
type DebtServiceOption func(*DebtService)

// WithMetrics sets the metrics sink
func WithMetrics(m Metrics) DebtServiceOption {
	return func(s *DebtService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) DebtServiceOption {
	return func(s *DebtService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) DebtServiceOption {
	return func(s *DebtService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDebtService creates a new DebtService
func NewDebtService(
	scope TransactionScope,
	debtRepo ledger.DebtRepository,
	branches ledger.BranchDirectory,
	opts ...DebtServiceOption,
) *DebtService {
	s := &DebtService{
		scope:    scope,
		debtRepo: debtRepo,
		branches: branches,
		metrics:  NoopMetrics(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateDebt opens a debt. Driver and customer debts produce one row; branch
// debts produce a linked pair through CreateBranchDebtPair.
func (s *DebtService) CreateDebt(ctx context.Context, caller ledger.CallerContext, req CreateDebtRequest) (*CreateDebtResult, error) {
	branchID, err := caller.InitiatingBranch(req.InitiatingBranchID)
	if err != nil {
		return nil, err
	}

	debtorType := ledger.DebtorType(strings.ToUpper(strings.TrimSpace(req.DebtorType)))
	if !debtorType.IsValid() {
		return nil, ledger.NewValidationError(fmt.Sprintf("invalid debtor type %q", req.DebtorType))
	}
	movement := ledger.MovementType(strings.ToUpper(strings.TrimSpace(req.MovementType)))

	if debtorType == ledger.DebtorTypeBranch {
		counterpartID, err := ledger.ParseBranchID(req.DebtorID)
		if err != nil {
			return nil, err
		}
		return s.CreateBranchDebtPair(ctx, caller, BranchDebtPairRequest{
			InitiatingBranchID:  branchID,
			CounterpartBranchID: counterpartID,
			CounterpartName:     req.DebtorName,
			Amount:              req.Amount,
			MovementType:        movement,
			Notes:               req.Notes,
			ParcelID:            req.ParcelID,
		})
	}

	debt, err := ledger.NewDebt(ledger.NewDebtInput{
		DebtorType:         debtorType,
		DebtorID:           req.DebtorID,
		DebtorName:         req.DebtorName,
		Amount:             req.Amount,
		MovementType:       movement,
		Notes:              req.Notes,
		ParcelID:           req.ParcelID,
		InitiatingBranchID: branchID,
		InitiatorUserID:    caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.insertStandalone(ctx, debt); err != nil {
		return nil, err
	}

	s.logger.Info("debt created",
		zap.String("debt_id", debt.ID.String()),
		zap.String("debtor_type", string(debt.DebtorType)),
		zap.Int64("branch_id", debt.BranchID),
		zap.String("amount", debt.Amount.String()),
	)

	views, err := s.enrich(ctx, []ledger.Debt{*debt})
	if err != nil {
		return nil, err
	}
	return &CreateDebtResult{Debts: views}, nil
}

// CreateParcelDebt books an unpaid shipping cost as a customer debt.
// A parcel can carry at most one outstanding debt.
func (s *DebtService) CreateParcelDebt(ctx context.Context, caller ledger.CallerContext, req ParcelDebtRequest) (*CreateDebtResult, error) {
	parcelID := strings.TrimSpace(req.ParcelID)
	if parcelID == "" {
		return nil, ledger.NewValidationError("parcel id is required")
	}
	branchID, err := caller.InitiatingBranch(req.InitiatingBranchID)
	if err != nil {
		return nil, err
	}
	notes := req.Notes
	if strings.TrimSpace(notes) == "" {
		notes = "Unpaid shipping for parcel " + parcelID
	}

	debt, err := ledger.NewDebt(ledger.NewDebtInput{
		DebtorType:         ledger.DebtorTypeCustomer,
		DebtorID:           req.CustomerID,
		DebtorName:         req.CustomerName,
		Amount:             req.Amount,
		MovementType:       ledger.MovementDebtor,
		Notes:              notes,
		ParcelID:           &parcelID,
		InitiatingBranchID: branchID,
		InitiatorUserID:    caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.DebtRepo().FindOutstandingByParcel(ctx, parcelID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return ledger.NewPersistenceError("failed to check parcel debts", err)
		}
		if existing != nil {
			return ledger.NewConflictError(fmt.Sprintf("parcel %s already has an outstanding debt", parcelID))
		}
		return s.writeCreated(ctx, repos, debt)
	})
	if err != nil {
		s.recordConflict(ctx, "create_parcel_debt", err)
		return nil, s.storeError("failed to create parcel debt", err)
	}

	views, err := s.enrich(ctx, []ledger.Debt{*debt})
	if err != nil {
		return nil, err
	}
	return &CreateDebtResult{Debts: views}, nil
}

// BranchDebtPairRequest describes an inter-branch obligation
type BranchDebtPairRequest struct {
	InitiatingBranchID  int64
	CounterpartBranchID int64
	CounterpartName     string
	Amount              decimal.Decimal
	MovementType        ledger.MovementType
	Notes               string
	ParcelID            *string
}

// CreateBranchDebtPair opens both halves of an inter-branch debt in one
// transaction, together with one cash entry per branch.
// The initiating branch's row is returned first.
func (s *DebtService) CreateBranchDebtPair(ctx context.Context, caller ledger.CallerContext, req BranchDebtPairRequest) (*CreateDebtResult, error) {
	if req.CounterpartBranchID == req.InitiatingBranchID {
		return nil, ledger.NewValidationError("a branch cannot hold a debt against itself")
	}

	initiating, err := s.resolveBranch(ctx, req.InitiatingBranchID, "initiating")
	if err != nil {
		return nil, err
	}
	counterpart, err := s.resolveBranch(ctx, req.CounterpartBranchID, "counterpart")
	if err != nil {
		return nil, err
	}

	a, b, err := ledger.NewBranchDebtPair(ledger.BranchPairInput{
		InitiatingBranch:   *initiating,
		CounterpartBranch:  *counterpart,
		Amount:             req.Amount,
		MovementType:       req.MovementType,
		Notes:              req.Notes,
		ParcelID:           req.ParcelID,
		InitiatorUserID:    caller.UserID,
		CounterpartDisplay: req.CounterpartName,
	})
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.DebtRepo().CreatePair(ctx, a, b); err != nil {
			return ledger.NewPersistenceError("failed to insert branch debt pair", err)
		}
		events := collectEvents(a, b)
		events = append(events,
			ledger.NewCashEntryRequestedEvent(a.CreationCashEntry()),
			ledger.NewCashEntryRequestedEvent(b.CreationCashEntry()),
		)
		if err := repos.Events().Record(ctx, events...); err != nil {
			return ledger.NewPersistenceError("failed to queue cash entries", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.storeError("failed to create branch debt pair", err)
	}

	s.logger.Info("branch debt pair created",
		zap.String("debt_id", a.ID.String()),
		zap.String("paired_debt_id", b.ID.String()),
		zap.Int64("initiating_branch_id", a.BranchID),
		zap.Int64("counterpart_branch_id", b.BranchID),
		zap.String("amount", a.Amount.String()),
	)

	views, err := s.enrich(ctx, []ledger.Debt{*a, *b})
	if err != nil {
		return nil, err
	}
	return &CreateDebtResult{Debts: views}, nil
}

func (s *DebtService) insertStandalone(ctx context.Context, debt *ledger.Debt) error {
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return s.writeCreated(ctx, repos, debt)
	})
	if err != nil {
		return s.storeError("failed to create debt", err)
	}
	return nil
}

func (s *DebtService) writeCreated(ctx context.Context, repos TransactionalRepositories, debt *ledger.Debt) error {
	if err := repos.DebtRepo().Create(ctx, debt); err != nil {
		return ledger.NewPersistenceError("failed to insert debt", err)
	}
	events := collectEvents(debt)
	events = append(events, ledger.NewCashEntryRequestedEvent(debt.CreationCashEntry()))
	if err := repos.Events().Record(ctx, events...); err != nil {
		return ledger.NewPersistenceError("failed to queue cash entry", err)
	}
	return nil
}

// Settle marks a debt and its pair as paid and queues the reversing cash
// entries. A debt that is no longer outstanding yields ErrAlreadySettled and
// nothing is written.
func (s *DebtService) Settle(ctx context.Context, debtID, settlerUserID uuid.UUID) error {
	if settlerUserID == uuid.Nil {
		return ledger.NewValidationError("settler user id is required")
	}

	var settled []*ledger.Debt
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rows, err := s.loadForWrite(ctx, repos.DebtRepo(), debtID, true)
		if err != nil {
			return err
		}

		at := s.now().UTC()
		for _, row := range rows {
			if err := row.MarkPaid(settlerUserID, at); err != nil {
				return err
			}
		}
		for _, row := range rows {
			ok, err := repos.DebtRepo().MarkPaidIfOutstanding(ctx, row)
			if err != nil {
				return ledger.NewPersistenceError("failed to mark debt paid", err)
			}
			if !ok {
				return ledger.ErrAlreadySettled
			}
		}

		events := collectEvents(rows...)
		for _, row := range rows {
			events = append(events, ledger.NewCashEntryRequestedEvent(row.SettlementCashEntry(settlerUserID, at)))
		}
		if err := repos.Events().Record(ctx, events...); err != nil {
			return ledger.NewPersistenceError("failed to queue settlement cash entries", err)
		}
		settled = rows
		return nil
	})
	if err != nil {
		s.recordConflict(ctx, "settle", err)
		return s.storeError("failed to settle debt", err)
	}

	for _, row := range settled {
		s.logger.Info("debt settled",
			zap.String("debt_id", row.ID.String()),
			zap.Int64("branch_id", row.BranchID),
			zap.String("settled_by", settlerUserID.String()),
			zap.String("amount", row.Amount.String()),
		)
	}
	return nil
}

// UpdateDebt changes amount and notes of an outstanding debt and mirrors the
// change onto its pair. Recorded cash entries are not adjusted.
func (s *DebtService) UpdateDebt(ctx context.Context, debtID uuid.UUID, req UpdateDebtRequest) (*DebtResponse, error) {
	var target *ledger.Debt
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rows, err := s.loadForWrite(ctx, repos.DebtRepo(), debtID, true)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := row.Amend(req.Amount, req.Notes); err != nil {
				return err
			}
		}
		for _, row := range rows {
			if err := repos.DebtRepo().SaveWithLock(ctx, row); err != nil {
				if errors.Is(err, shared.ErrConcurrencyConflict) {
					return err
				}
				return ledger.NewPersistenceError("failed to update debt", err)
			}
		}
		if err := repos.Events().Record(ctx, collectEvents(rows...)...); err != nil {
			return ledger.NewPersistenceError("failed to record debt amendment", err)
		}
		for _, row := range rows {
			if row.ID == debtID {
				target = row
			}
		}
		return nil
	})
	if err != nil {
		s.recordConflict(ctx, "update", err)
		return nil, s.storeError("failed to update debt", err)
	}

	views, err := s.enrich(ctx, []ledger.Debt{*target})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DeleteDebt removes a debt and its pair. Cash history is left untouched.
func (s *DebtService) DeleteDebt(ctx context.Context, debtID uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rows, err := s.loadForWrite(ctx, repos.DebtRepo(), debtID, false)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(rows))
		events := make([]shared.DomainEvent, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
			events = append(events, ledger.NewDebtDeletedEvent(row))
		}
		if _, err := repos.DebtRepo().DeleteByIDs(ctx, ids...); err != nil {
			return ledger.NewPersistenceError("failed to delete debt", err)
		}
		if err := repos.Events().Record(ctx, events...); err != nil {
			return ledger.NewPersistenceError("failed to record debt deletion", err)
		}
		return nil
	})
	if err != nil {
		return s.storeError("failed to delete debt", err)
	}
	s.logger.Info("debt deleted", zap.String("debt_id", debtID.String()))
	return nil
}

// GetDebt returns one enriched debt
func (s *DebtService) GetDebt(ctx context.Context, debtID uuid.UUID) (*DebtResponse, error) {
	debt, err := s.debtRepo.FindByID(ctx, debtID)
	if err != nil {
		return nil, s.storeError("failed to load debt", err)
	}
	views, err := s.enrich(ctx, []ledger.Debt{*debt})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListDebts returns one page of enriched debts
func (s *DebtService) ListDebts(ctx context.Context, filter DebtListFilter) (*DebtPage, error) {
	f := filter.toDomain()
	debts, total, err := s.debtRepo.FindAll(ctx, f)
	if err != nil {
		return nil, ledger.NewPersistenceError("failed to list debts", err)
	}
	views, err := s.enrich(ctx, debts)
	if err != nil {
		return nil, err
	}
	return &DebtPage{
		Items:    views,
		Total:    total,
		Page:     f.Page,
		PageSize: f.PageSize,
	}, nil
}

// loadForWrite loads a debt and, for pairs, its counterpart. Rows are locked
// in id order so concurrent writers on the same pair cannot deadlock.
// When requirePair is set a dangling pair reference is reported as ErrPairMissing.
func (s *DebtService) loadForWrite(ctx context.Context, repo ledger.DebtRepository, debtID uuid.UUID, requirePair bool) ([]*ledger.Debt, error) {
	head, err := repo.FindByID(ctx, debtID)
	if err != nil {
		return nil, err
	}

	ids := []uuid.UUID{head.ID}
	if head.PairedDebtID != nil {
		ids = append(ids, *head.PairedDebtID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	rows := make([]*ledger.Debt, 0, len(ids))
	for _, id := range ids {
		row, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) && id != debtID {
				if requirePair {
					s.logger.Error("paired debt missing",
						zap.String("debt_id", debtID.String()),
						zap.String("paired_debt_id", id.String()),
					)
					return nil, ledger.ErrPairMissing
				}
				continue
			}
			return nil, err
		}
		rows = append(rows, row)
	}

	if requirePair && len(rows) == 2 {
		for _, row := range rows {
			if row.PairedDebtID == nil {
				return nil, ledger.ErrPairMissing
			}
		}
	}
	return rows, nil
}

func (s *DebtService) resolveBranch(ctx context.Context, id int64, role string) (*ledger.Branch, error) {
	b, err := s.branches.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ledger.NewValidationError(fmt.Sprintf("%s branch %d does not exist", role, id))
		}
		return nil, ledger.NewPersistenceError("failed to resolve branch", err)
	}
	if !b.IsActive {
		return nil, ledger.NewValidationError(fmt.Sprintf("%s branch %d is inactive", role, id))
	}
	return b, nil
}

// storeError passes domain errors through and wraps everything else
func (s *DebtService) storeError(message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		var de *shared.DomainError
		if errors.As(err, &de) && de != shared.ErrNotFound {
			return err
		}
		return ledger.ErrDebtNotFound
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	s.logger.Error(message, zap.Error(err))
	return ledger.NewPersistenceError(message, err)
}

func (s *DebtService) recordConflict(ctx context.Context, operation string, err error) {
	if ledger.IsConflict(err) {
		s.metrics.RecordConflict(ctx, operation)
	}
}

func collectEvents(debts ...*ledger.Debt) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, d := range debts {
		events = append(events, d.GetDomainEvents()...)
		d.ClearDomainEvents()
	}
	return events
}
