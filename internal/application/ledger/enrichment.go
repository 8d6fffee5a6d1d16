package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"go.uber.org/zap"
)

// enrich resolves display names for a batch of debts. It only reads, and a
// failed lookup degrades to fallback names rather than failing the listing.
func (s *DebtService) enrich(ctx context.Context, debts []ledger.Debt) ([]DebtResponse, error) {
	if len(debts) == 0 {
		return []DebtResponse{}, nil
	}

	pairIDs := make([]uuid.UUID, 0)
	inBatch := make(map[uuid.UUID]*ledger.Debt, len(debts))
	for i := range debts {
		inBatch[debts[i].ID] = &debts[i]
	}
	for i := range debts {
		d := &debts[i]
		if d.DebtorType != ledger.DebtorTypeBranch || d.PairedDebtID == nil {
			continue
		}
		if _, ok := inBatch[*d.PairedDebtID]; !ok {
			pairIDs = append(pairIDs, *d.PairedDebtID)
		}
	}

	pairs := make(map[uuid.UUID]*ledger.Debt, len(pairIDs))
	for id, d := range inBatch {
		pairs[id] = d
	}
	if len(pairIDs) > 0 {
		found, err := s.debtRepo.FindByIDs(ctx, pairIDs)
		if err != nil {
			s.logger.Warn("failed to load paired debts for display", zap.Error(err))
		}
		for i := range found {
			pairs[found[i].ID] = &found[i]
		}
	}

	branchIDs := make(map[int64]struct{})
	for i := range debts {
		d := &debts[i]
		branchIDs[d.BranchID] = struct{}{}
		branchIDs[d.InitiatingBranchID] = struct{}{}
		if d.PairedDebtID != nil {
			if p, ok := pairs[*d.PairedDebtID]; ok {
				branchIDs[p.BranchID] = struct{}{}
			}
		}
	}
	ids := make([]int64, 0, len(branchIDs))
	for id := range branchIDs {
		ids = append(ids, id)
	}
	names, err := s.branches.ResolveMany(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve branch names for display", zap.Error(err))
		names = map[int64]*ledger.Branch{}
	}

	out := make([]DebtResponse, 0, len(debts))
	for i := range debts {
		d := &debts[i]
		out = append(out, toDebtResponse(d, counterpartName(d, pairs, names), ledger.BranchName(names[d.BranchID], d.BranchID)))
	}
	return out, nil
}

// counterpartName picks the name shown for the other party of a debt.
// Branch rows use the branch owning the paired row, falling back to the
// initiating branch when the pair cannot be found.
func counterpartName(d *ledger.Debt, pairs map[uuid.UUID]*ledger.Debt, names map[int64]*ledger.Branch) string {
	if d.DebtorType != ledger.DebtorTypeBranch {
		return d.DebtorName
	}
	if d.PairedDebtID != nil {
		if p, ok := pairs[*d.PairedDebtID]; ok {
			return ledger.BranchName(names[p.BranchID], p.BranchID)
		}
	}
	return ledger.BranchName(names[d.InitiatingBranchID], d.InitiatingBranchID)
}

func toDebtResponse(d *ledger.Debt, counterpart, branchName string) DebtResponse {
	label, text := ledger.PresentMovement(d)
	return DebtResponse{
		ID:                 d.ID,
		DebtorType:         string(d.DebtorType),
		DebtorID:           d.DebtorID,
		DebtorName:         d.DebtorName,
		CounterpartName:    counterpart,
		BranchID:           d.BranchID,
		BranchName:         branchName,
		Amount:             d.Amount,
		MovementType:       string(d.MovementType),
		MovementLabel:      string(label),
		MovementLabelText:  text,
		Notes:              d.Notes,
		Status:             string(d.Status),
		ParcelID:           d.ParcelID,
		PairedDebtID:       d.PairedDebtID,
		InitiatingBranchID: d.InitiatingBranchID,
		InitiatorUserID:    d.InitiatorUserID,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		PaidAt:             d.PaidAt,
		SettledByUserID:    d.SettledByUserID,
		Version:            d.Version,
	}
}
