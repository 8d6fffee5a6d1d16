package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Notes length bounds, in characters
const (
	MinNotesLength = 3
	MaxNotesLength = 255
)

// MaxParcelIDLength matches the width of the parcel_id column
const MaxParcelIDLength = 64

// MaxAmount is the largest principal a single debt may carry
var MaxAmount = decimal.NewFromInt(1_000_000_000_000)

// AggregateTypeDebt is the aggregate type recorded on debt events
const AggregateTypeDebt = "Debt"

// Debt is one row of the debt ledger, owned by a single branch.
// Inter-branch obligations are represented by two debts that point at each other.
type Debt struct {
	shared.BaseAggregateRoot
	DebtorType         DebtorType
	DebtorID           string
	DebtorName         string
	BranchID           int64
	Amount             decimal.Decimal
	MovementType       MovementType
	Notes              string
	Status             DebtStatus
	ParcelID           *string
	PairedDebtID       *uuid.UUID
	InitiatingBranchID int64
	InitiatorUserID    uuid.UUID
	PaidAt             *time.Time
	SettledByUserID    *uuid.UUID
}

// NewDebtInput carries the fields needed to open a single driver or customer debt
type NewDebtInput struct {
	DebtorType         DebtorType
	DebtorID           string
	DebtorName         string
	Amount             decimal.Decimal
	MovementType       MovementType
	Notes              string
	ParcelID           *string
	InitiatingBranchID int64
	InitiatorUserID    uuid.UUID
}

// NewDebt creates a standalone driver or customer debt
func NewDebt(in NewDebtInput) (*Debt, error) {
	if in.DebtorType == DebtorTypeBranch {
		return nil, NewValidationError("branch debts must be created as a pair")
	}
	if !in.DebtorType.IsValid() {
		return nil, NewValidationError(fmt.Sprintf("invalid debtor type %q", in.DebtorType))
	}
	debtorID := strings.TrimSpace(in.DebtorID)
	if debtorID == "" {
		return nil, NewValidationError("debtor id is required")
	}
	name := strings.TrimSpace(in.DebtorName)
	if name == "" {
		return nil, NewValidationError("debtor name is required")
	}
	if in.InitiatingBranchID <= 0 {
		return nil, NewValidationError("initiating branch is required")
	}
	notes, err := validateCommon(in.Amount, in.MovementType, in.Notes, in.InitiatorUserID)
	if err != nil {
		return nil, err
	}
	parcelID, err := normalizeParcelID(in.ParcelID)
	if err != nil {
		return nil, err
	}

	d := &Debt{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		DebtorType:         in.DebtorType,
		DebtorID:           debtorID,
		DebtorName:         name,
		BranchID:           in.InitiatingBranchID,
		Amount:             in.Amount,
		MovementType:       in.MovementType,
		Notes:              notes,
		Status:             DebtStatusOutstanding,
		ParcelID:           parcelID,
		InitiatingBranchID: in.InitiatingBranchID,
		InitiatorUserID:    in.InitiatorUserID,
	}
	d.AddDomainEvent(NewDebtCreatedEvent(d))
	return d, nil
}

// BranchPairInput carries the fields needed to open an inter-branch obligation
type BranchPairInput struct {
	InitiatingBranch   Branch
	CounterpartBranch  Branch
	Amount             decimal.Decimal
	MovementType       MovementType
	Notes              string
	ParcelID           *string
	InitiatorUserID    uuid.UUID
	CounterpartDisplay string
}

// NewBranchDebtPair creates both halves of an inter-branch debt.
// The first half belongs to the initiating branch and carries the requested
// movement; the second belongs to the counterpart with the movement flipped.
func NewBranchDebtPair(in BranchPairInput) (*Debt, *Debt, error) {
	if in.InitiatingBranch.ID <= 0 {
		return nil, nil, NewValidationError("initiating branch is required")
	}
	if in.CounterpartBranch.ID <= 0 {
		return nil, nil, NewValidationError("counterpart branch is required")
	}
	if in.InitiatingBranch.ID == in.CounterpartBranch.ID {
		return nil, nil, NewValidationError("a branch cannot hold a debt against itself")
	}
	notes, err := validateCommon(in.Amount, in.MovementType, in.Notes, in.InitiatorUserID)
	if err != nil {
		return nil, nil, err
	}

	counterpartName := strings.TrimSpace(in.CounterpartDisplay)
	if counterpartName == "" {
		counterpartName = in.CounterpartBranch.Name
	}
	parcelID, err := normalizeParcelID(in.ParcelID)
	if err != nil {
		return nil, nil, err
	}

	a := &Debt{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		DebtorType:         DebtorTypeBranch,
		DebtorID:           FormatBranchID(in.CounterpartBranch.ID),
		DebtorName:         counterpartName,
		BranchID:           in.InitiatingBranch.ID,
		Amount:             in.Amount,
		MovementType:       in.MovementType,
		Notes:              notes,
		Status:             DebtStatusOutstanding,
		ParcelID:           parcelID,
		InitiatingBranchID: in.InitiatingBranch.ID,
		InitiatorUserID:    in.InitiatorUserID,
	}
	b := &Debt{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		DebtorType:         DebtorTypeBranch,
		DebtorID:           FormatBranchID(in.InitiatingBranch.ID),
		DebtorName:         in.InitiatingBranch.Name,
		BranchID:           in.CounterpartBranch.ID,
		Amount:             in.Amount,
		MovementType:       in.MovementType.Flip(),
		Notes:              notes,
		Status:             DebtStatusOutstanding,
		ParcelID:           parcelID,
		InitiatingBranchID: in.InitiatingBranch.ID,
		InitiatorUserID:    in.InitiatorUserID,
	}
	b.CreatedAt = a.CreatedAt
	b.UpdatedAt = a.UpdatedAt

	aID, bID := a.ID, b.ID
	a.PairedDebtID = &bID
	b.PairedDebtID = &aID

	a.AddDomainEvent(NewDebtCreatedEvent(a))
	b.AddDomainEvent(NewDebtCreatedEvent(b))
	return a, b, nil
}

// IsOutstanding returns true while the debt can still be edited or settled
func (d *Debt) IsOutstanding() bool {
	return d.Status == DebtStatusOutstanding
}

// IsPaired returns true if the debt has a counterpart row
func (d *Debt) IsPaired() bool {
	return d.PairedDebtID != nil
}

// CounterpartBranchID returns the branch named by a branch debt's DebtorID
func (d *Debt) CounterpartBranchID() (int64, bool) {
	if d.DebtorType != DebtorTypeBranch {
		return 0, false
	}
	id, err := ParseBranchID(d.DebtorID)
	if err != nil {
		return 0, false
	}
	return id, true
}

// MarkPaid settles the debt. Only outstanding debts can be settled.
func (d *Debt) MarkPaid(settlerUserID uuid.UUID, at time.Time) error {
	if settlerUserID == uuid.Nil {
		return NewValidationError("settler user id is required")
	}
	if !d.IsOutstanding() {
		return ErrAlreadySettled
	}
	at = shared.Timestamp(at)
	d.Status = DebtStatusPaid
	d.PaidAt = &at
	d.Touch(at)
	d.SettledByUserID = &settlerUserID
	d.IncrementVersion()
	d.AddDomainEvent(NewDebtSettledEvent(d))
	return nil
}

// Amend changes amount and notes on an outstanding debt
func (d *Debt) Amend(amount decimal.Decimal, notes string) error {
	if !d.IsOutstanding() {
		return ErrNotOutstanding
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	cleaned, err := ValidateNotes(notes)
	if err != nil {
		return err
	}
	old := d.Amount
	d.Amount = amount
	d.Notes = cleaned
	d.Touch(time.Now())
	d.IncrementVersion()
	d.AddDomainEvent(NewDebtAmendedEvent(d, old))
	return nil
}

// CreationCashEntry returns the cash movement booked when this row was opened
func (d *Debt) CreationCashEntry() CashEntry {
	return CashEntry{
		DebtID:          d.ID,
		Reason:          CashReasonDebtCreated,
		TransactionType: d.MovementType.CreationCashType(),
		Amount:          d.Amount,
		BranchID:        d.BranchID,
		AddedByUserID:   d.InitiatorUserID,
		Description:     d.cashDescription("Debt opened"),
		TransactionDate: d.CreatedAt,
	}
}

// SettlementCashEntry returns the reversing cash movement booked on settlement
func (d *Debt) SettlementCashEntry(settlerUserID uuid.UUID, at time.Time) CashEntry {
	return CashEntry{
		DebtID:          d.ID,
		Reason:          CashReasonDebtSettled,
		TransactionType: d.MovementType.SettlementCashType(),
		Amount:          d.Amount,
		BranchID:        d.BranchID,
		AddedByUserID:   settlerUserID,
		Description:     d.cashDescription("Debt settled"),
		TransactionDate: at,
	}
}

func (d *Debt) cashDescription(prefix string) string {
	var party string
	switch d.DebtorType {
	case DebtorTypeBranch:
		party = "branch " + d.DebtorName
	case DebtorTypeDriver:
		party = "driver " + d.DebtorName
	default:
		party = "customer " + d.DebtorName
	}
	desc := fmt.Sprintf("%s with %s: %s", prefix, party, d.Notes)
	if d.ParcelID != nil {
		desc += " (parcel " + *d.ParcelID + ")"
	}
	if utf8.RuneCountInString(desc) > 500 {
		desc = string([]rune(desc)[:500])
	}
	return desc
}

// ValidateAmount checks that a principal amount is positive and within bounds
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return NewValidationError("amount must be greater than zero")
	}
	if amount.GreaterThan(MaxAmount) {
		return NewValidationError("amount exceeds the allowed maximum")
	}
	if amount.Exponent() < -4 {
		return NewValidationError("amount supports at most 4 decimal places")
	}
	return nil
}

// ValidateNotes trims notes and checks their length
func ValidateNotes(notes string) (string, error) {
	cleaned := strings.TrimSpace(notes)
	n := utf8.RuneCountInString(cleaned)
	if n < MinNotesLength || n > MaxNotesLength {
		return "", NewValidationError(fmt.Sprintf("notes must be between %d and %d characters", MinNotesLength, MaxNotesLength))
	}
	return cleaned, nil
}

func validateCommon(amount decimal.Decimal, movement MovementType, notes string, initiator uuid.UUID) (string, error) {
	if err := ValidateAmount(amount); err != nil {
		return "", err
	}
	if !movement.IsValid() {
		return "", NewValidationError(fmt.Sprintf("invalid movement type %q", movement))
	}
	if initiator == uuid.Nil {
		return "", NewValidationError("initiator user id is required")
	}
	return ValidateNotes(notes)
}

func normalizeParcelID(parcelID *string) (*string, error) {
	if parcelID == nil {
		return nil, nil
	}
	p := strings.TrimSpace(*parcelID)
	if p == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(p) > MaxParcelIDLength {
		return nil, NewValidationError(fmt.Sprintf("parcel id must be at most %d characters", MaxParcelIDLength))
	}
	return &p, nil
}

// FormatBranchID renders a branch id the way branch debts store it in DebtorID
func FormatBranchID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// ParseBranchID parses a branch id stored in DebtorID
func ParseBranchID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, NewValidationError(fmt.Sprintf("invalid branch id %q", s))
	}
	return id, nil
}
