package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/parcelhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventTypeDebtCreated        = "DebtCreated"
	EventTypeDebtSettled        = "DebtSettled"
	EventTypeDebtAmended        = "DebtAmended"
	EventTypeDebtDeleted        = "DebtDeleted"
	EventTypeCashEntryRequested = "CashEntryRequested"
)

// DebtCreatedEvent is raised for every debt row created, once per pair half
type DebtCreatedEvent struct {
	shared.BaseDomainEvent
	DebtID       uuid.UUID       `json:"debt_id"`
	DebtorType   DebtorType      `json:"debtor_type"`
	BranchID     int64           `json:"branch_id"`
	MovementType MovementType    `json:"movement_type"`
	Amount       decimal.Decimal `json:"amount"`
	PairedDebtID *uuid.UUID      `json:"paired_debt_id,omitempty"`
}

// EventType returns the event type name
func (e *DebtCreatedEvent) EventType() string {
	return EventTypeDebtCreated
}

// NewDebtCreatedEvent creates a new DebtCreatedEvent
func NewDebtCreatedEvent(d *Debt) *DebtCreatedEvent {
	return &DebtCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtCreated, AggregateTypeDebt, d.ID),
		DebtID:          d.ID,
		DebtorType:      d.DebtorType,
		BranchID:        d.BranchID,
		MovementType:    d.MovementType,
		Amount:          d.Amount,
		PairedDebtID:    d.PairedDebtID,
	}
}

// DebtSettledEvent is raised when a debt row is marked paid
type DebtSettledEvent struct {
	shared.BaseDomainEvent
	DebtID          uuid.UUID       `json:"debt_id"`
	DebtorType      DebtorType      `json:"debtor_type"`
	BranchID        int64           `json:"branch_id"`
	Amount          decimal.Decimal `json:"amount"`
	SettledByUserID uuid.UUID       `json:"settled_by_user_id"`
	PaidAt          time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *DebtSettledEvent) EventType() string {
	return EventTypeDebtSettled
}

// NewDebtSettledEvent creates a new DebtSettledEvent
func NewDebtSettledEvent(d *Debt) *DebtSettledEvent {
	evt := &DebtSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtSettled, AggregateTypeDebt, d.ID),
		DebtID:          d.ID,
		DebtorType:      d.DebtorType,
		BranchID:        d.BranchID,
		Amount:          d.Amount,
	}
	if d.SettledByUserID != nil {
		evt.SettledByUserID = *d.SettledByUserID
	}
	if d.PaidAt != nil {
		evt.PaidAt = *d.PaidAt
	}
	return evt
}

// DebtAmendedEvent is raised when amount or notes change
type DebtAmendedEvent struct {
	shared.BaseDomainEvent
	DebtID         uuid.UUID       `json:"debt_id"`
	PreviousAmount decimal.Decimal `json:"previous_amount"`
	Amount         decimal.Decimal `json:"amount"`
	Notes          string          `json:"notes"`
}

// EventType returns the event type name
func (e *DebtAmendedEvent) EventType() string {
	return EventTypeDebtAmended
}

// NewDebtAmendedEvent creates a new DebtAmendedEvent
func NewDebtAmendedEvent(d *Debt, previous decimal.Decimal) *DebtAmendedEvent {
	return &DebtAmendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtAmended, AggregateTypeDebt, d.ID),
		DebtID:          d.ID,
		PreviousAmount:  previous,
		Amount:          d.Amount,
		Notes:           d.Notes,
	}
}

// DebtDeletedEvent is raised when a debt row is removed
type DebtDeletedEvent struct {
	shared.BaseDomainEvent
	DebtID     uuid.UUID       `json:"debt_id"`
	BranchID   int64           `json:"branch_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     DebtStatus      `json:"status"`
	DeletedAt  time.Time       `json:"deleted_at"`
	DebtorType DebtorType      `json:"debtor_type"`
}

// EventType returns the event type name
func (e *DebtDeletedEvent) EventType() string {
	return EventTypeDebtDeleted
}

// NewDebtDeletedEvent creates a new DebtDeletedEvent
func NewDebtDeletedEvent(d *Debt) *DebtDeletedEvent {
	return &DebtDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDebtDeleted, AggregateTypeDebt, d.ID),
		DebtID:          d.ID,
		BranchID:        d.BranchID,
		Amount:          d.Amount,
		Status:          d.Status,
		DeletedAt:       time.Now(),
		DebtorType:      d.DebtorType,
	}
}

// CashEntryRequestedEvent asks the cash ledger to book an entry.
// It travels through the outbox so it is delivered even if the cash ledger is
// unavailable when the debt transaction commits.
type CashEntryRequestedEvent struct {
	shared.BaseDomainEvent
	Entry CashEntry `json:"entry"`
}

// EventType returns the event type name
func (e *CashEntryRequestedEvent) EventType() string {
	return EventTypeCashEntryRequested
}

// NewCashEntryRequestedEvent creates a new CashEntryRequestedEvent
func NewCashEntryRequestedEvent(entry CashEntry) *CashEntryRequestedEvent {
	return &CashEntryRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashEntryRequested, AggregateTypeDebt, entry.DebtID),
		Entry:           entry,
	}
}
