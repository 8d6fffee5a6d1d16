package event

import (
	"github.com/parcelhub/backend/internal/domain/ledger"
)

// RegisterLedgerEvents registers every ledger event so the outbox processor
// can rebuild them from stored payloads
func RegisterLedgerEvents(serializer *EventSerializer) {
	serializer.Register(
		&ledger.DebtCreatedEvent{},
		&ledger.DebtSettledEvent{},
		&ledger.DebtAmendedEvent{},
		&ledger.DebtDeletedEvent{},
		&ledger.CashEntryRequestedEvent{},
	)
}

// NewLedgerSerializer returns a serializer with the ledger events registered
func NewLedgerSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterLedgerEvents(s)
	return s
}
