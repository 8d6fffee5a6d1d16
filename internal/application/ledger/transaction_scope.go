package ledger

import (
	"context"
	"sync"

	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/domain/shared"
)

// TransactionScope runs ledger writes atomically.
// Everything done through the repositories handed to fn commits or rolls back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the stores that share one database transaction.
//
//   - DebtRepo: debt rows, including both halves of a branch pair.
//   - Events: the outbox. Events recorded here are delivered only if the
//     transaction commits, which is how cash entries follow debt writes.
type TransactionalRepositories interface {
	DebtRepo() ledger.DebtRepository
	Events() EventRecorder
}

// EventRecorder appends domain events to the outbox of the current transaction
type EventRecorder interface {
	Record(ctx context.Context, events ...shared.DomainEvent) error
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// Recorded events are kept in memory. Intended for tests.
type NoOpTransactionScope struct {
	debtRepo ledger.DebtRepository
	recorder *MemoryEventRecorder
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(debtRepo ledger.DebtRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		debtRepo: debtRepo,
		recorder: &MemoryEventRecorder{},
	}
}

// Execute runs fn without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// DebtRepo returns the debt repository
func (s *NoOpTransactionScope) DebtRepo() ledger.DebtRepository {
	return s.debtRepo
}

// Events returns the in-memory recorder
func (s *NoOpTransactionScope) Events() EventRecorder {
	return s.recorder
}

// Recorded returns every event recorded so far
func (s *NoOpTransactionScope) Recorded() []shared.DomainEvent {
	return s.recorder.Events()
}

// MemoryEventRecorder keeps recorded events in memory
type MemoryEventRecorder struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

// Record appends events
func (r *MemoryEventRecorder) Record(_ context.Context, events ...shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns a copy of the recorded events
func (r *MemoryEventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]shared.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
