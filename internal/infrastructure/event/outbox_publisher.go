package event

import (
	"context"
	"fmt"

	"github.com/parcelhub/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events to the outbox inside the caller's transaction
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

// NewOutboxPublisher creates a new outbox publisher. maxRetries <= 0 keeps the
// entry default.
func NewOutboxPublisher(serializer *EventSerializer, maxRetries int) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: serializer,
		maxRetries: maxRetries,
	}
}

// PublishWithTx serializes events and stores them using tx
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}
		entry := shared.NewOutboxEntry(event, payload)
		if p.maxRetries > 0 {
			entry.MaxRetries = p.maxRetries
		}
		entries = append(entries, entry)
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}
	return p.PublishWithTx(ctx, tx, events...)
}

// ForTx binds the publisher to one transaction
func (p *OutboxPublisher) ForTx(tx *gorm.DB) *TxOutbox {
	return &TxOutbox{publisher: p, tx: tx}
}

// TxOutbox records events into a single transaction's outbox
type TxOutbox struct {
	publisher *OutboxPublisher
	tx        *gorm.DB
}

// Record appends events to the outbox
func (o *TxOutbox) Record(ctx context.Context, events ...shared.DomainEvent) error {
	return o.publisher.PublishWithTx(ctx, o.tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
