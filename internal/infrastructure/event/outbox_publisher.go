package event

import (
	"context"
	"fmt"

	"github.com/freightcore/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events into outbox_events inside the
// caller's transaction, so they commit or roll back with the aggregate
type OutboxPublisher struct {
	serializer *EventSerializer
	maxRetries int
}

// NewOutboxPublisher creates a new outbox publisher
func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// WithMaxRetries sets the delivery attempts of new entries before they go DEAD
func (p *OutboxPublisher) WithMaxRetries(n int) *OutboxPublisher {
	p.maxRetries = n
	return p
}

// PublishWithTx serializes the events and inserts them on tx
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, ev := range events {
		if !p.serializer.IsRegistered(ev.EventType()) {
			return fmt.Errorf("event type %s is not registered", ev.EventType())
		}
		payload, err := p.serializer.Serialize(ev)
		if err != nil {
			return err
		}
		entry := shared.NewOutboxEntry(ev, payload)
		if p.maxRetries > 0 {
			entry.MaxRetries = p.maxRetries
		}
		entries = append(entries, entry)
	}
	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver; tx must be a *gorm.DB
func (p *OutboxPublisher) SaveEvents(ctx context.Context, tx any, events ...shared.DomainEvent) error {
	db, ok := tx.(*gorm.DB)
	if !ok {
		return fmt.Errorf("outbox transaction must be a *gorm.DB, got %T", tx)
	}
	return p.PublishWithTx(ctx, db, events...)
}

// Ensure OutboxPublisher implements OutboxEventSaver
var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
