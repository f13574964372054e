package event

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/identity"
	"github.com/freightcore/backend/internal/domain/rate"
	"github.com/freightcore/backend/internal/domain/shared"
)

// EventSerializer converts domain events to outbox payloads and back.
// Every event type the relay may read must be registered.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]func() shared.DomainEvent
}

// NewEventSerializer creates an empty serializer
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]func() shared.DomainEvent)}
}

// NewDomainEventSerializer returns a serializer knowing every event this
// service emits
func NewDomainEventSerializer() *EventSerializer {
	s := NewEventSerializer()
	s.Register(booking.EventTypeBookingCreated, func() shared.DomainEvent { return &booking.BookingCreatedEvent{} })
	s.Register(booking.EventTypeBookingStatusChanged, func() shared.DomainEvent { return &booking.BookingStatusChangedEvent{} })
	s.Register(booking.EventTypeBookingArticleAdded, func() shared.DomainEvent { return &booking.BookingArticleAddedEvent{} })
	s.Register(rate.EventTypeContractActivated, func() shared.DomainEvent { return &rate.ContractActivatedEvent{} })
	s.Register(rate.EventTypeContractTerminated, func() shared.DomainEvent { return &rate.ContractTerminatedEvent{} })
	s.Register(identity.EventTypeUserCreated, func() shared.DomainEvent { return &identity.UserCreatedEvent{} })
	s.Register(identity.EventTypeUserRoleChanged, func() shared.DomainEvent { return &identity.UserRoleChangedEvent{} })
	return s
}

// Register maps an event type to a constructor of an empty pointer value
func (s *EventSerializer) Register(eventType string, factory func() shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = factory
}

// Serialize encodes an event as JSON
func (s *EventSerializer) Serialize(ev shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", ev.EventType(), err)
	}
	return payload, nil
}

// Deserialize decodes a payload into the registered type
func (s *EventSerializer) Deserialize(eventType string, payload []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	ev := factory()
	if err := json.Unmarshal(payload, ev); err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", eventType, err)
	}
	return ev, nil
}

// IsRegistered checks if an event type is registered
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}

// RegisteredTypes returns the registered event types, sorted
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]string, 0, len(s.factories))
	for t := range s.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
