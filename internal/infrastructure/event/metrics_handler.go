package event

import (
	"context"

	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/infrastructure/telemetry"
)

// BookingMetricsHandler feeds booking counters from relayed events, so only
// committed bookings and transitions are counted
type BookingMetricsHandler struct {
	metrics *telemetry.BookingMetrics
}

// NewBookingMetricsHandler creates a new BookingMetricsHandler
func NewBookingMetricsHandler(metrics *telemetry.BookingMetrics) *BookingMetricsHandler {
	return &BookingMetricsHandler{metrics: metrics}
}

// Name identifies the handler in idempotency keys
func (h *BookingMetricsHandler) Name() string {
	return "booking-metrics"
}

// EventTypes returns the booking events the handler records
func (h *BookingMetricsHandler) EventTypes() []string {
	return []string{booking.EventTypeBookingCreated, booking.EventTypeBookingStatusChanged}
}

// Handle records one event
func (h *BookingMetricsHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	switch e := ev.(type) {
	case *booking.BookingCreatedEvent:
		h.metrics.BookingCreated(ctx, e.PaymentType.String(), e.RateSource.String(), e.TotalAmount)
	case *booking.BookingStatusChangedEvent:
		h.metrics.StatusChanged(ctx, e.OldStatus.String(), e.NewStatus.String(), e.WorkflowContext.String())
	}
	return nil
}

// Ensure BookingMetricsHandler implements EventHandler
var _ shared.EventHandler = (*BookingMetricsHandler)(nil)
