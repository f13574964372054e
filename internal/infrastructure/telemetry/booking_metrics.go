package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of booking metrics
const MeterName = "freight-backend/booking"

// Metric attribute keys
var (
	AttrKeyPaymentType = attribute.Key("payment_type")
	AttrKeyRateSource  = attribute.Key("rate_source")
	AttrKeyFromStatus  = attribute.Key("from_status")
	AttrKeyToStatus    = attribute.Key("to_status")
	AttrKeyWorkflow    = attribute.Key("workflow_context")
	AttrKeyResolution  = attribute.Key("resolution")
	AttrKeyErrorCode   = attribute.Key("error_code")
	AttrKeyOperation   = attribute.Key("operation")
)

// BookingMetrics holds the booking pipeline instruments. Org ids are left off
// the attributes to keep cardinality bounded.
type BookingMetrics struct {
	created         metric.Int64Counter
	transitions     metric.Int64Counter
	amount          metric.Float64Histogram
	rateResolutions metric.Int64Counter
	rejections      metric.Int64Counter
	outboxRelayed   metric.Int64Counter
}

// NewBookingMetrics creates the instruments on meter
func NewBookingMetrics(meter metric.Meter) (*BookingMetrics, error) {
	m := &BookingMetrics{}
	var err error

	if m.created, err = meter.Int64Counter("freight.bookings.created",
		metric.WithDescription("Bookings created"),
		metric.WithUnit("{booking}"),
	); err != nil {
		return nil, err
	}
	if m.transitions, err = meter.Int64Counter("freight.bookings.status_transitions",
		metric.WithDescription("Applied booking status transitions"),
		metric.WithUnit("{transition}"),
	); err != nil {
		return nil, err
	}
	if m.amount, err = meter.Float64Histogram("freight.bookings.total_amount",
		metric.WithDescription("Booking total amount at creation"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 5000, 10000, 50000, 100000),
	); err != nil {
		return nil, err
	}
	if m.rateResolutions, err = meter.Int64Counter("freight.rates.resolutions",
		metric.WithDescription("Rate lookups by resolution kind"),
	); err != nil {
		return nil, err
	}
	if m.rejections, err = meter.Int64Counter("freight.requests.rejected",
		metric.WithDescription("Operations rejected with a domain error code"),
	); err != nil {
		return nil, err
	}
	if m.outboxRelayed, err = meter.Int64Counter("freight.outbox.relayed",
		metric.WithDescription("Outbox events delivered to subscribers"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// BookingCreated records a new booking and its total
func (m *BookingMetrics) BookingCreated(ctx context.Context, paymentType, rateSource string, total decimal.Decimal) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(AttrKeyPaymentType.String(paymentType), AttrKeyRateSource.String(rateSource))
	m.created.Add(ctx, 1, attrs)
	m.amount.Record(ctx, total.InexactFloat64(), attrs)
}

// StatusChanged records one applied transition
func (m *BookingMetrics) StatusChanged(ctx context.Context, from, to, workflow string) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		AttrKeyFromStatus.String(from),
		AttrKeyToStatus.String(to),
		AttrKeyWorkflow.String(workflow),
	))
}

// RateResolved records the outcome kind of a rate lookup
func (m *BookingMetrics) RateResolved(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.rateResolutions.Add(ctx, 1, metric.WithAttributes(AttrKeyResolution.String(kind)))
}

// Rejected records an operation that failed with a domain error code
func (m *BookingMetrics) Rejected(ctx context.Context, operation, code string) {
	if m == nil {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(AttrKeyOperation.String(operation), AttrKeyErrorCode.String(code)))
}

// OutboxRelayed records one delivered outbox event
func (m *BookingMetrics) OutboxRelayed(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.outboxRelayed.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}
