package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	bookingapp "github.com/freightcore/backend/internal/application/booking"
	"github.com/freightcore/backend/internal/domain/booking"
	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/freightcore/backend/internal/domain/tenancy"
	"github.com/freightcore/backend/internal/infrastructure/event"
	"github.com/freightcore/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestBookingLifecycle_Postgres(t *testing.T) {
	s := NewStack(t)
	tn := s.SeedTenant(t, "Konkan Freight", "KFL")
	ctx := context.Background()

	created, err := s.Bookings.Create(ctx, tn.Operator, tn.BookingInput())
	require.NoError(t, err)

	wantPrefix := fmt.Sprintf("MUM-%02d-", time.Now().UTC().Year()%100)
	assert.Equal(t, wantPrefix+"001", created.LRNumber)
	assert.Equal(t, "contract", created.RateSource)
	require.Len(t, created.Articles, 1)
	assert.True(t, created.Articles[0].FreightAmount.Equal(decimal.NewFromInt(1300)))

	observed := booking.StatusBooked
	for _, step := range []struct {
		to  booking.Status
		ctx booking.WorkflowContext
	}{
		{booking.StatusLoaded, booking.ContextLoading},
		{booking.StatusInTransit, booking.ContextGeneral},
		{booking.StatusUnloaded, booking.ContextUnloading},
		{booking.StatusDelivered, booking.ContextGeneral},
	} {
		_, err := s.Bookings.UpdateStatus(ctx, tn.Operator, created.ID, bookingapp.UpdateStatusInput{
			Status:          step.to,
			WorkflowContext: step.ctx,
			ExpectedStatus:  observed,
		})
		require.NoError(t, err, "to %s", step.to)
		observed = step.to
	}

	got, err := s.Bookings.GetByLRNumber(ctx, tn.Operator, created.LRNumber)
	require.NoError(t, err)
	assert.Equal(t, "delivered", got.Status)
	assert.Equal(t, 5, got.Version)

	history, err := s.Bookings.History(ctx, tn.Operator, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "booked", history[0].FromStatus)
	assert.Equal(t, "delivered", history[3].ToStatus)
}

func TestBookingCreate_ConcurrentLRNumbersAreUnique(t *testing.T) {
	s := NewStack(t)
	tn := s.SeedTenant(t, "Konkan Freight", "KFL")
	ctx := context.Background()

	const n = 100
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []string
		errs    []error
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := s.Bookings.Create(ctx, tn.Operator, tn.BookingInput())
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			numbers = append(numbers, b.LRNumber)
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	seen := map[string]bool{}
	for _, lr := range numbers {
		assert.False(t, seen[lr], "duplicate LR number %s", lr)
		seen[lr] = true
		assert.True(t, strings.HasPrefix(lr, "MUM-"), lr)
	}
	assert.Len(t, seen, n)
}

func TestBookingUpdateStatus_ConcurrentWritersOneWins(t *testing.T) {
	s := NewStack(t)
	tn := s.SeedTenant(t, "Konkan Freight", "KFL")
	ctx := context.Background()

	created, err := s.Bookings.Create(ctx, tn.Operator, tn.BookingInput())
	require.NoError(t, err)

	const writers = 4
	results := make(chan error, writers)
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Bookings.UpdateStatus(ctx, tn.Operator, created.ID, bookingapp.UpdateStatusInput{
				Status:          booking.StatusLoaded,
				WorkflowContext: booking.ContextLoading,
				ExpectedStatus:  booking.StatusBooked,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		// Losers either lost the compare-and-swap or read the row after the
		// winner committed and no longer match the observed status
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	}
	assert.Equal(t, 1, succeeded)

	history, err := s.Bookings.History(ctx, tn.Operator, created.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTenantIsolation_Postgres(t *testing.T) {
	s := NewStack(t)
	a := s.SeedTenant(t, "Konkan Freight", "KFL")
	b := s.SeedTenant(t, "Deccan Movers", "DCM")
	ctx := context.Background()

	bookingA, err := s.Bookings.Create(ctx, a.Operator, a.BookingInput())
	require.NoError(t, err)
	bookingB, err := s.Bookings.Create(ctx, b.Operator, b.BookingInput())
	require.NoError(t, err)

	// LR sequences are per organization
	assert.Equal(t, bookingA.LRNumber, bookingB.LRNumber)

	_, err = s.Bookings.Get(ctx, b.Admin, bookingA.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = s.Bookings.GetByLRNumber(ctx, b.Admin, bookingA.LRNumber)
	require.NoError(t, err, "the same LR number resolves inside the caller's org")

	page, err := s.Bookings.List(ctx, b.Admin, bookingapp.ListFilter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, bookingB.ID, page.Items[0].ID)

	_, err = s.Contracts.Get(ctx, b.Admin, nil, a.Contract.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// A sender from another org cannot be booked
	in := b.BookingInput()
	in.SenderID = a.Sender.ID
	_, err = s.Bookings.Create(ctx, b.Operator, in)
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), err)
	assert.Equal(t, shared.CodeValidation, de.Code)
}

func TestOutboxRelay_Postgres(t *testing.T) {
	s := NewStack(t)
	tn := s.SeedTenant(t, "Konkan Freight", "KFL")
	ctx := context.Background()
	superAdmin := tenancy.Principal{UserID: uuid.New(), Role: tenancy.RoleSuperAdmin}

	created, err := s.Bookings.Create(ctx, tn.Operator, tn.BookingInput())
	require.NoError(t, err)
	_, err = s.Bookings.UpdateStatus(ctx, tn.Operator, created.ID, bookingapp.UpdateStatusInput{
		Status:          booking.StatusCancelled,
		WorkflowContext: booking.ContextGeneral,
		ExpectedStatus:  booking.StatusBooked,
	})
	require.NoError(t, err)

	before, err := s.Outbox.GetStats(ctx, superAdmin)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, before.Pending, int64(2))

	log := zaptest.NewLogger(t)
	bus := event.NewInMemoryEventBus(log)
	recorder := testutil.NewRecordingHandler(booking.EventTypeBookingCreated, booking.EventTypeBookingStatusChanged)
	bus.Subscribe(recorder)
	require.NoError(t, bus.Start(ctx))

	processor := event.NewOutboxProcessor(s.OutboxRepo, bus, s.Serializer, event.OutboxProcessorConfig{
		BatchSize:    10,
		PollInterval: 50 * time.Millisecond,
	}, nil, log)
	require.NoError(t, processor.Start(ctx))
	t.Cleanup(func() { _ = processor.Stop(context.Background()) })

	testutil.RequireEventually(t, func() bool {
		return recorder.Count(booking.EventTypeBookingCreated) == 1 &&
			recorder.Count(booking.EventTypeBookingStatusChanged) == 1
	}, 5*time.Second)

	testutil.RequireEventually(t, func() bool {
		stats, err := s.Outbox.GetStats(ctx, superAdmin)
		return err == nil && stats.Pending == 0 && stats.Processing == 0
	}, 5*time.Second)

	after, err := s.Outbox.GetStats(ctx, superAdmin)
	require.NoError(t, err)
	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, after.Total, after.Sent)

	for _, handled := range recorder.Handled() {
		if ev, ok := handled.(*booking.BookingCreatedEvent); ok {
			assert.Equal(t, created.ID, ev.AggregateID())
			assert.Equal(t, tn.Org.ID, ev.OrgID())
			assert.Equal(t, created.LRNumber, ev.LRNumber)
		}
	}
}
