package testutil

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRecordingHandler(t *testing.T) {
	h := NewRecordingHandler("BookingCreated")
	assert.Equal(t, []string{"BookingCreated"}, h.EventTypes())

	orgID := uuid.New()
	created := shared.NewBaseDomainEvent("BookingCreated", "Booking", uuid.New(), orgID)
	changed := shared.NewBaseDomainEvent("BookingStatusChanged", "Booking", uuid.New(), orgID)

	assert.NoError(t, h.Handle(context.Background(), &created))
	assert.NoError(t, h.Handle(context.Background(), &changed))
	assert.Equal(t, 2, h.Count(""))
	assert.Equal(t, 1, h.Count("BookingCreated"))
	assert.Len(t, h.Handled(), 2)

	boom := errors.New("boom")
	h.SetError(boom)
	assert.ErrorIs(t, h.Handle(context.Background(), &created), boom)
	assert.Equal(t, 2, h.Count("BookingCreated"))
}

func TestWaitForCondition(t *testing.T) {
	var calls atomic.Int32
	ok := WaitForCondition(func() bool {
		return calls.Add(1) >= 3
	}, time.Second, time.Millisecond)
	assert.True(t, ok)

	assert.False(t, WaitForCondition(func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond))
}
