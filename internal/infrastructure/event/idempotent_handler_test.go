package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/freightcore/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memoryStore struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: make(map[string]bool)}
}

func (s *memoryStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], s.err
}

func (s *memoryStore) Close() error { return nil }

type namedTestHandler struct {
	*testHandler
	name string
}

func (h namedTestHandler) Name() string { return h.name }

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	ctx := context.Background()
	inner := newTestHandler("BookingCreated")
	h := NewIdempotentHandler(inner, newMemoryStore(), shared.IdempotencyConfig{}, zaptest.NewLogger(t))

	ev := newTestEvent("BookingCreated")
	require.NoError(t, h.Handle(ctx, ev))
	require.NoError(t, h.Handle(ctx, ev))
	require.NoError(t, h.Handle(ctx, newTestEvent("BookingCreated")))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{EventsProcessed: 2, EventsDuplicate: 1}, h.Stats())
	assert.Equal(t, []string{"BookingCreated"}, h.EventTypes())
}

func TestIdempotentHandler_NamedHandlersKeepSeparateKeys(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	a := namedTestHandler{newTestHandler(), "a"}
	b := namedTestHandler{newTestHandler(), "b"}
	ha := NewIdempotentHandler(a, store, shared.DefaultIdempotencyConfig(), zaptest.NewLogger(t))
	hb := NewIdempotentHandler(b, store, shared.DefaultIdempotencyConfig(), zaptest.NewLogger(t))

	ev := newTestEvent("BookingCreated")
	require.NoError(t, ha.Handle(ctx, ev))
	require.NoError(t, hb.Handle(ctx, ev))

	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestIdempotentHandler_StoreErrorStillHandles(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("redis unavailable")
	inner := newTestHandler()
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), zaptest.NewLogger(t))

	require.NoError(t, h.Handle(context.Background(), newTestEvent("BookingCreated")))
	assert.Equal(t, 1, inner.count())
}

func TestIdempotentHandler_FailureKeepsKey(t *testing.T) {
	ctx := context.Background()
	inner := newTestHandler()
	inner.err = errors.New("boom")
	h := NewIdempotentHandler(inner, newMemoryStore(), shared.DefaultIdempotencyConfig(), zaptest.NewLogger(t))

	ev := newTestEvent("BookingCreated")
	assert.Error(t, h.Handle(ctx, ev))
	assert.NoError(t, h.Handle(ctx, ev))
	assert.Equal(t, int64(1), h.Stats().EventsFailed)
	assert.Equal(t, int64(1), h.Stats().EventsDuplicate)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	ctx := context.Background()
	inner := newTestHandler()
	h := NewIdempotentHandler(inner, newMemoryStore(), shared.IdempotencyConfig{TTL: time.Hour}, zaptest.NewLogger(t))

	ev := newTestEvent("BookingCreated")
	require.NoError(t, h.Handle(ctx, ev))
	require.NoError(t, h.Handle(ctx, ev))
	assert.Equal(t, 2, inner.count())
}
