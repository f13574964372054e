package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func countingJob(calls *atomic.Int32, err error) Job {
	return func(ctx context.Context) (int64, error) {
		calls.Add(1)
		return 3, err
	}
}

func newTestTrigger(t *testing.T, job Job, now *time.Time) *CronTrigger {
	t.Helper()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	trigger, err := NewCronTrigger(CronTriggerConfig{
		Name:          "contract-expiry",
		Hour:          0,
		Minute:        5,
		Location:      kolkata,
		CheckInterval: time.Minute,
	}, job, zaptest.NewLogger(t))
	require.NoError(t, err)
	trigger.now = func() time.Time { return *now }
	return trigger
}

func TestCronTrigger_CheckAndTrigger(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	// 2026-03-09 18:30 UTC is 2026-03-10 00:00 in Kolkata
	now := time.Date(2026, 3, 9, 18, 30, 0, 0, time.UTC)
	trigger := newTestTrigger(t, countingJob(&calls, nil), &now)

	assert.False(t, trigger.checkAndTrigger(ctx), "before the run time")

	now = now.Add(5 * time.Minute)
	assert.True(t, trigger.checkAndTrigger(ctx))
	assert.Equal(t, int32(1), calls.Load())

	now = now.Add(2 * time.Hour)
	assert.False(t, trigger.checkAndTrigger(ctx), "once per day")

	now = now.Add(24 * time.Hour)
	assert.True(t, trigger.checkAndTrigger(ctx), "late start still runs the next day")
	assert.Equal(t, int32(2), calls.Load())
}

func TestCronTrigger_RunNow(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("returns the job result", func(t *testing.T) {
		var calls atomic.Int32
		trigger := newTestTrigger(t, countingJob(&calls, nil), &now)
		n, err := trigger.RunNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("propagates failures", func(t *testing.T) {
		var calls atomic.Int32
		boom := errors.New("database is down")
		trigger := newTestTrigger(t, countingJob(&calls, boom), &now)
		_, err := trigger.RunNow(ctx)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("refuses overlapping runs", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		trigger := newTestTrigger(t, func(ctx context.Context) (int64, error) {
			close(started)
			<-release
			return 0, nil
		}, &now)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = trigger.RunNow(ctx)
		}()
		<-started
		_, err := trigger.RunNow(ctx)
		assert.ErrorIs(t, err, ErrAlreadyRunning)
		close(release)
		<-done
	})
}

func TestCronTrigger_StartStop(t *testing.T) {
	now := time.Now()
	var calls atomic.Int32
	trigger := newTestTrigger(t, countingJob(&calls, nil), &now)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()), "second start is a no-op")

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, trigger.Stop(stopCtx))
	assert.NoError(t, trigger.Stop(stopCtx), "second stop is a no-op")
}

func TestNewCronTrigger_InvalidConfig(t *testing.T) {
	_, err := NewCronTrigger(CronTriggerConfig{Hour: 24, CheckInterval: time.Minute}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewCronTrigger(CronTriggerConfig{Hour: 1}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
