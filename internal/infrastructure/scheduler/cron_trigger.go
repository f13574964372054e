// Package scheduler runs background jobs at a fixed time of day.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of background work. It returns the number of rows it touched.
type Job func(ctx context.Context) (int64, error)

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// Name identifies the job in logs
	Name string

	// Hour and Minute are the daily run time in Location
	Hour     int
	Minute   int
	Location *time.Location

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		Name:          "daily-job",
		Hour:          0, // just after midnight
		Minute:        5,
		Location:      time.UTC,
		CheckInterval: time.Minute,
	}
}

func (c CronTriggerConfig) validate() error {
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("%w: run time %02d:%02d", ErrInvalidConfig, c.Hour, c.Minute)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// CronTrigger runs a job once per calendar day at the configured time
type CronTrigger struct {
	config CronTriggerConfig
	job    Job
	logger *zap.Logger
	now    func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	jobActive   bool
	lastRunDate string // Track which date we last ran for
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(config CronTriggerConfig, job Job, logger *zap.Logger) (*CronTrigger, error) {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CronTrigger{
		config: config,
		job:    job,
		logger: logger.With(zap.String("job", config.Name)),
		now:    time.Now,
	}, nil
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("hour", c.config.Hour),
		zap.Int("minute", c.config.Minute),
		zap.String("location", c.config.Location.String()),
		zap.Duration("check_interval", c.config.CheckInterval),
	)

	return nil
}

// Stop stops the cron trigger and waits for an in-flight run
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow runs the job immediately, outside the daily schedule
func (c *CronTrigger) RunNow(ctx context.Context) (int64, error) {
	c.mu.Lock()
	if c.jobActive {
		c.mu.Unlock()
		return 0, ErrAlreadyRunning
	}
	c.jobActive = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.jobActive = false
		c.mu.Unlock()
	}()

	start := c.now()
	n, err := c.job(ctx)
	if err != nil {
		c.logger.Error("Scheduled job failed", zap.Error(err))
		return 0, err
	}
	c.logger.Info("Scheduled job completed",
		zap.Int64("affected", n),
		zap.Duration("duration", c.now().Sub(start)),
	)
	return n, nil
}

// runLoop checks periodically if it's time to run
func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the job once the configured time has passed today.
// A process started after the run time still runs that day.
func (c *CronTrigger) checkAndTrigger(ctx context.Context) bool {
	now := c.now().In(c.config.Location)
	currentDate := now.Format(time.DateOnly)

	c.mu.Lock()
	if c.lastRunDate == currentDate {
		c.mu.Unlock()
		return false
	}
	due := time.Date(now.Year(), now.Month(), now.Day(), c.config.Hour, c.config.Minute, 0, 0, c.config.Location)
	if now.Before(due) {
		c.mu.Unlock()
		return false
	}
	c.lastRunDate = currentDate
	c.mu.Unlock()

	c.logger.Info("Triggering scheduled job", zap.String("date", currentDate))
	_, _ = c.RunNow(ctx)
	return true
}
