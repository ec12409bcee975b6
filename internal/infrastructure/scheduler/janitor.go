// Package scheduler runs periodic housekeeping next to the HTTP server.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of periodic housekeeping. It returns how many items it
// removed.
type Task struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// JanitorConfig holds configuration for the janitor
type JanitorConfig struct {
	// Interval between runs
	Interval time.Duration
	// RunTimeout bounds one run of one task
	RunTimeout time.Duration
	// RunOnStart runs every task once immediately after Start
	RunOnStart bool
}

// DefaultJanitorConfig returns default janitor configuration
func DefaultJanitorConfig() JanitorConfig {
	return JanitorConfig{
		Interval:   time.Hour,
		RunTimeout: 5 * time.Minute,
	}
}

// Validate checks the configuration
func (c JanitorConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("%w: run timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Janitor runs housekeeping tasks on a fixed interval
type Janitor struct {
	config JanitorConfig
	tasks  []Task
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	runs      int
}

// NewJanitor creates a new janitor
func NewJanitor(config JanitorConfig, logger *zap.Logger, tasks ...Task) (*Janitor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Janitor{config: config, tasks: tasks, logger: logger}, nil
}

// Start starts the janitor loop. Starting a running janitor is a no-op.
func (j *Janitor) Start(ctx context.Context) error {
	if len(j.tasks) == 0 {
		return ErrNoTasks
	}
	j.mu.Lock()
	if j.isRunning {
		j.mu.Unlock()
		return nil
	}
	j.isRunning = true
	j.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	j.wg.Add(1)
	go j.runLoop(ctx)

	j.logger.Info("Janitor started",
		zap.Int("tasks", len(j.tasks)),
		zap.Duration("interval", j.config.Interval),
	)
	return nil
}

// Stop stops the janitor and waits for a running pass to finish or ctx to
// expire
func (j *Janitor) Stop(ctx context.Context) error {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return nil
	}
	j.isRunning = false
	j.mu.Unlock()

	if j.cancel != nil {
		j.cancel()
	}

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		j.logger.Info("Janitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Runs returns how many passes have completed
func (j *Janitor) Runs() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func (j *Janitor) runLoop(ctx context.Context) {
	defer j.wg.Done()

	if j.config.RunOnStart {
		j.RunOnce(ctx)
	}

	ticker := time.NewTicker(j.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce runs every task once. A failing task is logged and does not stop
// the others.
func (j *Janitor) RunOnce(ctx context.Context) {
	for _, t := range j.tasks {
		if ctx.Err() != nil {
			return
		}
		j.runTask(ctx, t)
	}
	j.mu.Lock()
	j.runs++
	j.mu.Unlock()
}

func (j *Janitor) runTask(ctx context.Context, t Task) {
	if j.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	n, err := t.Run(ctx)
	if err != nil {
		j.logger.Warn("Janitor task failed", zap.String("task", t.Name), zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("Janitor task removed items",
			zap.String("task", t.Name),
			zap.Int("count", n),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
