package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Task is one maintenance job run on every cycle.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler owns the maintenance loop: ticks on an interval and runs each task sequentially.
type Scheduler struct {
	tasks    []Task
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs all tasks at the given interval.
func NewScheduler(tasks []Task, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		tasks:    tasks,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the maintenance loop. It runs one immediate cycle, then ticks on
// the configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"tasks", len(s.tasks),
	)

	s.runAll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runAll(ctx)
		}
	}
}

// runAll runs each task in order. A failing task is logged and does not stop
// the ones after it.
func (s *Scheduler) runAll(ctx context.Context) {
	for _, t := range s.tasks {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		if err := t.Run(ctx); err != nil {
			s.logger.Error("maintenance task failed",
				"task", t.Name,
				"error", err,
			)
			continue
		}
		s.logger.Debug("maintenance task done",
			"task", t.Name,
			"took", time.Since(start).String(),
		)
	}
}
