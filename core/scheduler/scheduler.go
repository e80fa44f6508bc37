package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"plinth/core/logger"
)

// CronTask is a named scheduled job.
type CronTask struct {
	Name        string
	Description string
	CronExpr    string
	Handler     func(ctx context.Context) error
	Enabled     bool
}

// CronScheduler wraps robfig/cron with task registration, structured run
// logging and panic isolation per task.
type CronScheduler struct {
	cron   *cron.Cron
	logger logger.Logger

	mu    sync.Mutex
	tasks map[string]cron.EntryID
}

// NewCronScheduler creates a stopped scheduler; call Start once the
// application has booted.
func NewCronScheduler(log logger.Logger) *CronScheduler {
	return &CronScheduler{
		cron:   cron.New(),
		logger: log,
		tasks:  make(map[string]cron.EntryID),
	}
}

// RegisterTask schedules a task. Disabled tasks are recorded but never run.
func (s *CronScheduler) RegisterTask(task *CronTask) error {
	if task.Name == "" {
		return fmt.Errorf("cron task has no name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.Name]; exists {
		return fmt.Errorf("cron task %q is already registered", task.Name)
	}
	if !task.Enabled {
		s.logger.Info("cron task registered but disabled", logger.String("task", task.Name))
		s.tasks[task.Name] = 0
		return nil
	}

	id, err := s.cron.AddFunc(task.CronExpr, s.runner(task))
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for task %q: %w", task.CronExpr, task.Name, err)
	}
	s.tasks[task.Name] = id

	s.logger.Info("cron task registered",
		logger.String("task", task.Name),
		logger.String("schedule", task.CronExpr))
	return nil
}

func (s *CronScheduler) runner(task *CronTask) func() {
	return func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("cron task panicked",
					logger.String("task", task.Name),
					logger.Any("panic", r))
			}
		}()

		if err := task.Handler(context.Background()); err != nil {
			s.logger.Error("cron task failed",
				logger.String("task", task.Name),
				logger.Duration("duration", time.Since(start)),
				logger.String("error", err.Error()))
			return
		}
		s.logger.Debug("cron task completed",
			logger.String("task", task.Name),
			logger.Duration("duration", time.Since(start)))
	}
}

// Start begins executing scheduled tasks.
func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running tasks.
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
