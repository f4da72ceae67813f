package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/jonpan30062/newsaferoute/internal/logger"
)

// Task is a unit of recurring background work.
// Run returns the number of records it changed.
type Task struct {
	Run      func(ctx context.Context) (int, error)
	Name     string
	Interval time.Duration
}

// Runner drives a set of tasks on their own tickers until stopped.
type Runner struct {
	log    *logger.Logger
	tasks  []Task
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRunner creates a runner with no tasks.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{log: log.WithComponent("jobs")}
}

// Add registers a task. Tasks with a non-positive interval are skipped.
// Must be called before Start.
func (r *Runner) Add(task Task) {
	if task.Interval <= 0 {
		r.log.Info("Background task disabled", map[string]interface{}{
			"task": task.Name,
		})
		return
	}
	r.tasks = append(r.tasks, task)
}

// Start launches every registered task. Each task runs until ctx is
// canceled or Stop is called.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)

	for _, task := range r.tasks {
		r.wg.Add(1)
		go func(task Task) {
			defer r.wg.Done()
			r.loop(ctx, task)
		}(task)
	}
}

// Stop cancels all tasks and waits for any in-flight run to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, task Task) {
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	r.log.Info("Background task started", map[string]interface{}{
		"task":     task.Name,
		"interval": task.Interval.String(),
	})

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx, task)
		case <-ctx.Done():
			r.log.Info("Background task stopped", map[string]interface{}{
				"task": task.Name,
			})
			return
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, task Task) {
	changed, err := task.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.log.Error("Background task failed", err, map[string]interface{}{
			"task": task.Name,
		})
		return
	}
	if changed > 0 {
		r.log.Debug("Background task run", map[string]interface{}{
			"task":    task.Name,
			"changed": changed,
		})
	}
}
