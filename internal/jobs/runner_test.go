package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonpan30062/newsaferoute/internal/logger"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) ExpireElapsed(ctx context.Context) (int, error) {
	e.calls.Add(1)
	return 1, e.err
}

func TestRunner_RunsTaskOnInterval(t *testing.T) {
	expirer := &countingExpirer{}
	runner := NewRunner(logger.New("test"))
	runner.Add(NewAlertExpiryTask(expirer, 5*time.Millisecond))

	runner.Start(context.Background())

	require.Eventually(t, func() bool {
		return expirer.calls.Load() >= 2
	}, time.Second, time.Millisecond)

	runner.Stop()
	stopped := expirer.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, expirer.calls.Load(), "no runs after Stop returns")
}

func TestRunner_KeepsRunningAfterErrors(t *testing.T) {
	expirer := &countingExpirer{err: errors.New("database unavailable")}
	runner := NewRunner(logger.New("test"))
	runner.Add(NewAlertExpiryTask(expirer, 5*time.Millisecond))

	runner.Start(context.Background())
	defer runner.Stop()

	require.Eventually(t, func() bool {
		return expirer.calls.Load() >= 3
	}, time.Second, time.Millisecond)
}

func TestRunner_StopsWithContext(t *testing.T) {
	expirer := &countingExpirer{}
	runner := NewRunner(logger.New("test"))
	runner.Add(NewAlertExpiryTask(expirer, 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	runner.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		runner.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after context cancellation")
	}
}

func TestRunner_SkipsDisabledTasks(t *testing.T) {
	expirer := &countingExpirer{}
	runner := NewRunner(logger.New("test"))
	runner.Add(NewAlertExpiryTask(expirer, 0))

	assert.Empty(t, runner.tasks)

	runner.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	runner.Stop()

	assert.Zero(t, expirer.calls.Load())
}

func TestRunner_StopWithoutStart(t *testing.T) {
	runner := NewRunner(logger.New("test"))
	assert.NotPanics(t, runner.Stop)
}

func TestNewAlertExpiryTask(t *testing.T) {
	task := NewAlertExpiryTask(&countingExpirer{}, time.Minute)

	assert.Equal(t, AlertExpiryTaskName, task.Name)
	assert.Equal(t, time.Minute, task.Interval)

	changed, err := task.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
}
