package meshtak

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lorameshtak/go-meshtak/logger"
)

// TaskFunc represents one iteration of a task running in a goroutine managed
// by the TaskManager. It should return true to continue running the task, or
// false to stop the goroutine.
type TaskFunc func() bool

// TaskManager manages the lifecycle of the client's background goroutines.
//
// It uses a context.Context to manage goroutine lifetimes: when the context
// is canceled via Stop, all running goroutines are signaled to stop, and
// Wait blocks until they have terminated. Wait recreates the internal
// context so the manager can be reused across connect/disconnect cycles.
type TaskManager struct {
	pctx   context.Context
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger logger.Logger
	count  atomic.Int32
	mu     sync.RWMutex // protects ctx and cancel
}

// NewTaskManager creates a TaskManager with the given parent context and logger.
func NewTaskManager(ctx context.Context, l logger.Logger) *TaskManager {
	mgr := &TaskManager{pctx: ctx, logger: l}
	mgr.ctx, mgr.cancel = context.WithCancel(ctx)

	return mgr
}

// getContext safely returns the current context.
func (mgr *TaskManager) getContext() context.Context {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()

	return mgr.ctx
}

// Start starts a new goroutine with the given name and task function.
//
// The taskFunc is called in a loop and should return true to continue
// running, or false to stop the goroutine.
func (mgr *TaskManager) Start(name string, taskFunc TaskFunc) error {
	ctx := mgr.getContext()

	select {
	case <-ctx.Done():
		return fmt.Errorf("meshtak: task manager already stopped, cannot start %s", name)
	default:
	}

	mgr.logger.Debug("start task", "name", name)

	mgr.wg.Add(1)
	mgr.count.Add(1)

	go func() {
		defer func() {
			mgr.count.Add(-1)
			mgr.logger.Debug(fmt.Sprintf("%s task terminated", name), "task_count", mgr.TaskCount())
			mgr.wg.Done()
		}()

		mgr.runTaskLoop(name, taskFunc)
	}()

	return nil
}

// runTaskLoop runs a task function in a loop with context cancellation and
// panic protection.
func (mgr *TaskManager) runTaskLoop(name string, taskFunc TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			mgr.logger.Error("panic in task loop", "name", name, "panic", r)
		}
	}()

	for {
		ctx := mgr.getContext()
		select {
		case <-ctx.Done():
			return
		default:
			if !taskFunc() {
				return
			}
		}
	}
}

// Stop signals all running goroutines to terminate.
func (mgr *TaskManager) Stop() {
	mgr.mu.Lock()
	if mgr.cancel != nil {
		mgr.cancel()
	}
	mgr.mu.Unlock()
}

// Wait waits for all goroutines to terminate, then recreates the internal
// context so the manager can start tasks again.
func (mgr *TaskManager) Wait() {
	mgr.wg.Wait()

	mgr.mu.Lock()
	mgr.ctx, mgr.cancel = context.WithCancel(mgr.pctx)
	mgr.mu.Unlock()
}

// TaskCount returns the number of currently running goroutines.
func (mgr *TaskManager) TaskCount() int {
	return int(mgr.count.Load())
}
