package meshtak

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lorameshtak/go-meshtak/logger"
)

func TestTaskManagerLifecycle(t *testing.T) {
	require := require.New(t)

	mgr := NewTaskManager(context.Background(), logger.GetLogger())
	require.Equal(0, mgr.TaskCount())

	var iterations atomic.Int64
	require.NoError(mgr.Start("counter", func() bool {
		iterations.Add(1)
		time.Sleep(time.Millisecond)

		return true
	}))

	require.Eventually(func() bool {
		return iterations.Load() > 0
	}, 2*time.Second, time.Millisecond)
	require.Equal(1, mgr.TaskCount())

	mgr.Stop()
	mgr.Wait()
	require.Equal(0, mgr.TaskCount())

	// Wait recreates the context, so the manager is reusable.
	require.NoError(mgr.Start("counter", func() bool { return false }))
	mgr.Wait()
}

func TestTaskManagerStartAfterStop(t *testing.T) {
	require := require.New(t)

	mgr := NewTaskManager(context.Background(), logger.GetLogger())
	mgr.Stop()

	require.Error(mgr.Start("late", func() bool { return true }))
}

func TestTaskStopsWhenFuncReturnsFalse(t *testing.T) {
	require := require.New(t)

	mgr := NewTaskManager(context.Background(), logger.GetLogger())

	done := make(chan struct{})
	require.NoError(mgr.Start("oneshot", func() bool {
		close(done)

		return false
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}

	mgr.Wait()
	require.Equal(0, mgr.TaskCount())
}

func TestTaskManagerRecoversPanic(t *testing.T) {
	require := require.New(t)

	mgr := NewTaskManager(context.Background(), logger.GetLogger())

	require.NoError(mgr.Start("faulty", func() bool {
		panic("task bug")
	}))

	// The panicking goroutine terminates and is counted out; Wait returns.
	mgr.Wait()
	require.Equal(0, mgr.TaskCount())
}
