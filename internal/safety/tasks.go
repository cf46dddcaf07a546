package safety

import (
	"fmt"

	"github.com/asthra-lang/asthra-runtime/internal/diag"
)

// TaskEvent marks a point in a task's lifecycle.
type TaskEvent int32

const (
	TaskSpawned TaskEvent = iota
	TaskStarted
	TaskSuspended
	TaskResumed
	TaskCompleted
	TaskFailed
	TaskCancelled
)

var taskEventNames = [...]string{
	"spawned", "started", "suspended", "resumed",
	"completed", "failed", "cancelled",
}

func (e TaskEvent) String() string {
	if e < TaskSpawned || int(e) >= len(taskEventNames) {
		return fmt.Sprintf("task-event(%d)", int32(e))
	}
	return taskEventNames[e]
}

// SchedulerEvent marks a scheduler-level occurrence.
type SchedulerEvent int32

const (
	SchedulerTaskQueued SchedulerEvent = iota
	SchedulerTaskDequeued
	SchedulerWorkerStarted
	SchedulerWorkerStopped
	SchedulerLoadBalanced
	SchedulerDeadlockDetected
)

var schedulerEventNames = [...]string{
	"task-queued", "task-dequeued", "worker-started",
	"worker-stopped", "load-balanced", "deadlock-detected",
}

func (e SchedulerEvent) String() string {
	if e < SchedulerTaskQueued || int(e) >= len(schedulerEventNames) {
		return fmt.Sprintf("scheduler-event(%d)", int32(e))
	}
	return schedulerEventNames[e]
}

// LogTaskLifecycleEvent records one task lifecycle transition. A no-op
// unless concurrency debugging is enabled.
func (m *Monitor) LogTaskLifecycleEvent(taskID uint64, event TaskEvent, details string) {
	if !m.Config().ConcurrencyDebugging {
		return
	}

	m.trackMu.Lock()
	m.taskEvents++
	m.trackMu.Unlock()

	m.logger.Logf(diag.LevelDebug, diag.CategoryConcurrency,
		"task %d: %s - %s", taskID, event, details)
}

// LogSchedulerEvent records one scheduler occurrence. A no-op unless
// concurrency debugging is enabled.
func (m *Monitor) LogSchedulerEvent(event SchedulerEvent, details string) {
	if !m.Config().ConcurrencyDebugging {
		return
	}

	m.logger.Logf(diag.LevelDebug, diag.CategoryConcurrency,
		"scheduler: %s - %s", event, details)
}

// TaskEventCount reports how many task lifecycle events have been recorded
// since startup or the last shutdown.
func (m *Monitor) TaskEventCount() uint64 {
	m.trackMu.Lock()
	defer m.trackMu.Unlock()
	return m.taskEvents
}
