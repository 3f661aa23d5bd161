// ============================================================================
// Newsboy-DP Worker - Range Execution Unit
// ============================================================================
//
// Package: internal/worker
// File: worker.go
// Function: Work unit that executes one inventory range of one stage per
//           task, each Worker runs in an independent goroutine
//
// How it works:
//   1. Receive task from taskCh (blocking wait)
//   2. Run the pool's Executor on it
//   3. Send result to resultCh (or give up once the pool is stopping)
//   4. Repeat until taskCh is closed
//
// Error Handling:
//   - Executor error: returned in Result.Err
//   - Executor panic: recovered and returned in Result.Err as ErrTaskPanic,
//     so a defect surfaces at the stage barrier instead of hanging it
//
// ============================================================================

package worker

import (
	"errors"
	"fmt"
	"time"
)

// ErrTaskPanic wraps a panic raised while executing a task.
var ErrTaskPanic = errors.New("worker: task panicked")

// Worker represents a work execution unit
type Worker struct {
	id       int             // Worker identifier, reported in results
	exec     Executor        // Task logic shared by all workers
	taskCh   <-chan Task     // Task channel (read-only)
	resultCh chan<- Result   // Result channel (write-only)
	stopCh   <-chan struct{} // Closed when the pool stops
}

// newWorker creates a new Worker instance
func newWorker(id int, exec Executor, taskCh <-chan Task, resultCh chan<- Result, stopCh <-chan struct{}) *Worker {
	return &Worker{
		id:       id,
		exec:     exec,
		taskCh:   taskCh,
		resultCh: resultCh,
		stopCh:   stopCh,
	}
}

// Run is the main loop of Worker
func (w *Worker) Run() {
	for task := range w.taskCh {
		start := time.Now()
		err := w.execute(task)

		result := Result{
			WorkerID: w.id,
			Task:     task,
			Err:      err,
			Duration: time.Since(start),
		}

		// Every result is delivered: the caller counts them as a barrier
		select {
		case w.resultCh <- result:
		case <-w.stopCh:
			return
		}
	}
}

// execute runs the executor, converting a panic into an error
func (w *Worker) execute(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker %d stage %d range [%d,%d): %v",
				ErrTaskPanic, w.id, task.Stage, task.Range.Lo, task.Range.Hi, r)
		}
	}()
	return w.exec(task)
}
