package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/ngocvo/rollcall/internal/constants"
)

// Unit is one independent piece of work in a batch. Run returns the unit's
// result, which the consumer appends to the task in completion order.
type Unit struct {
	Label string
	Run   func(ctx context.Context) (any, error)
}

// FinalizeFunc runs once after every unit has settled, serially, with the
// task's final results. A non-nil error fails the whole task.
type FinalizeFunc func(task *Task) error

type completion struct {
	label  string
	result any
	err    error
}

// Orchestrator runs batches of units over a bounded worker pool.
type Orchestrator struct {
	workers     int
	unitTimeout time.Duration
}

// NewOrchestrator creates an orchestrator. Non-positive arguments fall back
// to the defaults.
func NewOrchestrator(workers int, unitTimeout time.Duration) *Orchestrator {
	if workers <= 0 {
		workers = constants.DefaultWorkers
	}
	if unitTimeout <= 0 {
		unitTimeout = constants.DefaultUnitTimeout
	}
	return &Orchestrator{
		workers:     workers,
		unitTimeout: unitTimeout,
	}
}

// Run executes all units and drives the task through its lifecycle. It
// blocks until the task reaches a terminal status; callers start it in a
// goroutine. Unit failures are recorded and do not stop the batch; only a
// finalize failure or a panic marks the task failed.
func (o *Orchestrator) Run(ctx context.Context, task *Task, units []Unit, finalize FinalizeFunc) {
	defer func() {
		if r := recover(); r != nil {
			task.fail(fmt.Errorf("batch panic: %v", r))
			task.SendEvent(Event{Type: "failed", Message: task.Snapshot().Error})
		}
	}()

	task.setStatus(StatusRunning)
	task.SendEvent(Event{Type: "started", Data: map[string]int{"total": len(units)}})

	completions := make(chan completion, len(units))
	sem := make(chan struct{}, o.workers)

	// Workers acquire the semaphore themselves so the consumer loop below
	// starts draining completions immediately; the orchestrator blocks only
	// on the next completed unit, never on submission.
	for _, unit := range units {
		go func(unit Unit) {
			sem <- struct{}{}
			defer func() { <-sem }()
			task.startUnit(unit.Label)
			result, err := o.runUnit(ctx, unit)
			completions <- completion{label: unit.Label, result: result, err: err}
		}(unit)
	}

	// Single consumer: only this loop applies completions to the task.
	for range units {
		done := <-completions
		task.recordUnit(done.label, done.result, done.err)

		snap := task.Snapshot()
		event := Event{
			Type:    "progress",
			Message: done.label,
			Data:    map[string]int{"progress": snap.Progress, "total": snap.Total},
		}
		if done.err != nil {
			event.Type = "unit_error"
			event.Message = done.label + ": " + done.err.Error()
		}
		task.SendEvent(event)
	}

	if finalize != nil {
		if err := finalize(task); err != nil {
			task.fail(fmt.Errorf("finalize: %w", err))
			task.SendEvent(Event{Type: "failed", Message: task.Snapshot().Error})
			return
		}
	}

	task.setStatus(StatusCompleted)
	snap := task.Snapshot()
	task.SendEvent(Event{
		Type: "completed",
		Data: map[string]int{"results": len(snap.Results), "errors": len(snap.Errors)},
	})
}

// runUnit executes one unit under the per-unit timeout. A unit that
// overruns is abandoned and reported as timed out; its goroutine keeps the
// buffered channel from leaking.
func (o *Orchestrator) runUnit(ctx context.Context, unit Unit) (any, error) {
	unitCtx, cancel := context.WithTimeout(ctx, o.unitTimeout)
	defer cancel()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("unit panic: %v", r)}
			}
		}()
		result, err := unit.Run(unitCtx)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-unitCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("unit timed out after %s", o.unitTimeout)
	}
}
