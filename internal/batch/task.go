// Package batch runs reconciliation work as async tasks over a bounded
// worker pool. Workers report unit completions onto a channel; a single
// consumer goroutine owns all task mutation, so progress and results stay
// consistent without fine-grained locking in the hot path.
package batch

import (
	"sync"
	"time"

	"github.com/ngocvo/rollcall/internal/constants"
)

// Status represents the status of an async task.
type Status string

// Status constants define the lifecycle states of a task. Transitions are
// forward-only: a completed or failed task never goes back to running.
const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var statusRank = map[Status]int{
	StatusPending:   0,
	StatusRunning:   1,
	StatusCompleted: 2,
	StatusFailed:    2,
}

// Event represents an event emitted by a running task.
type Event struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Task represents one async batch run. All fields are guarded by mu; use
// Snapshot for reads from other goroutines.
type Task struct {
	EventBroadcaster

	ID          string
	Kind        string
	Status      Status
	Progress    int
	Total       int
	CurrentUnit string
	Results     []any
	Errors      []string
	Error       string
	OutputFile  string
	StartedAt   time.Time
	CompletedAt *time.Time

	mu sync.RWMutex
}

// Snapshot is a consistent, lock-free copy of a task's state for polling
// and JSON responses.
type Snapshot struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Status      Status     `json:"status"`
	Progress    int        `json:"progress"`
	Total       int        `json:"total"`
	CurrentUnit string     `json:"current_unit,omitempty"`
	Results     []any      `json:"results,omitempty"`
	Errors      []string   `json:"errors,omitempty"`
	Error       string     `json:"error,omitempty"`
	OutputFile  string     `json:"output_file,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Snapshot returns a consistent copy of the task. The Results and Errors
// slices are copied so callers cannot observe later mutation.
func (t *Task) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Snapshot{
		ID:          t.ID,
		Kind:        t.Kind,
		Status:      t.Status,
		Progress:    t.Progress,
		Total:       t.Total,
		CurrentUnit: t.CurrentUnit,
		Error:       t.Error,
		OutputFile:  t.OutputFile,
		StartedAt:   t.StartedAt,
		CompletedAt: t.CompletedAt,
	}
	snap.Results = append([]any(nil), t.Results...)
	snap.Errors = append([]string(nil), t.Errors...)
	return snap
}

// GetStatus returns the current task status (implements SSETask).
func (t *Task) GetStatus() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status
}

// setStatus advances the task status. Backward transitions are ignored.
func (t *Task) setStatus(status Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if statusRank[status] < statusRank[t.Status] {
		return
	}
	t.Status = status
	if status == StatusCompleted || status == StatusFailed {
		now := time.Now()
		t.CompletedAt = &now
	}
}

// startUnit records the label of a unit entering a worker, so polls see
// what is running now rather than what last finished.
func (t *Task) startUnit(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.CurrentUnit = label
}

// recordUnit applies one unit completion. Progress advances exactly once
// per unit whether the unit succeeded or not, so progress == total always
// holds once every unit has settled.
func (t *Task) recordUnit(label string, result any, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Progress < t.Total {
		t.Progress++
	}
	if err != nil {
		t.Errors = append(t.Errors, label+": "+err.Error())
		return
	}
	if result != nil {
		t.Results = append(t.Results, result)
	}
}

func (t *Task) fail(err error) {
	t.mu.Lock()
	t.Error = err.Error()
	t.mu.Unlock()
	t.setStatus(StatusFailed)
}

// SetOutputFile records the exported artifact path, set by finalize hooks.
func (t *Task) SetOutputFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.OutputFile = path
}

// EventBroadcaster provides listener management and event broadcasting for
// async tasks. Embed this in task structs to get AddListener,
// RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	listeners []chan Event
	lmu       sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan Event {
	b.lmu.Lock()
	defer b.lmu.Unlock()
	ch := make(chan Event, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan Event) {
	b.lmu.Lock()
	defer b.lmu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event Event) {
	b.lmu.RLock()
	defer b.lmu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// SSETask is the interface required to stream task events via SSE.
type SSETask interface {
	AddListener() chan Event
	RemoveListener(ch chan Event)
	GetStatus() Status
}
