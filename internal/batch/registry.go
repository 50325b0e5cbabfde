package batch

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry keeps all tasks in memory, keyed by id.
type Registry struct {
	tasks map[string]*Task
	mu    sync.RWMutex
}

// NewRegistry creates a new task registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// Create registers a new pending task and returns it.
func (r *Registry) Create(kind string, total int) *Task {
	task := &Task{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    StatusPending,
		Total:     total,
		StartedAt: time.Now(),
	}

	r.mu.Lock()
	r.tasks[task.ID] = task
	r.mu.Unlock()

	return task
}

// Get retrieves a task by id, nil when unknown.
func (r *Registry) Get(id string) *Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks[id]
}

// Active reports whether any task is still pending or running. Used to
// guard operations that must not overlap a batch, like a bucket rescan.
func (r *Registry) Active() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, task := range r.tasks {
		switch task.GetStatus() {
		case StatusPending, StatusRunning:
			return true
		}
	}
	return false
}

// List returns snapshots of all tasks, newest first.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	tasks := make([]*Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		tasks = append(tasks, task)
	}
	r.mu.RUnlock()

	snaps := make([]Snapshot, 0, len(tasks))
	for _, task := range tasks {
		snaps = append(snaps, task.Snapshot())
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].StartedAt.After(snaps[j].StartedAt)
	})
	return snaps
}
