// Package task is a small background-task registry: fire-and-forget work
// keyed by id, polled for status. No cancellation; a task runs to
// completion or failure. At most one task per id is in flight.
package task

import (
	"errors"
	"log"
	"sync"
	"time"
)

type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

var ErrAlreadyRunning = errors.New("task already running")

// Status is the pollable view of one task.
type Status struct {
	State       State      `json:"state"`
	Error       string     `json:"error,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Registry is injected into the hosting service; there is no package-level
// singleton.
type Registry struct {
	mu    sync.Mutex
	tasks map[string]Status
}

func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Status)}
}

// Submit starts work under the given id in the background. A second submit
// for an id whose task is still running is rejected.
func (r *Registry) Submit(id string, work func() error) error {
	r.mu.Lock()
	if status, ok := r.tasks[id]; ok && status.State == StateRunning {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.tasks[id] = Status{State: StateRunning}
	r.mu.Unlock()

	go func() {
		err := work()
		now := time.Now()

		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil {
			log.Printf("task %s failed: %v", id, err)
			r.tasks[id] = Status{State: StateFailed, Error: err.Error(), CompletedAt: &now}
			return
		}
		r.tasks[id] = Status{State: StateCompleted, CompletedAt: &now}
	}()
	return nil
}

// Status reports the task's current state; ok is false for unknown ids.
func (r *Registry) Status(id string) (Status, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.tasks[id]
	return status, ok
}
