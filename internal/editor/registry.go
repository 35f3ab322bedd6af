package editor

import (
	"errors"
	"sync"
)

// ErrTaskNotFound is returned when a status query references an unknown
// task id.
var ErrTaskNotFound = errors.New("edit task not found")

// State is the lifecycle state of an edit task.
type State string

const (
	// StatePending means the task is created but no worker has picked it up.
	StatePending State = "pending"
	// StateProcessing means the task's worker is running.
	StateProcessing State = "processing"
	// StateCompleted is the success terminal state.
	StateCompleted State = "completed"
	// StateError is the failure terminal state.
	StateError State = "error"
)

// terminal reports whether a state absorbs further transitions.
func (s State) terminal() bool {
	return s == StateCompleted || s == StateError
}

// Status is the externally visible snapshot of a task.
type Status struct {
	State    State  `json:"state"`
	Progress int    `json:"progress"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Registry is the shared, lock-guarded store of edit task state. Tasks
// are created on submission, mutated only by their worker, and never
// deleted; the registry is in-memory and lives for the process.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Status
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]Status)}
}

// Create registers a new task in the pending state.
func (r *Registry) Create(id string) {
	r.mu.Lock()
	r.tasks[id] = Status{State: StatePending}
	r.mu.Unlock()
}

// Status returns the current snapshot of a task.
func (r *Registry) Status(id string) (Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.tasks[id]
	if !ok {
		return Status{}, ErrTaskNotFound
	}
	return status, nil
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// transition applies fn to the task unless it already reached a terminal
// state.
func (r *Registry) transition(id string, fn func(*Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.tasks[id]
	if !ok || status.State.terminal() {
		return
	}
	fn(&status)
	r.tasks[id] = status
}

// SetProcessing moves a pending task into the processing state.
func (r *Registry) SetProcessing(id string) {
	r.transition(id, func(s *Status) {
		s.State = StateProcessing
		s.Progress = 0
	})
}

// SetProgress updates a task's progress percentage.
func (r *Registry) SetProgress(id string, progress int) {
	r.transition(id, func(s *Status) {
		s.Progress = progress
	})
}

// SetCompleted marks a task successful with its output filename.
func (r *Registry) SetCompleted(id, output string) {
	r.transition(id, func(s *Status) {
		s.State = StateCompleted
		s.Progress = 100
		s.Output = output
	})
}

// SetError marks a task failed with a diagnostic message.
func (r *Registry) SetError(id, message string) {
	r.transition(id, func(s *Status) {
		s.State = StateError
		s.Error = message
	})
}
