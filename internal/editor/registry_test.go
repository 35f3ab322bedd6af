package editor

import (
	"errors"
	"testing"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	r.Create("task-1")

	status, err := r.Status("task-1")
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if status.State != StatePending {
		t.Errorf("new task state = %q, want %q", status.State, StatePending)
	}

	r.SetProcessing("task-1")
	r.SetProgress("task-1", 45)

	status, _ = r.Status("task-1")
	if status.State != StateProcessing || status.Progress != 45 {
		t.Errorf("after progress: state=%q progress=%d, want processing/45", status.State, status.Progress)
	}

	r.SetCompleted("task-1", "clip_edited_1718000000.mp4")

	status, _ = r.Status("task-1")
	if status.State != StateCompleted {
		t.Errorf("state = %q, want %q", status.State, StateCompleted)
	}
	if status.Progress != 100 {
		t.Errorf("completed progress = %d, want 100", status.Progress)
	}
	if status.Output != "clip_edited_1718000000.mp4" {
		t.Errorf("output = %q", status.Output)
	}
}

func TestRegistryUnknownTask(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Status("nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Status(unknown) error = %v, want ErrTaskNotFound", err)
	}
}

func TestRegistryTerminalStatesAbsorb(t *testing.T) {
	r := NewRegistry()

	r.Create("done")
	r.SetCompleted("done", "out.mp4")
	r.SetError("done", "late failure")
	r.SetProgress("done", 10)

	status, _ := r.Status("done")
	if status.State != StateCompleted || status.Progress != 100 || status.Error != "" {
		t.Errorf("completed task mutated after terminal state: %+v", status)
	}

	r.Create("failed")
	r.SetProcessing("failed")
	r.SetError("failed", "boom")
	r.SetCompleted("failed", "out.mp4")

	status, _ = r.Status("failed")
	if status.State != StateError || status.Output != "" {
		t.Errorf("errored task mutated after terminal state: %+v", status)
	}
	if status.Error != "boom" {
		t.Errorf("error message = %q, want %q", status.Error, "boom")
	}
}

func TestRegistryLen(t *testing.T) {
	r := NewRegistry()
	if r.Len() != 0 {
		t.Fatalf("empty registry Len() = %d", r.Len())
	}
	r.Create("a")
	r.Create("b")
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}
