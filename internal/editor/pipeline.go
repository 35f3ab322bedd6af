package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/blue-code/FlexPlay/internal/artifacts"
	"github.com/blue-code/FlexPlay/internal/ffmpeg"
	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/logging"
	"github.com/blue-code/FlexPlay/internal/metrics"
	"github.com/blue-code/FlexPlay/internal/profiles"
	"github.com/blue-code/FlexPlay/internal/workers"
)

// DefaultWorkers caps how many edit tasks process simultaneously.
// Submitted tasks beyond the cap stay pending until a slot frees up.
const DefaultWorkers = 2

// DefaultTaskTimeout bounds one task end to end. Zero disables the bound.
const DefaultTaskTimeout = time.Hour

// Validation errors surfaced at submission time.
var (
	ErrNoRanges      = errors.New("no delete ranges given")
	ErrInvalidRange  = errors.New("invalid delete range")
	ErrAllRemoved    = errors.New("all content would be removed")
	ErrEditsDisabled = errors.New("editing unavailable: ffmpeg not installed")
)

// Pipeline runs segment-removal edit tasks. Each submitted task gets its
// own worker goroutine; a semaphore bounds how many process at once.
type Pipeline struct {
	tools       *ffmpeg.Toolkit
	store       *artifacts.Store
	profiles    []profiles.Profile
	registry    *Registry
	slots       *semaphore.Weighted
	taskTimeout time.Duration
}

// NewPipeline creates the edit pipeline. Worker slots default to
// DefaultWorkers (EDIT_WORKERS override); the per-task deadline defaults
// to DefaultTaskTimeout (EDIT_TIMEOUT override, "0" disables).
func NewPipeline(tools *ffmpeg.Toolkit, store *artifacts.Store, profs []profiles.Profile, registry *Registry) *Pipeline {
	n := workers.Slots("EDIT_WORKERS", DefaultWorkers, 16)

	timeout := DefaultTaskTimeout
	if v := os.Getenv("EDIT_TIMEOUT"); v != "" {
		if v == "0" {
			timeout = 0
		} else if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		} else {
			logging.Warn("invalid EDIT_TIMEOUT %q, keeping %s", v, timeout)
		}
	}

	logging.Debug("edit pipeline: %d worker slots, task timeout %s", n, timeout)
	return &Pipeline{
		tools:       tools,
		store:       store,
		profiles:    profs,
		registry:    registry,
		slots:       semaphore.NewWeighted(int64(n)),
		taskTimeout: timeout,
	}
}

// Submit validates the request, registers a pending task and starts its
// worker. It returns the generated task id.
func (p *Pipeline) Submit(asset library.Asset, deletes []Range) (string, error) {
	if !p.tools.IsEnabled() {
		return "", ErrEditsDisabled
	}
	if len(deletes) == 0 {
		return "", ErrNoRanges
	}
	for _, d := range deletes {
		if d.Start < 0 || d.End <= d.Start {
			return "", fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, d.Start, d.End)
		}
	}

	id := uuid.NewString()
	p.registry.Create(id)
	go p.process(id, asset, deletes)

	logging.Info("edit task %s submitted for %s/%s (%d delete ranges)", id, asset.Folder, asset.Name, len(deletes))
	return id, nil
}

// Status returns the current snapshot of a task.
func (p *Pipeline) Status(id string) (Status, error) {
	return p.registry.Status(id)
}

// process is the per-task worker. Every failure lands in the task's
// error state; nothing escapes to crash the process.
func (p *Pipeline) process(id string, asset library.Asset, deletes []Range) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("edit task %s panic: %v", id, r)
			p.registry.SetError(id, fmt.Sprintf("internal error: %v", r))
			metrics.EditTasks.WithLabelValues(string(StateError)).Inc()
		}
	}()

	ctx := context.Background()
	if p.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.taskTimeout)
		defer cancel()
	}

	// The task stays pending until a worker slot is free.
	if err := p.slots.Acquire(ctx, 1); err != nil {
		p.registry.SetError(id, fmt.Sprintf("timed out waiting for an edit worker: %v", err))
		metrics.EditTasks.WithLabelValues(string(StateError)).Inc()
		return
	}
	defer p.slots.Release(1)

	p.registry.SetProcessing(id)
	metrics.EditTasksActive.Inc()
	defer metrics.EditTasksActive.Dec()

	start := time.Now()
	output, err := p.run(ctx, id, asset, deletes)
	if err != nil {
		logging.Warn("edit task %s failed: %v", id, err)
		p.registry.SetError(id, err.Error())
		metrics.EditTasks.WithLabelValues(string(StateError)).Inc()
		return
	}

	p.registry.SetCompleted(id, output)
	metrics.EditTasks.WithLabelValues(string(StateCompleted)).Inc()
	metrics.EditTaskDuration.Observe(time.Since(start).Seconds())
	logging.Info("edit task %s completed in %s: %s", id, time.Since(start).Round(time.Millisecond), output)
}

// run executes the cut-and-concatenate algorithm and returns the output
// filename on success.
func (p *Pipeline) run(ctx context.Context, id string, asset library.Asset, deletes []Range) (string, error) {
	probe, err := p.store.ResolveProbe(ctx, asset)
	if err != nil {
		return "", fmt.Errorf("probe source: %w", err)
	}
	if probe.Duration <= 0 {
		return "", fmt.Errorf("source has no usable duration")
	}

	keeps := dropShort(keepRanges(deletes, probe.Duration))
	if len(keeps) == 0 {
		return "", ErrAllRemoved
	}

	workDir := filepath.Dir(asset.Path)
	outputName := editedName(asset.Name)
	outputPath := filepath.Join(workDir, outputName)

	segmentFiles := make([]string, 0, len(keeps))
	cleanupSegments := func() {
		for _, f := range segmentFiles {
			if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
				logging.Warn("edit task %s: remove temp segment %s: %v", id, f, err)
			}
		}
	}

	for i, keep := range keeps {
		segPath := filepath.Join(workDir, fmt.Sprintf("temp_segment_%d_%s.mp4", i, id))
		if err := p.extractSegment(ctx, asset.Path, segPath, keep); err != nil {
			cleanupSegments()
			return "", fmt.Errorf("extract segment %d [%.3f-%.3f]: %w", i, keep.Start, keep.End, err)
		}
		segmentFiles = append(segmentFiles, segPath)
		p.registry.SetProgress(id, int(math.Round(float64(i+1)/float64(len(keeps)+1)*90)))
	}

	// The concat demuxer reads the manifest relative to its own directory.
	manifestPath := filepath.Join(workDir, fmt.Sprintf("concat_%s.txt", id))
	var manifest strings.Builder
	for _, f := range segmentFiles {
		manifest.WriteString(manifestLine(filepath.Base(f)) + "\n")
	}
	if err := os.WriteFile(manifestPath, []byte(manifest.String()), 0o644); err != nil {
		cleanupSegments()
		return "", fmt.Errorf("write concat manifest: %w", err)
	}

	if err := p.tools.Concat(ctx, manifestPath, outputPath); err != nil {
		// Best-effort cleanup covers the segments only; the manifest
		// stays behind on this path.
		cleanupSegments()
		return "", fmt.Errorf("concatenate segments: %w", err)
	}

	cleanupSegments()
	if err := os.Remove(manifestPath); err != nil && !os.IsNotExist(err) {
		logging.Warn("edit task %s: remove manifest: %v", id, err)
	}
	return outputName, nil
}

// manifestLine renders one concat-demuxer file directive. The demuxer's
// tokenizer treats only single quotes and backslashes specially, so the
// name is single-quoted with embedded quotes escaped as '\''.
func manifestLine(name string) string {
	return "file '" + strings.ReplaceAll(name, "'", `'\''`) + "'"
}

// extractSegment tries each codec profile in order until one succeeds.
// A failed attempt's partial output is removed on every exit path.
func (p *Pipeline) extractSegment(ctx context.Context, src, dst string, keep Range) error {
	var lastErr error
	for _, prof := range p.profiles {
		err := p.tools.ExtractSegment(ctx, src, dst, keep.Start, keep.Duration(), prof.VideoArgs)
		if err == nil {
			return nil
		}
		lastErr = err
		if rmErr := os.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
			logging.Warn("remove partial segment %s: %v", dst, rmErr)
		}
		if ctx.Err() != nil {
			break
		}
		logging.Debug("profile %s failed for %s, trying next: %v", prof.Name, dst, err)
	}
	return lastErr
}

// editedName appends the edited suffix and a timestamp to a filename,
// keeping its extension: clip.mp4 -> clip_edited_1718000000.mp4.
func editedName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_edited_%d%s", base, time.Now().Unix(), ext)
}
