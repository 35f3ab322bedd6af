package thumbs

import (
	"bytes"
	"context"
	"image"
	"math"
	"sync"
	"time"

	_ "image/png" // ffmpeg frame captures arrive as PNG

	"github.com/disintegration/imaging"
	"github.com/google/renameio/v2"
	"golang.org/x/sync/semaphore"

	"github.com/blue-code/FlexPlay/internal/artifacts"
	"github.com/blue-code/FlexPlay/internal/ffmpeg"
	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/logging"
	"github.com/blue-code/FlexPlay/internal/metrics"
	"github.com/blue-code/FlexPlay/internal/workers"
)

const (
	// DefaultSlots is the system-wide cap on concurrently running
	// thumbnail generation jobs.
	DefaultSlots = 2

	// captureWidth is the fixed width frames are grabbed at.
	captureWidth = 480
	// jpegQuality for the stored thumbnail.
	jpegQuality = 80
	// jobTimeout bounds one generation attempt end to end.
	jobTimeout = 2 * time.Minute
)

// Scheduler deduplicates and throttles background thumbnail generation.
// At most one job per asset key is in flight at a time, and at most
// slot-count jobs run system-wide.
type Scheduler struct {
	store *artifacts.Store
	tools *ffmpeg.Toolkit
	slots *semaphore.Weighted

	mu       sync.Mutex
	inFlight map[string]bool

	disabledOnce sync.Once
}

// NewScheduler creates a Scheduler over the store's thumbnail cache.
// Slot count defaults to DefaultSlots, overridable with THUMBNAIL_WORKERS.
func NewScheduler(store *artifacts.Store, tools *ffmpeg.Toolkit) *Scheduler {
	n := workers.Slots("THUMBNAIL_WORKERS", DefaultSlots, 8)
	logging.Debug("thumbnail scheduler: %d worker slots", n)
	return &Scheduler{
		store:    store,
		tools:    tools,
		slots:    semaphore.NewWeighted(int64(n)),
		inFlight: make(map[string]bool),
	}
}

// ScheduleIfAbsent starts a background generation job for the asset
// unless one is already scheduled or running. It returns true if a new
// job was started.
func (s *Scheduler) ScheduleIfAbsent(asset library.Asset) bool {
	if !s.tools.IsEnabled() {
		s.disabledOnce.Do(func() {
			logging.Warn("thumbnail generation disabled: ffmpeg not available")
		})
		return false
	}

	key := asset.Folder + "/" + asset.Name

	s.mu.Lock()
	if s.inFlight[key] {
		s.mu.Unlock()
		metrics.ThumbnailJobs.WithLabelValues("deduplicated").Inc()
		return false
	}
	s.inFlight[key] = true
	s.mu.Unlock()

	go s.runJob(key, asset)
	return true
}

// InFlight returns the number of scheduled-or-running jobs.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// runJob generates one thumbnail. The in-flight entry and the worker
// slot are released on every exit path, including panics.
func (s *Scheduler) runJob(key string, asset library.Asset) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("thumbnail job panic for %s: %v", key, r)
			metrics.ThumbnailJobs.WithLabelValues("error").Inc()
		}
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	// Block for a slot before touching the filesystem.
	if err := s.slots.Acquire(ctx, 1); err != nil {
		logging.Warn("thumbnail job for %s never got a slot: %v", key, err)
		metrics.ThumbnailJobs.WithLabelValues("error").Inc()
		return
	}
	defer s.slots.Release(1)

	metrics.ThumbnailJobsRunning.Inc()
	defer metrics.ThumbnailJobsRunning.Dec()

	start := time.Now()
	if err := s.generate(ctx, asset); err != nil {
		logging.Warn("thumbnail generation failed for %s: %v", key, err)
		metrics.ThumbnailJobs.WithLabelValues("error").Inc()
		return
	}
	metrics.ThumbnailJobs.WithLabelValues("success").Inc()
	metrics.ThumbnailDuration.Observe(time.Since(start).Seconds())
	logging.Debug("thumbnail generated for %s in %s", key, time.Since(start).Round(time.Millisecond))
}

func (s *Scheduler) generate(ctx context.Context, asset library.Asset) error {
	offset := s.seekOffset(ctx, asset)

	frame, err := s.tools.CaptureFrame(ctx, asset.Path, offset, captureWidth)
	if err != nil && offset > 0 {
		// Some files have no keyframe near the offset; retry from the start.
		logging.Debug("frame capture at %.2fs failed for %s, retrying at 0: %v", offset, asset.Name, err)
		frame, err = s.tools.CaptureFrame(ctx, asset.Path, 0, captureWidth)
	}
	if err != nil {
		return err
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return err
	}

	thumb := imaging.Fit(img, captureWidth, captureWidth, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return err
	}

	// renameio writes to a temp file and renames, so a partial thumbnail
	// is never visible at the cache path.
	return renameio.WriteFile(s.store.ThumbnailPath(asset), buf.Bytes(), 0o644)
}

// seekOffset probes the asset's duration and picks the capture offset.
// A failed probe just captures the first frame.
func (s *Scheduler) seekOffset(ctx context.Context, asset library.Asset) float64 {
	probe, err := s.store.ResolveProbe(ctx, asset)
	if err != nil {
		return 0
	}
	return computeSeekOffset(probe.Duration)
}

// computeSeekOffset picks where to grab the preview frame: 20% into the
// video, at least one second in, but never closer than 0.25 s to the
// end, rounded to two decimals. Unknown or near-zero durations capture
// the first frame.
func computeSeekOffset(duration float64) float64 {
	if duration <= 0.5 {
		return 0
	}
	offset := clamp(duration*0.2, 1.0, duration-0.25)
	return math.Round(offset*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
