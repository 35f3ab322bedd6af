package sweeper

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/blue-code/FlexPlay/internal/artifacts"
	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/logging"
	"github.com/blue-code/FlexPlay/internal/metrics"
)

// Config sets the budgets a sweep enforces.
type Config struct {
	// MaxAge is how long an unused cache entry may live.
	MaxAge time.Duration
	// MaxSizeBytes is the total byte budget across all cache roots.
	MaxSizeBytes int64
	// Interval between periodic sweeps.
	Interval time.Duration
	// ThumbnailRetention is how long an orphaned thumbnail survives.
	ThumbnailRetention time.Duration
}

// Result reports what a sweep reclaimed.
type Result struct {
	DeletedCount int   `json:"deletedCount"`
	FreedBytes   int64 `json:"freedBytes"`
}

// entry is one top-level cache item considered for eviction.
type entry struct {
	path       string
	lastAccess time.Time
	size       int64
}

// Sweeper reclaims cache storage on a timer: an age pass, a size-budget
// pass in LRU order, and an orphan-thumbnail pass. Every phase is
// best-effort; one bad item never aborts the sweep.
type Sweeper struct {
	cfg      Config
	roots    []string
	thumbDir string
	lib      *library.Library
	stopChan chan struct{}
}

// New creates a Sweeper over the store's cache roots.
func New(cfg Config, store *artifacts.Store, lib *library.Library) *Sweeper {
	return &Sweeper{
		cfg:      cfg,
		roots:    store.CacheDirs(),
		thumbDir: store.ThumbnailDir(),
		lib:      lib,
		stopChan: make(chan struct{}),
	}
}

// Start runs one sweep immediately, then sweeps on the configured
// interval until Stop is called. It blocks and is meant to run on its
// own goroutine.
func (s *Sweeper) Start() {
	s.Sweep()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stopChan:
			return
		}
	}
}

// Stop terminates the periodic sweep loop.
func (s *Sweeper) Stop() {
	close(s.stopChan)
}

// Sweep runs the three eviction phases and reports what was reclaimed.
func (s *Sweeper) Sweep() Result {
	start := time.Now()
	var result Result

	s.sweepByAge(&result)
	s.sweepBySize(&result)
	s.sweepOrphanThumbnails(&result)

	metrics.SweepRuns.Inc()
	metrics.SweepDeletedEntries.Add(float64(result.DeletedCount))
	metrics.SweepFreedBytes.Add(float64(result.FreedBytes))
	metrics.CacheSizeBytes.Set(float64(s.totalSize()))

	logging.Info("cache sweep finished in %s: %d entries deleted, %d bytes freed",
		time.Since(start).Round(time.Millisecond), result.DeletedCount, result.FreedBytes)
	return result
}

// sweepByAge deletes top-level entries older than MaxAge.
func (s *Sweeper) sweepByAge(result *Result) {
	now := time.Now()
	for _, e := range s.collect() {
		if now.Sub(e.lastAccess) <= s.cfg.MaxAge {
			continue
		}
		if s.remove(e) {
			result.DeletedCount++
			result.FreedBytes += e.size
		}
	}
}

// sweepBySize deletes entries in ascending last-access order until the
// total cache size fits the byte budget.
func (s *Sweeper) sweepBySize(result *Result) {
	entries := s.collect()

	var total int64
	for _, e := range entries {
		total += e.size
	}
	if total <= s.cfg.MaxSizeBytes {
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].lastAccess.Before(entries[j].lastAccess)
	})

	for _, e := range entries {
		if total <= s.cfg.MaxSizeBytes {
			break
		}
		if s.remove(e) {
			total -= e.size
			result.DeletedCount++
			result.FreedBytes += e.size
		}
	}
}

// sweepOrphanThumbnails deletes thumbnails whose asset no longer exists
// in any configured folder, once they outlive the retention window.
func (s *Sweeper) sweepOrphanThumbnails(result *Result) {
	valid := make(map[string]bool)
	for _, asset := range s.lib.List(nil) {
		valid[artifacts.Key(asset.Folder, asset.Name)+".jpg"] = true
	}

	dirEntries, err := os.ReadDir(s.thumbDir)
	if err != nil {
		logging.Warn("sweep: read thumbnail dir: %v", err)
		return
	}

	now := time.Now()
	for _, de := range dirEntries {
		if de.IsDir() || valid[de.Name()] {
			continue
		}
		path := filepath.Join(s.thumbDir, de.Name())
		info, err := de.Info()
		if err != nil {
			logging.Warn("sweep: stat %s: %v", path, err)
			continue
		}
		if now.Sub(lastAccessTime(path, info)) <= s.cfg.ThumbnailRetention {
			continue
		}
		if err := os.Remove(path); err != nil {
			logging.Warn("sweep: remove orphan thumbnail %s: %v", path, err)
			continue
		}
		result.DeletedCount++
		result.FreedBytes += info.Size()
	}
}

// collect lists all top-level entries across the cache roots with their
// last access time and size (directories are sized recursively).
func (s *Sweeper) collect() []entry {
	var entries []entry
	for _, root := range s.roots {
		dirEntries, err := os.ReadDir(root)
		if err != nil {
			logging.Warn("sweep: read cache root %s: %v", root, err)
			continue
		}
		for _, de := range dirEntries {
			path := filepath.Join(root, de.Name())
			info, err := de.Info()
			if err != nil {
				logging.Warn("sweep: stat %s: %v", path, err)
				continue
			}
			e := entry{path: path, lastAccess: lastAccessTime(path, info)}
			if de.IsDir() {
				e.size = dirSize(path)
			} else {
				e.size = info.Size()
			}
			entries = append(entries, e)
		}
	}
	return entries
}

// remove deletes one entry, logging and skipping on failure.
func (s *Sweeper) remove(e entry) bool {
	if err := os.RemoveAll(e.path); err != nil {
		logging.Warn("sweep: remove %s: %v", e.path, err)
		return false
	}
	logging.Debug("sweep: removed %s (%d bytes, last access %s)", e.path, e.size, e.lastAccess.Format(time.RFC3339))
	return true
}

func (s *Sweeper) totalSize() int64 {
	var total int64
	for _, e := range s.collect() {
		total += e.size
	}
	return total
}

// dirSize sums the file sizes under a directory.
func dirSize(path string) int64 {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable children are skipped, not fatal
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	if err != nil {
		logging.Debug("sweep: size %s: %v", path, err)
	}
	return size
}
