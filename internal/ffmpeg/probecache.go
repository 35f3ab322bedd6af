package ffmpeg

import (
	"sync"
	"time"
)

type probeEntry struct {
	result  *ProbeResult
	modTime time.Time
}

// ProbeCache memoizes probe results per source path. An entry is valid
// only while the source's modification time is unchanged; it lives in
// memory and does not survive a restart.
type ProbeCache struct {
	mu      sync.RWMutex
	entries map[string]probeEntry
}

// NewProbeCache creates an empty probe cache.
func NewProbeCache() *ProbeCache {
	return &ProbeCache{entries: make(map[string]probeEntry)}
}

// Get returns the cached probe result for path if it was stored for the
// same source modification time.
func (c *ProbeCache) Get(path string, modTime time.Time) (*ProbeResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || !entry.modTime.Equal(modTime) {
		return nil, false
	}
	return entry.result, true
}

// Put stores a probe result keyed by path and source modification time.
func (c *ProbeCache) Put(path string, modTime time.Time, result *ProbeResult) {
	c.mu.Lock()
	c.entries[path] = probeEntry{result: result, modTime: modTime}
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *ProbeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
