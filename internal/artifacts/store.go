package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blue-code/FlexPlay/internal/ffmpeg"
	"github.com/blue-code/FlexPlay/internal/library"
	"github.com/blue-code/FlexPlay/internal/logging"
	"github.com/blue-code/FlexPlay/internal/metrics"
)

// Kind identifies a class of derived artifact.
type Kind string

const (
	// KindTranscode is a browser-compatible MP4 rendition.
	KindTranscode Kind = "transcode"
	// KindHLS is a segmented HLS bundle (playlist + .ts segments).
	KindHLS Kind = "hls"
	// KindThumbnail is a single preview JPEG.
	KindThumbnail Kind = "thumbnail"
	// KindProbe is probed stream metadata (in-memory only).
	KindProbe Kind = "probe"
)

const (
	// buildTimeout bounds a synchronous transcode or HLS build.
	buildTimeout = 600 * time.Second
	// probeTimeout bounds a metadata probe.
	probeTimeout = 30 * time.Second

	playlistName   = "playlist.m3u8"
	segmentPattern = "seg_%05d.ts"
)

// ErrSegmentNotFound is returned for an HLS segment that does not exist
// in the asset's bundle.
var ErrSegmentNotFound = errors.New("hls segment not found")

// ErrNoArtifact signals that no artifact exists yet for an asynchronous
// kind; the caller should treat the result as pending.
var ErrNoArtifact = errors.New("artifact not generated yet")

// ThumbnailScheduler schedules background thumbnail generation. It is
// implemented by the thumbs package and injected at wiring time.
type ThumbnailScheduler interface {
	// ScheduleIfAbsent starts a job for the asset unless one is already
	// in flight. It returns true if a new job was started.
	ScheduleIfAbsent(asset library.Asset) bool
}

// Resolution is the outcome of resolving a derived artifact.
type Resolution struct {
	// Path is the artifact location; empty while Pending with no
	// previous artifact on disk.
	Path string
	// Pending reports that a background rebuild is scheduled or running.
	// Path may still be set to a stale-but-servable artifact.
	Pending bool
}

// Store is the derived-artifact cache. It owns the cache directory
// layout, decides validity (artifact mtime >= source mtime), rebuilds
// synchronous kinds in place with atomic promotion, and delegates
// thumbnail rebuilds to the background scheduler.
//
// Concurrent requests for the same stale synchronous artifact may each
// run a rebuild. The promote step keeps that safe (last rename wins,
// never a partial file); it is redundant work, not a correctness hazard.
type Store struct {
	transcodeDir string
	hlsDir       string
	thumbDir     string

	tools     *ffmpeg.Toolkit
	probes    *ffmpeg.ProbeCache
	scheduler ThumbnailScheduler
}

// New creates the Store and its cache directories under cacheRoot.
func New(cacheRoot string, tools *ffmpeg.Toolkit, probes *ffmpeg.ProbeCache) (*Store, error) {
	s := &Store{
		transcodeDir: filepath.Join(cacheRoot, "transcoded"),
		hlsDir:       filepath.Join(cacheRoot, "hls"),
		thumbDir:     filepath.Join(cacheRoot, "thumbnails"),
		tools:        tools,
		probes:       probes,
	}
	for _, dir := range []string{s.transcodeDir, s.hlsDir, s.thumbDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
		}
	}
	return s, nil
}

// SetThumbnailScheduler injects the background scheduler. Without one,
// thumbnail resolution reports pending only when a stale artifact exists.
func (s *Store) SetThumbnailScheduler(sched ThumbnailScheduler) {
	s.scheduler = sched
}

// CacheDirs returns the cache roots managed by the store, for the
// eviction sweep.
func (s *Store) CacheDirs() []string {
	return []string{s.transcodeDir, s.hlsDir, s.thumbDir}
}

// ThumbnailDir returns the thumbnail cache root.
func (s *Store) ThumbnailDir() string { return s.thumbDir }

// TranscodePath returns the cache location of an asset's MP4 rendition.
func (s *Store) TranscodePath(asset library.Asset) string {
	return filepath.Join(s.transcodeDir, Key(asset.Folder, asset.Name)+".mp4")
}

// HLSDir returns the cache directory of an asset's HLS bundle.
func (s *Store) HLSDir(asset library.Asset) string {
	return filepath.Join(s.hlsDir, Key(asset.Folder, asset.Name))
}

// PlaylistPath returns the location of an asset's HLS playlist.
func (s *Store) PlaylistPath(asset library.Asset) string {
	return filepath.Join(s.HLSDir(asset), playlistName)
}

// ThumbnailPath returns the cache location of an asset's thumbnail.
func (s *Store) ThumbnailPath(asset library.Asset) string {
	return filepath.Join(s.thumbDir, Key(asset.Folder, asset.Name)+".jpg")
}

// fresh reports whether the artifact at path is at least as new as the
// source. A missing artifact is never fresh.
func fresh(path string, sourceModTime time.Time) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.ModTime().Before(sourceModTime)
}

// Resolve resolves one artifact kind for an asset. Synchronous kinds
// (transcode, hls, probe) block until built or failed; thumbnails return
// immediately with Pending set while a background job takes over.
func (s *Store) Resolve(ctx context.Context, asset library.Asset, kind Kind) (Resolution, error) {
	switch kind {
	case KindTranscode:
		path, err := s.ResolveTranscode(ctx, asset)
		return Resolution{Path: path}, err
	case KindHLS:
		path, err := s.ResolveHLS(ctx, asset)
		return Resolution{Path: path}, err
	case KindThumbnail:
		return s.ResolveThumbnail(asset)
	case KindProbe:
		if _, err := s.ResolveProbe(ctx, asset); err != nil {
			return Resolution{}, err
		}
		return Resolution{}, nil
	default:
		return Resolution{}, fmt.Errorf("unknown artifact kind %q", kind)
	}
}

// ResolveTranscode returns the asset's compatible MP4 rendition, building
// it synchronously on miss or staleness. A pre-existing stale file is
// left untouched when the build fails, so the next request retries.
func (s *Store) ResolveTranscode(ctx context.Context, asset library.Asset) (string, error) {
	cachePath := s.TranscodePath(asset)
	if fresh(cachePath, asset.ModTime) {
		metrics.ArtifactCacheHits.WithLabelValues(string(KindTranscode)).Inc()
		return cachePath, nil
	}
	metrics.ArtifactCacheMisses.WithLabelValues(string(KindTranscode)).Inc()

	buildCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	start := time.Now()
	tmpPath := fmt.Sprintf("%s.build-%d.mp4", cachePath, time.Now().UnixNano())
	if err := s.tools.Transcode(buildCtx, asset.Path, tmpPath); err != nil {
		removeQuiet(tmpPath)
		metrics.TranscodeJobs.WithLabelValues("error").Inc()
		return "", err
	}
	if err := os.Rename(tmpPath, cachePath); err != nil {
		removeQuiet(tmpPath)
		metrics.TranscodeJobs.WithLabelValues("error").Inc()
		return "", fmt.Errorf("promote transcode artifact: %w", err)
	}

	metrics.TranscodeJobs.WithLabelValues("success").Inc()
	metrics.TranscodeDuration.Observe(time.Since(start).Seconds())
	logging.Info("transcoded %s/%s in %s", asset.Folder, asset.Name, time.Since(start).Round(time.Millisecond))
	return cachePath, nil
}

// ResolveHLS returns the asset's HLS playlist, rebuilding the bundle
// synchronously on miss or staleness. The bundle is generated into a
// distinct build directory and promoted by rename so a half-written
// playlist is never served.
func (s *Store) ResolveHLS(ctx context.Context, asset library.Asset) (string, error) {
	bundleDir := s.HLSDir(asset)
	playlist := filepath.Join(bundleDir, playlistName)
	if fresh(playlist, asset.ModTime) {
		metrics.ArtifactCacheHits.WithLabelValues(string(KindHLS)).Inc()
		return playlist, nil
	}
	metrics.ArtifactCacheMisses.WithLabelValues(string(KindHLS)).Inc()

	buildCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()

	buildDir := fmt.Sprintf("%s.build-%d", bundleDir, time.Now().UnixNano())
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", fmt.Errorf("create hls build dir: %w", err)
	}

	start := time.Now()
	err := s.tools.BuildHLS(buildCtx, asset.Path,
		filepath.Join(buildDir, playlistName),
		filepath.Join(buildDir, segmentPattern))
	if err != nil {
		_ = os.RemoveAll(buildDir)
		return "", err
	}

	// Promote: drop the previous bundle, then rename the build into place.
	if err := os.RemoveAll(bundleDir); err != nil {
		_ = os.RemoveAll(buildDir)
		return "", fmt.Errorf("replace hls bundle: %w", err)
	}
	if err := os.Rename(buildDir, bundleDir); err != nil {
		_ = os.RemoveAll(buildDir)
		return "", fmt.Errorf("promote hls bundle: %w", err)
	}

	logging.Info("built HLS bundle for %s/%s in %s", asset.Folder, asset.Name, time.Since(start).Round(time.Millisecond))
	return playlist, nil
}

// HLSSegment resolves one segment file of an asset's bundle. Segment
// names are confined to the bundle directory.
func (s *Store) HLSSegment(asset library.Asset, segment string) (string, error) {
	if segment != filepath.Base(segment) || !strings.HasSuffix(segment, ".ts") {
		return "", ErrSegmentNotFound
	}
	path := filepath.Join(s.HLSDir(asset), segment)
	if _, err := os.Stat(path); err != nil {
		return "", ErrSegmentNotFound
	}
	return path, nil
}

// ResolveThumbnail returns the asset's thumbnail without blocking. A
// fresh artifact is a plain hit. On miss the job is scheduled and the
// result is pending; on staleness the old artifact is still returned as
// servable alongside the pending flag.
func (s *Store) ResolveThumbnail(asset library.Asset) (Resolution, error) {
	cachePath := s.ThumbnailPath(asset)
	if fresh(cachePath, asset.ModTime) {
		metrics.ArtifactCacheHits.WithLabelValues(string(KindThumbnail)).Inc()
		return Resolution{Path: cachePath}, nil
	}
	metrics.ArtifactCacheMisses.WithLabelValues(string(KindThumbnail)).Inc()

	if s.scheduler != nil {
		s.scheduler.ScheduleIfAbsent(asset)
	}

	if _, err := os.Stat(cachePath); err == nil {
		// Stale but servable while the rebuild runs.
		return Resolution{Path: cachePath, Pending: true}, nil
	}
	return Resolution{Pending: true}, nil
}

// ResolveProbe returns probed metadata for the asset, memoized per
// source modification time.
func (s *Store) ResolveProbe(ctx context.Context, asset library.Asset) (*ffmpeg.ProbeResult, error) {
	if cached, ok := s.probes.Get(asset.Path, asset.ModTime); ok {
		metrics.ArtifactCacheHits.WithLabelValues(string(KindProbe)).Inc()
		return cached, nil
	}
	metrics.ArtifactCacheMisses.WithLabelValues(string(KindProbe)).Inc()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	result, err := s.tools.Probe(probeCtx, asset.Path)
	if err != nil {
		return nil, err
	}
	s.probes.Put(asset.Path, asset.ModTime, result)
	return result, nil
}

// InvalidateAsset removes every on-disk artifact derived from the asset.
// Used when the source file itself is deleted.
func (s *Store) InvalidateAsset(asset library.Asset) {
	removeQuiet(s.TranscodePath(asset))
	removeQuiet(s.ThumbnailPath(asset))
	if err := os.RemoveAll(s.HLSDir(asset)); err != nil {
		logging.Warn("remove hls bundle for %s/%s: %v", asset.Folder, asset.Name, err)
	}
}

func removeQuiet(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("remove %s: %v", path, err)
	}
}
