package thumbs

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/blue-code/FlexPlay/internal/artifacts"
	"github.com/blue-code/FlexPlay/internal/ffmpeg"
	"github.com/blue-code/FlexPlay/internal/library"
)

func TestComputeSeekOffset(t *testing.T) {
	tests := []struct {
		duration float64
		want     float64
	}{
		{0, 0},
		{0.4, 0},
		{0.5, 0},      // at the short-clip cutoff
		{0.6, 0.35},   // end guard wins over the one-second floor
		{1.0, 0.75},   // end guard again
		{3, 1.0},      // one-second floor
		{4.9, 1.0},    // still below the 20% knee
		{10, 2.0},     // plain 20%
		{100, 20.0},   // plain 20%
		{3600, 720.0}, // long-form
	}

	for _, tt := range tests {
		if got := computeSeekOffset(tt.duration); got != tt.want {
			t.Errorf("computeSeekOffset(%g) = %g, want %g", tt.duration, got, tt.want)
		}
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tool stubs require a POSIX shell")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

// writeFramePNG produces the stand-in frame the fake ffmpeg emits.
func writeFramePNG(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 640, 360))
	for y := 0; y < 360; y++ {
		for x := 0; x < 640; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	path := filepath.Join(dir, "frame.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	return path
}

func newTestScheduler(t *testing.T, ffmpegBody string) (*Scheduler, *artifacts.Store) {
	t.Helper()
	dir := t.TempDir()
	fm := writeScript(t, dir, "ffmpeg", ffmpegBody)
	fp := writeScript(t, dir, "ffprobe", `echo '{"format":{"duration":"60.0"},"streams":[{"codec_type":"video","codec_name":"h264","width":1280,"height":720}]}'`)
	tools := ffmpeg.NewWithPaths(fm, fp)

	store, err := artifacts.New(t.TempDir(), tools, ffmpeg.NewProbeCache())
	if err != nil {
		t.Fatalf("artifacts.New: %v", err)
	}
	return NewScheduler(store, tools), store
}

func testAsset(t *testing.T) library.Asset {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, []byte("fake video"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, _ := os.Stat(path)
	return library.Asset{Folder: "movies", Name: "clip.mp4", Path: path, ModTime: info.ModTime(), Extension: ".mp4"}
}

func waitForDrain(t *testing.T, s *Scheduler) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if s.InFlight() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("scheduler never drained, %d jobs in flight", s.InFlight())
}

func TestScheduleIfAbsentDisabled(t *testing.T) {
	store, err := artifacts.New(t.TempDir(), &ffmpeg.Toolkit{}, ffmpeg.NewProbeCache())
	if err != nil {
		t.Fatal(err)
	}
	s := NewScheduler(store, &ffmpeg.Toolkit{})

	if s.ScheduleIfAbsent(testAsset(t)) {
		t.Error("ScheduleIfAbsent started a job with a disabled toolkit")
	}
	if s.InFlight() != 0 {
		t.Errorf("InFlight() = %d", s.InFlight())
	}
}

func TestScheduleIfAbsentDeduplicates(t *testing.T) {
	s, _ := newTestScheduler(t, "exit 1")
	asset := testAsset(t)

	// Mark the key in flight by hand so the dedup check is deterministic.
	key := asset.Folder + "/" + asset.Name
	s.mu.Lock()
	s.inFlight[key] = true
	s.mu.Unlock()

	if s.ScheduleIfAbsent(asset) {
		t.Error("ScheduleIfAbsent started a duplicate job")
	}

	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

func TestFailedJobReleasesKey(t *testing.T) {
	s, store := newTestScheduler(t, `echo "capture failed" >&2
exit 1`)
	asset := testAsset(t)

	if !s.ScheduleIfAbsent(asset) {
		t.Fatal("ScheduleIfAbsent did not start a job")
	}
	waitForDrain(t, s)

	if _, err := os.Stat(store.ThumbnailPath(asset)); !os.IsNotExist(err) {
		t.Error("failed job left a thumbnail behind")
	}

	// The key is free again for the next attempt.
	if !s.ScheduleIfAbsent(asset) {
		t.Error("key still held after the job finished")
	}
	waitForDrain(t, s)
}

func TestGenerateWritesThumbnail(t *testing.T) {
	dir := t.TempDir()
	framePath := writeFramePNG(t, dir)
	s, store := newTestScheduler(t, `cat "`+framePath+`"`)
	asset := testAsset(t)

	if !s.ScheduleIfAbsent(asset) {
		t.Fatal("ScheduleIfAbsent did not start a job")
	}
	waitForDrain(t, s)

	data, err := os.ReadFile(store.ThumbnailPath(asset))
	if err != nil {
		t.Fatalf("thumbnail not written: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("thumbnail is not a JPEG")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > captureWidth || b.Dy() > captureWidth {
		t.Errorf("thumbnail %dx%d exceeds the %dpx bounding box", b.Dx(), b.Dy(), captureWidth)
	}
}

func TestSchedulerSlotCap(t *testing.T) {
	s, _ := newTestScheduler(t, "exit 1")

	// All slots acquired: a job could not run right now.
	for i := 0; i < DefaultSlots; i++ {
		if !s.slots.TryAcquire(1) {
			t.Fatalf("slot %d not available on a fresh scheduler", i)
		}
	}
	if s.slots.TryAcquire(1) {
		t.Errorf("more than %d slots available", DefaultSlots)
	}
	for i := 0; i < DefaultSlots; i++ {
		s.slots.Release(1)
	}
}
