package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/blue-code/FlexPlay/internal/logging"
)

// ErrDisabled is returned when ffmpeg/ffprobe are not installed. All
// derived-artifact generation short-circuits on it.
var ErrDisabled = errors.New("ffmpeg not available")

// stderrTailLimit bounds how much diagnostic output a RunError carries.
const stderrTailLimit = 4096

// RunError describes a failed ffmpeg/ffprobe invocation, including the
// tail of its stderr output for diagnostics.
type RunError struct {
	Op       string
	ExitCode int
	Timeout  bool
	Stderr   string
	Err      error
}

func (e *RunError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out", e.Op)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed (exit %d): %s", e.Op, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// ProbeResult holds the metadata ffprobe reports for a media file.
type ProbeResult struct {
	Duration float64      `json:"duration"`
	Streams  []StreamInfo `json:"streams"`
}

// StreamInfo describes a single audio or video stream.
type StreamInfo struct {
	Type     string `json:"type"`
	Codec    string `json:"codec"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Channels int    `json:"channels,omitempty"`
	BitRate  int64  `json:"bitrate,omitempty"`
}

// VideoStream returns the first video stream, or nil if there is none.
func (p *ProbeResult) VideoStream() *StreamInfo {
	for i := range p.Streams {
		if p.Streams[i].Type == "video" {
			return &p.Streams[i]
		}
	}
	return nil
}

// Toolkit wraps the external ffmpeg and ffprobe binaries. It is stateless
// and safe for concurrent use; every method runs a fresh process bounded
// by the caller's context.
type Toolkit struct {
	ffmpegPath  string
	ffprobePath string
	enabled     bool
}

// New locates ffmpeg and ffprobe on PATH, honoring FFMPEG_PATH and
// FFPROBE_PATH overrides. A missing binary does not fail startup; it
// disables everything that depends on the toolkit, logged once.
func New() *Toolkit {
	if fp, pp := os.Getenv("FFMPEG_PATH"), os.Getenv("FFPROBE_PATH"); fp != "" && pp != "" {
		return NewWithPaths(fp, pp)
	}

	t := &Toolkit{}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		logging.Warn("ffmpeg not found in PATH; transcoding, thumbnails, HLS and editing are disabled")
		return t
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		logging.Warn("ffprobe not found in PATH; transcoding, thumbnails, HLS and editing are disabled")
		return t
	}

	t.ffmpegPath = ffmpegPath
	t.ffprobePath = ffprobePath
	t.enabled = true
	logging.Debug("ffmpeg toolkit: %s, %s", ffmpegPath, ffprobePath)
	return t
}

// NewWithPaths builds a toolkit around explicit binary locations,
// bypassing the PATH lookup.
func NewWithPaths(ffmpegPath, ffprobePath string) *Toolkit {
	return &Toolkit{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		enabled:     true,
	}
}

// IsEnabled reports whether the external binaries were found.
func (t *Toolkit) IsEnabled() bool { return t.enabled }

// run executes one tool invocation and normalizes failures into *RunError.
func (t *Toolkit) run(ctx context.Context, op, bin string, args ...string) ([]byte, error) {
	if !t.enabled {
		return nil, ErrDisabled
	}

	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	runErr := &RunError{Op: op, Err: err, Stderr: stderrTail(stderr.Bytes())}
	if ctx.Err() != nil {
		runErr.Timeout = errors.Is(ctx.Err(), context.DeadlineExceeded)
		runErr.Err = ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		runErr.ExitCode = exitErr.ExitCode()
	}
	return nil, runErr
}

func stderrTail(b []byte) string {
	if len(b) > stderrTailLimit {
		b = b[len(b)-stderrTailLimit:]
	}
	return string(bytes.TrimSpace(b))
}

// ffprobe JSON output shapes; only the fields we consume.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Channels  int    `json:"channels"`
		BitRate   string `json:"bit_rate"`
	} `json:"streams"`
}

// Probe extracts duration and stream metadata from a media file.
func (t *Toolkit) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	out, err := t.run(ctx, "ffprobe", t.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, err
	}

	var raw probeOutput
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("ffprobe output parse: %w", err)
	}

	result := &ProbeResult{}
	result.Duration, _ = strconv.ParseFloat(raw.Format.Duration, 64)
	for _, s := range raw.Streams {
		info := StreamInfo{
			Type:     s.CodecType,
			Codec:    s.CodecName,
			Width:    s.Width,
			Height:   s.Height,
			Channels: s.Channels,
		}
		info.BitRate, _ = strconv.ParseInt(s.BitRate, 10, 64)
		result.Streams = append(result.Streams, info)
	}
	return result, nil
}

// CaptureFrame grabs a single frame at the given offset as PNG bytes,
// scaled to the given width (height preserves aspect ratio).
func (t *Toolkit) CaptureFrame(ctx context.Context, src string, seekSeconds float64, width int) ([]byte, error) {
	args := []string{}
	if seekSeconds > 0 {
		args = append(args, "-ss", strconv.FormatFloat(seekSeconds, 'f', 2, 64))
	}
	args = append(args,
		"-i", src,
		"-vframes", "1",
		"-vf", fmt.Sprintf("scale=%d:-2", width),
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	out, err := t.run(ctx, "ffmpeg frame capture", t.ffmpegPath, args...)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &RunError{Op: "ffmpeg frame capture", Stderr: "no frame data produced"}
	}
	return out, nil
}

// ExtractSegment re-encodes the [start, start+duration) window of src to
// dst using the supplied video encoder arguments. The audio stream is
// copied verbatim.
func (t *Toolkit) ExtractSegment(ctx context.Context, src, dst string, start, duration float64, videoArgs []string) error {
	args := []string{
		"-y",
		"-i", src,
		"-ss", strconv.FormatFloat(start, 'f', 3, 64),
		"-t", strconv.FormatFloat(duration, 'f', 3, 64),
	}
	args = append(args, videoArgs...)
	args = append(args, "-c:a", "copy", dst)

	_, err := t.run(ctx, "ffmpeg segment extract", t.ffmpegPath, args...)
	return err
}

// Concat losslessly concatenates the files listed in the manifest into dst.
// The manifest uses ffmpeg's concat demuxer format and must list file names
// relative to its own directory.
func (t *Toolkit) Concat(ctx context.Context, manifestPath, dst string) error {
	if !t.enabled {
		return ErrDisabled
	}

	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-c", "copy",
		dst,
	)
	// Relative entries in the manifest resolve against the working directory.
	cmd.Dir = filepath.Dir(manifestPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		runErr := &RunError{Op: "ffmpeg concat", Err: err, Stderr: stderrTail(stderr.Bytes())}
		if ctx.Err() != nil {
			runErr.Timeout = errors.Is(ctx.Err(), context.DeadlineExceeded)
			runErr.Err = ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			runErr.ExitCode = exitErr.ExitCode()
		}
		return runErr
	}
	return nil
}

// Transcode rewrites src as a maximally compatible H.264/AAC MP4 at dst.
// Baseline profile and yuv420p keep older iOS devices happy.
func (t *Toolkit) Transcode(ctx context.Context, src, dst string) error {
	_, err := t.run(ctx, "ffmpeg transcode", t.ffmpegPath,
		"-y",
		"-i", src,
		"-c:v", "libx264",
		"-profile:v", "baseline",
		"-level", "3.0",
		"-preset", "fast",
		"-crf", "23",
		"-maxrate", "2M",
		"-bufsize", "4M",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-ar", "44100",
		"-movflags", "+faststart",
		"-f", "mp4",
		dst,
	)
	return err
}

// BuildHLS segments src into an HLS bundle: a VOD playlist at
// playlistPath plus numbered transport-stream segments written to
// segmentPattern (a printf-style ffmpeg pattern, e.g. ".../seg_%05d.ts").
func (t *Toolkit) BuildHLS(ctx context.Context, src, playlistPath, segmentPattern string) error {
	_, err := t.run(ctx, "ffmpeg hls", t.ffmpegPath,
		"-y",
		"-i", src,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-hls_time", "6",
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", segmentPattern,
		playlistPath,
	)
	return err
}
