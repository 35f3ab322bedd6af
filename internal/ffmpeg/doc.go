// Package ffmpeg wraps the external ffmpeg and ffprobe binaries behind a
// small toolkit used for probing, transcoding, HLS segmentation, frame
// capture, segment extraction and lossless concatenation.
//
// Every invocation is bounded by the caller's context and reports
// failures as *RunError values carrying the tool's stderr diagnostics.
// A host without ffmpeg installed yields a disabled toolkit; callers
// check IsEnabled and degrade rather than crash.
package ffmpeg
