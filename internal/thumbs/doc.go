// Package thumbs schedules background thumbnail generation. Jobs are
// deduplicated per asset key and throttled by a small fixed pool of
// worker slots so ffmpeg never floods the host.
package thumbs
