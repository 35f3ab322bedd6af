// Package handlers contains the HTTP handlers: library listing and
// playback, derived-artifact resolution (transcode, HLS, thumbnails,
// probe), edit task submission and status, play history, and cache
// maintenance.
package handlers
