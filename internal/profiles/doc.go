// Package profiles resolves the ordered list of video encoder profiles
// used for edit-segment extraction: a hardware-accelerated encoder where
// the host has one, then software x264 as the universal fallback.
package profiles
