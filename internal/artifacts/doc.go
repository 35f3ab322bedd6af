// Package artifacts implements the derived-artifact cache: per-asset
// transcodes, HLS bundles, thumbnails and probe results, rebuilt lazily
// whenever the cached copy is older than its source.
//
// Validity is a single rule: an artifact is valid iff its modification
// time is at least the source's. Stale artifacts are never deleted
// eagerly; they are replaced on the next successful rebuild or reclaimed
// by the eviction sweep.
package artifacts
