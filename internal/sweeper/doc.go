// Package sweeper keeps the derived-artifact caches within their age
// and size budgets. A sweep runs three ordered phases: entries past the
// maximum age are dropped, the remainder is trimmed oldest-access-first
// until it fits the byte budget, and orphaned thumbnails past their
// retention window are removed.
package sweeper
