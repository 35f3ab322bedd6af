// Package history persists play history (last position per video) in a
// small SQLite database, capped at the newest fifty entries.
package history
