// Package library resolves and lists video assets across the configured
// media folders. An asset's identity is its (folder name, filename) pair;
// lookups are confined to their folder to block path traversal.
package library
