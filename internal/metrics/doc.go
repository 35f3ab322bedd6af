// Package metrics defines the Prometheus collectors exported at
// /metrics: HTTP traffic, derived-artifact cache behavior, background
// thumbnail jobs, edit pipeline tasks and cache eviction sweeps.
package metrics
