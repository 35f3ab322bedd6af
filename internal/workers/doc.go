// Package workers sizes background worker pools, with environment
// variable overrides for deployments that want more or fewer slots.
package workers
