// Package startup loads and validates application configuration from
// environment variables and the YAML config file (folder list and cache
// budgets), and carries build metadata injected at link time.
package startup
