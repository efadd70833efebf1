// Package config loads revcov configuration.
//
// The effective configuration is built by merging four layers, later layers
// winning: built-in defaults, a revcov.toml file (project-local, falling
// back to the per-user config directory), REVCOV_* environment variables,
// and CLI flag overrides. The API key is never stored in the file; it is
// read from the environment only.
package config
