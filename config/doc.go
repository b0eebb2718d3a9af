// Package config holds the engine's configuration plumbing: defaults, struct
// and hard-bound validation, partial merges, YAML files, the copy-on-write
// Store shared by concurrent readers, and a Watcher that re-applies a YAML
// file whenever it changes on disk.
package config
