// Package buildinfo carries version metadata injected at build time.
package buildinfo

// Set via -ldflags at release build time; defaults cover go run.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
