// Package buildinfo holds version information injected at build time via ldflags.
package buildinfo

import "fmt"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent is sent with every API request.
func UserAgent() string {
	return "studiobar/" + Version
}

// String formats the version line printed by the CLI.
func String() string {
	return fmt.Sprintf("studiobar %s (%s, built %s)", Version, CommitHash, BuildDate)
}
