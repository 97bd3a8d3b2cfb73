// Package buildinfo carries version details stamped in with -ldflags -X.
package buildinfo

import "fmt"

// Set via -ldflags "-X github.com/cleared-dev/cardrecon/internal/buildinfo.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the version line shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
