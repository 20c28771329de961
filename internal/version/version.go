// Package version carries build metadata, set at link time:
//
//	go build -ldflags "-X github.com/corey/fpvcompat/internal/version.Version=v0.3.0"
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
