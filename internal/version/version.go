// Package version holds the build-time version variables for the
// genesis-validate binary. The zero values ("dev", "none", "unknown") are
// used for local builds; releases inject the real values via -ldflags.
package version

import "fmt"

// These variables are overridden by ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info returns the formatted version string printed by genesis-validate version.
func Info() string {
	return fmt.Sprintf(
		"genesis-validate version %s\ncommit: %s\nbuilt: %s\n",
		Version,
		Commit,
		Date,
	)
}
