package version

import "fmt"

var (
	// Version is the release version of servo. It can be overridden via ldflags.
	Version = "0.1.0"
	// Commit is the short git SHA embedded at build time (or "none").
	Commit = "none"
	// BuildTime is the UTC build timestamp embedded at build time.
	BuildTime = "unknown"
)

// Short returns only the release version.
func Short() string {
	return Version
}

// Full returns a human-readable version string with commit and build time.
func Full() string {
	return fmt.Sprintf("servo %s (commit %s, built %s)", Version, Commit, BuildTime)
}

// UserAgent is the value sent in the User-Agent header of registry requests.
func UserAgent() string {
	return "servo/" + Version
}
