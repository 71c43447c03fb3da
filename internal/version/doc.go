// Package version exposes build metadata for servo.
//
// Version, Commit and BuildTime are injected via -ldflags at release time and
// also travel in the User-Agent sent to the build registry.
package version
