// Package config defines the servo settings document and the directory roots
// derived from it.
//
// Settings are read from YAML, overridden by SERVO_* environment variables
// (optionally sourced from a .env file) and completed with platform defaults.
// Dirs is the explicit value every component receives instead of looking up
// well-known locations on its own.
package config
