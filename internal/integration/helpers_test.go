package integration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/servo-mc/servo/internal/app"
	"github.com/servo-mc/servo/internal/config"
	"github.com/servo-mc/servo/internal/registry/registrytest"
)

// recordScript stands in for the Java runtime: it records its working
// directory and arguments, one per line.
const recordScript = "#!/bin/sh\npwd > \"$0.record\"\nprintf '%s\\n' \"$@\" >> \"$0.record\"\n"

// environment is a fully wired servo against an in-process HTTP registry.
type environment struct {
	app      *app.App
	registry *registrytest.Server
	java     string
	root     string
}

func newEnvironment(t *testing.T) *environment {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("launch tests use a POSIX shell script as the runtime")
	}

	reg := registrytest.New(t)
	root := t.TempDir()

	java := filepath.Join(root, "java")
	require.NoError(t, os.WriteFile(java, []byte(recordScript), 0o755)) //nolint:gosec // Test runtime.

	cfgPath := filepath.Join(root, config.DefaultConfigFilename)
	require.NoError(t, config.Save(cfgPath, &config.Config{
		RegistryURL: reg.BaseURL(),
		JavaPath:    java,
		ConfigDir:   filepath.Join(root, "config"),
		CacheDir:    filepath.Join(root, "cache"),
		DataDir:     filepath.Join(root, "data"),
	}))

	a, err := app.Load(cfgPath)
	require.NoError(t, err)

	return &environment{
		app:      a,
		registry: reg,
		java:     java,
		root:     root,
	}
}

// recorded returns the lines written by the last runtime invocation.
func (e *environment) recorded(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(e.java + ".record")
	require.NoError(t, err)

	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
