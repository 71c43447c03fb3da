package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/servo-mc/servo/internal/config"
	"github.com/servo-mc/servo/internal/registry/registrytest"
)

// TestLoadWiresComponents checks roots are created and components share them.
func TestLoadWiresComponents(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, config.DefaultConfigFilename)

	cfg := &config.Config{
		RegistryURL: "http://127.0.0.1:1/api/v1",
		JavaPath:    "java",
		LogLevel:    "info",
		HTTPAddress: "127.0.0.1:0",
		GRPCAddress: "127.0.0.1:0",
		ConfigDir:   filepath.Join(root, "config"),
		CacheDir:    filepath.Join(root, "cache"),
		DataDir:     filepath.Join(root, "data"),
	}
	require.NoError(t, config.Save(path, cfg))

	fake := registrytest.NewFake()

	a, err := Load(path, WithRegistry(fake))
	require.NoError(t, err)
	require.Same(t, fake, a.Registry)
	require.Equal(t, cfg.Dirs(), a.Dirs)
	require.Equal(t, a.Dirs.IndexFile(), a.Index.Path())

	for _, dir := range []string{a.Dirs.ServersDir(), a.Dirs.Cache, a.Dirs.Data} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}

	list, err := a.Servers.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}
