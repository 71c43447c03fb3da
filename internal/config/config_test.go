package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Empty registry.
	require.Error(t, Validate(new(Config)))

	valid := func() *Config {
		return &Config{
			RegistryURL: "https://registry.local/api/v1",
			HTTPAddress: "127.0.0.1:8080",
			GRPCAddress: ":9090",
			LogLevel:    "debug",
			ConfigDir:   "/c",
			CacheDir:    "/k",
			DataDir:     "/d",
		}
	}

	require.NoError(t, Validate(valid()))

	// Bad registry.
	cfg := valid()
	cfg.RegistryURL = "not a url"
	require.Error(t, Validate(cfg))

	// Bad address.
	cfg = valid()
	cfg.HTTPAddress = "bad"
	require.Error(t, Validate(cfg))

	// Bad level.
	cfg = valid()
	cfg.LogLevel = "loud"
	require.ErrorIs(t, Validate(cfg), errUnknownLogLevel)

	// Missing root.
	cfg = valid()
	cfg.CacheDir = ""
	require.ErrorIs(t, Validate(cfg), errDirRequired)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultConfigFilename)

	settings := &Config{
		RegistryURL: "http://127.0.0.1:1/api/v1",
		JavaPath:    "/opt/java/bin/java",
		HTTPAddress: "127.0.0.1:18080",
		GRPCAddress: "127.0.0.1:19090",
		LogLevel:    "warn",
		ConfigDir:   filepath.Join(dir, "config"),
		CacheDir:    filepath.Join(dir, "cache"),
		DataDir:     filepath.Join(dir, "data"),
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	// File exists with restricted permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoadMissingFileUsesDefaults ensures servo works without a settings file.
func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	loaded, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	defaults := Default()
	require.Equal(t, DefaultRegistryURL, loaded.RegistryURL)
	require.Equal(t, DefaultJavaPath, loaded.JavaPath)
	require.Equal(t, DefaultHTTPAddress, loaded.HTTPAddress)
	require.Equal(t, defaults.CacheDir, loaded.CacheDir)
	require.Equal(t, defaults.DataDir, loaded.DataDir)
}

// TestLoadPartialFileMergesDefaults ensures only unset fields are defaulted.
func TestLoadPartialFileMergesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte("java_path: /usr/bin/java17\ncache_dir: ~/servo-cache\n"), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/usr/bin/java17", loaded.JavaPath)
	require.Equal(t, DefaultRegistryURL, loaded.RegistryURL)

	home, err := homedir.Dir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "servo-cache"), loaded.CacheDir)
}

// TestLoadMalformedFile reports decoding failures.
func TestLoadMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte("registry_url: [unterminated\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

// TestLoadEnvironmentOverrides ensures SERVO_* variables win over the file.
func TestLoadEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte("registry_url: http://file.local/api\n"), 0o600))

	t.Setenv("SERVO_REGISTRY_URL", "http://env.local/api")
	t.Setenv("SERVO_DATA_DIR", filepath.Join(dir, "env-data"))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://env.local/api", loaded.RegistryURL)
	require.Equal(t, filepath.Join(dir, "env-data"), loaded.DataDir)
}

// TestDirsLayout checks the derived locations and their creation.
func TestDirsLayout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dirs := Dirs{
		Config: filepath.Join(root, "config"),
		Cache:  filepath.Join(root, "cache"),
		Data:   filepath.Join(root, "data"),
	}

	require.Equal(t, filepath.Join(root, "config", "servers", "alpha.yaml"), dirs.ServerDocument("alpha"))
	require.Equal(t, filepath.Join(root, "data", "alpha"), dirs.ServerData("alpha"))
	require.Equal(t, filepath.Join(root, "cache", "cache.json"), dirs.IndexFile())
	require.Equal(t, filepath.Join(root, "cache", "paper-1.12.2.jar"), dirs.Artifact("paper-1.12.2.jar"))

	require.NoError(t, dirs.Ensure())

	for _, dir := range []string{dirs.ServersDir(), dirs.Cache, dirs.Data} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}
