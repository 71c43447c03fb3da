package server

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestConfigYAML checks the persisted document shape.
func TestConfigYAML(t *testing.T) {
	t.Parallel()

	kind, err := ParseKind(DefaultKind)
	require.NoError(t, err)

	cfg := &Config{
		Name:            "myserver",
		Version:         ServerVersion{Minecraft: NewMinecraftVersion(1, 12).WithPatch(2)},
		Kind:            kind,
		ExtraJavaArgs:   []string{"-Xmx2G"},
		ExtraServerArgs: nil,
	}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.YAMLEq(t, `
name: myserver
version: 1.12.2
kind: paper
extra_java_args: ["-Xmx2G"]
extra_server_args: []
`, string(data))

	var decoded Config
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Equal(t, "myserver", decoded.Name)
	require.True(t, cfg.Version.Equal(decoded.Version))
	require.Equal(t, kind, decoded.Kind)
	require.Equal(t, []string{"-Xmx2G"}, decoded.ExtraJavaArgs)
	require.Equal(t, []string{}, decoded.ExtraServerArgs)
}

// TestConfigYAMLDefaults checks absent lists and kind.
func TestConfigYAMLDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte("name: a\nversion: 1.16.5-10\n"), &cfg))
	require.Equal(t, DefaultKind, cfg.Kind.Name())
	require.Empty(t, cfg.ExtraJavaArgs)
	require.NotNil(t, cfg.ExtraServerArgs)
	require.Equal(t, "paper@1.16.5", cfg.Key().String())

	require.ErrorIs(t, yaml.Unmarshal([]byte("name: a\nversion: 1.x\n"), &cfg), ErrParse)
	require.ErrorIs(t, yaml.Unmarshal([]byte("name: a\nversion: 1.16\nkind: forge\n"), &cfg), ErrUnknownKind)
}

// TestValidateName checks usable file keys.
func TestValidateName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"myserver", "survival-1", "a.b_c"} {
		require.NoError(t, ValidateName(name))
	}

	for _, name := range []string{"", "../etc", "a/b", ".hidden", "with space"} {
		require.ErrorIs(t, ValidateName(name), ErrInvalidName, name)
	}
}

// TestCacheKey checks the metadata key and artifact name.
func TestCacheKey(t *testing.T) {
	t.Parallel()

	key, err := ParseCacheKey("paper@1.12.2")
	require.NoError(t, err)
	require.Equal(t, "paper@1.12.2", key.String())
	require.Equal(t, "paper-1.12.2.jar", key.Filename())

	other, err := ParseCacheKey("paper@1.16.5")
	require.NoError(t, err)
	require.Negative(t, key.Compare(other))

	for _, bad := range []string{"paper", "forge@1.12", "paper@1.12-3", "paper@x"} {
		_, err = ParseCacheKey(bad)
		require.Error(t, err, bad)
	}
}
