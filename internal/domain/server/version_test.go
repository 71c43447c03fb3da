package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int {
	return &n
}

// TestParseServerVersion checks accepted forms and their components.
func TestParseServerVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  ServerVersion
	}{
		{"1.12", ServerVersion{Minecraft: NewMinecraftVersion(1, 12)}},
		{"1.12.2", ServerVersion{Minecraft: NewMinecraftVersion(1, 12).WithPatch(2)}},
		{"1.12.2-4", serverVersion(1, 12, intPtr(2), 4)},
		{"1.12-4", serverVersion(1, 12, nil, 4)},
		{"1.12.0", ServerVersion{Minecraft: NewMinecraftVersion(1, 12).WithPatch(0)}},
	}

	for _, tt := range tests {
		got, err := ParseServerVersion(tt.input)
		require.NoError(t, err, tt.input)
		require.True(t, tt.want.Equal(got), "%s: got %s", tt.input, got)
		require.Equal(t, tt.input, got.String())
	}
}

// serverVersion builds a fixture with an explicit build.
func serverVersion(major, minor int, patch *int, build int) ServerVersion {
	mc := NewMinecraftVersion(major, minor)
	mc.Patch = patch

	return ServerVersion{Minecraft: mc}.WithBuild(build)
}

// TestParseServerVersionErrors checks that failures name the offending component.
func TestParseServerVersionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input     string
		component string
	}{
		{"", ComponentMajor},
		{"1", ComponentMinor},
		{"x.12", ComponentMajor},
		{"1.x", ComponentMinor},
		{"1.12.x", ComponentPatch},
		{"1.12.2-x", ComponentBuild},
		{"1.12.2-", ComponentBuild},
		{"1.12.2.1", ComponentPatch},
		{"1..2", ComponentMinor},
		{"-1.12", ComponentMajor},
		{"1.+2", ComponentMinor},
	}

	for _, tt := range tests {
		_, err := ParseServerVersion(tt.input)
		require.ErrorIs(t, err, ErrParse, tt.input)

		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, tt.input)
		require.Equal(t, tt.component, parseErr.Component, tt.input)
		require.Equal(t, tt.input, parseErr.Input)
	}
}

// TestParseRoundTrip checks parse(format(parse(t))) == parse(t).
func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"1.8", "1.16.5", "1.16.5-794", "1.12-4", "1.012.03-05", "0.0"} {
		first, err := ParseServerVersion(input)
		require.NoError(t, err)

		second, err := ParseServerVersion(first.String())
		require.NoError(t, err)
		require.True(t, first.Equal(second), input)
	}
}

// TestParseMinecraftVersion rejects build suffixes.
func TestParseMinecraftVersion(t *testing.T) {
	t.Parallel()

	v, err := ParseMinecraftVersion("1.16.5")
	require.NoError(t, err)
	require.Equal(t, "1.16.5", v.String())

	_, err = ParseMinecraftVersion("1.16.5-3")

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, ComponentBuild, parseErr.Component)
}

// TestMinecraftVersionCompare checks the total order.
func TestMinecraftVersionCompare(t *testing.T) {
	t.Parallel()

	ordered := []string{"1.8", "1.8.0", "1.8.9", "1.12", "1.12.2", "1.16.5", "2.0"}

	for i := range ordered {
		for j := range ordered {
			a, err := ParseMinecraftVersion(ordered[i])
			require.NoError(t, err)

			b, err := ParseMinecraftVersion(ordered[j])
			require.NoError(t, err)

			switch {
			case i < j:
				require.Negative(t, a.Compare(b), "%s < %s", a, b)
			case i > j:
				require.Positive(t, a.Compare(b), "%s > %s", a, b)
			default:
				require.Zero(t, a.Compare(b))
				require.True(t, a.Equal(b))
			}
		}
	}

	// 1.12 and 1.12.0 are distinct.
	require.False(t, NewMinecraftVersion(1, 12).Equal(NewMinecraftVersion(1, 12).WithPatch(0)))
}

// TestServerVersionText checks text marshalling used by JSON.
func TestServerVersionText(t *testing.T) {
	t.Parallel()

	v := serverVersion(1, 16, intPtr(5), 794)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, `"1.16.5-794"`, string(data))

	var decoded ServerVersion
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, v.Equal(decoded))

	require.ErrorIs(t, json.Unmarshal([]byte(`"nope"`), &decoded), ErrParse)
}
