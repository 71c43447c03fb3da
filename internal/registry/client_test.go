package registry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/registry"
	"github.com/servo-mc/servo/internal/registry/registrytest"
)

func paperKind(t *testing.T) server.Kind {
	t.Helper()

	kind, err := server.ParseKind("paper")
	require.NoError(t, err)

	return kind
}

func newClient(t *testing.T, baseURL string) *registry.Client {
	t.Helper()

	client, err := registry.NewClient(baseURL)
	require.NoError(t, err)

	return client
}

// TestGetLatestPatch reads the latest build of a version.
func TestGetLatestPatch(t *testing.T) {
	t.Parallel()

	fake := registrytest.New(t)
	fake.SetBuilds("paper", "1.12.2", 1618, 1620, 1619)

	client := newClient(t, fake.BaseURL())

	build, err := client.GetLatestPatch(context.Background(), paperKind(t), server.NewMinecraftVersion(1, 12).WithPatch(2))
	require.NoError(t, err)
	require.Equal(t, 1620, build)

	_, err = client.GetLatestPatch(context.Background(), paperKind(t), server.NewMinecraftVersion(1, 7))
	require.ErrorIs(t, err, registry.ErrNotFound)

	fake.Fail("paper", "1.8", http.StatusBadGateway)
	_, err = client.GetLatestPatch(context.Background(), paperKind(t), server.NewMinecraftVersion(1, 8))
	require.ErrorIs(t, err, registry.ErrNetwork)
}

// TestGetLatestPatchStringBuilds accepts builds encoded as strings.
func TestGetLatestPatchStringBuilds(t *testing.T) {
	t.Parallel()

	var userAgent string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/1.16.5" {
			http.NotFound(w, r)

			return
		}

		userAgent = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, `{"project":"paper","version":"1.16.5","builds":{"latest":"794","all":["793","794"]}}`)
	}))
	t.Cleanup(srv.Close)

	build, err := newClient(t, srv.URL).GetLatestPatch(
		context.Background(), paperKind(t), server.NewMinecraftVersion(1, 16).WithPatch(5))
	require.NoError(t, err)
	require.Equal(t, 794, build)
	require.Contains(t, userAgent, "servo/")
}

// TestGetLatestPatchMalformed maps decode failures and replies without a
// usable latest build to ErrNetwork.
func TestGetLatestPatchMalformed(t *testing.T) {
	t.Parallel()

	bodies := map[string]string{
		"truncated":      `{"builds":`,
		"empty object":   `{}`,
		"empty builds":   `{"builds":{}}`,
		"null latest":    `{"builds":{"latest":null}}`,
		"error reply":    `{"error":"unknown version"}`,
		"negative build": `{"builds":{"latest":-3}}`,
		"word build":     `{"builds":{"latest":"soon"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			t.Cleanup(srv.Close)

			build, err := newClient(t, srv.URL).GetLatestPatch(context.Background(), paperKind(t), server.NewMinecraftVersion(1, 16))
			require.ErrorIs(t, err, registry.ErrNetwork)
			require.Zero(t, build)
		})
	}
}

// TestGetLatestVersion picks the newest parseable version.
func TestGetLatestVersion(t *testing.T) {
	t.Parallel()

	fake := registrytest.New(t)
	fake.SetBuilds("paper", "1.12.2", 1620)
	fake.SetBuilds("paper", "1.16.5", 790, 794)
	fake.SetBuilds("paper", "1.9.4", 775)
	fake.AddVersion("paper", "1.17-pre1")

	latest, err := newClient(t, fake.BaseURL()).GetLatestVersion(context.Background(), paperKind(t))
	require.NoError(t, err)
	require.Equal(t, "1.16.5-794", latest.String())
}

// TestGetLatestVersionNoVersions reports projects without usable versions.
func TestGetLatestVersionNoVersions(t *testing.T) {
	t.Parallel()

	fake := registrytest.New(t)
	fake.AddVersion("paper", "snapshot")

	_, err := newClient(t, fake.BaseURL()).GetLatestVersion(context.Background(), paperKind(t))
	require.ErrorIs(t, err, registry.ErrNoVersions)

	_, err = newClient(t, registrytest.New(t).BaseURL()).GetLatestVersion(context.Background(), paperKind(t))
	require.ErrorIs(t, err, registry.ErrNotFound)
}

// TestDownload streams an artifact body.
func TestDownload(t *testing.T) {
	t.Parallel()

	fake := registrytest.New(t)
	fake.SetBuilds("paper", "1.12.2", 1620)

	client := newClient(t, fake.BaseURL())
	mc := server.NewMinecraftVersion(1, 12).WithPatch(2)

	download, err := client.Download(context.Background(), paperKind(t), mc, 1620)
	require.NoError(t, err)

	data, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	require.NoError(t, download.Body.Close())
	require.Equal(t, registrytest.Artifact("paper", "1.12.2", 1620), data)
	require.Equal(t, int64(len(data)), download.Size)
	require.Equal(t, 1, fake.Downloads("paper", "1.12.2"))

	_, err = client.Download(context.Background(), paperKind(t), mc, 1)
	require.ErrorIs(t, err, registry.ErrNotFound)
}

// TestNetworkFailure maps transport errors to ErrNetwork.
func TestNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	_, err := newClient(t, baseURL).GetLatestPatch(context.Background(), paperKind(t), server.NewMinecraftVersion(1, 12))
	require.ErrorIs(t, err, registry.ErrNetwork)
}
