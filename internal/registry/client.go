package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/logger"
	"github.com/servo-mc/servo/internal/version"
)

// Client talks to a PaperMC v1 shaped registry over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client, which by default has no timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// NewClient creates a registry client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse registry url: %w", err)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: new(http.Client),
		userAgent:  version.UserAgent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// projectResponse is the reply of GET {base}/{project}.
type projectResponse struct {
	Project  string   `json:"project"`
	Versions []string `json:"versions"`
}

// versionResponse is the reply of GET {base}/{project}/{version}.
type versionResponse struct {
	Project string `json:"project"`
	Version string `json:"version"`
	Builds  struct {
		Latest *buildNumber  `json:"latest"`
		All    []buildNumber `json:"all"`
	} `json:"builds"`
}

var errNegativeBuild = errors.New("negative build number")

// buildNumber accepts builds encoded either as numbers or as numeric strings.
type buildNumber int

func (b *buildNumber) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)

	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("build number %q: %w", data, err)
	}

	if n < 0 {
		return fmt.Errorf("build number %d: %w", n, errNegativeBuild)
	}

	*b = buildNumber(n)

	return nil
}

// GetLatestPatch returns the newest build of the Minecraft version.
func (c *Client) GetLatestPatch(ctx context.Context, kind server.Kind, mc server.MinecraftVersion) (int, error) {
	var reply versionResponse
	if err := c.getJSON(ctx, &reply, kind.Project(), mc.String()); err != nil {
		return 0, err
	}

	if reply.Builds.Latest == nil {
		return 0, fmt.Errorf("%w: %s %s: reply has no builds.latest", ErrNetwork, kind.Project(), mc)
	}

	latest := int(*reply.Builds.Latest)

	logger.DebugKV(ctx, "Fetched latest build", "kind", kind.Name(), "version", mc.String(), "build", latest)

	return latest, nil
}

// GetLatestVersion returns the newest listed Minecraft version with its newest build.
// Listed versions that do not parse are skipped.
func (c *Client) GetLatestVersion(ctx context.Context, kind server.Kind) (server.ServerVersion, error) {
	var reply projectResponse
	if err := c.getJSON(ctx, &reply, kind.Project()); err != nil {
		return server.ServerVersion{}, err
	}

	var (
		newest server.MinecraftVersion
		found  bool
	)

	for _, text := range reply.Versions {
		mc, err := server.ParseMinecraftVersion(text)
		if err != nil {
			logger.DebugKV(ctx, "Skipping unparseable version", "version", text, "error", err)

			continue
		}

		if !found || mc.Compare(newest) > 0 {
			newest, found = mc, true
		}
	}

	if !found {
		return server.ServerVersion{}, fmt.Errorf("%s: %w", kind.Project(), ErrNoVersions)
	}

	build, err := c.GetLatestPatch(ctx, kind, newest)
	if err != nil {
		return server.ServerVersion{}, err
	}

	return server.ServerVersion{Minecraft: newest}.WithBuild(build), nil
}

// Download opens the artifact of one build. The caller closes the body.
func (c *Client) Download(
	ctx context.Context,
	kind server.Kind,
	mc server.MinecraftVersion,
	build int,
) (*Download, error) {
	response, err := c.get(ctx, kind.Project(), mc.String(), strconv.Itoa(build), "download")
	if err != nil {
		return nil, err
	}

	return &Download{
		Body: response.Body,
		Size: response.ContentLength,
	}, nil
}

// getJSON performs a GET and decodes the JSON reply into target.
func (c *Client) getJSON(ctx context.Context, target any, elems ...string) error {
	response, err := c.get(ctx, elems...)
	if err != nil {
		return err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if err = json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrNetwork, response.Request.URL, err)
	}

	return nil
}

// get performs a GET below the base URL and checks the status.
func (c *Client) get(ctx context.Context, elems ...string) (*http.Response, error) {
	target := *c.baseURL
	// Use path.Join to normalize duplicate slashes when composing the URL path.
	target.Path = path.Join(append([]string{target.Path}, elems...)...)
	finalURL := target.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	switch {
	case response.StatusCode == http.StatusNotFound:
		_ = response.Body.Close()

		return nil, fmt.Errorf("%s: %w", finalURL, ErrNotFound)
	case response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices:
		_ = response.Body.Close()

		return nil, fmt.Errorf("%w: %s, %s", ErrNetwork, finalURL, response.Status)
	}

	return response, nil
}
