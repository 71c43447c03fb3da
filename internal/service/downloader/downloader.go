package downloader

import (
	"context"
	"fmt"
	"io"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/logger"
	"github.com/servo-mc/servo/internal/registry"
	"github.com/servo-mc/servo/internal/service/cache"
)

// Metrics receives download and refresh outcomes.
type Metrics interface {
	// ObserveDownload records one finished download attempt.
	ObserveDownload(kind string, bytes int64, err error)
	// ObserveRefresh records the outcome of one refresh unit.
	ObserveRefresh(downloaded bool, err error)
}

// Result describes one finished unit.
type Result struct {
	// Key is the refreshed cache key.
	Key server.CacheKey
	// Build is the build cached after the unit.
	Build int
	// Downloaded is false when the cached build was already the latest.
	Downloaded bool
}

// Service downloads artifacts into the cache.
type Service struct {
	cache    *cache.Service
	registry registry.Registry
	metrics  Metrics
}

// Option customizes a Service.
type Option func(*Service)

// WithMetrics reports outcomes to m.
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a downloader writing into c.
func New(c *cache.Service, reg registry.Registry, opts ...Option) *Service {
	s := &Service{
		cache:    c,
		registry: reg,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// DownloadOne caches the latest build of key regardless of what is cached.
func (s *Service) DownloadOne(ctx context.Context, key server.CacheKey, progress ProgressFunc) (*Result, error) {
	latest, err := s.registry.GetLatestPatch(ctx, key.Kind, key.Minecraft)
	if err != nil {
		return nil, fmt.Errorf("resolve latest build of %s: %w", key, err)
	}

	return s.fetch(ctx, key, latest, progress)
}

// RefreshOne caches the latest build of key unless it is cached already.
func (s *Service) RefreshOne(ctx context.Context, key server.CacheKey, progress ProgressFunc) (*Result, error) {
	cached, ok, err := s.cache.GetCachedPatch(ctx, key)
	if err != nil {
		return nil, err
	}

	latest, err := s.registry.GetLatestPatch(ctx, key.Kind, key.Minecraft)
	if err != nil {
		return nil, fmt.Errorf("resolve latest build of %s: %w", key, err)
	}

	if ok && latest <= cached {
		logger.DebugKV(ctx, "Artifact is up to date", "key", key.String(), "build", cached)

		return &Result{Key: key, Build: cached}, nil
	}

	return s.fetch(ctx, key, latest, progress)
}

// DownloadTo writes an artifact to w without touching the cache.
// A nil version selects the newest version; a version without a build selects its newest build.
func (s *Service) DownloadTo(
	ctx context.Context,
	kind server.Kind,
	version *server.ServerVersion,
	w io.Writer,
	progress ProgressFunc,
) (server.ServerVersion, error) {
	var resolved server.ServerVersion

	switch {
	case version == nil:
		latest, err := s.registry.GetLatestVersion(ctx, kind)
		if err != nil {
			return server.ServerVersion{}, fmt.Errorf("resolve latest version: %w", err)
		}

		resolved = latest
	case version.Build == nil:
		build, err := s.registry.GetLatestPatch(ctx, kind, version.Minecraft)
		if err != nil {
			return server.ServerVersion{}, fmt.Errorf("resolve latest build of %s: %w", version.Minecraft, err)
		}

		resolved = server.ServerVersion{Minecraft: version.Minecraft}.WithBuild(build)
	default:
		resolved = *version
	}

	download, err := s.registry.Download(ctx, kind, resolved.Minecraft, *resolved.Build)
	if err != nil {
		s.observeDownload(kind, 0, err)

		return server.ServerVersion{}, fmt.Errorf("download %s: %w", resolved, err)
	}

	defer func() {
		_ = download.Body.Close()
	}()

	written, err := io.Copy(w, newProgressReader(download.Body, download.Size, progress))
	s.observeDownload(kind, written, err)

	if err != nil {
		return server.ServerVersion{}, fmt.Errorf("write %s: %w", resolved, err)
	}

	logger.InfoKV(ctx, "Downloaded artifact", "kind", kind.Name(), "version", resolved.String(), "bytes", written)

	return resolved, nil
}

// fetch streams build into the cache.
func (s *Service) fetch(ctx context.Context, key server.CacheKey, build int, progress ProgressFunc) (*Result, error) {
	logger.InfoKV(ctx, "Downloading artifact", "key", key.String(), "build", build)

	download, err := s.registry.Download(ctx, key.Kind, key.Minecraft, build)
	if err != nil {
		s.observeDownload(key.Kind, 0, err)

		return nil, fmt.Errorf("download %s build %d: %w", key, build, err)
	}

	defer func() {
		_ = download.Body.Close()
	}()

	reader := newProgressReader(download.Body, download.Size, progress)

	_, err = s.cache.Cache(ctx, key, build, reader)
	s.observeDownload(key.Kind, reader.done, err)

	if err != nil {
		return nil, err
	}

	return &Result{Key: key, Build: build, Downloaded: true}, nil
}

func (s *Service) observeDownload(kind server.Kind, bytes int64, err error) {
	if s.metrics != nil {
		s.metrics.ObserveDownload(kind.Name(), bytes, err)
	}
}
