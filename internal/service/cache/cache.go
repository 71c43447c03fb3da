package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/servo-mc/servo/internal/config"
	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/logger"
	"github.com/servo-mc/servo/internal/registry"
	"github.com/servo-mc/servo/internal/repository/index"
)

// ErrNotCached is returned when no metadata entry exists for a key.
var ErrNotCached = errors.New("artifact is not cached")

// ArtifactFileMode is applied to cached artifacts.
const ArtifactFileMode os.FileMode = 0o644

// Entry is one metadata entry.
type Entry struct {
	Key   server.CacheKey
	Build int
}

// Service owns the artifact files and the metadata index.
type Service struct {
	dir      string
	index    index.Repository
	registry registry.Registry
}

// New creates a cache rooted at dir.
func New(dir string, idx index.Repository, reg registry.Registry) *Service {
	return &Service{
		dir:      filepath.Clean(dir),
		index:    idx,
		registry: reg,
	}
}

// Path is the canonical location of the artifact for key.
func (s *Service) Path(key server.CacheKey) string {
	return filepath.Join(s.dir, key.Filename())
}

// GetCachedPatch returns the build recorded for key.
// An entry whose artifact file is gone counts as not cached.
func (s *Service) GetCachedPatch(ctx context.Context, key server.CacheKey) (int, bool, error) {
	build, ok, err := s.index.Get(ctx, key.String())
	if err != nil {
		return 0, false, fmt.Errorf("look up %s: %w", key, err)
	}

	if !ok {
		return 0, false, nil
	}

	if _, err = os.Stat(s.Path(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.WarnKV(ctx, "Cached artifact missing, treating as absent", "key", key.String(), "build", build)

			return 0, false, nil
		}

		return 0, false, fmt.Errorf("stat %s: %w", key, err)
	}

	return build, true, nil
}

// IsLatest reports whether the cached build is at least the registry's latest.
// A missing entry, an index failure or a registry failure all count as stale.
func (s *Service) IsLatest(ctx context.Context, key server.CacheKey) bool {
	cached, ok, err := s.GetCachedPatch(ctx, key)
	if err != nil {
		logger.WarnKV(ctx, "Cache index unreadable, treating as stale", "key", key.String(), "error", err)

		return false
	}

	if !ok {
		return false
	}

	latest, err := s.registry.GetLatestPatch(ctx, key.Kind, key.Minecraft)
	if err != nil {
		logger.WarnKV(ctx, "Registry unavailable, treating as stale", "key", key.String(), "error", err)

		return false
	}

	return latest <= cached
}

// Cache replaces the artifact of key with the contents of r and records build.
// The index is only updated once the new file is in place.
func (s *Service) Cache(ctx context.Context, key server.CacheKey, build int, r io.Reader) (*server.CachedArtifact, error) {
	if err := os.MkdirAll(s.dir, config.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	target := s.Path(key)

	// go-update renames the previous file aside, so the target must exist.
	createdPlaceholder := false

	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		placeholder, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, ArtifactFileMode)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", target, err)
		}

		_ = placeholder.Close()
		createdPlaceholder = true
	}

	logger.DebugKV(ctx, "Writing artifact", "key", key.String(), "build", build, "path", target)

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: ArtifactFileMode,
	}

	if err := goupdate.Apply(r, options); err != nil {
		if createdPlaceholder {
			_ = os.Remove(target)
		}

		return nil, fmt.Errorf("write %s: %w", target, err)
	}

	removeLeftovers(target)

	if err := s.index.Put(ctx, key.String(), build); err != nil {
		return nil, fmt.Errorf("record %s: %w", key, err)
	}

	logger.InfoKV(ctx, "Cached artifact", "key", key.String(), "build", build)

	return &server.CachedArtifact{
		Version: server.ServerVersion{Minecraft: key.Minecraft}.WithBuild(build),
		Path:    target,
	}, nil
}

// Artifact returns the cached artifact for key.
func (s *Service) Artifact(ctx context.Context, key server.CacheKey) (*server.CachedArtifact, error) {
	build, ok, err := s.GetCachedPatch(ctx, key)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotCached)
	}

	return &server.CachedArtifact{
		Version: server.ServerVersion{Minecraft: key.Minecraft}.WithBuild(build),
		Path:    s.Path(key),
	}, nil
}

// Entries returns every metadata entry ordered by key.
// Entries whose key no longer parses (e.g. a removed kind) are skipped.
func (s *Service) Entries(ctx context.Context) ([]Entry, error) {
	all, err := s.index.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}

	entries := make([]Entry, 0, len(all))

	for text, build := range all {
		key, err := server.ParseCacheKey(text)
		if err != nil {
			logger.WarnKV(ctx, "Skipping unknown cache entry", "key", text, "error", err)

			continue
		}

		entries = append(entries, Entry{Key: key, Build: build})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return a.Key.Compare(b.Key)
	})

	return entries, nil
}

// Keys returns the keys of every metadata entry ordered by key.
func (s *Service) Keys(ctx context.Context) ([]server.CacheKey, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]server.CacheKey, 0, len(entries))
	for _, entry := range entries {
		keys = append(keys, entry.Key)
	}

	return keys, nil
}

// Erase drops every metadata entry and leaves the files in place.
func (s *Service) Erase(ctx context.Context) error {
	if err := s.index.Erase(ctx); err != nil {
		return fmt.Errorf("erase cache index: %w", err)
	}

	return nil
}

// Purge deletes every indexed artifact and then erases the index.
// It returns how many files were removed.
func (s *Service) Purge(ctx context.Context) (int, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, entry := range entries {
		path := s.Path(entry.Key)

		err = os.Remove(path)

		switch {
		case err == nil:
			removed++
		case errors.Is(err, os.ErrNotExist):
			logger.WarnKV(ctx, "Indexed artifact already missing", "path", path)
		default:
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
	}

	if err = s.Erase(ctx); err != nil {
		return removed, err
	}

	logger.InfoKV(ctx, "Purged cache", "files", removed)

	return removed, nil
}

// removeLeftovers drops the backup go-update keeps when it cannot delete it.
func removeLeftovers(target string) {
	dir, name := filepath.Split(target)

	for _, old := range []string{target + ".old", filepath.Join(dir, "."+name+".old")} {
		if _, err := os.Stat(old); err == nil {
			_ = os.Remove(old)
		}
	}
}
