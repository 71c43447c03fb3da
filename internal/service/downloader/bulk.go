package downloader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/logger"
)

// ErrRefreshFailed is wrapped by every unit failure of a bulk refresh.
var ErrRefreshFailed = errors.New("refresh failed")

// UnitResult is the outcome of one bulk refresh unit.
type UnitResult struct {
	// Key is the refreshed cache key.
	Key server.CacheKey
	// Build is the build cached after the unit; the previous build on failure.
	Build int
	// Downloaded reports whether a new build was written.
	Downloaded bool
	// Err is the unit failure, if any.
	Err error
}

// BulkRefresh refreshes every distinct key concurrently.
// Results follow the order of first appearance in keys. The returned error
// combines every unit failure; multierr.Errors recovers them one by one.
func (s *Service) BulkRefresh(ctx context.Context, keys []server.CacheKey, observer Observer) ([]UnitResult, error) {
	unique := dedupe(keys)
	results := make([]UnitResult, len(unique))

	logger.InfoKV(ctx, "Refreshing cache", "units", len(unique))

	var wg sync.WaitGroup

	for i, key := range unique {
		var progress ProgressFunc
		if observer != nil {
			progress = observer(key.String())
		}

		wg.Go(func() {
			results[i] = s.refreshUnit(logger.WithKV(ctx, "key", key.String()), key, progress)
		})
	}

	wg.Wait()

	var err error

	for _, result := range results {
		if result.Err != nil {
			err = multierr.Append(err, result.Err)
		}
	}

	return results, err
}

// RefreshAll refreshes every cached key.
func (s *Service) RefreshAll(ctx context.Context, observer Observer) ([]UnitResult, error) {
	keys, err := s.cache.Keys(ctx)
	if err != nil {
		return nil, err
	}

	return s.BulkRefresh(ctx, keys, observer)
}

func (s *Service) refreshUnit(ctx context.Context, key server.CacheKey, progress ProgressFunc) UnitResult {
	unit := UnitResult{Key: key}

	result, err := s.RefreshOne(ctx, key, progress)
	if err != nil {
		logger.ErrorKV(ctx, "Refresh unit failed", "error", err)

		unit.Err = fmt.Errorf("%w: %s: %w", ErrRefreshFailed, key, err)

		if build, ok, lookupErr := s.cache.GetCachedPatch(ctx, key); lookupErr == nil && ok {
			unit.Build = build
		}
	} else {
		unit.Build = result.Build
		unit.Downloaded = result.Downloaded
	}

	if s.metrics != nil {
		s.metrics.ObserveRefresh(unit.Downloaded, unit.Err)
	}

	return unit
}

// dedupe keeps the first occurrence of every key.
func dedupe(keys []server.CacheKey) []server.CacheKey {
	seen := make(map[string]struct{}, len(keys))
	unique := make([]server.CacheKey, 0, len(keys))

	for _, key := range keys {
		if _, ok := seen[key.String()]; ok {
			continue
		}

		seen[key.String()] = struct{}{}
		unique = append(unique, key)
	}

	return unique
}
