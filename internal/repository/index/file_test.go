package index

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFileRepository_Missing verifies a missing document is an empty index.
func TestFileRepository_Missing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "cache.json"))

	entries, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)

	_, ok, err := repo.Get(context.Background(), "paper@1.12.2")
	require.NoError(t, err)
	require.False(t, ok)
}

// TestFileRepository_PutGet verifies the document shape and replacement.
func TestFileRepository_PutGet(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "nested", "cache.json")
	repo := NewFileRepository(file)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "paper@1.12.2", 7))
	require.NoError(t, repo.Put(ctx, "paper@1.12.2", 9))
	require.NoError(t, repo.Put(ctx, "paper@1.16.5", 794))

	build, ok, err := repo.Get(ctx, "paper@1.12.2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 9, build)

	contents, err := os.ReadFile(file)
	require.NoError(t, err)

	var document map[string]int
	require.NoError(t, json.Unmarshal(contents, &document))
	require.Equal(t, map[string]int{"paper@1.12.2": 9, "paper@1.16.5": 794}, document)
}

// TestFileRepository_UpdateFailureKeepsDocument verifies a failed update writes nothing.
func TestFileRepository_UpdateFailureKeepsDocument(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "cache.json")
	repo := NewFileRepository(file)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "paper@1.12.2", 7))

	before, err := os.ReadFile(file)
	require.NoError(t, err)

	errBoom := errors.New("boom")
	err = repo.Update(ctx, func(entries map[string]int) error {
		entries["paper@1.12.2"] = 100

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	after, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestFileRepository_Erase verifies every entry is dropped.
func TestFileRepository_Erase(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "cache.json"))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "paper@1.12.2", 7))
	require.NoError(t, repo.Erase(ctx))

	entries, err := repo.All(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestFileRepository_Corrupt verifies malformed documents are reported.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for name, contents := range map[string]string{
		"syntax.json":   `{"paper@1.12.2":`,
		"fraction.json": `{"paper@1.12.2": 1.5}`,
		"string.json":   `{"paper@1.12.2": "7"}`,
	} {
		file := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(file, []byte(contents), 0o600))

		_, err := NewFileRepository(file).All(context.Background())
		require.Error(t, err, name)
	}
}

// TestFileRepository_ConcurrentPuts verifies serialized read-modify-write keeps every entry.
func TestFileRepository_ConcurrentPuts(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "cache.json"))
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		errs = make(chan error, 5)
	)

	keys := []string{"paper@1.8", "paper@1.9.4", "paper@1.12.2", "paper@1.16.5", "paper@1.17.1"}
	for i, key := range keys {
		wg.Go(func() {
			errs <- repo.Put(ctx, key, i+1)
		})
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	entries, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, len(keys))
}
