package registrytest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/registry"
)

// Fake is an in-memory registry.Registry.
type Fake struct {
	mu           sync.Mutex
	latest       map[string]int
	versions     map[string][]server.MinecraftVersion
	failures     map[string]error
	downloadErrs map[string]error
	downloads    map[string]int
	err          error
}

// NewFake returns an empty in-memory registry.
func NewFake() *Fake {
	return &Fake{
		latest:       make(map[string]int),
		versions:     make(map[string][]server.MinecraftVersion),
		failures:     make(map[string]error),
		downloadErrs: make(map[string]error),
		downloads:    make(map[string]int),
	}
}

var _ registry.Registry = (*Fake)(nil)

func fakeKey(kind server.Kind, mc server.MinecraftVersion) string {
	return kind.Project() + "/" + mc.String()
}

// SetLatest publishes build as the newest build of the version.
func (f *Fake) SetLatest(kind server.Kind, mc server.MinecraftVersion, build int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := fakeKey(kind, mc)
	if _, ok := f.latest[key]; !ok {
		f.versions[kind.Project()] = append(f.versions[kind.Project()], mc)
	}

	f.latest[key] = build
}

// SetError makes every call fail with err; nil restores normal operation.
func (f *Fake) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.err = err
}

// Fail makes lookups of one version fail with err.
func (f *Fake) Fail(kind server.Kind, mc server.MinecraftVersion, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures[fakeKey(kind, mc)] = err
}

// FailDownload makes downloads of one version fail with err.
func (f *Fake) FailDownload(kind server.Kind, mc server.MinecraftVersion, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.downloadErrs[fakeKey(kind, mc)] = err
}

// Downloads returns how many artifacts of the version were opened.
func (f *Fake) Downloads(kind server.Kind, mc server.MinecraftVersion) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.downloads[fakeKey(kind, mc)]
}

// TotalDownloads returns how many artifacts were opened overall.
func (f *Fake) TotalDownloads() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for _, n := range f.downloads {
		total += n
	}

	return total
}

// GetLatestPatch implements registry.Registry.
func (f *Fake) GetLatestPatch(_ context.Context, kind server.Kind, mc server.MinecraftVersion) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.latestLocked(kind, mc)
}

// GetLatestVersion implements registry.Registry.
func (f *Fake) GetLatestVersion(_ context.Context, kind server.Kind) (server.ServerVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return server.ServerVersion{}, f.err
	}

	versions := f.versions[kind.Project()]
	if len(versions) == 0 {
		return server.ServerVersion{}, fmt.Errorf("%s: %w", kind.Project(), registry.ErrNoVersions)
	}

	newest := versions[0]
	for _, mc := range versions[1:] {
		if mc.Compare(newest) > 0 {
			newest = mc
		}
	}

	return server.ServerVersion{Minecraft: newest}.WithBuild(f.latest[fakeKey(kind, newest)]), nil
}

// Download implements registry.Registry.
func (f *Fake) Download(
	_ context.Context,
	kind server.Kind,
	mc server.MinecraftVersion,
	build int,
) (*registry.Download, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.latestLocked(kind, mc); err != nil {
		return nil, err
	}

	if err := f.downloadErrs[fakeKey(kind, mc)]; err != nil {
		return nil, err
	}

	f.downloads[fakeKey(kind, mc)]++

	body := Artifact(kind.Project(), mc.String(), build)

	return &registry.Download{
		Body: io.NopCloser(bytes.NewReader(body)),
		Size: int64(len(body)),
	}, nil
}

func (f *Fake) latestLocked(kind server.Kind, mc server.MinecraftVersion) (int, error) {
	if f.err != nil {
		return 0, f.err
	}

	if err := f.failures[fakeKey(kind, mc)]; err != nil {
		return 0, err
	}

	build, ok := f.latest[fakeKey(kind, mc)]
	if !ok {
		return 0, fmt.Errorf("%s: %w", fakeKey(kind, mc), registry.ErrNotFound)
	}

	return build, nil
}
