package servers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/servo-mc/servo/internal/config"
	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/logger"
)

// CreateOptions tune server creation.
type CreateOptions struct {
	// Kind defaults to server.DefaultKind.
	Kind server.Kind
	// AcceptEULA records acceptance of the game EULA in the configs folder.
	AcceptEULA bool
	// ExtraJavaArgs are stored for every launch.
	ExtraJavaArgs []string
	// ExtraServerArgs are stored for every launch.
	ExtraServerArgs []string
}

// Status describes a server and its cached artifact.
type Status struct {
	Config *server.Config
	// CachedBuild is nil when the server's version is not cached.
	CachedBuild *int
	// PID is the recorded process id, 0 when none.
	PID int
	// Running reports whether PID names a live process.
	Running bool
}

// Create writes the configuration document and empty data directories of a new server.
// The version "latest" resolves to the newest published version.
func (s *Service) Create(ctx context.Context, name, version string, opts CreateOptions) (*server.Config, error) {
	if err := server.ValidateName(name); err != nil {
		return nil, err
	}

	document := s.dirs.ServerDocument(name)
	if _, err := os.Stat(document); err == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrServerExists)
	}

	kind := opts.Kind
	if kind == nil {
		var err error

		if kind, err = server.ParseKind(server.DefaultKind); err != nil {
			return nil, err
		}
	}

	var (
		parsed server.ServerVersion
		err    error
	)

	if strings.EqualFold(version, latestVersion) {
		parsed, err = s.registry.GetLatestVersion(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("resolve latest version: %w", err)
		}
	} else if parsed, err = server.ParseServerVersion(version); err != nil {
		return nil, err
	}

	cfg := &server.Config{
		Name:            name,
		Version:         parsed,
		Kind:            kind,
		ExtraJavaArgs:   opts.ExtraJavaArgs,
		ExtraServerArgs: opts.ExtraServerArgs,
	}

	root := s.dirs.ServerData(name)
	paths := server.Paths{
		Configs: filepath.Join(root, configsFolder),
		Worlds:  filepath.Join(root, worldsFolder),
		Plugins: filepath.Join(root, pluginsFolder),
	}

	for _, dir := range []string{paths.Configs, paths.Worlds, paths.Plugins} {
		if err = os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if err = kind.Initialize(paths, server.InitOptions{AcceptEULA: opts.AcceptEULA}); err != nil {
		return nil, err
	}

	if err = s.save(cfg); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Created server", "name", name, "version", parsed.String(), "kind", kind.Name())

	return cfg, nil
}

// Get reads the configuration document of a server.
func (s *Service) Get(_ context.Context, name string) (*server.Config, error) {
	if err := server.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServerNotFound, err)
	}

	contents, err := os.ReadFile(filepath.Clean(s.dirs.ServerDocument(name)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrServerNotFound)
		}

		return nil, fmt.Errorf("read server %s: %w", name, err)
	}

	cfg := new(server.Config)
	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("decode server %s: %w", name, err)
	}

	// The file name is authoritative.
	cfg.Name = name

	return cfg, nil
}

// List reads every configuration document ordered by name.
func (s *Service) List(ctx context.Context) ([]*server.Config, error) {
	files, err := os.ReadDir(s.dirs.ServersDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("list servers: %w", err)
	}

	configs := make([]*server.Config, 0, len(files))

	for _, file := range files {
		name, ok := strings.CutSuffix(file.Name(), ".yaml")
		if !ok || file.IsDir() {
			continue
		}

		cfg, err := s.Get(ctx, name)
		if err != nil {
			return nil, err
		}

		configs = append(configs, cfg)
	}

	slices.SortFunc(configs, func(a, b *server.Config) int {
		return strings.Compare(a.Name, b.Name)
	})

	return configs, nil
}

// Describe returns the server together with its cache and process state.
func (s *Service) Describe(ctx context.Context, name string) (*Status, error) {
	cfg, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	status := &Status{Config: cfg}

	build, ok, err := s.cache.GetCachedPatch(ctx, cfg.Key())
	if err != nil {
		return nil, err
	}

	if ok {
		status.CachedBuild = &build
	}

	status.PID, status.Running, err = s.processState(name)
	if err != nil {
		return nil, err
	}

	return status, nil
}

// Remove deletes the data directory and configuration document of a stopped server.
func (s *Service) Remove(ctx context.Context, name string) error {
	if _, err := s.Get(ctx, name); err != nil {
		return err
	}

	pid, running, err := s.processState(name)
	if err != nil {
		return err
	}

	if running {
		return fmt.Errorf("%s (pid %d): %w", name, pid, ErrServerRunning)
	}

	if err = os.RemoveAll(s.dirs.ServerData(name)); err != nil {
		return fmt.Errorf("remove data of %s: %w", name, err)
	}

	if err = os.Remove(s.dirs.ServerDocument(name)); err != nil {
		return fmt.Errorf("remove config of %s: %w", name, err)
	}

	logger.InfoKV(ctx, "Removed server", "name", name)

	return nil
}

// save writes the configuration document.
func (s *Service) save(cfg *server.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode server %s: %w", cfg.Name, err)
	}

	if err = os.MkdirAll(s.dirs.ServersDir(), config.DefaultDirPermissions); err != nil {
		return fmt.Errorf("create servers directory: %w", err)
	}

	if err = os.WriteFile(s.dirs.ServerDocument(cfg.Name), data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write server %s: %w", cfg.Name, err)
	}

	return nil
}
