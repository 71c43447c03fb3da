package servers

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"

	"github.com/servo-mc/servo/internal/domain/server"
	"github.com/servo-mc/servo/internal/logger"
	"github.com/servo-mc/servo/internal/service/downloader"
)

// Stdio directs the standard streams of a launched server; nil streams are discarded.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StartOptions tune Start.
type StartOptions struct {
	// NoRefresh launches whatever build is cached without asking the registry.
	NoRefresh bool
	// Progress observes the download when a refresh happens.
	Progress downloader.ProgressFunc
	// Stdio directs the streams of the server process.
	Stdio Stdio
}

// Process is a launched, unsupervised server.
type Process struct {
	// Name of the server.
	Name string
	// PID of the runtime process.
	PID int
	// Version is the cached version that was launched.
	Version server.ServerVersion
	// Args are the runtime arguments.
	Args []string

	cmd     *exec.Cmd
	service *Service
}

// Wait blocks until the process exits and clears its pid file.
func (p *Process) Wait() error {
	err := p.cmd.Wait()
	p.service.clearPID(p.Name, p.PID)

	return err
}

// Start refreshes the server's artifact when needed and launches it.
func (s *Service) Start(ctx context.Context, name string, opts StartOptions) (*Process, error) {
	cfg, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if !opts.NoRefresh {
		if err = s.Refresh(ctx, cfg, opts.Progress); err != nil {
			return nil, err
		}
	}

	return s.Launch(ctx, cfg, opts.Stdio)
}

// NeedsRefresh reports whether the server's cached artifact is absent or stale.
func (s *Service) NeedsRefresh(ctx context.Context, cfg *server.Config) bool {
	return !s.cache.IsLatest(ctx, cfg.Key())
}

// Refresh downloads the latest build for the server unless it is cached already.
func (s *Service) Refresh(ctx context.Context, cfg *server.Config, progress downloader.ProgressFunc) error {
	if !s.NeedsRefresh(ctx, cfg) {
		return nil
	}

	if _, err := s.downloader.DownloadOne(ctx, cfg.Key(), progress); err != nil {
		return fmt.Errorf("refresh %s: %w", cfg.Name, err)
	}

	return nil
}

// Resolve returns the cache key a server launches from.
// Only the Minecraft version has to match; the cached build is used as is.
func (s *Service) Resolve(ctx context.Context, cfg *server.Config) (server.CacheKey, error) {
	key := cfg.Key()

	_, ok, err := s.cache.GetCachedPatch(ctx, key)
	if err != nil {
		return server.CacheKey{}, err
	}

	if !ok {
		return server.CacheKey{}, fmt.Errorf("%s needs %s: %w", cfg.Name, key, ErrVersionMismatch)
	}

	return key, nil
}

// Paths returns the canonical data directories of a server.
func (s *Service) Paths(cfg *server.Config) (server.Paths, error) {
	root := s.dirs.ServerData(cfg.Name)

	configs, err := canonicalize(filepath.Join(root, configsFolder))
	if err != nil {
		return server.Paths{}, err
	}

	worlds, err := canonicalize(filepath.Join(root, worldsFolder))
	if err != nil {
		return server.Paths{}, err
	}

	plugins, err := canonicalize(filepath.Join(root, pluginsFolder))
	if err != nil {
		return server.Paths{}, err
	}

	return server.Paths{Configs: configs, Worlds: worlds, Plugins: plugins}, nil
}

// BuildArgs returns the runtime arguments: extra java arguments, the artifact,
// the kind's arguments and the extra server arguments, in that order.
func (s *Service) BuildArgs(cfg *server.Config, artifact *server.CachedArtifact) ([]string, error) {
	paths, err := s.Paths(cfg)
	if err != nil {
		return nil, err
	}

	jar, err := canonicalize(artifact.Path)
	if err != nil {
		return nil, err
	}

	kindArgs := cfg.Kind.Args(paths)
	args := make([]string, 0, len(cfg.ExtraJavaArgs)+2+len(kindArgs)+len(cfg.ExtraServerArgs))
	args = append(args, cfg.ExtraJavaArgs...)
	args = append(args, "-jar", jar)
	args = append(args, kindArgs...)
	args = append(args, cfg.ExtraServerArgs...)

	return args, nil
}

// Launch spawns the server from its cached artifact and returns immediately.
func (s *Service) Launch(ctx context.Context, cfg *server.Config, stdio Stdio) (*Process, error) {
	key, err := s.Resolve(ctx, cfg)
	if err != nil {
		return nil, err
	}

	artifact, err := s.cache.Artifact(ctx, key)
	if err != nil {
		return nil, err
	}

	args, err := s.BuildArgs(cfg, artifact)
	if err != nil {
		return nil, err
	}

	paths, err := s.Paths(cfg)
	if err != nil {
		return nil, err
	}

	// The child outlives the request or command that launched it.
	cmd := exec.Command(s.javaPath, args...) //nolint:gosec,noctx // Arguments come from the server document.
	cmd.Dir = paths.Configs
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", cfg.Name, err)
	}

	process := &Process{
		Name:    cfg.Name,
		PID:     cmd.Process.Pid,
		Version: artifact.Version,
		Args:    args,
		cmd:     cmd,
		service: s,
	}

	if err = s.writePID(cfg.Name, process.PID); err != nil {
		logger.WarnKV(ctx, "Launched without pid file", "name", cfg.Name, "error", err)
	}

	logger.InfoKV(ctx, "Launched server", "name", cfg.Name, "version", artifact.Version.String(), "pid", process.PID)

	return process, nil
}

// canonicalize resolves path to an absolute path without symlinks; it must exist.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", path, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalize %s: %w", path, err)
	}

	return resolved, nil
}
