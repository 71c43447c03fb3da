// Package app wires servo's components from a loaded configuration.
package app

import (
	"fmt"

	"github.com/servo-mc/servo/internal/config"
	"github.com/servo-mc/servo/internal/metrics"
	"github.com/servo-mc/servo/internal/registry"
	"github.com/servo-mc/servo/internal/repository/index"
	"github.com/servo-mc/servo/internal/service/cache"
	"github.com/servo-mc/servo/internal/service/downloader"
	"github.com/servo-mc/servo/internal/service/servers"
)

// App holds the wired components shared by the CLI and the API servers.
type App struct {
	// Config is the loaded configuration.
	Config *config.Config
	// Dirs are the roots every component works in.
	Dirs config.Dirs
	// Registry is the remote build registry.
	Registry registry.Registry
	// Index is the cache metadata document.
	Index *index.FileRepository
	// Cache is the artifact cache.
	Cache *cache.Service
	// Downloader moves artifacts from the registry into the cache.
	Downloader *downloader.Service
	// Servers manages server instances.
	Servers *servers.Service
	// Metrics collects Prometheus metrics.
	Metrics *metrics.Collector
}

// Option customizes New.
type Option func(*options)

type options struct {
	registry registry.Registry
}

// WithRegistry replaces the HTTP registry client.
func WithRegistry(reg registry.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// New creates the directory roots and wires every component.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dirs := cfg.Dirs()
	if err := dirs.Ensure(); err != nil {
		return nil, err
	}

	reg := o.registry
	if reg == nil {
		client, err := registry.NewClient(cfg.RegistryURL)
		if err != nil {
			return nil, fmt.Errorf("create registry client: %w", err)
		}

		reg = client
	}

	collector := metrics.New()
	idx := index.NewFileRepository(dirs.IndexFile())
	artifacts := cache.New(dirs.Cache, idx, reg)
	dl := downloader.New(artifacts, reg, downloader.WithMetrics(collector))

	return &App{
		Config:     cfg,
		Dirs:       dirs,
		Registry:   reg,
		Index:      idx,
		Cache:      artifacts,
		Downloader: dl,
		Metrics:    collector,
		Servers: servers.New(servers.Options{
			Dirs:       dirs,
			JavaPath:   cfg.JavaPath,
			Cache:      artifacts,
			Downloader: dl,
			Registry:   reg,
		}),
	}, nil
}

// Load reads the configuration at path and wires the components.
func Load(path string, opts ...Option) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	return New(cfg, opts...)
}
