package servers

import (
	"errors"

	"github.com/servo-mc/servo/internal/config"
	"github.com/servo-mc/servo/internal/registry"
	"github.com/servo-mc/servo/internal/service/cache"
	"github.com/servo-mc/servo/internal/service/downloader"
)

var (
	// ErrServerNotFound is returned when no configuration document exists for a name.
	ErrServerNotFound = errors.New("server not found")
	// ErrServerExists is returned when creating a server whose name is taken.
	ErrServerExists = errors.New("server already exists")
	// ErrVersionMismatch is returned when no cached artifact matches the server's Minecraft version.
	ErrVersionMismatch = errors.New("no cached artifact for server version")
	// ErrServerRunning is returned when removing a server whose process is alive.
	ErrServerRunning = errors.New("server is running")
)

const (
	configsFolder = "configs"
	worldsFolder  = "worlds"
	pluginsFolder = "plugins"
	pidFilename   = "server.pid"

	// latestVersion asks Create to pick the newest published version.
	latestVersion = "latest"
)

// Options wires the collaborators of a Service.
type Options struct {
	// Dirs are the configuration, cache and data roots.
	Dirs config.Dirs
	// JavaPath is the runtime executable.
	JavaPath string
	// Cache is the artifact cache servers launch from.
	Cache *cache.Service
	// Downloader refreshes stale artifacts before launch.
	Downloader *downloader.Service
	// Registry resolves the latest version at creation time.
	Registry registry.Registry
}

// Service manages servers.
type Service struct {
	dirs       config.Dirs
	javaPath   string
	cache      *cache.Service
	downloader *downloader.Service
	registry   registry.Registry
}

// New creates a Service.
func New(opts Options) *Service {
	javaPath := opts.JavaPath
	if javaPath == "" {
		javaPath = config.DefaultJavaPath
	}

	return &Service{
		dirs:       opts.Dirs,
		javaPath:   javaPath,
		cache:      opts.Cache,
		downloader: opts.Downloader,
		registry:   opts.Registry,
	}
}
