package config

import (
	"fmt"
	"path/filepath"

	"github.com/kirsle/configdir"
)

const (
	// serversFolder holds one YAML document per server under the config root.
	serversFolder = "servers"
	// indexFilename is the cache metadata document under the cache root.
	indexFilename = "cache.json"
	// serverDocumentExt is the extension of per-server documents.
	serverDocumentExt = ".yaml"
)

// Dirs are the filesystem roots servo works in.
type Dirs struct {
	// Config holds the servers/ folder with per-server documents.
	Config string
	// Cache holds artifacts and the cache index.
	Cache string
	// Data holds one working directory per server.
	Data string
}

// ServersDir is the folder holding per-server configuration documents.
func (d Dirs) ServersDir() string {
	return filepath.Join(d.Config, serversFolder)
}

// ServerDocument is the configuration document of the named server.
func (d Dirs) ServerDocument(name string) string {
	return filepath.Join(d.ServersDir(), name+serverDocumentExt)
}

// ServerData is the working directory of the named server.
func (d Dirs) ServerData(name string) string {
	return filepath.Join(d.Data, name)
}

// IndexFile is the cache metadata document.
func (d Dirs) IndexFile() string {
	return filepath.Join(d.Cache, indexFilename)
}

// Artifact is the canonical cache path of an artifact file.
func (d Dirs) Artifact(filename string) string {
	return filepath.Join(d.Cache, filename)
}

// Ensure creates every root that does not exist yet.
func (d Dirs) Ensure() error {
	if err := configdir.MakePath(d.ServersDir(), d.Cache, d.Data); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	return nil
}

// DefaultDirs returns the platform default roots.
func DefaultDirs() Dirs {
	return Default().Dirs()
}
