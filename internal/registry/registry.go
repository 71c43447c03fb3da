package registry

import (
	"context"
	"errors"
	"io"

	"github.com/servo-mc/servo/internal/domain/server"
)

var (
	// ErrNotFound is returned when the registry does not know a project, version or build.
	ErrNotFound = errors.New("not found in registry")
	// ErrNetwork is returned for transport failures, unexpected statuses and undecodable replies.
	ErrNetwork = errors.New("registry request failed")
	// ErrNoVersions is returned when a project lists no parseable versions.
	ErrNoVersions = errors.New("registry lists no usable versions")
)

// Registry is the subset of the remote registry servo depends on.
type Registry interface {
	// GetLatestPatch returns the newest build of the Minecraft version.
	GetLatestPatch(ctx context.Context, kind server.Kind, version server.MinecraftVersion) (int, error)
	// GetLatestVersion returns the newest Minecraft version with its newest build.
	GetLatestVersion(ctx context.Context, kind server.Kind) (server.ServerVersion, error)
	// Download opens the artifact of one build.
	Download(ctx context.Context, kind server.Kind, version server.MinecraftVersion, build int) (*Download, error)
}

// Download is an open artifact stream.
type Download struct {
	// Body must be closed by the caller.
	Body io.ReadCloser
	// Size is the announced length in bytes, -1 when unknown.
	Size int64
}
