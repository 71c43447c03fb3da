package server

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownKind is returned when a kind name is not registered.
var ErrUnknownKind = errors.New("unknown server kind")

// DefaultKind is used when a server is created without an explicit kind.
const DefaultKind = "paper"

// Paths are the canonical absolute data directories of one server.
type Paths struct {
	// Configs holds the server configuration files and is the working directory.
	Configs string
	// Worlds holds the world saves.
	Worlds string
	// Plugins holds server plugins.
	Plugins string
}

// InitOptions tune kind-specific initialisation of a new server.
type InitOptions struct {
	// AcceptEULA writes the file that records acceptance of the game EULA.
	AcceptEULA bool
}

// Kind is one flavor of server artifact.
type Kind interface {
	// Name is the tag stored in server documents and cache keys.
	Name() string
	// Project is the registry project the artifacts are published under.
	Project() string
	// Initialize prepares kind-specific files inside freshly created directories.
	Initialize(paths Paths, opts InitOptions) error
	// Args returns the arguments placed between the artifact and the extra server arguments.
	Args(paths Paths) []string
}

var kinds = map[string]Kind{}

func register(k Kind) {
	kinds[k.Name()] = k
}

// ParseKind returns the registered kind with the given name.
func ParseKind(name string) (Kind, error) {
	k, ok := kinds[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}

	return k, nil
}

// Kinds lists every registered kind ordered by name.
func Kinds() []Kind {
	list := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		list = append(list, k)
	}

	slices.SortFunc(list, func(a, b Kind) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return list
}

// KindNames lists the names of every registered kind.
func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for _, k := range Kinds() {
		names = append(names, k.Name())
	}

	return names
}
